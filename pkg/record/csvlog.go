package record

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"RoomBooker/pkg/booking"
)

// LogFileName is the booking log kept in the output folder.
const LogFileName = "booking_log.csv"

const (
	dateLayout  = "2006-01-02"
	stampLayout = "2006-01-02 15:04"
)

// Header is the first row of a new booking log.
var Header = []string{"username", "booking_date", "time_slot_start", "time_slot_end", "location", "resource_category", "resource_id"}

// Log appends successful bookings to a CSV file.
type Log struct {
	Path string
}

// NewLog returns a log in folder.
func NewLog(folder string) *Log {
	return &Log{Path: filepath.Join(folder, LogFileName)}
}

var _ booking.Recorder = (*Log)(nil)

// Append writes rec, creating the folder, file and header row on first use.
func (l *Log) Append(rec booking.Record) error {
	if err := os.MkdirAll(filepath.Dir(l.Path), 0o755); err != nil {
		return fmt.Errorf("create output folder: %w", err)
	}

	_, err := os.Stat(l.Path)
	exists := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat booking log: %w", err)
	}

	file, err := os.OpenFile(l.Path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open booking log: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if !exists {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write(row(rec)); err != nil {
		return fmt.Errorf("write booking: %w", err)
	}
	w.Flush()
	return w.Error()
}

func row(rec booking.Record) []string {
	return []string{
		rec.Username,
		rec.BookedOn.Format(dateLayout),
		rec.SlotStart.Format(stampLayout),
		rec.SlotEnd.Format(stampLayout),
		rec.Location,
		rec.Category,
		rec.ResourceID,
	}
}

// ReadAll returns every row of the log, header included.
func (l *Log) ReadAll() ([][]string, error) {
	file, err := os.Open(l.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read booking log: %w", err)
	}
	return rows, nil
}
