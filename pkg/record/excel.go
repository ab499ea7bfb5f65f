package record

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

// ExportXLSX writes the booking log to an Excel workbook at out.
func (l *Log) ExportXLSX(out string) (int, error) {
	rows, err := l.ReadAll()
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return 0, fmt.Errorf("rename sheet: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return 0, err
		}
		values := make([]interface{}, len(r))
		for j, v := range r {
			values[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return 0, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	// Bold header
	if len(rows) > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err == nil {
			endCell, _ := excelize.CoordinatesToCellName(len(rows[0]), 1)
			_ = f.SetCellStyle(sheetName, "A1", endCell, style)
		}
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return 0, fmt.Errorf("create export folder: %w", err)
	}
	if err := f.SaveAs(out); err != nil {
		return 0, fmt.Errorf("save workbook: %w", err)
	}

	if len(rows) == 0 {
		return 0, nil
	}
	return len(rows) - 1, nil
}
