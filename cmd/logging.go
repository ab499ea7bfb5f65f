package cmd

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// levelWriter drops events below min.
type levelWriter struct {
	io.Writer
	min zerolog.Level
}

func (w levelWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < w.min {
		return len(p), nil
	}
	return w.Write(p)
}

// debugLogPath is ~/.config/RoomBooker/debug.log (mkdir -p if necessary).
func debugLogPath() (string, error) {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	logDir := filepath.Join(cfgDir, "RoomBooker")
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(logDir, "debug.log"), nil
}

// setupLogging builds the run logger. Info and above go to stderr; with
// -v/--verbose every event is also appended as JSON to the debug log, whose
// file is returned so the caller can close it.
func setupLogging(stderr io.Writer) (zerolog.Logger, *os.File, error) {
	console := levelWriter{
		Writer: zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen},
		min:    zerolog.InfoLevel,
	}

	var (
		w    zerolog.LevelWriter = console
		file *os.File
	)
	if verboseMode {
		path, err := debugLogPath()
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		file, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		w = zerolog.MultiLevelWriter(console, file)
	}

	l := zerolog.New(w).
		Level(zerolog.DebugLevel).
		With().
		Timestamp().
		Str("run_id", uuid.NewString()).
		Logger()
	return l, file, nil
}
