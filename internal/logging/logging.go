// Package logging builds the console's zerolog logger. The TUI owns the
// terminal, so logs go to a file unless told otherwise.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ParseLevel maps debug|info|warn|error onto zerolog levels. Anything else is info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}

// New returns a JSON-lines logger writing to path, or to stderr when path is
// "-". The closer releases the file.
func New(level, path string) (zerolog.Logger, io.Closer, error) {
	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if path != "" && path != "-" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("logging.New: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("logging.New: %w", err)
		}
		w, closer = f, f
	}
	return NewWriter(level, w), closer, nil
}

// NewWriter returns a logger writing to w.
func NewWriter(level string, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Str("app", "kestrel-admin").Logger()
}
