// Package logger builds the structured zerolog logger used across the service.
//
// Records go to stdout and, when a root directory is given, to a daily file
// laid out as <root>/<YYYYMMDD>/api_<YYYYMMDD>.log.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	dirPermissions  = 0o750
	filePermissions = 0o640
)

// Options controls logger behaviour at construction time.
type Options struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Defaults to "info" when empty or unrecognised.
	Level string
	// Pretty enables human-friendly console output on stdout.
	Pretty bool
	// Output replaces stdout. Tests pass a buffer here.
	Output io.Writer
	// FileRoot enables the daily log file when non-empty.
	FileRoot string
	// Now is used to pick the daily directory. Defaults to time.Now.
	Now func() time.Time
}

// Logger bundles the zerolog logger with the writer it emits to, so other
// components (the HTTP access log) can share the same sinks.
type Logger struct {
	zerolog.Logger
	Writer io.Writer
	file   *os.File
}

// New builds a Logger from opts.
func New(opts Options) (*Logger, error) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	var file *os.File
	if opts.FileRoot != "" {
		now := opts.Now
		if now == nil {
			now = time.Now
		}
		f, err := OpenDailyFile(opts.FileRoot, now())
		if err != nil {
			return nil, err
		}
		file = f
		out = zerolog.MultiLevelWriter(out, f)
	}

	lvl := parseLevel(opts.Level)
	l := zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Caller().
		Logger()

	return &Logger{Logger: l, Writer: out, file: file}, nil
}

// Close releases the daily log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// OpenDailyFile opens (appending) the log file for the day of t under root,
// creating the dated directory when needed.
func OpenDailyFile(root string, t time.Time) (*os.File, error) {
	day := t.Format("20060102")
	dir := filepath.Join(root, day)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, "api_"+day+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePermissions)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
