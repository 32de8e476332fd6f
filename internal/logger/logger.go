// Package logger wraps zerolog behind a small structured-logging API shared
// by all server components.
package logger

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

// LogFields carries structured context for a log entry.
type LogFields map[string]interface{}

// Logger is the application logger. The zero value is not usable; construct
// one with New or NewDiscard.
type Logger struct {
	zl zerolog.Logger
}

// New creates a Logger writing to out.
// level is one of debug|info|warn|error; format is json or console.
func New(level, format string, out io.Writer) (*Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var w io.Writer = out
	switch strings.ToLower(format) {
	case "console":
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	case "json", "":
		// zerolog's native output
	default:
		return nil, fmt.Errorf("invalid log format %q (want json or console)", format)
	}

	zl := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return &Logger{zl: zl}, nil
}

// NewDiscard returns a logger that drops everything. Used in tests.
func NewDiscard() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func (l *Logger) Debug(msg string, fields LogFields) { l.emit(l.zl.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields LogFields)  { l.emit(l.zl.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields LogFields)  { l.emit(l.zl.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields LogFields) { l.emit(l.zl.Error(), msg, fields) }

func (l *Logger) emit(ev *zerolog.Event, msg string, fields LogFields) {
	if fields != nil {
		ev = ev.Fields(map[string]interface{}(fields))
	}
	ev.Msg(msg)
}

// Access writes one access-log entry per handled request.
func (l *Logger) Access(method, path string, status int, bytes int64, duration time.Duration) {
	l.zl.Info().
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Int64("resp_bytes", bytes).
		Str("resp_size", humanize.Bytes(uint64(max(bytes, 0)))).
		Dur("duration", duration).
		Msg("request")
}
