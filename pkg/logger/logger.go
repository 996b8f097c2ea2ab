package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the logging interface used by the library.
type Logger interface {
	Info(msg string, obj any)
	Warn(msg string, obj any)
	Debug(msg string, obj any)
	Error(msg string, obj any)
}

// NopLogger discards all log messages.
type NopLogger struct{}

func (NopLogger) Info(string, any)  {}
func (NopLogger) Warn(string, any)  {}
func (NopLogger) Debug(string, any) {}
func (NopLogger) Error(string, any) {}

type zerologLogger struct {
	zl zerolog.Logger
}

// New builds a zerolog-backed logger writing to w at the given level.
// A nil writer means human-readable console output on stderr.
// Secrets are redacted before they reach the writer.
func New(w io.Writer, level string) Logger {
	redactor := NewRedactor()
	var out io.Writer
	if w == nil {
		out = zerolog.ConsoleWriter{Out: redactor.Wrap(os.Stderr), TimeFormat: time.RFC3339}
	} else {
		out = redactor.Wrap(w)
	}
	zl := zerolog.New(out).With().Timestamp().Logger().Level(ParseLevel(level))
	return zerologLogger{zl: zl}
}

func (l zerologLogger) Info(msg string, obj any)  { write(l.zl.Info(), msg, obj) }
func (l zerologLogger) Warn(msg string, obj any)  { write(l.zl.Warn(), msg, obj) }
func (l zerologLogger) Debug(msg string, obj any) { write(l.zl.Debug(), msg, obj) }
func (l zerologLogger) Error(msg string, obj any) { write(l.zl.Error(), msg, obj) }

func write(evt *zerolog.Event, msg string, obj any) {
	if evt == nil {
		return
	}
	switch v := obj.(type) {
	case nil:
	case map[string]any:
		evt = evt.Fields(v)
	case error:
		evt = evt.Err(v)
	default:
		evt = evt.Interface("obj", v)
	}
	evt.Msg(msg)
}

// ParseLevel maps a level name to a zerolog level. Unknown names mean info.
func ParseLevel(s string) zerolog.Level {
	switch s {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "silent":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Debug writes a debug log when enabled and logger is non-nil.
func Debug(enabled bool, logger Logger, msg string, obj any) {
	if !enabled || logger == nil {
		return
	}
	logger.Debug(msg, obj)
}

// Warn writes a warning log when logger is non-nil.
func Warn(logger Logger, msg string, obj any) {
	if logger == nil {
		return
	}
	logger.Warn(msg, obj)
}
