// Package xlog is a narrow, severity-gated logging façade over zerolog.
//
// It mirrors the Level/Option shape of github.com/joeycumines/logiface (the
// corpus's generic logging front end) without pulling in logiface's
// Event-building machinery: the core engine only ever needs leveled text
// lines, gated by a configured threshold.
package xlog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Level is a severity threshold, ordered least to most verbose.
type Level int8

const (
	// LevelDisabled suppresses all logging.
	LevelDisabled Level = iota - 1
	LevelError
	LevelWarning
	LevelInfo
	LevelDebug
	LevelTrace
)

func (l Level) zerologLevel() zerolog.Level {
	switch l {
	case LevelDisabled:
		return zerolog.Disabled
	case LevelError:
		return zerolog.ErrorLevel
	case LevelWarning:
		return zerolog.WarnLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelTrace:
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logger is the severity-gated logger consumed by registry.Core and
// spprovider.Provider. The zero value is not usable; construct with New.
type Logger struct {
	zl zerolog.Logger
}

// Option configures a Logger constructed via New.
type Option func(*options)

type options struct {
	level  Level
	writer io.Writer
}

// WithSeverity sets the logging_severity_level filter threshold described in
// spec §6.
func WithSeverity(level Level) Option {
	return func(o *options) { o.level = level }
}

// WithWriter overrides the destination for log output, replacing the
// default console writer. Output passed through w lands in zerolog's
// standard JSON encoding, not the human-readable console format; wrap w in
// a zerolog.ConsoleWriter yourself if you need that formatting applied to
// a non-default destination.
func WithWriter(w io.Writer) Option {
	return func(o *options) { o.writer = w }
}

// New constructs a Logger. The default severity is LevelInfo; the default
// writer is a zerolog.ConsoleWriter wrapping os.Stderr, matching the
// corpus's default dev-facing output for command-line drivers.
func New(opts ...Option) *Logger {
	o := options{level: LevelInfo, writer: zerolog.ConsoleWriter{Out: os.Stderr}}
	for _, opt := range opts {
		opt(&o)
	}
	zl := zerolog.New(o.writer).
		Level(o.level.zerologLevel()).
		With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// Trace emits a trace-level line, gated by the configured severity. Per
// spec §6, a trace-level entry is emitted on every add_to_active_queue.
func (l *Logger) Trace(msg string, fields ...Field) {
	l.emit(l.zl.Trace(), msg, fields)
}

// Debug emits a debug-level line. Per spec §6, debug-level entries bracket
// each SP phase (PreSetup, Setup).
func (l *Logger) Debug(msg string, fields ...Field) {
	l.emit(l.zl.Debug(), msg, fields)
}

// Warn emits a warning-level line.
func (l *Logger) Warn(msg string, fields ...Field) {
	l.emit(l.zl.Warn(), msg, fields)
}

// Error emits an error-level line.
func (l *Logger) Error(msg string, err error, fields ...Field) {
	ev := l.zl.Error()
	if err != nil {
		ev = ev.Err(err)
	}
	l.emit(ev, msg, fields)
}

func (l *Logger) emit(ev *zerolog.Event, msg string, fields []Field) {
	for _, f := range fields {
		ev = f(ev)
	}
	ev.Msg(msg)
}

// Field attaches a structured field to a log line.
type Field func(*zerolog.Event) *zerolog.Event

// Uint64 attaches a uint64-valued field, e.g. a gate or wire id.
func Uint64(key string, v uint64) Field {
	return func(e *zerolog.Event) *zerolog.Event { return e.Uint64(key, v) }
}

// Nop returns a Logger with logging disabled, for tests that don't care
// about log output.
func Nop() *Logger {
	return New(WithSeverity(LevelDisabled))
}
