package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ZeroLogger implements Logger on top of zerolog.
type ZeroLogger struct {
	zlog *zerolog.Logger
}

var _ Logger = (*ZeroLogger)(nil)

// New creates a ZeroLogger writing JSON to stdout at the given level.
// Unknown levels fall back to info. If pretty is true, output is formatted
// for human consumption instead.
func New(level string, pretty bool) *ZeroLogger {
	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	l := zerolog.New(out).With().Timestamp().Logger()

	zLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		zLevel = zerolog.InfoLevel
	}
	l = l.Level(zLevel)

	return &ZeroLogger{zlog: &l}
}

// NewWithWriter creates a ZeroLogger writing JSON to the given writer.
// Useful for tests and for applications that manage their own sinks.
func NewWithWriter(level string, out io.Writer) *ZeroLogger {
	l := zerolog.New(out).With().Timestamp().Logger()

	zLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		zLevel = zerolog.InfoLevel
	}
	l = l.Level(zLevel)

	return &ZeroLogger{zlog: &l}
}

// WithFields returns a logger with additional fields attached to all entries.
func (l *ZeroLogger) WithFields(fields map[string]any) Logger {
	log := l.zlog.With().Fields(fields).Logger()
	return &ZeroLogger{zlog: &log}
}

// Debug creates a debug-level log event.
func (l *ZeroLogger) Debug() LogEvent {
	return &zerologEvent{event: l.zlog.Debug()}
}

// Info creates an info-level log event.
func (l *ZeroLogger) Info() LogEvent {
	return &zerologEvent{event: l.zlog.Info()}
}

// Warn creates a warning-level log event.
func (l *ZeroLogger) Warn() LogEvent {
	return &zerologEvent{event: l.zlog.Warn()}
}

// Error creates an error-level log event.
func (l *ZeroLogger) Error() LogEvent {
	return &zerologEvent{event: l.zlog.Error()}
}

// zerologEvent adapts a zerolog event to the LogEvent interface.
type zerologEvent struct {
	event *zerolog.Event
}

func (e *zerologEvent) Msg(msg string) {
	e.event.Msg(msg)
}

func (e *zerologEvent) Msgf(format string, args ...any) {
	e.event.Msgf(format, args...)
}

func (e *zerologEvent) Err(err error) LogEvent {
	return &zerologEvent{event: e.event.Err(err)}
}

func (e *zerologEvent) Str(key, value string) LogEvent {
	return &zerologEvent{event: e.event.Str(key, value)}
}

func (e *zerologEvent) Int(key string, value int) LogEvent {
	return &zerologEvent{event: e.event.Int(key, value)}
}

func (e *zerologEvent) Int64(key string, value int64) LogEvent {
	return &zerologEvent{event: e.event.Int64(key, value)}
}

func (e *zerologEvent) Dur(key string, d time.Duration) LogEvent {
	return &zerologEvent{event: e.event.Dur(key, d)}
}

func (e *zerologEvent) Interface(key string, i any) LogEvent {
	return &zerologEvent{event: e.event.Interface(key, i)}
}

func (e *zerologEvent) Bytes(key string, val []byte) LogEvent {
	return &zerologEvent{event: e.event.Bytes(key, val)}
}
