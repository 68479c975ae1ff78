// Package logger defines the structured logging contract consumed by the
// courier session layer, together with a zerolog-backed implementation and
// a no-op implementation for silent operation.
package logger

import "time"

// Logger is the contract for structured logging. Implementations return a
// LogEvent per severity level; the event is discarded unless Msg or Msgf
// is called on it.
type Logger interface {
	Debug() LogEvent
	Info() LogEvent
	Warn() LogEvent
	Error() LogEvent
	WithFields(fields map[string]any) Logger
}

// LogEvent is a single structured log event under construction.
type LogEvent interface {
	Msg(msg string)
	Msgf(format string, args ...any)
	Err(err error) LogEvent
	Str(key, value string) LogEvent
	Int(key string, value int) LogEvent
	Int64(key string, value int64) LogEvent
	Dur(key string, d time.Duration) LogEvent
	Interface(key string, i any) LogEvent
	Bytes(key string, val []byte) LogEvent
}
