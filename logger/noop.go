package logger

import "time"

// NewNoop returns a Logger that discards everything. It is the default for
// sessions constructed without a logger.
func NewNoop() Logger {
	return noopLogger{}
}

type noopLogger struct{}

func (noopLogger) Debug() LogEvent                    { return noopEvent{} }
func (noopLogger) Info() LogEvent                     { return noopEvent{} }
func (noopLogger) Warn() LogEvent                     { return noopEvent{} }
func (noopLogger) Error() LogEvent                    { return noopEvent{} }
func (n noopLogger) WithFields(_ map[string]any) Logger { return n }

type noopEvent struct{}

func (noopEvent) Msg(string)                        {}
func (noopEvent) Msgf(string, ...any)               {}
func (e noopEvent) Err(error) LogEvent              { return e }
func (e noopEvent) Str(string, string) LogEvent     { return e }
func (e noopEvent) Int(string, int) LogEvent        { return e }
func (e noopEvent) Int64(string, int64) LogEvent    { return e }
func (e noopEvent) Dur(string, time.Duration) LogEvent { return e }
func (e noopEvent) Interface(string, any) LogEvent  { return e }
func (e noopEvent) Bytes(string, []byte) LogEvent   { return e }
