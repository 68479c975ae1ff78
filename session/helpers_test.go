package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gaborage/go-courier/logger"
	"github.com/gaborage/go-courier/metrics"
)

// fakeTransport lets tests script every attempt outcome.
type fakeTransport struct {
	mu     sync.Mutex
	send   func(ctx context.Context, p *CallParams) (*Response, error)
	calls  int
	closed bool
}

func (t *fakeTransport) Send(ctx context.Context, p *CallParams) (*Response, error) {
	t.mu.Lock()
	t.calls++
	t.mu.Unlock()
	return t.send(ctx, p)
}

func (t *fakeTransport) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
}

// fakeSink records every counter and timer emission in order.
type fakeSink struct {
	mu         sync.Mutex
	increments []sinkCall
	timers     []sinkCall
}

type sinkCall struct {
	name string
	tags []metrics.Tag
}

func (s *fakeSink) Increment(_ context.Context, name string, tags ...metrics.Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.increments = append(s.increments, sinkCall{name: name, tags: tags})
}

func (s *fakeSink) Timer(_ context.Context, name string, tags ...metrics.Tag) func() {
	s.mu.Lock()
	s.timers = append(s.timers, sinkCall{name: name, tags: tags})
	s.mu.Unlock()
	return func() {}
}

// recordingLogger collects completed log events per level.
type recordingLogger struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	level  string
	msg    string
	fields map[string]any
}

func (l *recordingLogger) Debug() logger.LogEvent { return l.event("debug") }
func (l *recordingLogger) Info() logger.LogEvent  { return l.event("info") }
func (l *recordingLogger) Warn() logger.LogEvent  { return l.event("warn") }
func (l *recordingLogger) Error() logger.LogEvent { return l.event("error") }

func (l *recordingLogger) WithFields(map[string]any) logger.Logger { return l }

func (l *recordingLogger) event(level string) logger.LogEvent {
	return &recordingEvent{logger: l, level: level, fields: map[string]any{}}
}

func (l *recordingLogger) byMsg(msg string) *recordedEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.events {
		if l.events[i].msg == msg {
			return &l.events[i]
		}
	}
	return nil
}

type recordingEvent struct {
	logger *recordingLogger
	level  string
	fields map[string]any
}

func (e *recordingEvent) Msg(msg string) {
	e.logger.mu.Lock()
	defer e.logger.mu.Unlock()
	e.logger.events = append(e.logger.events, recordedEvent{level: e.level, msg: msg, fields: e.fields})
}

func (e *recordingEvent) Msgf(format string, args ...any) {
	e.Msg(fmt.Sprintf(format, args...))
}

func (e *recordingEvent) Err(err error) logger.LogEvent {
	e.fields["error"] = err
	return e
}

func (e *recordingEvent) Str(key, value string) logger.LogEvent {
	e.fields[key] = value
	return e
}

func (e *recordingEvent) Int(key string, value int) logger.LogEvent {
	e.fields[key] = value
	return e
}

func (e *recordingEvent) Int64(key string, value int64) logger.LogEvent {
	e.fields[key] = value
	return e
}

func (e *recordingEvent) Dur(key string, d time.Duration) logger.LogEvent {
	e.fields[key] = d
	return e
}

func (e *recordingEvent) Interface(key string, i any) logger.LogEvent {
	e.fields[key] = i
	return e
}

func (e *recordingEvent) Bytes(key string, val []byte) logger.LogEvent {
	e.fields[key] = val
	return e
}

// fakeReporter records captured exceptions.
type fakeReporter struct {
	mu     sync.Mutex
	errors []error
	extras []map[string]any
}

func (r *fakeReporter) CaptureException(_ context.Context, err error, extra map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
	r.extras = append(r.extras, extra)
}

func (r *fakeReporter) captured() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errors)
}
