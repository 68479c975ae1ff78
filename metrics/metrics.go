// Package metrics defines the telemetry sink consumed by the courier
// session layer: monotonically increasing counters and scoped timers,
// both carrying structured tags.
package metrics

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Tag is a structured metric dimension. The statsd-style "key:value" string
// form exists only at the parsing boundary; see ParseTag.
type Tag struct {
	Key   string
	Value string
}

// T is shorthand for constructing a Tag.
func T(key, value string) Tag {
	return Tag{Key: key, Value: value}
}

// ParseTag splits a "key:value" string into a Tag. Values may contain
// colons; only the first one separates key from value.
func ParseTag(s string) Tag {
	key, value, found := strings.Cut(s, ":")
	if !found {
		return Tag{Key: s}
	}
	return Tag{Key: key, Value: value}
}

// Sink receives counters and timings emitted by the session layer.
// Implementations must be safe for concurrent use.
type Sink interface {
	// Increment adds one to the named counter.
	Increment(ctx context.Context, name string, tags ...Tag)
	// Timer starts a scoped timer for the named metric. The returned stop
	// function records the elapsed time in milliseconds when called.
	Timer(ctx context.Context, name string, tags ...Tag) func()
}

// OTelSink implements Sink on top of an OpenTelemetry meter. Instruments
// are created lazily per metric name and cached.
type OTelSink struct {
	meter metric.Meter

	mu         sync.Mutex
	counters   map[string]metric.Int64Counter
	histograms map[string]metric.Float64Histogram
}

var _ Sink = (*OTelSink)(nil)

// NewOTel creates a Sink recording to the given meter.
func NewOTel(meter metric.Meter) *OTelSink {
	return &OTelSink{
		meter:      meter,
		counters:   make(map[string]metric.Int64Counter),
		histograms: make(map[string]metric.Float64Histogram),
	}
}

// Increment adds one to the named counter with the given tags.
func (s *OTelSink) Increment(ctx context.Context, name string, tags ...Tag) {
	counter := s.counter(name)
	if counter == nil {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(attributes(tags)...))
}

// Timer starts a timer; the returned function records elapsed milliseconds
// into a histogram named after the metric.
func (s *OTelSink) Timer(ctx context.Context, name string, tags ...Tag) func() {
	hist := s.histogram(name)
	if hist == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		elapsed := float64(time.Since(start)) / float64(time.Millisecond)
		hist.Record(ctx, elapsed, metric.WithAttributes(attributes(tags)...))
	}
}

func (s *OTelSink) counter(name string) metric.Int64Counter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if counter, ok := s.counters[name]; ok {
		return counter
	}
	counter, err := s.meter.Int64Counter(name, metric.WithUnit("{call}"))
	if err != nil {
		// Instrument creation failures must not break the request path.
		return nil
	}
	s.counters[name] = counter
	return counter
}

func (s *OTelSink) histogram(name string) metric.Float64Histogram {
	s.mu.Lock()
	defer s.mu.Unlock()

	if hist, ok := s.histograms[name]; ok {
		return hist
	}
	hist, err := s.meter.Float64Histogram(name, metric.WithUnit("ms"))
	if err != nil {
		return nil
	}
	s.histograms[name] = hist
	return hist
}

func attributes(tags []Tag) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(tags))
	for _, tag := range tags {
		attrs = append(attrs, attribute.String(tag.Key, tag.Value))
	}
	return attrs
}
