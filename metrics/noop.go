package metrics

import "context"

// NewNoop returns a Sink that discards everything. It is the default for
// sessions constructed without a metrics sink.
func NewNoop() Sink {
	return noopSink{}
}

type noopSink struct{}

func (noopSink) Increment(context.Context, string, ...Tag) {}

func (noopSink) Timer(context.Context, string, ...Tag) func() {
	return func() {}
}
