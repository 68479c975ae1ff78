package session

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Tracer is the optional tracing collaborator. When configured, retry
// sleeps are wrapped in spans; when absent, tracing is silently disabled.
type Tracer interface {
	StartSpan(ctx context.Context, name, service string) (context.Context, Span)
}

// Span is a live trace span.
type Span interface {
	SetMetas(metas map[string]string)
	End()
}

// OTelTracer adapts an OpenTelemetry tracer to the Tracer interface.
type OTelTracer struct {
	tracer oteltrace.Tracer
}

var _ Tracer = (*OTelTracer)(nil)

// NewOTelTracer wraps the given OpenTelemetry tracer.
func NewOTelTracer(tracer oteltrace.Tracer) *OTelTracer {
	return &OTelTracer{tracer: tracer}
}

// StartSpan opens a span named name, tagged with the service name.
func (t *OTelTracer) StartSpan(ctx context.Context, name, service string) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name,
		oteltrace.WithAttributes(attribute.String("service.name", service)))
	return ctx, &otelSpan{span: span}
}

type otelSpan struct {
	span oteltrace.Span
}

func (s *otelSpan) SetMetas(metas map[string]string) {
	attrs := make([]attribute.KeyValue, 0, len(metas))
	for key, value := range metas {
		attrs = append(attrs, attribute.String(key, value))
	}
	s.span.SetAttributes(attrs...)
}

func (s *otelSpan) End() {
	s.span.End()
}
