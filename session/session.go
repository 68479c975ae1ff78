package session

import (
	"context"
	nethttp "net/http"

	"github.com/gaborage/go-courier/logger"
	"github.com/gaborage/go-courier/metrics"
)

// session is the concrete Session implementation. All fields are set at
// build time and never mutated afterwards; the pool carries the only
// mutable state.
type session struct {
	config           *Config
	raiseForStatus   bool
	logPrefix        string
	userAgent        string
	log              logger.Logger
	sink             metrics.Sink
	tracer           Tracer
	reporter         Reporter
	pool             *pool
	transportFactory func() (Transport, error)
}

var _ Session = (*session)(nil)

// Builder assembles a Session from a Config and optional collaborators.
// Collaborators left unset fall back to no-op implementations, except the
// tracer, which stays absent.
type Builder struct {
	config           *Config
	log              logger.Logger
	sink             metrics.Sink
	tracer           Tracer
	reporter         Reporter
	transportFactory func() (Transport, error)
}

// NewBuilder starts building a Session around the given configuration.
func NewBuilder(cfg *Config) *Builder {
	return &Builder{config: cfg}
}

// WithLogger sets the structured logger used for request telemetry.
func (b *Builder) WithLogger(log logger.Logger) *Builder {
	b.log = log
	return b
}

// WithMetrics sets the sink receiving request counters and timers.
func (b *Builder) WithMetrics(sink metrics.Sink) *Builder {
	b.sink = sink
	return b
}

// WithTracer sets the tracer wrapping retry sleeps in spans.
func (b *Builder) WithTracer(tracer Tracer) *Builder {
	b.tracer = tracer
	return b
}

// WithReporter sets the destination for captured client errors.
func (b *Builder) WithReporter(reporter Reporter) *Builder {
	b.reporter = reporter
	return b
}

// WithTransportFactory overrides how transport sessions are created. Used
// in tests to substitute a fake transport.
func (b *Builder) WithTransportFactory(factory func() (Transport, error)) *Builder {
	b.transportFactory = factory
	return b
}

// Build validates the configuration and returns a ready Session with its
// first transport session already created.
func (b *Builder) Build() (Session, error) {
	cfg := b.config
	if cfg == nil {
		return nil, NewConfigurationError("configuration is required")
	}
	if cfg.MaxRetries < 0 {
		return nil, NewConfigurationError("max retries must not be negative")
	}
	if cfg.TraceServiceName != "" && b.tracer == nil {
		return nil, NewConfigurationError("trace service name requires a tracer")
	}

	userAgent := cfg.UserAgent
	if userAgent == "" && cfg.UserAgentComponents != nil {
		formatted, err := cfg.UserAgentComponents.Format()
		if err != nil {
			return nil, err
		}
		userAgent = formatted
	}

	s := &session{
		config:         cfg,
		raiseForStatus: cfg.RaiseForStatus == nil || *cfg.RaiseForStatus,
		logPrefix:      cfg.LogPrefix,
		userAgent:      userAgent,
		log:            b.log,
		sink:           b.sink,
		tracer:         b.tracer,
		reporter:       b.reporter,
	}
	if s.logPrefix == "" {
		s.logPrefix = DefaultLogPrefix
	}
	if s.log == nil {
		s.log = logger.NewNoop()
	}
	if s.sink == nil {
		s.sink = metrics.NewNoop()
	}
	if s.reporter == nil {
		s.reporter = NewNoopReporter()
	}

	s.transportFactory = b.transportFactory
	if s.transportFactory == nil {
		s.transportFactory = func() (Transport, error) {
			return newHTTPTransport(cfg, userAgent)
		}
	}

	s.pool = newPool(s.transportFactory)
	if _, err := s.pool.acquire(); err != nil {
		return nil, err
	}
	return s, nil
}

// New builds a Session with default collaborators. Shorthand for
// NewBuilder(cfg).Build().
func New(cfg *Config) (Session, error) {
	return NewBuilder(cfg).Build()
}

func (s *session) Get(ctx context.Context, req *Request) (*Response, error) {
	return s.Do(ctx, nethttp.MethodGet, req)
}

func (s *session) Post(ctx context.Context, req *Request) (*Response, error) {
	return s.Do(ctx, nethttp.MethodPost, req)
}

func (s *session) Put(ctx context.Context, req *Request) (*Response, error) {
	return s.Do(ctx, nethttp.MethodPut, req)
}

func (s *session) Patch(ctx context.Context, req *Request) (*Response, error) {
	return s.Do(ctx, nethttp.MethodPatch, req)
}

func (s *session) Delete(ctx context.Context, req *Request) (*Response, error) {
	return s.Do(ctx, nethttp.MethodDelete, req)
}

// Close tears down every transport session tracked by the pool.
func (s *session) Close() {
	s.pool.closeAll()
}
