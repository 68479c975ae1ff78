// Package session implements an HTTP client convenience layer: a retry and
// telemetry state machine wrapped around a pool of transport sessions.
//
// Every outbound call runs through the same attempt loop: send, classify
// the outcome, emit metrics and logs, then retry, return, or fail. Server
// errors (timeouts, connection failures, 5xx, 408) are retried up to the
// configured budget; client errors (other 4xx) never are. A connection
// reset by peer additionally rotates the underlying transport session and
// grants one bonus attempt outside the retry budget.
package session

import (
	"context"
	nethttp "net/http"
	"net/url"
	"time"

	"github.com/gaborage/go-courier/metrics"
)

const (
	// DefaultTimeout is the per-attempt timeout used when none is configured.
	DefaultTimeout = 10 * time.Second

	// DefaultLogPrefix namespaces emitted log event names.
	DefaultLogPrefix = "courier"
)

// Session is the client interface for making HTTP requests with uniform
// retry, timeout, logging, and metrics behavior.
type Session interface {
	Get(ctx context.Context, req *Request) (*Response, error)
	Post(ctx context.Context, req *Request) (*Response, error)
	Put(ctx context.Context, req *Request) (*Response, error)
	Patch(ctx context.Context, req *Request) (*Response, error)
	Delete(ctx context.Context, req *Request) (*Response, error)
	Do(ctx context.Context, method string, req *Request) (*Response, error)

	// Close tears down every transport session tracked by the pool.
	Close()
}

// Config holds the long-lived client configuration. It is immutable after
// construction.
type Config struct {
	// Host is the base URL joined with request paths. When empty, paths are
	// used verbatim as full URLs.
	Host string

	// Timeout bounds each individual attempt. Defaults to DefaultTimeout.
	Timeout time.Duration
	// ConnectTimeout bounds connection establishment. Zero means the
	// Timeout applies to the whole attempt only.
	ConnectTimeout time.Duration

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool
	// CABundle is a path to a PEM bundle used instead of the system roots.
	CABundle string

	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int

	// VerboseLogging includes request parameters and response text in logs.
	VerboseLogging bool

	// Category is the default logical operation name used in metric and log
	// event names. Required per call when unset here.
	Category string

	// RaiseForStatus controls whether unrecovered failures return an error
	// (true, the default) or the last response with a nil error.
	RaiseForStatus *bool

	// LogPrefix namespaces log event names. Defaults to DefaultLogPrefix.
	LogPrefix string

	// Headers are applied to every request; per-request headers override.
	Headers map[string]string
	// Auth is the default basic-auth credential pair.
	Auth *BasicAuth

	// UserAgent is sent verbatim when set; it takes precedence over
	// UserAgentComponents.
	UserAgent string
	// UserAgentComponents formats a user-agent string at construction and
	// fails construction when the result is not valid.
	UserAgentComponents *UserAgentComponents

	// RetriableClientErrors lists additional 4xx status codes treated as
	// retryable, on top of the always-retryable 408.
	RetriableClientErrors []int

	// TraceServiceName, when set, requires a Tracer to be configured.
	TraceServiceName string
}

// Request carries per-invocation transport parameters and call options.
// Options left at their zero value inherit from the Config.
type Request struct {
	// Path is joined with Config.Host, or used verbatim when Host is empty.
	Path string

	Query   url.Values
	Headers map[string]string
	Body    []byte
	Auth    *BasicAuth
	// Timeout overrides Config.Timeout for this call.
	Timeout time.Duration

	// Category overrides Config.Category for this call.
	Category string
	// MaxRetries overrides Config.MaxRetries for this call.
	MaxRetries *int
	// Tags are appended to every metric and log emitted for this call.
	Tags []metrics.Tag
	// SleepBeforeRetry pauses between attempts.
	SleepBeforeRetry time.Duration
	// RaiseForStatus overrides Config.RaiseForStatus for this call.
	RaiseForStatus *bool
	// Report controls forwarding of client errors to the Reporter.
	// Defaults to true.
	Report *bool
}

// Response is the outcome of a completed call.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    nethttp.Header
	Stats      Stats
}

// Text returns the response body as a string, or "" for a nil response.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Body)
}

// Stats contains request execution statistics.
type Stats struct {
	// ElapsedTime is the duration of the final attempt.
	ElapsedTime time.Duration
	// Attempts is the 1-based number of transport attempts made.
	Attempts int
}

// BasicAuth contains basic authentication credentials.
type BasicAuth struct {
	Username string
	Password string
}
