package session

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	nethttp "net/http"
	"net/url"
	"os"
	"time"

	"github.com/gaborage/go-courier/trace"
)

// CallParams are the fully resolved transport parameters for one attempt.
type CallParams struct {
	Method  string
	URL     string
	Query   url.Values
	Headers map[string]string
	Body    []byte
	Auth    *BasicAuth
	Timeout time.Duration
}

// String renders the parameters for verbose logging.
func (p *CallParams) String() string {
	target := p.URL
	if len(p.Query) > 0 {
		target += "?" + p.Query.Encode()
	}
	return p.Method + " " + target
}

// Transport performs a single HTTP exchange. Implementations translate
// transport failures into the typed errors of this package: a returned
// error is always a timeout, connection, HTTP status, or request error.
// Responses with status >= 400 are returned together with an HTTP error.
type Transport interface {
	Send(ctx context.Context, p *CallParams) (*Response, error)
	Close()
}

// httpTransport implements Transport on a dedicated net/http client so
// that rotating a session discards its whole connection pool.
type httpTransport struct {
	client    *nethttp.Client
	userAgent string
}

func newHTTPTransport(cfg *Config, userAgent string) (Transport, error) {
	tlsConfig := &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify} //nolint:gosec // caller opted out explicitly
	if cfg.CABundle != "" {
		pem, err := os.ReadFile(cfg.CABundle)
		if err != nil {
			return nil, NewConfigurationError("CA bundle is not readable: " + err.Error())
		}
		roots := x509.NewCertPool()
		if !roots.AppendCertsFromPEM(pem) {
			return nil, NewConfigurationError("CA bundle contains no certificates")
		}
		tlsConfig.RootCAs = roots
	}

	transport := &nethttp.Transport{
		TLSClientConfig:     tlsConfig,
		MaxIdleConnsPerHost: 8,
	}
	if cfg.ConnectTimeout > 0 {
		dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
		transport.DialContext = dialer.DialContext
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &httpTransport{
		client: &nethttp.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		userAgent: userAgent,
	}, nil
}

// Send executes one HTTP exchange and converts the outcome into a
// Response and a typed error.
func (t *httpTransport) Send(ctx context.Context, p *CallParams) (*Response, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	req, err := t.buildRequest(ctx, p)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, t.classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewConnectionError("failed to read response body", err)
	}

	response := &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Headers:    resp.Header,
		Stats:      Stats{ElapsedTime: time.Since(start)},
	}

	if resp.StatusCode >= 400 {
		return response, NewHTTPError(resp.StatusCode, p.URL, response)
	}
	return response, nil
}

// Close discards the transport's idle connections.
func (t *httpTransport) Close() {
	t.client.CloseIdleConnections()
}

func (t *httpTransport) buildRequest(ctx context.Context, p *CallParams) (*nethttp.Request, error) {
	target := p.URL
	if len(p.Query) > 0 {
		target += "?" + p.Query.Encode()
	}

	var body io.Reader = nethttp.NoBody
	if len(p.Body) > 0 {
		body = bytes.NewReader(p.Body)
	}

	req, err := nethttp.NewRequestWithContext(ctx, p.Method, target, body)
	if err != nil {
		return nil, NewRequestError("failed to build request", err)
	}

	for key, value := range p.Headers {
		req.Header.Set(key, value)
	}
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if p.Auth != nil {
		req.SetBasicAuth(p.Auth.Username, p.Auth.Password)
	}

	// Correlation headers: reuse the caller's IDs, generate when absent.
	if req.Header.Get(trace.HeaderXRequestID) == "" {
		req.Header.Set(trace.HeaderXRequestID, trace.EnsureRequestID(ctx))
	}
	if tp, ok := trace.ParentFromContext(ctx); ok && req.Header.Get(trace.HeaderTraceParent) == "" {
		req.Header.Set(trace.HeaderTraceParent, tp)
	}

	return req, nil
}

// classifyTransportError maps a net/http failure to a typed error:
// deadline and net timeouts become timeout errors, socket-level failures
// become connection errors, anything else a request error.
func (t *httpTransport) classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("request timed out", t.client.Timeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewTimeoutError("request timed out", t.client.Timeout, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return NewConnectionError("connection failed", err)
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return NewConnectionError("connection closed by peer", err)
	}
	return NewRequestError("request execution failed", err)
}
