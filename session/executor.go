package session

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/gaborage/go-courier/metrics"
)

// Do runs the attempt loop for a single logical call: send, classify,
// emit telemetry, then retry, return, or fail.
//
// Server errors are retried until the retry budget is spent. Connection
// resets additionally rotate the transport session and extend the budget
// by one attempt each, capped at max(maxRuns, 2) resets. Client errors
// are reported and never retried.
func (s *session) Do(ctx context.Context, method string, req *Request) (*Response, error) {
	category := req.Category
	if category == "" {
		category = s.config.Category
	}
	if category == "" {
		return nil, NewConfigurationError("request category is required")
	}

	params := s.buildParams(method, req)
	raise := s.raiseForStatus
	if req.RaiseForStatus != nil {
		raise = *req.RaiseForStatus
	}
	report := req.Report == nil || *req.Report

	retries := s.config.MaxRetries
	if req.MaxRetries != nil {
		retries = *req.MaxRetries
	}

	// A connection reset grants a bonus attempt outside the retry budget,
	// even for a client configured with zero retries. The number of bonus
	// attempts is itself capped at max(maxRuns, 2).
	maxRuns := 1 + retries
	run, econnresetRetries := 0, 0

	var resp *Response
	for run < maxRuns+econnresetRetries {
		run++

		attemptResp, err := s.send(ctx, category, params, req.Tags)
		if attemptResp != nil {
			resp = attemptResp
		}
		if err == nil {
			resp.Stats.Attempts = run
			s.emitSuccess(ctx, category, params, resp, req.Tags, run)
			return resp, nil
		}

		statusCode := 0
		if resp != nil {
			statusCode = resp.StatusCode
		}
		connReset := isConnReset(err)

		if !connReset {
			s.emitFailure(ctx, category, params, err, req.Tags, statusCode, run)
		}

		if s.isServerError(err, statusCode) {
			if connReset {
				s.log.Info().Msg(s.eventName(category) + ".session_replace")
				s.rotateSession()
				econnresetRetries++
			}

			failedOnLastTry := run == maxRuns+econnresetRetries ||
				econnresetRetries == max(maxRuns, 2)
			if failedOnLastTry {
				if connReset {
					s.emitFailure(ctx, category, params, err, req.Tags, statusCode, run)
				}
				if raise {
					return nil, markThirdParty(err)
				}
				return resp, nil
			}
		} else {
			if report {
				var extra map[string]any
				if text := errorResponse(err).Text(); text != "" {
					extra = map[string]any{"response_text": text}
				}
				s.reporter.CaptureException(ctx, err, extra)
			}
			if raise {
				errResp := errorResponse(err)
				if errResp == nil {
					errResp = resp
				}
				return nil, NewClientError(err, errResp)
			}
			return resp, nil
		}

		if req.SleepBeforeRetry > 0 {
			s.sleep(ctx, req.SleepBeforeRetry, category, req.Tags)
		}
	}

	return nil, nil
}

// send performs one attempt on the current pool session, timing it under
// <category>.response_time. The timer records failed attempts too.
func (s *session) send(ctx context.Context, category string, params *CallParams, tags []metrics.Tag) (*Response, error) {
	conn, err := s.pool.acquire()
	if err != nil {
		return nil, err
	}

	stop := s.sink.Timer(ctx, category+".response_time", tags...)
	resp, err := conn.Send(ctx, params)
	stop()
	return resp, err
}

// rotateSession replaces the current transport session with a fresh one.
// A failed replacement leaves the pool empty; the next acquire retries
// the factory.
func (s *session) rotateSession() {
	conn, err := s.pool.acquire()
	if err != nil {
		return
	}
	if _, err := s.pool.rotate(conn); err != nil {
		s.log.Warn().Err(err).Msg(s.logPrefix + ".session_replace_failed")
	}
}

// sleep pauses before the next attempt. With a tracer configured the
// pause is wrapped in a span so retry gaps show up in traces.
func (s *session) sleep(ctx context.Context, d time.Duration, category string, tags []metrics.Tag) {
	if s.tracer == nil {
		time.Sleep(d)
		return
	}

	name := strings.ReplaceAll(category, ".", "_") + "_retry"
	metas := map[string]string{"request_category": category}
	for _, tag := range tags {
		metas[tag.Key] = tag.Value
	}

	_, span := s.tracer.StartSpan(ctx, name, "sleep")
	span.SetMetas(metas)
	time.Sleep(d)
	span.End()
}

// buildParams resolves per-call transport parameters against the
// session-wide configuration.
func (s *session) buildParams(method string, req *Request) *CallParams {
	headers := make(map[string]string, len(s.config.Headers)+len(req.Headers))
	for key, value := range s.config.Headers {
		headers[key] = value
	}
	for key, value := range req.Headers {
		headers[key] = value
	}

	auth := req.Auth
	if auth == nil {
		auth = s.config.Auth
	}

	timeout := req.Timeout
	if timeout == 0 {
		timeout = s.config.Timeout
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &CallParams{
		Method:  method,
		URL:     s.buildURL(req.Path),
		Query:   req.Query,
		Headers: headers,
		Body:    req.Body,
		Auth:    auth,
		Timeout: timeout,
	}
}

// buildURL joins the request path with the configured host. Paths are
// used verbatim when no host is configured.
func (s *session) buildURL(path string) string {
	if s.config.Host == "" {
		return path
	}
	joined, err := url.JoinPath(s.config.Host, path)
	if err != nil {
		return s.config.Host + "/" + strings.TrimPrefix(path, "/")
	}
	return joined
}
