package session

import (
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
		want       Verdict
	}{
		{"timeout", NewTimeoutError("slow", time.Second, nil), 0, ServerFault},
		{"connection failure", NewConnectionError("refused", nil), 0, ServerFault},
		{"request exception", NewRequestError("broken", nil), 0, ServerFault},
		{"http 500", NewHTTPError(500, "http://x", nil), 500, ServerFault},
		{"http 503", NewHTTPError(503, "http://x", nil), 503, ServerFault},
		{"http 408", NewHTTPError(408, "http://x", nil), 408, ServerFault},
		{"http 400", NewHTTPError(400, "http://x", nil), 400, ClientFault},
		{"http 404", NewHTTPError(404, "http://x", nil), 404, ClientFault},
		{"http 429", NewHTTPError(429, "http://x", nil), 429, ClientFault},
		{"http error without status", NewHTTPError(500, "http://x", nil), 0, ServerFault},
		{"timeout with stale 4xx status", NewTimeoutError("slow", time.Second, nil), 404, ServerFault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err, tt.statusCode))
		})
	}
}

func TestIsServerErrorWithRetriableClientErrors(t *testing.T) {
	s := &session{config: &Config{RetriableClientErrors: []int{429, 425}}}

	assert.True(t, s.isServerError(NewHTTPError(429, "http://x", nil), 429))
	assert.True(t, s.isServerError(NewHTTPError(425, "http://x", nil), 425))
	assert.True(t, s.isServerError(NewHTTPError(408, "http://x", nil), 408))
	assert.False(t, s.isServerError(NewHTTPError(404, "http://x", nil), 404))
	assert.False(t, s.isServerError(NewHTTPError(400, "http://x", nil), 400))
}

func TestErrorCategory(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", NewTimeoutError("slow", time.Second, nil), "read_timeout"},
		{"http", NewHTTPError(500, "http://x", nil), "http_error"},
		{"connection", NewConnectionError("refused", nil), "connection_error"},
		{"request", NewRequestError("broken", nil), "request_exception"},
		{"untyped", errors.New("plain"), "request_exception"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorCategory(tt.err))
		})
	}
}

func TestIsConnReset(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"econnreset errno", NewConnectionError("read tcp", syscall.ECONNRESET), true},
		{"peer reset message", NewConnectionError("read tcp 10.0.0.1:443", fmt.Errorf("connection reset by peer")), true},
		{"econnreset message", NewConnectionError("proxy", fmt.Errorf("ECONNRESET")), true},
		{"plain connection error", NewConnectionError("refused", nil), false},
		{"timeout with reset message", NewTimeoutError("connection reset by peer", time.Second, nil), false},
		{"http error", NewHTTPError(500, "http://x", nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isConnReset(tt.err))
		})
	}
}
