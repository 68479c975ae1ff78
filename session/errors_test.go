package session

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTypes(t *testing.T) {
	resp := &Response{StatusCode: 503, Body: []byte("unavailable")}

	tests := []struct {
		name     string
		err      Error
		wantType ErrorType
		wantMsg  string
	}{
		{
			name:     "timeout",
			err:      NewTimeoutError("fetching bookings", 2*time.Second, nil),
			wantType: TypeTimeout,
			wantMsg:  "timeout error: fetching bookings (timeout: 2s)",
		},
		{
			name:     "connection",
			err:      NewConnectionError("dial failed", fmt.Errorf("refused")),
			wantType: TypeConnection,
			wantMsg:  "connection error: dial failed: refused",
		},
		{
			name:     "http",
			err:      NewHTTPError(503, "https://api.example.com/v1", resp),
			wantType: TypeHTTP,
			wantMsg:  "503 error for url https://api.example.com/v1",
		},
		{
			name:     "request",
			err:      NewRequestError("marshal failed", nil),
			wantType: TypeRequest,
			wantMsg:  "request error: marshal failed",
		},
		{
			name:     "configuration",
			err:      NewConfigurationError("category missing"),
			wantType: TypeConfiguration,
			wantMsg:  "configuration error: category missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type())
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.True(t, IsErrorType(tt.err, tt.wantType))
		})
	}
}

func TestIsErrorType(t *testing.T) {
	err := NewTimeoutError("slow", time.Second, nil)

	assert.True(t, IsErrorType(err, TypeTimeout))
	assert.False(t, IsErrorType(err, TypeConnection))
	assert.False(t, IsErrorType(nil, TypeTimeout))
	assert.False(t, IsErrorType(errors.New("plain"), TypeTimeout))

	wrapped := fmt.Errorf("call failed: %w", err)
	assert.True(t, IsErrorType(wrapped, TypeTimeout))
}

func TestClientErrorWrapsOriginal(t *testing.T) {
	resp := &Response{StatusCode: 404, Body: []byte("gone")}
	httpErr := NewHTTPError(404, "https://api.example.com/v1/bookings/9", resp)
	clientErr := NewClientError(httpErr, resp)

	assert.Equal(t, TypeClient, clientErr.Type())
	assert.True(t, errors.Is(clientErr, httpErr))

	code, ok := ErrorStatusCode(clientErr)
	require.True(t, ok)
	assert.Equal(t, 404, code)

	assert.Equal(t, "gone", errorResponse(clientErr).Text())
}

func TestErrorStatusCode(t *testing.T) {
	_, ok := ErrorStatusCode(NewConnectionError("refused", nil))
	assert.False(t, ok)

	code, ok := ErrorStatusCode(NewHTTPError(429, "http://x", nil))
	require.True(t, ok)
	assert.Equal(t, 429, code)
}

func TestErrorResponse(t *testing.T) {
	assert.Nil(t, errorResponse(NewTimeoutError("slow", time.Second, nil)))
	assert.Nil(t, errorResponse(nil))

	resp := &Response{StatusCode: 500, Body: []byte("boom")}
	assert.Equal(t, resp, errorResponse(NewHTTPError(500, "http://x", resp)))
}

func TestThirdPartyMarking(t *testing.T) {
	err := NewHTTPError(500, "http://x", nil)
	marked := markThirdParty(err)

	assert.True(t, IsThirdParty(marked))
	assert.False(t, IsThirdParty(err))
	assert.Nil(t, markThirdParty(nil))

	// Marking preserves the message and the typed chain.
	assert.Equal(t, err.Error(), marked.Error())
	assert.True(t, IsErrorType(marked, TypeHTTP))
	code, ok := ErrorStatusCode(marked)
	require.True(t, ok)
	assert.Equal(t, 500, code)
}

func TestUnwrapChains(t *testing.T) {
	cause := fmt.Errorf("socket closed")

	assert.True(t, errors.Is(NewConnectionError("read", cause), cause))
	assert.True(t, errors.Is(NewTimeoutError("slow", time.Second, cause), cause))
	assert.True(t, errors.Is(NewRequestError("build", cause), cause))
}
