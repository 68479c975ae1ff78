package session

import (
	"errors"
	"fmt"
	"time"
)

// Error is the typed error contract for everything the session layer
// surfaces. Type identifies the failure category used in telemetry.
type Error interface {
	error
	Type() ErrorType
}

// ErrorType defines the category of a session error.
type ErrorType string

const (
	// TypeTimeout covers attempts that exceeded their deadline.
	TypeTimeout ErrorType = "read_timeout"
	// TypeHTTP covers responses with an error status code.
	TypeHTTP ErrorType = "http_error"
	// TypeConnection covers failures to establish or keep a connection.
	TypeConnection ErrorType = "connection_error"
	// TypeRequest covers any other transport-level failure.
	TypeRequest ErrorType = "request_exception"
	// TypeConfiguration covers invalid client configuration, detected
	// before any network I/O.
	TypeConfiguration ErrorType = "configuration_error"
	// TypeClient covers non-retryable 4xx failures surfaced to the caller.
	TypeClient ErrorType = "client_error"
)

// timeoutError represents an attempt that exceeded its deadline.
type timeoutError struct {
	message string
	timeout time.Duration
	wrapped error
}

func (e *timeoutError) Error() string {
	return fmt.Sprintf("timeout error: %s (timeout: %v)", e.message, e.timeout)
}

func (e *timeoutError) Type() ErrorType {
	return TypeTimeout
}

func (e *timeoutError) Unwrap() error {
	return e.wrapped
}

// connectionError represents a failure to establish or keep a connection.
type connectionError struct {
	message string
	wrapped error
}

func (e *connectionError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("connection error: %s: %v", e.message, e.wrapped)
	}
	return fmt.Sprintf("connection error: %s", e.message)
}

func (e *connectionError) Type() ErrorType {
	return TypeConnection
}

func (e *connectionError) Unwrap() error {
	return e.wrapped
}

// httpError represents a response with an error status code. It carries
// the response so callers and telemetry can inspect the body.
type httpError struct {
	statusCode int
	url        string
	response   *Response
}

func (e *httpError) Error() string {
	return fmt.Sprintf("%d error for url %s", e.statusCode, e.url)
}

func (e *httpError) Type() ErrorType {
	return TypeHTTP
}

func (e *httpError) StatusCode() int {
	return e.statusCode
}

func (e *httpError) Response() *Response {
	return e.response
}

// requestError represents any other transport-level failure.
type requestError struct {
	message string
	wrapped error
}

func (e *requestError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("request error: %s: %v", e.message, e.wrapped)
	}
	return fmt.Sprintf("request error: %s", e.message)
}

func (e *requestError) Type() ErrorType {
	return TypeRequest
}

func (e *requestError) Unwrap() error {
	return e.wrapped
}

// configurationError represents invalid client configuration.
type configurationError struct {
	message string
}

func (e *configurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.message)
}

func (e *configurationError) Type() ErrorType {
	return TypeConfiguration
}

// clientError wraps the original transport error for a non-retryable 4xx
// rejection.
type clientError struct {
	wrapped  error
	response *Response
}

func (e *clientError) Error() string {
	return fmt.Sprintf("client error: %v", e.wrapped)
}

func (e *clientError) Type() ErrorType {
	return TypeClient
}

func (e *clientError) Unwrap() error {
	return e.wrapped
}

func (e *clientError) Response() *Response {
	return e.response
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(message string, timeout time.Duration, wrapped error) Error {
	return &timeoutError{message: message, timeout: timeout, wrapped: wrapped}
}

// NewConnectionError creates a connection error.
func NewConnectionError(message string, wrapped error) Error {
	return &connectionError{message: message, wrapped: wrapped}
}

// NewHTTPError creates an HTTP status error carrying the failed response.
func NewHTTPError(statusCode int, url string, response *Response) Error {
	return &httpError{statusCode: statusCode, url: url, response: response}
}

// NewRequestError creates a generic transport error.
func NewRequestError(message string, wrapped error) Error {
	return &requestError{message: message, wrapped: wrapped}
}

// NewConfigurationError creates a configuration error.
func NewConfigurationError(message string) Error {
	return &configurationError{message: message}
}

// NewClientError creates a client error wrapping the original failure.
func NewClientError(wrapped error, response *Response) Error {
	return &clientError{wrapped: wrapped, response: response}
}

// IsErrorType checks whether err (or anything it wraps) is a session error
// of the given type.
func IsErrorType(err error, errorType ErrorType) bool {
	if err == nil {
		return false
	}
	var sessionErr Error
	if errors.As(err, &sessionErr) {
		return sessionErr.Type() == errorType
	}
	return false
}

// ErrorStatusCode extracts the HTTP status code from an error chain, if any.
func ErrorStatusCode(err error) (int, bool) {
	var httpErr *httpError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode(), true
	}
	return 0, false
}

// errorResponse returns the response attached to an error chain, if any.
func errorResponse(err error) *Response {
	var httpErr *httpError
	if errors.As(err, &httpErr) {
		return httpErr.Response()
	}
	var cliErr *clientError
	if errors.As(err, &cliErr) {
		return cliErr.Response()
	}
	return nil
}

// thirdPartyError marks a terminal failure as originating in a downstream
// service rather than this process, so error aggregation can triage it
// accordingly.
type thirdPartyError struct {
	wrapped error
}

func (e *thirdPartyError) Error() string {
	return e.wrapped.Error()
}

func (e *thirdPartyError) Unwrap() error {
	return e.wrapped
}

func markThirdParty(err error) error {
	if err == nil {
		return nil
	}
	return &thirdPartyError{wrapped: err}
}

// IsThirdParty reports whether the error was marked as third-party-sourced.
func IsThirdParty(err error) bool {
	var tp *thirdPartyError
	return errors.As(err, &tp)
}
