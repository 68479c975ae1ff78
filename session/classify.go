package session

import (
	"errors"
	nethttp "net/http"
	"strings"
	"syscall"
)

// Verdict is the retry decision for a failed attempt.
type Verdict string

const (
	// ServerFault marks a transient failure eligible for retry.
	ServerFault Verdict = "server_error"
	// ClientFault marks a request the server rejected; retrying cannot help.
	ClientFault Verdict = "client_error"
)

// Classify maps a transport error and status code to a retry verdict.
// It is a pure function: non-HTTP transport failures are always server
// faults, and so is any HTTP status outside 4xx. Within 4xx only 408 is
// treated as transient. A missing status code (zero) with an HTTP error
// fails open toward retrying.
func Classify(err error, statusCode int) Verdict {
	if !IsErrorType(err, TypeHTTP) {
		return ServerFault
	}
	if statusCode >= 400 && statusCode < 500 && statusCode != nethttp.StatusRequestTimeout {
		return ClientFault
	}
	return ServerFault
}

// isServerError applies Classify plus the configured retriable client
// error list. The listed codes are additive: 408 stays retryable.
func (s *session) isServerError(err error, statusCode int) bool {
	if Classify(err, statusCode) == ServerFault {
		return true
	}
	return s.retryOnClientError(statusCode)
}

// retryOnClientError reports whether the 4xx status was opted into retry.
func (s *session) retryOnClientError(statusCode int) bool {
	if statusCode < 400 || statusCode >= 500 {
		return false
	}
	for _, code := range s.config.RetriableClientErrors {
		if code == statusCode {
			return true
		}
	}
	return false
}

// errorCategory derives the telemetry label for a failed attempt from the
// type of the caught error.
func errorCategory(err error) string {
	var sessionErr Error
	if errors.As(err, &sessionErr) {
		switch sessionErr.Type() {
		case TypeTimeout:
			return string(TypeTimeout)
		case TypeHTTP:
			return string(TypeHTTP)
		case TypeConnection:
			return string(TypeConnection)
		}
	}
	return string(TypeRequest)
}

// connResetSignatures are the substrings identifying a peer-reset failure.
var connResetSignatures = []string{"ECONNRESET", "connection reset by peer"}

// isConnReset reports whether the failure is a connection error caused by
// the peer resetting the connection.
func isConnReset(err error) bool {
	if !IsErrorType(err, TypeConnection) {
		return false
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	msg := err.Error()
	for _, sig := range connResetSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}
