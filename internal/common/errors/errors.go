// Package errors provides standardized error handling for the gateway console.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// ErrCodeSessionExpired is raised exclusively on HTTP 401. The session
	// store is cleared before the error is returned; re-login is the only
	// recovery.
	ErrCodeSessionExpired ErrorCode = "SESSION_EXPIRED"

	// ErrCodeRequestFailed covers every other non-2xx response.
	ErrCodeRequestFailed ErrorCode = "REQUEST_FAILED"

	// ErrCodeDecodeFailed means a 2xx body matched neither the data
	// envelope nor the expected payload shape.
	ErrCodeDecodeFailed ErrorCode = "DECODE_FAILED"

	// ErrCodeNetwork covers transport-level failures (DNS, connection
	// refused, timeout) where no HTTP response was received.
	ErrCodeNetwork ErrorCode = "NETWORK_ERROR"

	ErrCodeSessionStore     ErrorCode = "SESSION_STORE_ERROR"
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"statusCode,omitempty"`
	Retryable  bool      `json:"retryable"`
	Timestamp  time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewSessionExpiredError creates the non-retryable 401 error.
func NewSessionExpiredError(action string) *StandardError {
	return &StandardError{
		Code:       ErrCodeSessionExpired,
		Message:    "Session expired, please log in again",
		Details:    fmt.Sprintf("action: %s", action),
		StatusCode: http.StatusUnauthorized,
		Retryable:  false,
		Timestamp:  time.Now().UTC(),
	}
}

// NewRequestFailedError creates a non-retryable API error. The message is
// the server-provided one when present, otherwise a synthesized
// "<action> failed: <status>" string.
func NewRequestFailedError(action string, statusCode int, serverMessage string) *StandardError {
	msg := serverMessage
	if msg == "" {
		msg = fmt.Sprintf("%s failed: %d", action, statusCode)
	}
	return &StandardError{
		Code:       ErrCodeRequestFailed,
		Message:    msg,
		Details:    fmt.Sprintf("action: %s, status: %d", action, statusCode),
		StatusCode: statusCode,
		Retryable:  false,
		Timestamp:  time.Now().UTC(),
	}
}

// NewDecodeError creates a non-retryable response decoding error.
func NewDecodeError(action string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDecodeFailed,
		Message:   "Unexpected response shape",
		Details:   fmt.Sprintf("action: %s, error: %s", action, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNetworkError creates a retryable transport error. Nothing retries it
// automatically; the flag tells the caller a repeat attempt may succeed.
func NewNetworkError(action string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNetwork,
		Message:   "Request could not reach the gateway API",
		Details:   fmt.Sprintf("action: %s, error: %s", action, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStoreError creates a retryable session storage error.
func NewSessionStoreError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStore,
		Message:   "Session store operation failed",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError creates a non-retryable input validation error.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsCode reports whether err is a StandardError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code == code
	}
	return false
}

// IsSessionExpired reports whether err is the 401 session error.
func IsSessionExpired(err error) bool {
	return IsCode(err, ErrCodeSessionExpired)
}

// ExtractCode returns the error code, or UNKNOWN_ERROR for foreign errors.
func ExtractCode(err error) string {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return string(stdErr.Code)
	}
	return "UNKNOWN_ERROR"
}
