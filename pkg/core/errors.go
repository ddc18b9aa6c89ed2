// Package core holds the error taxonomy shared across the KAREN application.
package core

import (
	"errors"
	"fmt"
)

// Error is the typed error used at every failure boundary. User-visible
// handling is derived from Type, never from the message text.
type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Param   string    `json:"param,omitempty"`
	Code    string    `json:"code,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (code: %s)", e.Type, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error wrapping.
func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes errors.
type ErrorType string

const (
	// ErrInvalidRequest is a caller mistake: bad form input, a start on an
	// already-active session, an unknown id.
	ErrInvalidRequest ErrorType = "invalid_request_error"
	// ErrTransport is any remote call or streaming failure. It is always
	// recovered locally with a fallback message or a silent no-op.
	ErrTransport ErrorType = "transport_error"
	// ErrDeviceUnavailable means microphone capture could not be acquired.
	ErrDeviceUnavailable ErrorType = "device_unavailable"
	// ErrEncoding means transport-encoded data could not be decoded. The
	// offending chunk is dropped; playback scheduling is never interrupted.
	ErrEncoding ErrorType = "encoding_error"
	// ErrAPI is a generic remote API error.
	ErrAPI ErrorType = "api_error"
)

// NewInvalidRequestError creates an invalid request error.
func NewInvalidRequestError(message string) *Error {
	return &Error{Type: ErrInvalidRequest, Message: message}
}

// NewTransportError creates a transport error wrapping the underlying cause.
func NewTransportError(message string, cause error) *Error {
	return &Error{Type: ErrTransport, Message: message, Cause: cause}
}

// NewDeviceUnavailableError creates a device unavailable error.
func NewDeviceUnavailableError(message string, cause error) *Error {
	return &Error{Type: ErrDeviceUnavailable, Message: message, Cause: cause}
}

// NewEncodingError creates an encoding error.
func NewEncodingError(message string, cause error) *Error {
	return &Error{Type: ErrEncoding, Message: message, Cause: cause}
}

// NewInvalidRequestErrorWithParam creates an invalid request error with a parameter.
func NewInvalidRequestErrorWithParam(message, param string) *Error {
	return &Error{Type: ErrInvalidRequest, Message: message, Param: param}
}

// NewAPIError creates a generic API error.
func NewAPIError(message string) *Error {
	return &Error{Type: ErrAPI, Message: message}
}

// NewUpstreamError wraps a failure from the generative backend.
func NewUpstreamError(operation string, underlying error) *Error {
	return &Error{
		Type:    ErrAPI,
		Message: fmt.Sprintf("%s: %v", operation, underlying),
		Cause:   underlying,
	}
}

// IsType reports whether err is (or wraps) a core Error of the given type.
func IsType(err error, t ErrorType) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Type == t
	}
	return false
}
