package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	err := &Error{Type: ErrTransport, Message: "dial failed"}
	if got := err.Error(); got != "transport_error: dial failed" {
		t.Errorf("unexpected error string: %q", got)
	}

	err = &Error{Type: ErrInvalidRequest, Message: "bad form", Code: "form_invalid"}
	if got := err.Error(); got != "invalid_request_error: bad form (code: form_invalid)" {
		t.Errorf("unexpected error string: %q", got)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewTransportError("stream closed", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}

	wrapped := fmt.Errorf("session: %w", err)
	var ce *Error
	if !errors.As(wrapped, &ce) {
		t.Fatal("expected errors.As to find *core.Error")
	}
	if ce.Type != ErrTransport {
		t.Errorf("expected transport type, got %s", ce.Type)
	}
}

func TestIsType(t *testing.T) {
	err := fmt.Errorf("start: %w", NewDeviceUnavailableError("no microphone", nil))

	if !IsType(err, ErrDeviceUnavailable) {
		t.Error("expected device_unavailable match")
	}
	if IsType(err, ErrTransport) {
		t.Error("did not expect transport match")
	}
	if IsType(errors.New("plain"), ErrAPI) {
		t.Error("plain error should not match any type")
	}
}
