package ura

import (
	"fmt"
	"net/http"
)

// Fetch failures are typed so callers can tell a bad stop name from a
// broken endpoint. Malformed bodies surface as *parse.FormatError,
// wrapped with fetch context.

// UnknownStopError means the source rejected the stop point name the
// request filtered on.
type UnknownStopError struct {
	StopPointName string
}

func (e *UnknownStopError) Error() string {
	return fmt.Sprintf("unknown stop point %q", e.StopPointName)
}

// UnexpectedStatusError means the source answered with a status the
// instant interface gives no meaning for this request.
type UnexpectedStatusError struct {
	StatusCode int
}

func (e *UnexpectedStatusError) Error() string {
	if text := http.StatusText(e.StatusCode); text != "" {
		return fmt.Sprintf("unexpected status %d %s", e.StatusCode, text)
	}
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// TransportError is a failure below the status line: dial errors,
// timeouts, a malformed endpoint URL.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }
