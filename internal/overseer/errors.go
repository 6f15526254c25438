package overseer

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a protocol failure: the Overseer answered with a non-2xx
// status. Message carries the server-supplied error detail when the body
// was parseable.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("overseer: %s", http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("overseer: %s: %s", http.StatusText(e.StatusCode), e.Message)
}

// TransportError is a network-level failure: timeout, connection refused,
// DNS failure. Distinguished from APIError so callers can decide whether
// a retry makes sense.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("overseer: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsConflict reports whether err is an APIError with status 409, the
// Overseer's answer to a duplicate satellite name.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
