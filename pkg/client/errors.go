package client

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSession is returned when no valid access token can be obtained.
	// Callers must abort the request chain in progress.
	ErrNoSession = errors.New("no valid session")
	// ErrNoPatients is returned when the followed-patient list is empty.
	ErrNoPatients = errors.New("followed patient list is empty")
	// ErrMissingField is returned when a required response field is absent.
	ErrMissingField = errors.New("missing required field")
	// ErrMalformedEvent is returned when a glucose event cannot be normalized.
	ErrMalformedEvent = errors.New("malformed glucose event")
)

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}
