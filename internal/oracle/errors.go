package oracle

import (
	"errors"
	"fmt"
)

// Oracle errors. Callers usually only log these; a failed call means the
// oracle offered no judgment.
var (
	// ErrUnavailable is returned when no oracle is configured.
	ErrUnavailable = errors.New("oracle is not available")

	// ErrMissingAPIKey is returned by NewClient when the API key is empty.
	ErrMissingAPIKey = errors.New("oracle API key is empty")

	// ErrEmptyResponse is returned when the service answered without any
	// completion text.
	ErrEmptyResponse = errors.New("oracle returned an empty response")

	// ErrInvalidProxyAddress is returned when the proxy address is not in
	// "host:port" form.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	// Code is the HTTP status code.
	Code int

	// Body is the beginning of the response body.
	Body string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("oracle returned status %d: %s", e.Code, e.Body)
}
