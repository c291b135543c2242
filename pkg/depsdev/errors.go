package depsdev

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for request validation and client lifecycle.
var (
	// ErrUnsupportedSystem is returned when a package system identifier is
	// not recognized, or not available for the requested operation.
	ErrUnsupportedSystem = errors.New("unsupported package system")

	// ErrUnsupportedHash is returned when a hash algorithm is not supported
	// by the query endpoint.
	ErrUnsupportedHash = errors.New("unsupported hash algorithm")

	// ErrBatchTooLarge is returned when a batch call exceeds
	// [MaxBatchRequests] entries.
	ErrBatchTooLarge = errors.New("too many batch requests")
)

// APIError is the terminal error surfaced by the fetch engine. It carries
// the HTTP status code when one was obtained and a human-readable message.
//
// Status is 0 for failures where no HTTP response was received (connection
// errors, timeouts). Use [APIError.HasStatus] to distinguish the two cases.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

// HasStatus reports whether the error carries an HTTP status code.
// Network-level failures have no status.
func (e *APIError) HasStatus() bool { return e.Status != 0 }

// IsNotFound reports whether the error is an HTTP 404 response.
func (e *APIError) IsNotFound() bool { return e.Status == http.StatusNotFound }

// AsAPIError extracts an *APIError from an error chain.
// Returns nil if err does not wrap an APIError.
func AsAPIError(err error) *APIError {
	var e *APIError
	if errors.As(err, &e) {
		return e
	}
	return nil
}
