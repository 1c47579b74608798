package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrNoSession indicates the backend reported no authenticated session.
	// Callers treat this as a normal negative result, not a failure.
	ErrNoSession = errors.New("no active session")

	// ErrInvalidCredentials indicates a login or registration was rejected
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = errors.New("resource not found")
)

// FetchKind classifies a failed backend fetch.
type FetchKind int

const (
	// FetchTimeout means the deadline elapsed before a response arrived
	FetchTimeout FetchKind = iota
	// FetchTransport means the request failed before any response was received
	FetchTransport
	// FetchServer means the backend answered with a non-2xx status
	FetchServer
	// FetchMalformed means the response body could not be parsed
	FetchMalformed
)

// String returns a short diagnostic label for the kind.
func (k FetchKind) String() string {
	switch k {
	case FetchTimeout:
		return "timeout"
	case FetchTransport:
		return "transport"
	case FetchServer:
		return "server"
	case FetchMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// FetchError is a classified backend failure. The bootstrap coordinator
// collapses all kinds into a single boolean but logs the classification.
type FetchError struct {
	Kind   FetchKind
	Status int   // HTTP status for FetchServer, zero otherwise
	Err    error // Underlying cause
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error (status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// ClassifyFetch extracts the FetchError from err, if any.
func ClassifyFetch(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
