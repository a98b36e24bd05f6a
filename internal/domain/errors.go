package domain

import "fmt"

// TransportError is an HTTP failure or non-OK status while calling an outlet.
type TransportError struct {
	Outlet     string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: GET %s: unexpected status %d", e.Outlet, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: GET %s: %v", e.Outlet, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Retryable reports whether repeating the request may succeed.
func (e *TransportError) Retryable() bool {
	if e.StatusCode == 0 {
		return true
	}
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// ParseError is a malformed JSON or CSV payload.
type ParseError struct {
	Outlet string
	URL    string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse %s: %v", e.Outlet, e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PersistenceError is an unreadable or corrupt state file.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("state %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// EnrichmentFailure means an image could not be resolved for URL.
type EnrichmentFailure struct {
	URL      string
	Attempts int
	Err      error
}

func (e *EnrichmentFailure) Error() string {
	return fmt.Sprintf("resolve image for %s after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *EnrichmentFailure) Unwrap() error { return e.Err }
