package ports

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrTransientAuth marks a catalog failure that clears up on retry.
	ErrTransientAuth = errors.New("transient catalog auth failure")
	// ErrMalformedResponse marks a catalog response that could not be read.
	ErrMalformedResponse = errors.New("malformed catalog response")
)

// CatalogSearcher runs one free-text query against an external music
// catalog and returns its raw numbered result listing, one
// "<pos>. <title>-<artist>-<album>" line per candidate.
//
// Implementations classify failures with TransientAuthError and
// MalformedResponseError. Any other error is treated as fatal.
type CatalogSearcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// TransientAuthError indicates an expired or refreshing auth token.
type TransientAuthError struct {
	Query string
	Err   error
}

func (e *TransientAuthError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s for query %q", ErrTransientAuth, e.Query)
	}
	return fmt.Sprintf("%s for query %q: %v", ErrTransientAuth, e.Query, e.Err)
}

func (e *TransientAuthError) Is(target error) bool {
	return target == ErrTransientAuth
}

func (e *TransientAuthError) Unwrap() error {
	return e.Err
}

// MalformedResponseError indicates the catalog choked on the query text.
type MalformedResponseError struct {
	Query string
	Err   error
}

func (e *MalformedResponseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s for query %q", ErrMalformedResponse, e.Query)
	}
	return fmt.Sprintf("%s for query %q: %v", ErrMalformedResponse, e.Query, e.Err)
}

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
