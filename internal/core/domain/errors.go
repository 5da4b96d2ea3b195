package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyRequest indicates nothing was left of a request after cleaning.
	ErrEmptyRequest = errors.New("empty request")
	// ErrParseAmbiguous marks a request where no artist could be separated
	// from the title. It is informational, never fatal.
	ErrParseAmbiguous = errors.New("request is ambiguous")
	ErrQueryExhausted = errors.New("all queries exhausted")
	ErrNoViableMatch  = errors.New("no viable match")
	ErrCatalogFatal   = errors.New("catalog failure")
	// ErrNotFound is returned by journal readers.
	ErrNotFound = errors.New("not found")
)

// QueryExhaustedError reports that every query failed or came back empty.
type QueryExhaustedError struct {
	Queries []string
}

func (e *QueryExhaustedError) Error() string {
	if len(e.Queries) == 0 {
		return ErrQueryExhausted.Error()
	}
	return fmt.Sprintf("%s: tried %s", ErrQueryExhausted, quoteAll(e.Queries))
}

func (e *QueryExhaustedError) Is(target error) bool {
	return target == ErrQueryExhausted
}

// NoViableMatchError reports that results came back but none scored high enough.
type NoViableMatchError struct {
	Title   string
	Artist  string
	Queries []string
}

func (e *NoViableMatchError) Error() string {
	if e.Title == "" && e.Artist == "" {
		return ErrNoViableMatch.Error()
	}
	return fmt.Sprintf("no viable match found for title %q artist %q", e.Title, e.Artist)
}

func (e *NoViableMatchError) Is(target error) bool {
	return target == ErrNoViableMatch
}

// CatalogFatalError wraps a non-retryable catalog failure.
type CatalogFatalError struct {
	Query   string
	Queries []string
	Err     error
}

func (e *CatalogFatalError) Error() string {
	return fmt.Sprintf("%s on query %q: %v", ErrCatalogFatal, e.Query, e.Err)
}

func (e *CatalogFatalError) Is(target error) bool {
	return target == ErrCatalogFatal
}

func (e *CatalogFatalError) Unwrap() error {
	return e.Err
}

func quoteAll(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}
