package crawler

import (
	"errors"
	"fmt"
)

// Sentinel errors for the crawler package.
// Typed errors below match these with errors.Is.
var (
	// ErrFetch indicates that a page could not be retrieved.
	ErrFetch = errors.New("page fetch failed")

	// ErrProbe indicates that the existence probe of an identifier failed.
	ErrProbe = errors.New("probe failed")

	// ErrPaginationParse indicates that the pagination control was found but
	// its text is not a page number.
	ErrPaginationParse = errors.New("pagination control is not a number")

	// ErrExtractionMismatch indicates that a page had a different number of
	// single-core and multi-core figures.
	ErrExtractionMismatch = errors.New("score count mismatch")

	// ErrExtractionParse indicates that a score figure is not a valid number.
	ErrExtractionParse = errors.New("invalid score figure")

	// ErrInvalidBaseURL indicates that the listing endpoint is not an absolute
	// http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid base URL")

	// ErrInvalidSelector indicates that a configured CSS selector does not compile.
	ErrInvalidSelector = errors.New("invalid CSS selector")

	// ErrUnexpectedStatus indicates a non-2xx response.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
)

// FetchError describes a failed page retrieval.
type FetchError struct {
	// URL is the page that was requested.
	URL string

	// StatusCode is the final HTTP status, or 0 when no response arrived.
	StatusCode int

	// Err is the transport error or ErrUnexpectedStatus.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrFetch.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// ProbeError describes a failed existence probe.
type ProbeError struct {
	// Identifier is the identifier that was probed.
	Identifier string

	// Err is a *FetchError or ErrPaginationParse.
	Err error
}

// Error implements the error interface.
func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %q: %v", e.Identifier, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProbeError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrProbe.
func (e *ProbeError) Is(target error) bool {
	return target == ErrProbe
}

// ExtractionMismatchError reports unequal single-core and multi-core counts.
type ExtractionMismatchError struct {
	SingleCore int
	MultiCore  int
}

// Error implements the error interface.
func (e *ExtractionMismatchError) Error() string {
	return fmt.Sprintf("%v: %d single-core vs %d multi-core figures",
		ErrExtractionMismatch, e.SingleCore, e.MultiCore)
}

// Is reports whether target is ErrExtractionMismatch.
func (e *ExtractionMismatchError) Is(target error) bool {
	return target == ErrExtractionMismatch
}

// ExtractionParseError reports a score figure that is not an unsigned 32-bit number.
type ExtractionParseError struct {
	// Field is "single-core" or "multi-core".
	Field string

	// Index is the position of the figure in document order.
	Index int

	// Value is the trimmed text that failed to parse.
	Value string

	// Err is the strconv error.
	Err error
}

// Error implements the error interface.
func (e *ExtractionParseError) Error() string {
	return fmt.Sprintf("%v: %s figure #%d %q: %v", ErrExtractionParse, e.Field, e.Index, e.Value, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExtractionParseError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrExtractionParse.
func (e *ExtractionParseError) Is(target error) bool {
	return target == ErrExtractionParse
}
