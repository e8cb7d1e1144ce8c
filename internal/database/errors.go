package database

import "errors"

// Score cache errors.
// Every error returned by ScoreDB wraps exactly one of the first three
// sentinels so callers can tell the failure class with errors.Is.
var (
	// ErrStoreUnavailable is returned when the database cannot be opened or queried.
	ErrStoreUnavailable = errors.New("score store unavailable")

	// ErrStoreWrite is returned when score pairs cannot be written.
	ErrStoreWrite = errors.New("score store write failed")

	// ErrStoreRead is returned when a series cannot be read back.
	ErrStoreRead = errors.New("score store read failed")

	// ErrSeriesNotFound is returned together with ErrStoreRead when the
	// requested key has never been created.
	ErrSeriesNotFound = errors.New("series not found")
)
