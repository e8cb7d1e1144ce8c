package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIdentifierNotFound indicates that one or more identifiers have no
// results on the remote source.
var ErrIdentifierNotFound = errors.New("identifier not found")

// NotFoundError lists every identifier that the probe phase found absent.
// It is raised before anything is fetched or written.
type NotFoundError struct {
	Identifiers []string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	quoted := make([]string, len(e.Identifiers))
	for i, id := range e.Identifiers {
		quoted[i] = fmt.Sprintf("%q", id)
	}
	return fmt.Sprintf("%v: %s", ErrIdentifierNotFound, strings.Join(quoted, ", "))
}

// Is reports whether target is ErrIdentifierNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrIdentifierNotFound
}

// TargetError ties a failure to the identifier and step that produced it.
type TargetError struct {
	Identifier string
	Step       string
	Err        error
}

// Error implements the error interface.
func (e *TargetError) Error() string {
	return fmt.Sprintf("%q: %s: %v", e.Identifier, e.Step, e.Err)
}

// Unwrap returns the underlying error.
func (e *TargetError) Unwrap() error {
	return e.Err
}
