package model

import (
	"errors"
	"fmt"
)

// State is the acquisition state of one identifier during a run.
type State int

const (
	// StateInit is the state of a freshly created target.
	StateInit State = iota

	// StateCacheCheck means the local cache is being consulted.
	StateCacheCheck

	// StateProbing means the remote source is being asked for the identifier.
	StateProbing

	// StateNotFound is terminal: the identifier does not exist remotely.
	StateNotFound

	// StateFetching means listing pages are being downloaded.
	StateFetching

	// StateExtracting means downloaded pages are being parsed.
	StateExtracting

	// StatePersisting means extracted pairs are being written to the cache.
	StatePersisting

	// StateLoaded is terminal: the series is available for rendering.
	StateLoaded
)

// String returns the state name used in logs and errors.
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateCacheCheck:
		return "cache_check"
	case StateProbing:
		return "probing"
	case StateNotFound:
		return "not_found"
	case StateFetching:
		return "fetching"
	case StateExtracting:
		return "extracting"
	case StatePersisting:
		return "persisting"
	case StateLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is allowed from s.
func (s State) Terminal() bool {
	return s == StateNotFound || s == StateLoaded
}

// transitions lists the allowed edges of the per-identifier state machine.
// A cache hit goes straight from CacheCheck to Loaded.
var transitions = map[State][]State{
	StateInit:       {StateCacheCheck},
	StateCacheCheck: {StateLoaded, StateProbing},
	StateProbing:    {StateNotFound, StateFetching},
	StateFetching:   {StateExtracting},
	StateExtracting: {StatePersisting},
	StatePersisting: {StateLoaded},
}

// ErrInvalidTransition is returned when a target is moved along an edge the
// state machine does not allow.
var ErrInvalidTransition = errors.New("invalid state transition")

// Target is the run state of one requested identifier.
// Targets are created from the command line input and discarded at exit.
type Target struct {
	// Identifier is the free-text label as supplied by the user.
	Identifier string

	// Key is the normalized storage key derived from Identifier.
	Key string

	// Cached records whether Key is present in the local cache.
	Cached Existence

	// Remote records whether Identifier exists on the remote source.
	// It stays Unknown for cache hits, which are never probed.
	Remote Existence

	// PageCount is the number of listing pages available remotely.
	PageCount int

	// Pages holds downloaded listing pages ordered by page number.
	// Pages[0] is the first page, retained from probing.
	Pages [][]byte

	// Pairs holds the score pairs extracted or loaded for this target.
	Pairs []ScorePair

	// Persisted is true when this target's pairs were written to the cache
	// during the run.
	Persisted bool

	// State is the current acquisition state.
	State State
}

// NewTarget creates a target in StateInit.
func NewTarget(identifier, key string) *Target {
	return &Target{
		Identifier: identifier,
		Key:        key,
		State:      StateInit,
	}
}

// Transition moves the target to next, or returns ErrInvalidTransition.
func (t *Target) Transition(next State) error {
	for _, allowed := range transitions[t.State] {
		if allowed == next {
			t.State = next
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.State, next)
}

// CacheHit reports whether the target was found in the local cache.
func (t *Target) CacheHit() bool {
	return t.Cached == ExistencePresent
}

// Series builds the renderable series for this target.
func (t *Target) Series() *Series {
	return NewSeries(t.Identifier, t.Key, t.Pairs)
}
