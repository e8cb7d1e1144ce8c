package model

// Existence is the tri-state answer to "is it there?".
// It is tracked separately for the local cache and the remote source.
type Existence int

const (
	// ExistenceUnknown is the initial state before any check was made.
	ExistenceUnknown Existence = iota

	// ExistencePresent means the check confirmed presence.
	ExistencePresent

	// ExistenceAbsent means the check confirmed absence.
	ExistenceAbsent
)

// String returns a human-readable representation of the existence state.
func (e Existence) String() string {
	switch e {
	case ExistenceUnknown:
		return "unknown"
	case ExistencePresent:
		return "present"
	case ExistenceAbsent:
		return "absent"
	default:
		return "invalid"
	}
}

// ExistenceOf converts a boolean check result into an Existence.
func ExistenceOf(present bool) Existence {
	if present {
		return ExistencePresent
	}
	return ExistenceAbsent
}
