package repositories

import "errors"

// Sentinel errors shared by all repository implementations. Callers match
// them with errors.Is; anything else is a store-level failure.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail indicates an account insert lost the race against a
	// concurrent insert with the same email. The store's unique index, not
	// the preceding lookup, is the authority on uniqueness.
	ErrDuplicateEmail = errors.New("email already registered")
)
