package store

import "errors"

var (
	// ErrNotFound is returned when a requested row does not exist. For key
	// lookups absence is a normal outcome, not a failure.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an insert violates a uniqueness
	// constraint (duplicate key secret, email, ...).
	ErrConflict = errors.New("already exists")
)
