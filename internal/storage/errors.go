package storage

import "errors"

// Snapshot store errors. Snapshots are history: written once, never updated.
var (
	// ErrNotFound is returned when no snapshot matches the requested id.
	ErrNotFound = errors.New("snapshot not found")

	// ErrDuplicateKey is returned when a snapshot id is inserted twice.
	ErrDuplicateKey = errors.New("duplicate snapshot id")

	// ErrInvalidInput is returned when a snapshot fails validation.
	ErrInvalidInput = errors.New("invalid snapshot")
)
