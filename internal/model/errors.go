package model

import "errors"

// Sentinel errors shared across the store, matching service, and adapters.
// Wrap with fmt.Errorf("...: %w", Err...) to add context; adapters classify
// with errors.Is.
var (
	// ErrValidation marks malformed input: missing required fields, unknown
	// enum values, vector dimension mismatch, non-positive limits.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized marks an actor lacking permission for a mutation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrEmbedding marks a transient per-call inference failure. Safe to
	// retry; no item is persisted when it occurs.
	ErrEmbedding = errors.New("embedding failed")

	// ErrConflict marks a mutation rejected by a referential constraint,
	// e.g. deleting a category that items still reference.
	ErrConflict = errors.New("conflict")
)
