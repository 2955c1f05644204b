package oracle

import "errors"

var (
	// ErrValidation is returned when the question text is empty or missing.
	// Rejected before any pipeline stage runs.
	ErrValidation = errors.New("question text is required")

	// ErrIndexUnavailable is returned when no index exists and the automatic
	// build also failed. The failure is sticky for the process lifetime.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrModelMismatch is returned when an existing index was built with a
	// different embedding model than the one configured for querying.
	ErrModelMismatch = errors.New("index embedding model mismatch")
)
