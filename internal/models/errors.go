package models

import "errors"

// Error taxonomy shared by the indexing and query paths. Callers classify with errors.Is.
var (
	// ErrInvalidInput marks malformed records, wrong argument types, or out-of-range parameters.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidQuery marks a rejected search request (empty or oversized text, top_k out of range).
	ErrInvalidQuery = subKind("invalid query", ErrInvalidInput)

	// ErrDimensionMismatch marks an embedding whose length differs from the configured dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCountMismatch marks a build where vectors and records disagree in length.
	ErrCountMismatch = errors.New("vector/record count mismatch")

	// ErrNotReady is returned for queries issued before any successful build or load.
	ErrNotReady = errors.New("index not ready")

	// ErrNotFound marks a missing persisted artifact or record.
	ErrNotFound = errors.New("not found")

	// ErrCorruptArtifact marks a partial or unreadable persisted index.
	ErrCorruptArtifact = errors.New("corrupt index artifact")

	// ErrModelLoad marks an embedding backend that could not initialize.
	ErrModelLoad = errors.New("embedding model load failed")

	// ErrRebuildInProgress is returned when a rebuild is requested while another is running.
	ErrRebuildInProgress = errors.New("index rebuild already in progress")
)

type kindError struct {
	msg    string
	parent error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.parent }

// subKind returns a sentinel that matches both itself and parent under errors.Is.
func subKind(msg string, parent error) error {
	return &kindError{msg: msg, parent: parent}
}
