package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the destination of a copy is already present.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidSchema indicates the input/output schema pair is malformed
	// or inconsistent. Always fatal, raised before any file is read.
	ErrInvalidSchema = errors.New("invalid schema")

	// ErrCopyFailed indicates the underlying copy of one file failed.
	ErrCopyFailed = errors.New("copy failed")

	// ErrSameFile indicates source and destination resolve to the same file.
	ErrSameFile = errors.New("source and destination are the same file")

	// ErrWatcherClosed indicates the change watcher has been closed.
	ErrWatcherClosed = errors.New("watcher closed")
)

// ConfigError reports the first schema violation found during validation.
type ConfigError struct {
	// Key is the offending segment name (may be empty).
	Key string

	// Reason is the human-readable description of the violation.
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return e.Reason
}

// Unwrap lets errors.Is match ErrInvalidSchema.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidSchema
}
