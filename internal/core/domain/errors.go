package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input, such as blank document text.
	// It is raised before any model work and is the caller's fault.
	ErrInvalidInput = errors.New("invalid input")

	// ErrModelUnavailable indicates an embedding or generation model failed to
	// initialise or run.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrNoActiveIndex indicates no document has been ingested yet.
	// The session answers this state with a fixed message, never as a failure.
	ErrNoActiveIndex = errors.New("no active index")

	// ErrCleanupFailure indicates stale index artifacts could not be deleted.
	// Recovered locally by allocating a fresh directory; never surfaced to callers.
	ErrCleanupFailure = errors.New("index cleanup failed")

	// Extraction Errors.

	// ErrUnsupportedFormat indicates the file extension has no text extractor.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrExtractionFailed indicates a supported file yielded no usable text
	// (empty, corrupted or password-protected).
	ErrExtractionFailed = errors.New("extraction failed")
)

// IsClientError reports whether err was caused by the caller's input
// rather than by the pipeline or its models.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrExtractionFailed)
}
