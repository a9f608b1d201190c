package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// QAService answers questions about the single active document.
type QAService interface {
	// Ingest replaces the active document with text.
	// Blank text returns domain.ErrInvalidInput and leaves the previous
	// document active. On success the confirmation message is returned.
	Ingest(ctx context.Context, text, name string) (string, error)

	// Answer answers question against the active document.
	// It never fails: expected states and pipeline errors are encoded
	// in the returned Answer's Kind.
	Answer(ctx context.Context, question string) domain.Answer

	// Status reports whether a document is active and which one.
	Status() domain.Status

	// Restore reloads the generation recorded by a previous process.
	// It is a no-op when a document is already active.
	Restore(ctx context.Context) error
}

// UploadService ingests files by extracting their text first.
type UploadService interface {
	// IngestFile extracts the text of content and ingests it under filename.
	// Empty payloads return domain.ErrInvalidInput; unknown extensions
	// domain.ErrUnsupportedFormat; files with too little text
	// domain.ErrExtractionFailed.
	IngestFile(ctx context.Context, content []byte, filename string) (domain.UploadResult, error)

	// SupportedFormats lists the accepted file extensions.
	SupportedFormats() []string
}
