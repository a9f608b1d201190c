package tui

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockQAService implements driving.QAService for TUI tests.
type mockQAService struct{}

func (m *mockQAService) Ingest(_ context.Context, _, _ string) (string, error) { return "", nil }

func (m *mockQAService) Answer(_ context.Context, question string) domain.Answer {
	return domain.NoDocumentAnswer(question)
}

func (m *mockQAService) Status() domain.Status { return domain.Status{} }

func (m *mockQAService) Restore(_ context.Context) error { return nil }

// mockUploadService implements driving.UploadService for TUI tests.
type mockUploadService struct{}

func (m *mockUploadService) IngestFile(_ context.Context, _ []byte, filename string) (domain.UploadResult, error) {
	return domain.UploadResult{Filename: filename}, nil
}

func (m *mockUploadService) SupportedFormats() []string { return []string{".txt"} }
