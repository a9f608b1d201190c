package mcp

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockQAService is a mock implementation of driving.QAService.
type mockQAService struct {
	ingestMsg string
	ingestErr error
	ingested  []string
	answer    domain.Answer
	status    domain.Status
}

func (m *mockQAService) Ingest(_ context.Context, text, _ string) (string, error) {
	m.ingested = append(m.ingested, text)
	return m.ingestMsg, m.ingestErr
}

func (m *mockQAService) Answer(_ context.Context, question string) domain.Answer {
	answer := m.answer
	answer.Query = question
	return answer
}

func (m *mockQAService) Status() domain.Status {
	return m.status
}

func (m *mockQAService) Restore(_ context.Context) error {
	return nil
}

// mockUploadService is a mock implementation of driving.UploadService.
type mockUploadService struct {
	result   domain.UploadResult
	err      error
	content  []byte
	filename string
}

func (m *mockUploadService) IngestFile(_ context.Context, content []byte, filename string) (domain.UploadResult, error) {
	m.content = content
	m.filename = filename
	return m.result, m.err
}

func (m *mockUploadService) SupportedFormats() []string {
	return []string{".pdf", ".txt"}
}
