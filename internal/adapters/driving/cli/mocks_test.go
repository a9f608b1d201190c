package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockQAService implements driving.QAService for CLI tests.
type mockQAService struct {
	ingestErr error
	ingested  []string
	questions []string
	answer    *domain.Answer
	status    domain.Status
}

func (m *mockQAService) Ingest(_ context.Context, text, name string) (string, error) {
	if m.ingestErr != nil {
		return "", m.ingestErr
	}
	m.ingested = append(m.ingested, text)
	if name == "" {
		name = "document"
	}
	return fmt.Sprintf("Document '%s' processed successfully. You can now ask questions about it.", name), nil
}

func (m *mockQAService) Answer(_ context.Context, question string) domain.Answer {
	m.questions = append(m.questions, question)
	if m.answer != nil {
		a := *m.answer
		a.Query = question
		return a
	}
	confidence := 0.55
	return domain.AnsweredAnswer(question, "Refunds are accepted within 30 days.", &confidence)
}

func (m *mockQAService) Status() domain.Status { return m.status }

func (m *mockQAService) Restore(_ context.Context) error { return nil }

// mockUploadService implements driving.UploadService for CLI tests.
type mockUploadService struct {
	err      error
	filename string
	content  []byte
}

func (m *mockUploadService) IngestFile(_ context.Context, content []byte, filename string) (domain.UploadResult, error) {
	if m.err != nil {
		return domain.UploadResult{}, m.err
	}
	m.filename = filename
	m.content = content
	return domain.UploadResult{
		Message:    fmt.Sprintf("Document '%s' processed successfully. You can now ask questions about it.", filename),
		Filename:   filename,
		TextLength: len(content),
	}, nil
}

func (m *mockUploadService) SupportedFormats() []string {
	return []string{".docx", ".md", ".pdf", ".txt"}
}

// mockSettingsService implements driving.SettingsService for CLI tests.
type mockSettingsService struct {
	settings    domain.AppSettings
	set         map[string]string
	setErr      error
	validateErr error
	llmErr      error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		settings: domain.DefaultAppSettings(),
		set:      make(map[string]string),
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"embedding.provider", "llm.provider", "qa.top_k"}
}

func (m *mockSettingsService) Values() (map[string]string, error) {
	return map[string]string{
		"embedding.provider": "local",
		"llm.provider":       "local",
		"qa.top_k":           "3",
	}, nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig(_ context.Context) error { return nil }

func (m *mockSettingsService) ValidateSimilarityConfig(_ context.Context) error { return nil }

func (m *mockSettingsService) ValidateLLMConfig(_ context.Context) error { return m.llmErr }

type testServices struct {
	qa       *mockQAService
	upload   *mockUploadService
	settings *mockSettingsService
}

// setupTestServices installs mock services and returns a cleanup function.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		qa:       &mockQAService{},
		upload:   &mockUploadService{},
		settings: newMockSettingsService(),
	}
	SetServices(&Services{
		QA:       ts.qa,
		Upload:   ts.upload,
		Settings: ts.settings,
		Server:   domain.DefaultAppSettings().Server,
	})

	oldTerminal := stdinIsTerminal
	stdinIsTerminal = func() bool { return true }
	oldRun := runProgram
	runProgram = func(tea.Model) error { return nil }

	return ts, func() {
		SetServices(&Services{})
		stdinIsTerminal = oldTerminal
		runProgram = oldRun
		ingestText = ""
		ingestName = ""
		askJSON = false
		statusJSON = false
		serveAddr = ""
		mcpHTTPAddr = ""
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}

