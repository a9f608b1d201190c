package chat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/transcript"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

type mockQAService struct {
	questions []string
	status    domain.Status
}

func (m *mockQAService) Ingest(_ context.Context, _, _ string) (string, error) { return "", nil }

func (m *mockQAService) Answer(_ context.Context, question string) domain.Answer {
	m.questions = append(m.questions, question)
	confidence := 0.5
	return domain.AnsweredAnswer(question, "Within 30 days.", &confidence)
}

func (m *mockQAService) Status() domain.Status { return m.status }

func (m *mockQAService) Restore(_ context.Context) error { return nil }

type mockUploadService struct {
	filename string
	err      error
}

func (m *mockUploadService) IngestFile(_ context.Context, content []byte, filename string) (domain.UploadResult, error) {
	m.filename = filename
	if m.err != nil {
		return domain.UploadResult{}, m.err
	}
	return domain.UploadResult{Message: "Document processed.", Filename: filename, TextLength: len(content)}, nil
}

func (m *mockUploadService) SupportedFormats() []string { return []string{".txt"} }

func typeText(v *View, text string) {
	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func pressEnter(v *View) tea.Cmd {
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, &mockQAService{}, nil)

	require.NotNil(t, v)
	assert.NotNil(t, v.styles)
	assert.NotNil(t, v.keymap)
	assert.False(t, v.Busy())
	assert.True(t, v.Input().Focused())
}

func TestView_Init(t *testing.T) {
	v := NewView(nil, nil, &mockQAService{}, nil)

	assert.NotNil(t, v.Init())
}

func TestView_AskQuestion(t *testing.T) {
	qa := &mockQAService{}
	v := NewView(nil, nil, qa, nil)

	typeText(v, "How long do refunds take?")
	cmd := pressEnter(v)

	require.NotNil(t, cmd)
	assert.True(t, v.Busy())
	assert.Equal(t, status.StateThinking, v.StatusBar().State())
	assert.Equal(t, "", v.Input().Value())

	msg := cmd()
	answer, ok := msg.(messages.AnswerReceived)
	require.True(t, ok)
	assert.Equal(t, []string{"How long do refunds take?"}, qa.questions)

	v.Update(answer)

	assert.False(t, v.Busy())
	assert.Equal(t, status.StateReady, v.StatusBar().State())
	entries := v.Transcript().Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, transcript.RoleUser, entries[0].Role)
	assert.Equal(t, "Within 30 days.", entries[1].Text)
}

func TestView_EmptyInputIsIgnored(t *testing.T) {
	v := NewView(nil, nil, &mockQAService{}, nil)

	typeText(v, "   ")
	cmd := pressEnter(v)

	assert.Nil(t, cmd)
	assert.Empty(t, v.Transcript().Entries())
}

func TestView_IgnoresSubmitWhileBusy(t *testing.T) {
	qa := &mockQAService{}
	v := NewView(nil, nil, qa, nil)

	typeText(v, "first")
	require.NotNil(t, pressEnter(v))

	typeText(v, "second")
	assert.Nil(t, pressEnter(v))
	assert.Equal(t, "second", v.Input().Value())
}

func TestView_Commands(t *testing.T) {
	t.Run("help", func(t *testing.T) {
		v := NewView(nil, nil, &mockQAService{}, nil)

		typeText(v, "/help")
		pressEnter(v)

		entries := v.Transcript().Entries()
		require.Len(t, entries, 1)
		assert.Contains(t, entries[0].Text, "/load <file>")
	})

	t.Run("status without document", func(t *testing.T) {
		v := NewView(nil, nil, &mockQAService{}, nil)

		typeText(v, "/status")
		cmd := pressEnter(v)

		require.NotNil(t, cmd)
		assert.Contains(t, v.Transcript().Entries()[0].Text, "No document loaded")
	})

	t.Run("status with document", func(t *testing.T) {
		qa := &mockQAService{status: domain.Status{HasDocument: true, DocumentName: "policy.txt", Segments: 2}}
		v := NewView(nil, nil, qa, nil)

		typeText(v, "/status")
		pressEnter(v)

		assert.Contains(t, v.Transcript().Entries()[0].Text, "Active document: policy.txt, 2 segments")
	})

	t.Run("clear", func(t *testing.T) {
		v := NewView(nil, nil, &mockQAService{}, nil)
		v.Transcript().AddNotice("old")

		typeText(v, "/clear")
		pressEnter(v)

		assert.Empty(t, v.Transcript().Entries())
	})

	t.Run("load without upload service", func(t *testing.T) {
		v := NewView(nil, nil, &mockQAService{}, nil)

		typeText(v, "/load policy.txt")
		cmd := pressEnter(v)

		assert.Nil(t, cmd)
		assert.Contains(t, v.Transcript().Entries()[0].Text, "not available")
	})

	t.Run("load without path", func(t *testing.T) {
		v := NewView(nil, nil, &mockQAService{}, &mockUploadService{})

		typeText(v, "/load")
		cmd := pressEnter(v)

		assert.Nil(t, cmd)
		assert.Contains(t, v.Transcript().Entries()[0].Text, "Usage")
	})
}

func TestView_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.txt")
	require.NoError(t, os.WriteFile(path, []byte("Refunds within 30 days."), 0o600))

	upload := &mockUploadService{}
	v := NewView(nil, nil, &mockQAService{}, upload)

	typeText(v, "/load "+path)
	cmd := pressEnter(v)

	require.NotNil(t, cmd)
	assert.Equal(t, status.StateLoading, v.StatusBar().State())

	msg := cmd()
	loaded, ok := msg.(messages.DocumentLoaded)
	require.True(t, ok)
	require.NoError(t, loaded.Err)
	assert.Equal(t, "policy.txt", upload.filename)

	_, refresh := v.Update(loaded)

	assert.NotNil(t, refresh)
	assert.False(t, v.Busy())
	entries := v.Transcript().Entries()
	assert.Contains(t, entries[len(entries)-1].Text, "Document processed. (23 characters)")
}

func TestView_LoadFileFailure(t *testing.T) {
	upload := &mockUploadService{err: domain.ErrExtractionFailed}
	v := NewView(nil, nil, &mockQAService{}, upload)

	v.Update(messages.DocumentLoaded{Path: "x.txt", Err: upload.err})

	assert.Equal(t, status.StateError, v.StatusBar().State())
	entries := v.Transcript().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, transcript.RoleError, entries[0].Role)
}

func TestView_StatusRefreshed(t *testing.T) {
	v := NewView(nil, nil, &mockQAService{}, nil)

	v.Update(messages.StatusRefreshed{Status: domain.Status{HasDocument: true, DocumentName: "a.txt"}})

	assert.Equal(t, "a.txt", v.StatusBar().Status().DocumentName)
}

func TestView_ErrorOccurred(t *testing.T) {
	v := NewView(nil, nil, &mockQAService{}, nil)

	v.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.Equal(t, "boom", v.StatusBar().Message())
}

func TestView_ClearKey(t *testing.T) {
	v := NewView(nil, nil, &mockQAService{}, nil)
	v.Transcript().AddNotice("old")

	v.Update(tea.KeyMsg{Type: tea.KeyCtrlL})

	assert.Empty(t, v.Transcript().Entries())
}

func TestView_SetDimensions(t *testing.T) {
	v := NewView(nil, nil, &mockQAService{}, nil)

	v.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, 120, v.StatusBar().Width())
	assert.Equal(t, 120, v.Input().Width())
}

func TestView_View(t *testing.T) {
	v := NewView(nil, nil, &mockQAService{}, nil)

	view := v.View()

	assert.Contains(t, view, "docqa")
	assert.Contains(t, view, "Ask")
	assert.Contains(t, view, "No document loaded")
}
