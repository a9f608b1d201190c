// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/transcript"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Chat commands typed into the input.
const (
	commandLoad   = "/load"
	commandStatus = "/status"
	commandHelp   = "/help"
	commandClear  = "/clear"
)

const helpText = `Type a question and press enter.
/load <file>  ingest a file (replaces the current document)
/status       show the active document
/clear        clear the conversation
/help         show this help`

// chrome is the number of rows used by the title, input and status bar.
const chrome = 6

// View is the chat view: transcript, input and status bar.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.QuestionInput
	transcript *transcript.Transcript
	statusbar  *status.Bar

	qa     driving.QAService
	upload driving.UploadService
	ctx    context.Context

	width  int
	height int
	busy   bool
}

// NewView creates a chat view over qa. upload may be nil.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	qa driving.QAService,
	upload driving.UploadService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		transcript: transcript.New(s),
		statusbar:  status.NewBar(s, km),
		qa:         qa,
		upload:     upload,
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
	v.SetDimensions(v.width, v.height)
	return v
}

// WithContext sets the context for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the cursor and loads the session status.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Init(), v.refreshStatus())
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.busy = false
		v.statusbar.Clear()
		v.transcript.AddAnswer(msg.Answer)
		return v, nil

	case messages.DocumentLoaded:
		v.busy = false
		if msg.Err != nil {
			v.statusbar.SetError(msg.Err.Error())
			v.transcript.AddError(msg.Err)
			return v, nil
		}
		v.statusbar.Clear()
		v.transcript.AddNotice(fmt.Sprintf("%s (%d characters)", msg.Result.Message, msg.Result.TextLength))
		return v, v.refreshStatus()

	case messages.StatusRefreshed:
		v.statusbar.SetStatus(msg.Status)
		return v, nil

	case messages.ErrorOccurred:
		v.busy = false
		v.statusbar.SetError(msg.Err.Error())
		v.transcript.AddError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.transcript, cmd = v.transcript.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.ScrollUp):
		v.transcript.PageUp()
		return v, nil
	case keymap.Matches(key, v.keymap.ScrollDown):
		v.transcript.PageDown()
		return v, nil
	case keymap.Matches(key, v.keymap.Clear):
		v.transcript.Clear()
		return v, nil
	case keymap.Matches(key, v.keymap.Submit):
		return v, v.submit()
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit dispatches the current input.
func (v *View) submit() tea.Cmd {
	text := strings.TrimSpace(v.input.Value())
	if text == "" || v.busy {
		return nil
	}
	v.input.Reset()

	switch {
	case text == commandHelp:
		v.transcript.AddNotice(helpText)
		return nil
	case text == commandClear:
		v.transcript.Clear()
		return nil
	case text == commandStatus:
		v.transcript.AddNotice(describeStatus(v.qa))
		return v.refreshStatus()
	case text == commandLoad || strings.HasPrefix(text, commandLoad+" "):
		return v.load(strings.TrimSpace(strings.TrimPrefix(text, commandLoad)))
	}

	v.busy = true
	v.statusbar.SetState(status.StateThinking)
	v.transcript.AddQuestion(text)
	return v.ask(text)
}

func (v *View) ask(question string) tea.Cmd {
	qa := v.qa
	ctx := v.ctx
	return func() tea.Msg {
		return messages.AnswerReceived{Answer: qa.Answer(ctx, question)}
	}
}

func (v *View) load(path string) tea.Cmd {
	if v.upload == nil {
		v.transcript.AddNotice("Loading files is not available in this session.")
		return nil
	}
	if path == "" {
		v.transcript.AddNotice("Usage: /load <file>")
		return nil
	}

	v.busy = true
	v.statusbar.SetState(status.StateLoading)
	v.transcript.AddNotice("Loading " + path + "...")

	upload := v.upload
	ctx := v.ctx
	return func() tea.Msg {
		content, err := os.ReadFile(path)
		if err != nil {
			return messages.DocumentLoaded{Path: path, Err: fmt.Errorf("reading %s: %w", path, err)}
		}
		result, err := upload.IngestFile(ctx, content, filepath.Base(path))
		return messages.DocumentLoaded{Path: path, Result: result, Err: err}
	}
}

func (v *View) refreshStatus() tea.Cmd {
	qa := v.qa
	return func() tea.Msg {
		return messages.StatusRefreshed{Status: qa.Status()}
	}
}

func describeStatus(qa driving.QAService) string {
	s := qa.Status()
	if !s.HasDocument {
		return "No document loaded. Use /load <file> to add one."
	}
	text := fmt.Sprintf("Active document: %s, %d segments", s.DocumentName, s.Segments)
	if s.IngestedAt != nil {
		text += ", ingested " + s.IngestedAt.Format("2006-01-02 15:04:05")
	}
	return text
}

// View renders the chat.
func (v *View) View() string {
	title := v.styles.Title.Render("docqa") + v.styles.Muted.Render("  ask questions about your document")
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		v.transcript.View(),
		v.input.View(),
		v.statusbar.View(),
	)
}

// SetDimensions sets the terminal dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.transcript.SetSize(width, height-chrome)
}

// Busy reports whether a question or load is in flight.
func (v *View) Busy() bool {
	return v.busy
}

// Transcript returns the conversation component.
func (v *View) Transcript() *transcript.Transcript {
	return v.transcript
}

// StatusBar returns the status bar component.
func (v *View) StatusBar() *status.Bar {
	return v.statusbar
}

// Input returns the question input.
func (v *View) Input() *input.QuestionInput {
	return v.input
}
