// Package transcript renders the scrolling chat history.
package transcript

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Role identifies who produced an entry.
type Role int

const (
	// RoleUser is a question typed by the user.
	RoleUser Role = iota
	// RoleBot is an answer from the session.
	RoleBot
	// RoleNotice is a message from the chat itself.
	RoleNotice
	// RoleError is a failure shown inline.
	RoleError
)

// Entry is one line of the conversation.
type Entry struct {
	Role       Role
	Text       string
	Kind       domain.AnswerKind
	Confidence *float64
}

// Transcript is a viewport over the conversation entries.
type Transcript struct {
	styles   *styles.Styles
	viewport viewport.Model
	entries  []Entry
}

// New creates an empty transcript.
func New(s *styles.Styles) *Transcript {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Transcript{
		styles:   s,
		viewport: viewport.New(80, 20),
	}
}

// Update forwards scrolling messages to the viewport.
func (t *Transcript) Update(msg tea.Msg) (*Transcript, tea.Cmd) {
	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return t, cmd
}

// View renders the visible part of the transcript.
func (t *Transcript) View() string {
	return t.viewport.View()
}

// Append adds an entry and scrolls to it.
func (t *Transcript) Append(e Entry) {
	t.entries = append(t.entries, e)
	t.refresh()
	t.viewport.GotoBottom()
}

// AddQuestion appends a user question.
func (t *Transcript) AddQuestion(question string) {
	t.Append(Entry{Role: RoleUser, Text: question})
}

// AddAnswer appends a session answer.
func (t *Transcript) AddAnswer(a domain.Answer) {
	t.Append(Entry{Role: RoleBot, Text: a.Result, Kind: a.Kind, Confidence: a.Confidence})
}

// AddNotice appends a chat notice.
func (t *Transcript) AddNotice(text string) {
	t.Append(Entry{Role: RoleNotice, Text: text})
}

// AddError appends an inline error.
func (t *Transcript) AddError(err error) {
	t.Append(Entry{Role: RoleError, Text: err.Error()})
}

// Entries returns the conversation so far.
func (t *Transcript) Entries() []Entry {
	return t.entries
}

// Clear removes every entry.
func (t *Transcript) Clear() {
	t.entries = nil
	t.refresh()
}

// SetSize resizes the viewport and re-wraps the entries.
func (t *Transcript) SetSize(width, height int) {
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}
	t.viewport.Width = width
	t.viewport.Height = height
	t.refresh()
}

// PageUp scrolls up one page.
func (t *Transcript) PageUp() {
	t.viewport.PageUp()
}

// PageDown scrolls down one page.
func (t *Transcript) PageDown() {
	t.viewport.PageDown()
}

func (t *Transcript) refresh() {
	blocks := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		blocks = append(blocks, t.render(e))
	}
	t.viewport.SetContent(strings.Join(blocks, "\n\n"))
}

func (t *Transcript) render(e Entry) string {
	width := t.viewport.Width
	switch e.Role {
	case RoleUser:
		return t.styles.UserLabel.Render("You: ") + t.styles.Message.Width(width-5).Render(e.Text)
	case RoleBot:
		body := t.styles.Message
		switch e.Kind {
		case domain.AnswerNotRelevant, domain.AnswerUnavailable, domain.AnswerNoDocument:
			body = t.styles.Warning
		case domain.AnswerFailed:
			body = t.styles.Error
		case domain.AnswerAnswered:
		}
		text := t.styles.BotLabel.Render("Bot: ") + body.Width(width-5).Render(e.Text)
		if e.Confidence != nil {
			text += "\n" + t.styles.Muted.Render(fmt.Sprintf("     confidence %.2f", *e.Confidence))
		}
		return text
	case RoleError:
		return t.styles.Error.Width(width).Render("Error: " + e.Text)
	case RoleNotice:
	}
	return t.styles.Muted.Width(width).Render(e.Text)
}
