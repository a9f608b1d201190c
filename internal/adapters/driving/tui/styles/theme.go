// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colour palette for the chat.
type Theme struct {
	// Accent colours the title and the prompt.
	Accent lipgloss.Color

	// User colours the user's questions.
	User lipgloss.Color

	// Bot colours the session's answers.
	Bot lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for fixed messages and hints.
	Muted lipgloss.Color

	// Warning colours not-relevant and unavailable answers.
	Warning lipgloss.Color

	// Error colours failures.
	Error lipgloss.Color

	// Border is the input border colour.
	Border lipgloss.Color

	// Bar is the status bar background.
	Bar lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:     lipgloss.Color("#7C3AED"), // Purple
		User:       lipgloss.Color("#06B6D4"), // Cyan
		Bot:        lipgloss.Color("#A6E3A1"), // Green
		Foreground: lipgloss.Color("#CDD6F4"), // Light gray
		Muted:      lipgloss.Color("#6C7086"), // Medium gray
		Warning:    lipgloss.Color("#F9E2AF"), // Yellow
		Error:      lipgloss.Color("#F38BA8"), // Red
		Border:     lipgloss.Color("#45475A"), // Border gray
		Bar:        lipgloss.Color("#181825"), // Near black
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title style for the header.
	Title lipgloss.Style

	// UserLabel prefixes questions.
	UserLabel lipgloss.Style

	// BotLabel prefixes answers.
	BotLabel lipgloss.Style

	// Message style for transcript text.
	Message lipgloss.Style

	// Muted style for notices and hints.
	Muted lipgloss.Style

	// Warning style for answers the session declined to give.
	Warning lipgloss.Style

	// Error style for failures.
	Error lipgloss.Style

	// InputField style for the question input.
	InputField lipgloss.Style

	// StatusBar style for the status bar.
	StatusBar lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Accent),

		UserLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.User),

		BotLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Bot),

		Message: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(theme.Bar).
			Padding(0, 1),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
