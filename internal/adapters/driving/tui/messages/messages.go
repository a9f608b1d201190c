// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// QuestionSubmitted is sent when the user asks a question.
type QuestionSubmitted struct {
	Question string
}

// AnswerReceived carries the session's answer back to the model.
type AnswerReceived struct {
	Answer domain.Answer
}

// DocumentLoaded carries the result of a /load command.
type DocumentLoaded struct {
	Path   string
	Result domain.UploadResult
	Err    error
}

// StatusRefreshed carries the session status.
type StatusRefreshed struct {
	Status domain.Status
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}
