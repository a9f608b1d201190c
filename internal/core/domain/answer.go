package domain

import "time"

// Fixed user-facing responses for expected, non-error states.
const (
	// MessageNoDocument is returned by Answer before any document is ingested.
	MessageNoDocument = "No document has been uploaded yet. Please upload a document first."

	// MessageNotRelevant is returned when the relevance gate rejects a question.
	MessageNotRelevant = "I'm sorry, but your question doesn't appear to be relevant to the uploaded document. " +
		"Please ask questions related to the document content."

	// MessageUnavailable is returned when the relevance gate cannot run under the fail-closed policy.
	MessageUnavailable = "The relevance check is temporarily unavailable. Please try again later."

	// MessageNoAnswer is returned when the model produces an empty answer.
	MessageNoAnswer = "No answer found."

	// errorAnswerPrefix prefixes the result text of a failed generation.
	errorAnswerPrefix = "Error processing question: "
)

// AnswerKind tags which outcome an Answer represents.
type AnswerKind string

// Answer outcomes.
const (
	// AnswerNoDocument means no document was active.
	AnswerNoDocument AnswerKind = "no_document"

	// AnswerNotRelevant means the relevance gate rejected the question.
	AnswerNotRelevant AnswerKind = "not_relevant"

	// AnswerAnswered means the generator produced a grounded answer.
	AnswerAnswered AnswerKind = "answered"

	// AnswerFailed means retrieval or generation failed; Result describes the cause.
	AnswerFailed AnswerKind = "failed"

	// AnswerUnavailable means the relevance gate could not run and the gate fails closed.
	AnswerUnavailable AnswerKind = "unavailable"
)

// String returns the string representation.
func (k AnswerKind) String() string {
	return string(k)
}

// Answer is the result of processing a Question against the active index generation.
// Answers are never persisted.
type Answer struct {
	// Query is the original question.
	Query string `json:"query"`

	// Result is the answer text, or a fixed message for non-answered kinds.
	Result string `json:"result"`

	// Confidence is the retrieval similarity backing the answer, when one exists.
	Confidence *float64 `json:"confidence,omitempty"`

	// Kind tags the outcome.
	Kind AnswerKind `json:"-"`
}

// NoDocumentAnswer returns the fixed answer for a session with no document.
func NoDocumentAnswer(question string) Answer {
	return Answer{Query: question, Result: MessageNoDocument, Kind: AnswerNoDocument}
}

// NotRelevantAnswer returns the fixed answer for a rejected question.
func NotRelevantAnswer(question string) Answer {
	return Answer{Query: question, Result: MessageNotRelevant, Kind: AnswerNotRelevant}
}

// UnavailableAnswer returns the fixed answer for a gate that failed closed.
func UnavailableAnswer(question string) Answer {
	return Answer{Query: question, Result: MessageUnavailable, Kind: AnswerUnavailable}
}

// FailedAnswer converts a pipeline error into a descriptive answer.
func FailedAnswer(question string, cause error) Answer {
	return Answer{Query: question, Result: errorAnswerPrefix + cause.Error(), Kind: AnswerFailed}
}

// AnsweredAnswer builds a successful answer. A nil confidence is allowed.
func AnsweredAnswer(question, text string, confidence *float64) Answer {
	if text == "" {
		text = MessageNoAnswer
	}
	return Answer{Query: question, Result: text, Confidence: confidence, Kind: AnswerAnswered}
}

// Status describes the session state exposed to driving adapters.
type Status struct {
	// HasDocument is true once a document has been ingested.
	HasDocument bool `json:"has_document"`

	// DocumentName is the display name of the active document.
	DocumentName string `json:"document_name,omitempty"`

	// IngestedAt is when the active document was ingested.
	IngestedAt *time.Time `json:"ingested_at,omitempty"`

	// Segments is the number of segments in the active generation.
	Segments int `json:"segments,omitempty"`

	// GenerationID identifies the active index generation.
	GenerationID string `json:"generation_id,omitempty"`
}

// UploadResult is returned after a file has been extracted and ingested.
type UploadResult struct {
	// Message is the session's confirmation message.
	Message string `json:"message"`

	// Filename is the uploaded file's name.
	Filename string `json:"filename"`

	// TextLength is the number of characters extracted.
	TextLength int `json:"text_length"`
}
