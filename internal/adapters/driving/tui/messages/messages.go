// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AnswerReceived carries the result of one question back to the model.
type AnswerReceived struct {
	Question string
	Answer   domain.Answer
	Err      error
}

// StatusChanged reports what the session is doing while a question runs.
type StatusChanged struct {
	Status domain.SessionStatus
}

// ExportCompleted signals a transcript export finished.
type ExportCompleted struct {
	Title string
	Ref   string
	Err   error
}

// ModelChanged signals a new chat model was selected.
type ModelChanged struct {
	Model string
	Err   error
}

// PromptReloaded signals a prompt template was edited on disk.
type PromptReloaded struct {
	Name string
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}
