package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// StatusFunc is called whenever a session changes what it is doing.
type StatusFunc func(domain.SessionStatus)

// SessionService holds the state of one question-answering session: the
// conversation, the cost ledger, the selected model and the loaded index.
type SessionService interface {
	// Ask answers query over the session's index. On success the question
	// and answer are appended to the conversation and the cost recorded.
	// On failure the session is unchanged.
	Ask(ctx context.Context, query string) (domain.Answer, error)

	// Clear resets the conversation to its System turn and empties the
	// cost ledger.
	Clear()

	// SetModel selects the model for subsequent questions.
	SetModel(model string) error

	// Model returns the selected model.
	Model() string

	// SetK sets the number of chunks retrieved per question.
	SetK(k int) error

	// History returns every conversation turn in order.
	History() []domain.Turn

	// Costs returns the cost of each answered question in order.
	Costs() []float64

	// TotalCost returns the sum of Costs.
	TotalCost() float64

	// OnStatus registers fn to receive status changes while a question is
	// in progress. A nil fn stops notifications.
	OnStatus(fn StatusFunc)

	// ReloadIndex drops the cached index so the next question reloads it.
	ReloadIndex()
}
