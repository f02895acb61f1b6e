package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AnswerService synthesises an answer from retrieved chunks with one
// language model call.
type AnswerService interface {
	// Answer renders the question-answering prompt over chunks and query,
	// sends it after history, and prices the call for model. An empty model
	// uses the LLM service default.
	//
	// On model failure it returns domain.ErrModelInvocation and an Answer
	// with zero cost.
	Answer(ctx context.Context, history []domain.Turn, query string,
		chunks []domain.Chunk, model string) (domain.Answer, error)
}
