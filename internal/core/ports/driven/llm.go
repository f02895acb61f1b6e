package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// LLMService provides chat completion for answer synthesis.
//
// Implementations may include:
//   - OpenAI (gpt-3.5-turbo, gpt-4)
//   - Anthropic (Claude)
//   - Gemini
//   - Ollama (local models)
type LLMService interface {
	// Chat conducts a multi-turn conversation and returns the completion
	// together with the token usage reported by the provider.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (ChatResult, error)

	// ModelName returns the default model used when ChatOptions.Model is empty.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// Model overrides the service's default model for this call.
	Model string

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

// ChatResult is a completion and its token usage.
type ChatResult struct {
	Content string
	Usage   domain.Usage
}
