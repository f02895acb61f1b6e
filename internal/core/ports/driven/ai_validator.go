package driven

import "github.com/custodia-labs/docqa/internal/core/domain"

// AIConfigValidator checks provider settings against the live provider
// before the settings service saves them.
type AIConfigValidator interface {
	// ValidateEmbedding embeds a probe text and checks the vector size
	// matches the model's recorded dimensions. Nil for unconfigured settings.
	ValidateEmbedding(settings *domain.EmbeddingSettings) error

	// ValidateLLM checks the chat provider is reachable.
	// Nil for unconfigured settings.
	ValidateLLM(settings *domain.LLMSettings) error
}
