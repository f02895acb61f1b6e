package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// probeText is embedded to check a provider before its settings are saved.
const probeText = "docqa settings check"

// ConfigValidator checks provider settings by connecting to the provider.
// An embedding provider must also return vectors of the size an index built
// with it will record, or later loads would reject that index.
type ConfigValidator struct {
	timeout time.Duration
}

// ValidatorOption configures a ConfigValidator.
type ValidatorOption func(*ConfigValidator)

// WithTimeout bounds each validation. The default is pingTimeout.
func WithTimeout(d time.Duration) ValidatorOption {
	return func(v *ConfigValidator) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// NewConfigValidator creates a validator.
func NewConfigValidator(opts ...ValidatorOption) *ConfigValidator {
	v := &ConfigValidator{timeout: pingTimeout}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateEmbedding embeds a probe text with the configured model.
// Unconfigured settings are not an error.
func (v *ConfigValidator) ValidateEmbedding(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	vec, err := svc.Embed(ctx, probeText)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrEmbeddingUnavailable, svc.ModelName(), err)
	}
	if len(vec) != svc.Dimensions() {
		return fmt.Errorf("%w: %s returned %d dimensions, expected %d",
			domain.ErrEmbeddingService, svc.ModelName(), len(vec), svc.Dimensions())
	}
	return nil
}

// ValidateLLM pings the configured chat provider.
// Unconfigured settings are not an error.
func (v *ConfigValidator) ValidateLLM(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrLLMUnavailable, svc.ModelName(), err)
	}
	return nil
}
