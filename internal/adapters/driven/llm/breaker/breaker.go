// Package breaker guards an LLM service with a circuit breaker.
// After repeated failures further calls fail fast until the cooldown passes,
// so an unreachable provider does not stall every question for a full timeout.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default breaker settings.
const (
	DefaultMinRequests  = 3
	DefaultFailureRatio = 0.6
	DefaultCooldown     = 30 * time.Second
)

// Config controls when the breaker trips.
type Config struct {
	// MinRequests is the number of calls observed before the breaker can trip.
	MinRequests uint32

	// FailureRatio trips the breaker once this share of calls has failed.
	FailureRatio float64

	// Cooldown is how long the breaker stays open before probing again.
	Cooldown time.Duration
}

// LLMService wraps an LLM service with a circuit breaker.
type LLMService struct {
	driven.LLMService
	cb *gobreaker.CircuitBreaker
}

// Wrap returns svc guarded by a circuit breaker.
func Wrap(svc driven.LLMService, cfg Config) *LLMService {
	if cfg.MinRequests == 0 {
		cfg.MinRequests = DefaultMinRequests
	}
	if cfg.FailureRatio <= 0 {
		cfg.FailureRatio = DefaultFailureRatio
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "llm/" + svc.ModelName(),
		Timeout: cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && ratio >= cfg.FailureRatio
		},
		// Cancellation is the caller's choice, not a provider failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &LLMService{LLMService: svc, cb: cb}
}

// Chat forwards to the wrapped service unless the breaker is open.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (driven.ChatResult, error) {
	out, err := s.cb.Execute(func() (interface{}, error) {
		return s.LLMService.Chat(ctx, messages, opts)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return driven.ChatResult{}, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if err != nil {
		return driven.ChatResult{}, err
	}
	return out.(driven.ChatResult), nil
}

// State reports the breaker state.
func (s *LLMService) State() gobreaker.State {
	return s.cb.State()
}
