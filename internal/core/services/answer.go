package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// AnswerService stuffs retrieved chunks into a single prompt and asks the
// language model to answer from them.
type AnswerService struct {
	llm       driven.LLMService
	prompts   driven.PromptStore
	tokenizer driven.Tokenizer
}

// Chat formats add a few tokens around every message and before the reply.
const (
	messageTokenOverhead = 4
	replyPrimerTokens    = 3
)

// AnswerOption configures an AnswerService.
type AnswerOption func(*AnswerService)

// WithTokenizer sizes each completion limit to the room the prompt leaves
// in the model's context window. Without a tokenizer no limit is sent.
func WithTokenizer(tokenizer driven.Tokenizer) AnswerOption {
	return func(s *AnswerService) {
		s.tokenizer = tokenizer
	}
}

// NewAnswerService creates an answer service. The prompt store may be nil,
// in which case the built-in answer template is used.
func NewAnswerService(llm driven.LLMService, promptStore driven.PromptStore, opts ...AnswerOption) *AnswerService {
	s := &AnswerService{llm: llm, prompts: promptStore}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Answer renders the answer prompt, sends it after history and prices the call.
func (s *AnswerService) Answer(
	ctx context.Context, history []domain.Turn, query string, chunks []domain.Chunk, model string,
) (domain.Answer, error) {
	if model == "" {
		model = s.llm.ModelName()
	}
	answer := domain.Answer{Chunks: chunks, Model: model}

	prompt, err := s.render(query, chunks)
	if err != nil {
		return answer, err
	}

	messages := make([]driven.ChatMessage, 0, len(history)+1)
	for _, t := range history {
		messages = append(messages, driven.ChatMessage{Role: t.Role.String(), Content: t.Content})
	}
	messages = append(messages, driven.ChatMessage{Role: domain.RoleUser.String(), Content: prompt})

	pricing, known := domain.LookupPricing(model)
	opts := driven.ChatOptions{
		Model:       model,
		MaxTokens:   s.responseBudget(pricing, known, messages),
		Temperature: 0,
	}

	logger.Debug("Answering with %s: %d history turns, %d chunks, max %d tokens",
		model, len(history), len(chunks), opts.MaxTokens)

	result, err := s.llm.Chat(ctx, messages, opts)
	if err != nil {
		logger.Warn("Model %s failed: %v", model, err)
		return answer, fmt.Errorf("%w: %w", domain.ErrModelInvocation, err)
	}

	answer.Text = strings.TrimSpace(result.Content)
	answer.Usage = result.Usage
	if known {
		answer.Cost = pricing.Cost(result.Usage)
	} else {
		logger.Debug("No pricing for model %s, recording zero cost", model)
	}

	logger.Debug("Answer used %d prompt and %d completion tokens ($%.5f)",
		result.Usage.PromptTokens, result.Usage.CompletionTokens, answer.Cost)
	return answer, nil
}

// responseBudget returns the completion limit for messages, or zero when
// the prompt size or the context window is unknown.
func (s *AnswerService) responseBudget(pricing domain.ModelPricing, known bool, messages []driven.ChatMessage) int {
	if s.tokenizer == nil || !known {
		return 0
	}
	used := replyPrimerTokens
	for _, m := range messages {
		used += s.tokenizer.Count(m.Content) + messageTokenOverhead
	}
	budget := pricing.ResponseBudget(used)
	if budget == 0 {
		logger.Warn("Prompt of ~%d tokens fills the %d token context window", used, pricing.ContextSize)
	}
	return budget
}

// render fills the answer template. A stored template that fails to render
// falls back to the built-in one.
func (s *AnswerService) render(query string, chunks []domain.Chunk) (string, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	values := map[string]any{
		"context":  strings.Join(texts, "\n\n"),
		"question": query,
	}

	template := s.template()
	out, err := formatAnswerPrompt(template, values)
	if err == nil {
		return out, nil
	}
	if template == domain.DefaultAnswerTemplate {
		return "", fmt.Errorf("render answer prompt: %w", err)
	}

	logger.Warn("Answer prompt does not render (%v), using built-in prompt", err)
	return formatAnswerPrompt(domain.DefaultAnswerTemplate, values)
}

func (s *AnswerService) template() string {
	if s.prompts == nil {
		return domain.DefaultAnswerTemplate
	}
	t, err := s.prompts.Load(driven.PromptAnswer)
	if err != nil || t == "" {
		return domain.DefaultAnswerTemplate
	}
	return t
}

func formatAnswerPrompt(template string, values map[string]any) (string, error) {
	pt := prompts.PromptTemplate{
		Template:       template,
		InputVariables: []string{"context", "question"},
		TemplateFormat: prompts.TemplateFormatFString,
	}
	return pt.Format(values)
}
