package services

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/tokenizer/word"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

func TestAnswerService_Answer(t *testing.T) {
	llm := &stubLLM{
		reply: "  Paris.\n",
		usage: domain.Usage{PromptTokens: 1000, CompletionTokens: 500},
	}
	svc := NewAnswerService(llm, nil)

	history := []domain.Turn{
		domain.SystemTurn(domain.DefaultSystemPrompt),
		domain.UserTurn("Hi"),
		domain.AssistantTurn("Hello"),
	}
	chunks := chunksOf("The capital of France is Paris.", "Bananas are a yellow fruit.")

	answer, err := svc.Answer(context.Background(), history, "What is the capital of France?", chunks, "gpt-4")
	require.NoError(t, err)

	assert.Equal(t, "Paris.", answer.Text)
	assert.Equal(t, "gpt-4", answer.Model)
	assert.Equal(t, chunks, answer.Chunks)
	// 1000/1000*0.03 + 500/1000*0.06
	assert.InDelta(t, 0.06, answer.Cost, 1e-12)

	require.Len(t, llm.messages, 4)
	assert.Equal(t, "system", llm.messages[0].Role)
	assert.Equal(t, "user", llm.messages[1].Role)
	assert.Equal(t, "assistant", llm.messages[2].Role)

	prompt := llm.messages[3]
	assert.Equal(t, "user", prompt.Role)
	assert.Contains(t, prompt.Content, "The capital of France is Paris.\n\nBananas are a yellow fruit.")
	assert.Contains(t, prompt.Content, "Question: What is the capital of France?")
	assert.Contains(t, prompt.Content, "own knowledge")
	assert.NotContains(t, prompt.Content, "{context}")

	assert.Equal(t, "gpt-4", llm.opts.Model)
	assert.Zero(t, llm.opts.MaxTokens, "no limit without a tokenizer")
	assert.Zero(t, llm.opts.Temperature)
}

func TestAnswerService_Answer_DefaultModel(t *testing.T) {
	llm := &stubLLM{reply: "ok", usage: domain.Usage{PromptTokens: 1000, CompletionTokens: 1000}}
	svc := NewAnswerService(llm, nil)

	answer, err := svc.Answer(context.Background(), nil, "q", nil, "")
	require.NoError(t, err)

	assert.Equal(t, "gpt-3.5-turbo", answer.Model)
	assert.InDelta(t, 0.0035, answer.Cost, 1e-12)
}

func TestAnswerService_Answer_LimitFitsContext(t *testing.T) {
	tok := word.New()
	passage := strings.TrimSpace(strings.Repeat("lorem ipsum dolor sit amet ", 40))
	chunks := chunksOf(passage, passage, passage, passage)

	for _, model := range []string{"gpt-4", "gpt-3.5-turbo"} {
		t.Run(model, func(t *testing.T) {
			llm := &stubLLM{reply: "ok"}
			svc := NewAnswerService(llm, nil, WithTokenizer(tok))

			_, err := svc.Answer(context.Background(),
				[]domain.Turn{domain.SystemTurn(domain.DefaultSystemPrompt)},
				"What is lorem ipsum?", chunks, model)
			require.NoError(t, err)

			prompt := 0
			for _, m := range llm.messages {
				prompt += tok.Count(m.Content)
			}
			pricing, _ := domain.LookupPricing(model)
			assert.Positive(t, llm.opts.MaxTokens)
			assert.LessOrEqual(t, prompt+llm.opts.MaxTokens, pricing.ContextSize)
		})
	}
}

func TestAnswerService_Answer_PromptFillsContext(t *testing.T) {
	llm := &stubLLM{reply: "ok"}
	svc := NewAnswerService(llm, nil, WithTokenizer(word.New()))
	huge := strings.TrimSpace(strings.Repeat("word ", 5000))

	_, err := svc.Answer(context.Background(), nil, "q", chunksOf(huge), "gpt-3.5-turbo")
	require.NoError(t, err)
	assert.Zero(t, llm.opts.MaxTokens)
}

func TestAnswerService_Answer_UnknownModelHasNoLimit(t *testing.T) {
	llm := &stubLLM{reply: "ok"}
	svc := NewAnswerService(llm, nil, WithTokenizer(word.New()))

	_, err := svc.Answer(context.Background(), nil, "q", chunksOf("c"), "llama3.2")
	require.NoError(t, err)
	assert.Zero(t, llm.opts.MaxTokens)
}

func TestAnswerService_Answer_UnknownModelIsFree(t *testing.T) {
	llm := &stubLLM{reply: "ok", usage: domain.Usage{PromptTokens: 5000, CompletionTokens: 5000}}
	svc := NewAnswerService(llm, nil)

	answer, err := svc.Answer(context.Background(), nil, "q", nil, "llama3.2")
	require.NoError(t, err)
	assert.Zero(t, answer.Cost)
	assert.Equal(t, domain.Usage{PromptTokens: 5000, CompletionTokens: 5000}, answer.Usage)
}

func TestAnswerService_Answer_ModelFailure(t *testing.T) {
	llm := &stubLLM{err: errUpstream}
	svc := NewAnswerService(llm, nil)

	answer, err := svc.Answer(context.Background(), nil, "q", chunksOf("c"), "gpt-4")
	require.ErrorIs(t, err, domain.ErrModelInvocation)
	require.ErrorIs(t, err, errUpstream)
	assert.True(t, domain.IsNoAnswer(err))
	assert.Empty(t, answer.Text)
	assert.Zero(t, answer.Cost)
}

func TestAnswerService_Answer_CustomPrompt(t *testing.T) {
	llm := &stubLLM{reply: "ok"}
	prompts := &stubPrompts{prompts: map[string]string{
		driven.PromptAnswer: "Q={question}\nC={context}",
	}}
	svc := NewAnswerService(llm, prompts)

	_, err := svc.Answer(context.Background(), nil, "why", chunksOf("a", "b"), "gpt-4")
	require.NoError(t, err)
	assert.Equal(t, "Q=why\nC=a\n\nb", llm.messages[0].Content)
}

func TestAnswerService_Answer_BrokenPromptFallsBack(t *testing.T) {
	llm := &stubLLM{reply: "ok"}
	prompts := &stubPrompts{prompts: map[string]string{
		driven.PromptAnswer: "{context} {question} {unknown}",
	}}
	svc := NewAnswerService(llm, prompts)

	_, err := svc.Answer(context.Background(), nil, "why", chunksOf("a"), "gpt-4")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(llm.messages[0].Content, "Question: why\nAnswer:"))
}

func TestAnswerService_Answer_MissingPromptUsesDefault(t *testing.T) {
	llm := &stubLLM{reply: "ok"}
	svc := NewAnswerService(llm, &stubPrompts{})

	_, err := svc.Answer(context.Background(), nil, "why", nil, "gpt-4")
	require.NoError(t, err)
	assert.Contains(t, llm.messages[0].Content, "Question: why")
}

func TestAnswerService_Answer_BracesInContext(t *testing.T) {
	llm := &stubLLM{reply: "ok"}
	svc := NewAnswerService(llm, nil)

	_, err := svc.Answer(context.Background(), nil, "what is {x}?", chunksOf("func f() { return }"), "gpt-4")
	require.NoError(t, err)
	assert.Contains(t, llm.messages[0].Content, "func f() { return }")
	assert.Contains(t, llm.messages[0].Content, "Question: what is {x}?")
}

func TestModelPricing_MatchesLedgerTotal(t *testing.T) {
	ledger := domain.NewUsageLedger()
	for _, c := range []float64{0.001, 0.002, 0.0005} {
		require.NoError(t, ledger.Record(c))
	}
	assert.Equal(t, 0.0035, math.Round(ledger.Total()*1e5)/1e5)
}
