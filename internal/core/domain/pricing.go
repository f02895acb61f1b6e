package domain

import "strings"

// TokenEstimateMargin is kept free of both prompt and completion, since
// prompt sizes are estimated with a local tokenizer.
const TokenEstimateMargin = 64

// ModelPricing holds the published per-1K-token USD rates and token limits
// of a chat model.
type ModelPricing struct {
	InputPer1K  float64
	OutputPer1K float64
	ContextSize int

	// MaxOutput caps the completion length. Zero means only the context
	// size limits it.
	MaxOutput int
}

// knownPricing is keyed by model name prefix. Longer prefixes win.
var knownPricing = map[string]ModelPricing{
	"gpt-3.5-turbo":     {InputPer1K: 0.0015, OutputPer1K: 0.002, ContextSize: 4096},
	"gpt-3.5-turbo-16k": {InputPer1K: 0.003, OutputPer1K: 0.004, ContextSize: 16385},
	"gpt-4":             {InputPer1K: 0.03, OutputPer1K: 0.06, ContextSize: 8192},
	"gpt-4-32k":         {InputPer1K: 0.06, OutputPer1K: 0.12, ContextSize: 32768},
	"gpt-4-turbo":       {InputPer1K: 0.01, OutputPer1K: 0.03, ContextSize: 128000, MaxOutput: 4096},
	"gpt-4o":            {InputPer1K: 0.0025, OutputPer1K: 0.01, ContextSize: 128000, MaxOutput: 16384},
	"gpt-4o-mini":       {InputPer1K: 0.00015, OutputPer1K: 0.0006, ContextSize: 128000, MaxOutput: 16384},
	"claude-3-5-sonnet": {InputPer1K: 0.003, OutputPer1K: 0.015, ContextSize: 200000, MaxOutput: 8192},
	"claude-3-5-haiku":  {InputPer1K: 0.0008, OutputPer1K: 0.004, ContextSize: 200000, MaxOutput: 8192},
	"claude-3-opus":     {InputPer1K: 0.015, OutputPer1K: 0.075, ContextSize: 200000, MaxOutput: 4096},
	"gemini-1.5-flash":  {InputPer1K: 0.000075, OutputPer1K: 0.0003, ContextSize: 1000000, MaxOutput: 8192},
	"gemini-1.5-pro":    {InputPer1K: 0.00125, OutputPer1K: 0.005, ContextSize: 2000000, MaxOutput: 8192},
}

// defaultContextSize is assumed for models missing from the pricing table.
const defaultContextSize = 4096

// LookupPricing returns the pricing for a model by longest matching prefix.
// The boolean is false for unknown models, which are treated as free.
func LookupPricing(model string) (ModelPricing, bool) {
	best := ""
	for prefix := range knownPricing {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return ModelPricing{ContextSize: defaultContextSize}, false
	}
	return knownPricing[best], true
}

// Cost returns the dollar cost of a model invocation.
func (p ModelPricing) Cost(u Usage) float64 {
	return float64(u.PromptTokens)/1000*p.InputPer1K +
		float64(u.CompletionTokens)/1000*p.OutputPer1K
}

// ResponseBudget returns the completion limit for a prompt of promptTokens:
// what is left of the context window after the prompt and
// TokenEstimateMargin, capped at MaxOutput. Zero means the prompt leaves no
// room and no limit should be requested.
func (p ModelPricing) ResponseBudget(promptTokens int) int {
	n := p.ContextSize - promptTokens - TokenEstimateMargin
	if n <= 0 {
		return 0
	}
	if p.MaxOutput > 0 && n > p.MaxOutput {
		n = p.MaxOutput
	}
	return n
}
