// Package chunker provides a token-aware recursive text chunker.
//
// Text is split at the coarsest boundary that keeps each piece within the
// token budget: paragraphs first, then lines, sentences and words, and finally
// hard token cuts. Separators stay attached to the piece they end, so the
// chunk bodies concatenate back to the original text.
package chunker

import (
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// DefaultMaxTokens is the default token budget per chunk.
const DefaultMaxTokens = domain.DefaultChunkMaxTokens

// DefaultOverlap is the default number of tokens repeated between chunks.
const DefaultOverlap = domain.DefaultChunkOverlapTokens

// Split boundaries, coarsest first.
var separatorLevels = [][]string{
	{"\n\n"},
	{"\n"},
	{". ", "! ", "? ", "。", "！", "？"},
	{" "},
}

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// Processor splits text into chunks of at most maxTokens tokens.
type Processor struct {
	tokenizer driven.Tokenizer
	maxTokens int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxTokens sets the token budget per chunk.
func WithMaxTokens(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxTokens = n
		}
	}
}

// WithOverlap sets the number of trailing tokens of each chunk repeated at
// the start of the next one.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor counting tokens with tok.
func New(tok driven.Tokenizer, opts ...Option) *Processor {
	p := &Processor{
		tokenizer: tok,
		maxTokens: DefaultMaxTokens,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap leaves room for new content
	if p.overlap >= p.maxTokens {
		p.overlap = p.maxTokens / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker/" + p.tokenizer.Name()
}

// MaxTokens returns the configured token budget.
func (p *Processor) MaxTokens() int {
	return p.maxTokens
}

// Overlap returns the configured overlap in tokens.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Chunk splits text into ordered chunks.
func (p *Processor) Chunk(text string) []domain.Chunk {
	if text == "" {
		return nil
	}

	bodies := p.split(text, 0, p.maxTokens-p.overlap)
	chunks := make([]domain.Chunk, 0, len(bodies))

	for i, body := range bodies {
		prefix := ""
		if i > 0 && p.overlap > 0 {
			prefix = p.overlapPrefix(chunks[i-1].Text, body)
		}

		full := prefix + body
		chunks = append(chunks, domain.Chunk{
			Index:   i,
			Text:    full,
			Overlap: len(prefix),
			Tokens:  p.tokenizer.Count(full),
		})
	}

	return chunks
}

// split breaks text into pieces of at most budget tokens, preferring the
// separators at level and below. Adjacent pieces are merged while they fit.
func (p *Processor) split(text string, level, budget int) []string {
	if p.tokenizer.Count(text) <= budget {
		return []string{text}
	}
	if level >= len(separatorLevels) {
		return p.hardCut(text, budget)
	}

	parts := splitKeep(text, separatorLevels[level])
	if len(parts) == 1 {
		return p.split(text, level+1, budget)
	}

	var out []string
	current := ""
	for _, part := range parts {
		if p.tokenizer.Count(part) > budget {
			if current != "" {
				out = append(out, current)
				current = ""
			}
			out = append(out, p.split(part, level+1, budget)...)
			continue
		}

		if current != "" && p.tokenizer.Count(current+part) > budget {
			out = append(out, current)
			current = ""
		}
		current += part
	}
	if current != "" {
		out = append(out, current)
	}

	return out
}

// hardCut splits text at token boundaries when no separator fits.
func (p *Processor) hardCut(text string, budget int) []string {
	tokens := p.tokenizer.Split(text)

	var out []string
	for i := 0; i < len(tokens); {
		j := min(i+budget, len(tokens))
		piece := strings.Join(tokens[i:j], "")
		for j > i+1 && p.tokenizer.Count(piece) > budget {
			j--
			piece = strings.Join(tokens[i:j], "")
		}
		out = append(out, piece)
		i = j
	}

	return out
}

// overlapPrefix returns the trailing overlap tokens of prev, shortened from
// the front until prefix and body fit the token budget together.
func (p *Processor) overlapPrefix(prev, body string) string {
	tokens := p.tokenizer.Split(prev)
	if len(tokens) > p.overlap {
		tokens = tokens[len(tokens)-p.overlap:]
	}

	for len(tokens) > 0 {
		prefix := strings.Join(tokens, "")
		if p.tokenizer.Count(prefix+body) <= p.maxTokens {
			return prefix
		}
		tokens = tokens[1:]
	}

	return ""
}

// splitKeep splits text after every occurrence of any separator, keeping the
// separator at the end of the piece it terminates.
func splitKeep(text string, seps []string) []string {
	var parts []string
	start := 0

	for i := 0; i < len(text); {
		n := matchAt(text, i, seps)
		if n == 0 {
			i++
			continue
		}
		i += n
		parts = append(parts, text[start:i])
		start = i
	}
	if start < len(text) {
		parts = append(parts, text[start:])
	}

	return parts
}

func matchAt(text string, i int, seps []string) int {
	for _, sep := range seps {
		if strings.HasPrefix(text[i:], sep) {
			return len(sep)
		}
	}
	return 0
}
