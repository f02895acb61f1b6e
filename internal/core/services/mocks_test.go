package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var errUpstream = errors.New("upstream unavailable")

// testVocabulary defines the dimensions of vocabEmbedder vectors.
var testVocabulary = []string{
	"capital", "france", "paris", "germany", "berlin",
	"bananas", "yellow", "fruit", "go", "language",
}

// vocabEmbedder implements driven.EmbeddingService with bag-of-words vectors
// over testVocabulary, so similarity is predictable in tests.
type vocabEmbedder struct {
	mu sync.Mutex

	model string

	// err is returned by every call when set.
	err error

	// failBatch makes the nth EmbedBatch call (1-based) fail.
	failBatch int

	// shortBatch drops the last vector of every batch.
	shortBatch bool

	// dims overrides the returned vector size when positive.
	dims int

	batches [][]string
	queries []string
}

func newVocabEmbedder() *vocabEmbedder {
	return &vocabEmbedder{model: "vocab-embed"}
}

func (e *vocabEmbedder) vector(text string) []float32 {
	vec := make([]float32, len(testVocabulary))
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?;:\"'")
		for i, v := range testVocabulary {
			if w == v {
				vec[i]++
			}
		}
	}
	if e.dims > 0 {
		vec = append(vec, make([]float32, e.dims)...)[:e.dims]
	}
	return vec
}

func (e *vocabEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queries = append(e.queries, text)
	if e.err != nil {
		return nil, e.err
	}
	return e.vector(text), nil
}

func (e *vocabEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.batches = append(e.batches, texts)
	if e.err != nil {
		return nil, e.err
	}
	if e.failBatch > 0 && len(e.batches) == e.failBatch {
		return nil, errUpstream
	}

	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	if e.shortBatch {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (e *vocabEmbedder) Dimensions() int {
	return len(testVocabulary)
}

func (e *vocabEmbedder) ModelName() string {
	return e.model
}

func (e *vocabEmbedder) Ping(_ context.Context) error {
	return e.err
}

func (e *vocabEmbedder) Close() error {
	return nil
}

// stubLLM implements driven.LLMService returning a canned completion.
type stubLLM struct {
	mu sync.Mutex

	reply string
	usage domain.Usage
	err   error

	calls    int
	messages []driven.ChatMessage
	opts     driven.ChatOptions
}

func (l *stubLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (driven.ChatResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	l.messages = messages
	l.opts = opts
	if l.err != nil {
		return driven.ChatResult{}, l.err
	}
	return driven.ChatResult{Content: l.reply, Usage: l.usage}, nil
}

func (l *stubLLM) ModelName() string {
	return "gpt-3.5-turbo"
}

func (l *stubLLM) Ping(_ context.Context) error {
	return l.err
}

func (l *stubLLM) Close() error {
	return nil
}

// stubPrompts implements driven.PromptStore.
type stubPrompts struct {
	prompts map[string]string
}

func (p *stubPrompts) Load(name string) (string, error) {
	t, ok := p.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return t, nil
}

func (p *stubPrompts) Reload() {}

// recordingSink implements driven.ExportSink.
type recordingSink struct {
	title   string
	content string
	err     error
}

func (s *recordingSink) Export(_ context.Context, title, content string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.title = title
	s.content = content
	return "memory://" + title, nil
}

func (s *recordingSink) Name() string {
	return "recording"
}

// failingIndexStore implements driven.IndexStore with a failing Save.
type failingIndexStore struct {
	driven.IndexStore
	saveErr error
}

func (s *failingIndexStore) Save(_ context.Context, _ string, _ *domain.VectorIndex) error {
	return s.saveErr
}
