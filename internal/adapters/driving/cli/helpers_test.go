package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/adapters/driven/tokenizer/word"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/extractors"
	"github.com/custodia-labs/docqa/internal/extractors/markdown"
	"github.com/custodia-labs/docqa/internal/extractors/plaintext"
	"github.com/custodia-labs/docqa/internal/postprocessors/chunker"
)

const testIndexName = "test"

var testVocabulary = []string{"capital", "france", "paris", "germany", "berlin", "bananas", "yellow"}

// stubEmbedder embeds text as word counts over testVocabulary.
type stubEmbedder struct{}

func (stubEmbedder) vector(text string) []float32 {
	vec := make([]float32, len(testVocabulary))
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?")
		for i, v := range testVocabulary {
			if w == v {
				vec[i]++
			}
		}
	}
	return vec
}

func (e stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return e.vector(text), nil
}

func (e stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func (stubEmbedder) Dimensions() int              { return len(testVocabulary) }
func (stubEmbedder) ModelName() string            { return "stub-embed" }
func (stubEmbedder) Ping(_ context.Context) error { return nil }
func (stubEmbedder) Close() error                 { return nil }

// stubLLM answers every chat with reply and records the messages.
type stubLLM struct {
	mu       sync.Mutex
	reply    string
	err      error
	messages [][]driven.ChatMessage
	models   []string
}

func (l *stubLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (driven.ChatResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, messages)
	l.models = append(l.models, opts.Model)
	if l.err != nil {
		return driven.ChatResult{}, l.err
	}
	return driven.ChatResult{
		Content: l.reply,
		Usage:   domain.Usage{PromptTokens: 1000, CompletionTokens: 500},
	}, nil
}

func (l *stubLLM) ModelName() string            { return "gpt-3.5-turbo" }
func (l *stubLLM) Ping(_ context.Context) error { return nil }
func (l *stubLLM) Close() error                 { return nil }

// memorySink keeps exported transcripts.
type memorySink struct {
	titles   []string
	contents []string
}

func (s *memorySink) Export(_ context.Context, title, content string) (string, error) {
	s.titles = append(s.titles, title)
	s.contents = append(s.contents, content)
	return "memory://" + title, nil
}

func (s *memorySink) Name() string { return "memory" }

// testServices holds the stubs behind the configured services.
type testServices struct {
	llm     *stubLLM
	sink    *memorySink
	indexes *memory.IndexStore
	config  *memory.ConfigStore
}

// testEnv is set by setupTestServices.
var testEnv *testServices

// setupTestServices configures every command with in-memory services and
// returns a cleanup function restoring the previous configuration.
func setupTestServices() func() {
	prev := Config{
		Version:      version,
		Settings:     settingsService,
		Ingest:       ingestService,
		Session:      sessionService,
		Export:       exportService,
		Index:        indexService,
		Retriever:    retrieverService,
		IndexName:    indexName,
		Unavailable:  unavailable,
		WatchPrompts: promptWatcher,
	}

	env := &testServices{
		llm:     &stubLLM{reply: "Paris is the capital of France."},
		sink:    &memorySink{},
		indexes: memory.NewIndexStore(),
		config:  memory.NewConfigStore(),
	}
	testEnv = env

	indexes := services.NewIndexService(stubEmbedder{}, env.indexes, services.IndexConfig{})
	retriever := services.NewRetrieverService(indexes)
	answers := services.NewAnswerService(env.llm, nil)
	registry := extractors.NewRegistry(plaintext.New(), markdown.New())
	chunks := chunker.New(word.New(), chunker.WithMaxTokens(8))

	Configure(&Config{
		Settings:  services.NewSettingsService(env.config, nil),
		Ingest:    services.NewIngestService(registry, chunks, indexes, testIndexName),
		Session:   services.NewSession(indexes, retriever, answers, services.SessionConfig{IndexName: testIndexName}),
		Export:    services.NewExportService(env.sink),
		Index:     indexes,
		Retriever: retriever,
		IndexName: testIndexName,
	})

	return func() {
		Configure(&prev)
		testEnv = nil
		resetFlags()
	}
}

// clearServices removes every service and returns a cleanup function.
func clearServices() func() {
	cleanup := setupTestServices()
	Configure(&Config{})
	return cleanup
}

// resetFlags restores flag variables changed by a test.
func resetFlags() {
	askModel = ""
	askK = 0
	askJSON = false
	askExport = ""
	verbose = false
	mcpPort = 0
	rootCmd.SetArgs(nil)
	rootCmd.SetIn(nil)
	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
}

// writeFacts writes a small document set and returns the file paths.
func writeFacts(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"france.txt": "The capital of France is Paris.",
		"germany.md": "# Germany\n\nThe capital of Germany is Berlin.",
	}
	var paths []string
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		paths = append(paths, path)
	}
	return paths
}

// ingestFacts ingests writeFacts through the configured ingest service.
func ingestFacts(t *testing.T) {
	t.Helper()
	uploads, err := readUploads(writeFacts(t))
	require.NoError(t, err)
	_, err = ingestService.Ingest(context.Background(), uploads, nil)
	require.NoError(t, err)
}
