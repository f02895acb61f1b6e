// Command docqa answers questions about a set of documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	fileexport "github.com/custodia-labs/docqa/internal/adapters/driven/export/file"
	"github.com/custodia-labs/docqa/internal/adapters/driven/export/notion"
	filestorage "github.com/custodia-labs/docqa/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/minio"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa/internal/adapters/driven/tokenizer/tiktoken"
	"github.com/custodia-labs/docqa/internal/adapters/driven/tokenizer/word"
	"github.com/custodia-labs/docqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/extractors"
	"github.com/custodia-labs/docqa/internal/extractors/html"
	"github.com/custodia-labs/docqa/internal/extractors/markdown"
	"github.com/custodia-labs/docqa/internal/extractors/pdf"
	"github.com/custodia-labs/docqa/internal/extractors/plaintext"
	"github.com/custodia-labs/docqa/internal/logger"
	"github.com/custodia-labs/docqa/internal/postprocessors/chunker"
)

// version is set at build time.
var version = "dev"

func main() {
	code := 0
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		code = 1
	}
	logger.Sync()
	os.Exit(code)
}

func run() error {
	// A missing .env is normal.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("loading .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	cfg := &cli.Config{
		Version:  version,
		Settings: settingsService,
	}

	cleanup, err := wire(cfg, settingsService)
	if err != nil {
		// Settings commands still work without a usable pipeline.
		logger.Debug("pipeline unavailable: %v", err)
		cfg.Unavailable = err
	}
	defer cleanup()

	cli.Configure(cfg)
	return cli.Execute(ctx)
}

// wire builds the question-answering pipeline from the saved settings and
// adds it to cfg. The returned cleanup is never nil.
func wire(cfg *cli.Config, settingsService *services.SettingsService) (func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	settings, err := settingsService.Get()
	if err != nil {
		return cleanup, fmt.Errorf("loading settings: %w", err)
	}

	result := ai.Init(*settings)
	closers = append(closers, result.Close)
	if result.EmbeddingService == nil || result.LLMService == nil {
		reason := strings.Join(result.Warnings, "; ")
		if reason == "" {
			reason = "providers are not configured"
		}
		return cleanup, fmt.Errorf("%s. Run 'docqa settings wizard'", reason)
	}

	store, closeStore, err := openIndexStore(settings.Index)
	if err != nil {
		return cleanup, err
	}
	closers = append(closers, closeStore)

	prompts, err := file.NewPromptStore("")
	if err != nil {
		return cleanup, fmt.Errorf("opening prompts: %w", err)
	}
	system, err := prompts.Load(driven.PromptChatSystem)
	if err != nil {
		logger.Warn("loading system prompt: %v", err)
		system = domain.DefaultSystemPrompt
	}

	indexes := services.NewIndexService(result.EmbeddingService, store, services.IndexConfig{
		BatchSize: settings.Embedding.BatchSize,
		Metric:    settings.Retrieval.Metric,
	})
	retriever := services.NewRetrieverService(indexes)
	tokenizer := newTokenizer()
	answers := services.NewAnswerService(result.LLMService, prompts, services.WithTokenizer(tokenizer))

	chunks := chunker.New(tokenizer,
		chunker.WithMaxTokens(settings.Chunk.MaxTokens),
		chunker.WithOverlap(settings.Chunk.OverlapTokens),
	)
	registry := extractors.NewRegistry(plaintext.New(), markdown.New(), html.New(), pdf.New())

	cfg.Index = indexes
	cfg.Retriever = retriever
	cfg.IndexName = settings.Index.Name
	cfg.Ingest = services.NewIngestService(registry, chunks, indexes, settings.Index.Name)
	cfg.Session = services.NewSession(indexes, retriever, answers, services.SessionConfig{
		IndexName:    settings.Index.Name,
		K:            settings.Retrieval.K,
		Model:        settings.LLM.Model,
		SystemPrompt: system,
	})
	cfg.WatchPrompts = func(ctx context.Context, onChange func(string)) error {
		return file.WatchPrompts(ctx, prompts, onChange)
	}

	sink, err := openExportSink(settings.Export)
	if err != nil {
		// Asking still works; only exporting reports the problem.
		logger.Debug("export unavailable: %v", err)
	} else {
		cfg.Export = services.NewExportService(sink)
	}

	return cleanup, nil
}

// newTokenizer returns the BPE tokenizer, or the word tokenizer when the
// encoding cannot be loaded (it is downloaded on first use).
func newTokenizer() driven.Tokenizer {
	tok, err := tiktoken.New(tiktoken.DefaultEncoding)
	if err != nil {
		logger.Warn("falling back to word tokenizer: %v", err)
		return word.New()
	}
	return tok
}

// openIndexStore opens the configured index backend.
func openIndexStore(cfg domain.IndexSettings) (driven.IndexStore, func(), error) {
	switch cfg.Backend {
	case domain.IndexBackendSQLite:
		store, err := sqlite.NewStore(cfg.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite index store: %w", err)
		}
		return store.IndexStore(), func() { _ = store.Close() }, nil

	case domain.IndexBackendMinIO:
		store, err := minio.NewIndexStore(minio.Config{
			Endpoint:  cfg.MinIO.Endpoint,
			Bucket:    cfg.MinIO.Bucket,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			UseSSL:    cfg.MinIO.UseSSL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("opening minio index store: %w", err)
		}
		return store, func() {}, nil

	default:
		store, err := filestorage.NewIndexStore(cfg.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening index store: %w", err)
		}
		return store, func() {}, nil
	}
}

// openExportSink opens the configured transcript sink.
func openExportSink(cfg domain.ExportSettings) (driven.ExportSink, error) {
	if cfg.Sink == domain.ExportSinkNotion {
		return notion.NewSink(notion.Config{
			Token:      cfg.NotionToken,
			DatabaseID: cfg.NotionDatabaseID,
		})
	}
	return fileexport.NewSink(cfg.Dir)
}
