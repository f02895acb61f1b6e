// Package cli provides the docqa command line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

var verbose bool

// Services driven by the commands. They are nil until Configure is called.
var (
	settingsService  driving.SettingsService
	ingestService    driving.IngestService
	sessionService   driving.SessionService
	exportService    driving.ExportService
	indexService     driving.IndexService
	retrieverService driving.Retriever

	// indexName is the persisted index the session and MCP tools read.
	indexName string

	// unavailable explains why the pipeline services are nil.
	unavailable error
)

// Config holds the services the commands drive.
type Config struct {
	Version   string
	Settings  driving.SettingsService
	Ingest    driving.IngestService
	Session   driving.SessionService
	Export    driving.ExportService
	Index     driving.IndexService
	Retriever driving.Retriever
	IndexName string

	// Unavailable is reported by commands whose services could not be
	// built, usually because a provider is not configured yet.
	Unavailable error

	// WatchPrompts reloads prompt templates while the chat UI runs.
	// It blocks until ctx is cancelled.
	WatchPrompts func(ctx context.Context, onChange func(name string)) error
}

// promptWatcher is Config.WatchPrompts.
var promptWatcher func(ctx context.Context, onChange func(name string)) error

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ask questions about your documents",
	Long: `docqa indexes your documents and answers questions about them with a
language model, citing the passages it retrieved.

Get started:
  docqa settings llm           # choose a language model provider
  docqa settings embedding     # choose an embedding provider
  docqa ingest handbook.pdf    # build the index
  docqa ask "What is the leave policy?"
  docqa chat                   # interactive session`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Configure sets the services used by every command.
func Configure(cfg *Config) {
	if cfg.Version != "" {
		version = cfg.Version
	}
	settingsService = cfg.Settings
	ingestService = cfg.Ingest
	sessionService = cfg.Session
	exportService = cfg.Export
	indexService = cfg.Index
	retrieverService = cfg.Retriever
	indexName = cfg.IndexName
	unavailable = cfg.Unavailable
	promptWatcher = cfg.WatchPrompts
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// notConfigured returns the error for a missing service.
func notConfigured(name string) error {
	if unavailable != nil {
		return fmt.Errorf("%s service not configured: %w", name, unavailable)
	}
	return fmt.Errorf("%s service not configured", name)
}
