package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/extractors"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <files...>",
	Short: "Index documents for question answering",
	Long: `Extracts the text of every file, splits it into chunks, embeds each chunk
and saves the index, replacing any previous one.

Supported formats: PDF, plain text, Markdown and HTML.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return notConfigured("ingest")
	}

	uploads, err := readUploads(args)
	if err != nil {
		return err
	}

	progress, finish := embedProgress(cmd.ErrOrStderr())
	report, err := ingestService.Ingest(cmd.Context(), uploads, progress)
	finish()
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if sessionService != nil {
		sessionService.ReloadIndex()
	}

	printIngestReport(cmd, report)
	return nil
}

// readUploads reads each path and detects its content type.
func readUploads(paths []string) ([]domain.Upload, error) {
	uploads := make([]domain.Upload, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		name := filepath.Base(path)
		uploads = append(uploads, domain.Upload{
			Name:     name,
			MIMEType: extractors.DetectMIMEType(name, content),
			Content:  content,
		})
	}
	return uploads, nil
}

// embedProgress returns a progress callback drawing a bar on w when w is a
// terminal, and a function that completes the bar.
func embedProgress(w io.Writer) (driving.ProgressFunc, func()) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil, func() {}
	}

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionSetDescription("Embedding chunks"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set(done)
	}
	finish := func() {
		if bar != nil {
			_ = bar.Finish()
		}
	}
	return progress, finish
}

func printIngestReport(cmd *cobra.Command, report *domain.IngestReport) {
	cmd.Printf("Indexed %d file(s), %d page(s)\n", report.Files, report.Pages)
	cmd.Printf("  Chunks: %d (%d tokens)\n", report.Chunks, report.Tokens)
	cmd.Printf("  Model:  %s\n", report.Model)
	cmd.Printf("  Index:  %s\n", report.IndexName)
}
