package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// ExportService sends conversation transcripts to an export sink.
type ExportService interface {
	// Transcript renders the user and assistant turns, one per line.
	Transcript(turns []domain.Turn) string

	// Export sends the transcript of turns under title and returns a
	// reference to the created record.
	Export(ctx context.Context, title string, turns []domain.Turn) (string, error)
}
