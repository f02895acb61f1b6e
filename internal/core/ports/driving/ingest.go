package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// IngestService turns uploaded files into a persisted index.
type IngestService interface {
	// Ingest extracts every upload, chunks the joined text, builds an index
	// and persists it. Nothing is persisted if any step fails.
	Ingest(ctx context.Context, uploads []domain.Upload, progress ProgressFunc) (*domain.IngestReport, error)
}
