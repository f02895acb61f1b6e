package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// ProgressFunc reports progress as done out of total units of work.
type ProgressFunc func(done, total int)

// IndexService builds, persists, loads and queries vector indexes.
type IndexService interface {
	// Build embeds chunks and returns a new in-memory index. Ids are
	// assigned 0..n-1 in chunk order. Any embedding failure returns
	// domain.ErrEmbeddingService and no index.
	Build(ctx context.Context, chunks []domain.Chunk, progress ProgressFunc) (*domain.VectorIndex, error)

	// Persist stores index under name, replacing any previous index.
	Persist(ctx context.Context, index *domain.VectorIndex, name string) error

	// Load reads the index stored under name and checks that it was built
	// with the current embedder. Returns domain.ErrIndexNotFound or
	// domain.ErrIndexCorrupt.
	Load(ctx context.Context, name string) (*domain.VectorIndex, error)

	// Query returns the k chunks closest to text, nearest first.
	// Returns domain.ErrEmptyIndex when the index holds no vectors.
	Query(ctx context.Context, index *domain.VectorIndex, text string, k int) ([]domain.ScoredChunk, error)
}

// Retriever selects the chunks placed in an answer prompt.
type Retriever interface {
	// Retrieve returns the k chunks most relevant to query, most relevant
	// first. A k of zero or less uses domain.DefaultRetrievalK.
	Retrieve(ctx context.Context, index *domain.VectorIndex, query string, k int) ([]domain.Chunk, error)
}
