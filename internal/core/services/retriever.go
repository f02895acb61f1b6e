package services

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure RetrieverService implements the interface.
var _ driving.Retriever = (*RetrieverService)(nil)

// RetrieverService returns the chunks closest to a query.
type RetrieverService struct {
	index driving.IndexService
}

// NewRetrieverService creates a retriever over an index service.
func NewRetrieverService(index driving.IndexService) *RetrieverService {
	return &RetrieverService{index: index}
}

// Retrieve returns the k chunks nearest to query, most relevant first.
func (r *RetrieverService) Retrieve(
	ctx context.Context, index *domain.VectorIndex, query string, k int,
) ([]domain.Chunk, error) {
	if k <= 0 {
		k = domain.DefaultRetrievalK
	}

	hits, err := r.index.Query(ctx, index, query, k)
	if err != nil {
		return nil, err
	}

	chunks := make([]domain.Chunk, len(hits))
	for i, h := range hits {
		chunks[i] = h.Chunk
	}
	return chunks, nil
}
