package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexConfig configures an IndexService.
type IndexConfig struct {
	// BatchSize is the number of chunks embedded per request.
	BatchSize int

	// Metric is the query distance metric.
	Metric domain.DistanceMetric
}

// IndexService builds and queries exact (brute force) vector indexes.
type IndexService struct {
	embedder  driven.EmbeddingService
	store     driven.IndexStore
	batchSize int
	metric    domain.DistanceMetric
	distance  distanceFunc
}

// NewIndexService creates a new index service.
// Zero config values use domain.DefaultEmbeddingBatchSize and cosine distance.
func NewIndexService(embedder driven.EmbeddingService, store driven.IndexStore, cfg IndexConfig) *IndexService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = domain.DefaultEmbeddingBatchSize
	}
	if !cfg.Metric.IsValid() {
		cfg.Metric = domain.DistanceCosine
	}

	return &IndexService{
		embedder:  embedder,
		store:     store,
		batchSize: cfg.BatchSize,
		metric:    cfg.Metric,
		distance:  distanceFor(cfg.Metric),
	}
}

// Metric returns the configured distance metric.
func (s *IndexService) Metric() domain.DistanceMetric {
	return s.metric
}

// Build embeds chunks in batches and returns the resulting index.
func (s *IndexService) Build(
	ctx context.Context, chunks []domain.Chunk, progress driving.ProgressFunc,
) (*domain.VectorIndex, error) {
	logger.Section("Index Build")

	dims := s.embedder.Dimensions()
	index := &domain.VectorIndex{
		Model:      s.embedder.ModelName(),
		Dimensions: dims,
		Entries:    make([]domain.IndexEntry, 0, len(chunks)),
	}
	logger.Debug("Embedding %d chunks with %s (%d dims), batch size %d",
		len(chunks), index.Model, dims, s.batchSize)

	for start := 0; start < len(chunks); start += s.batchSize {
		end := min(start+s.batchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: chunks %d-%d: %w", domain.ErrEmbeddingService, start, end-1, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("%w: chunks %d-%d: got %d vectors for %d texts",
				domain.ErrEmbeddingService, start, end-1, len(vectors), len(batch))
		}

		for i, vec := range vectors {
			if len(vec) != index.Dimensions {
				return nil, fmt.Errorf("%w: chunk %d: got %d dimensions, want %d",
					domain.ErrEmbeddingService, start+i, len(vec), index.Dimensions)
			}
			index.Entries = append(index.Entries, domain.IndexEntry{
				ID:     start + i,
				Chunk:  batch[i],
				Vector: vec,
			})
		}

		logger.Debug("Embedded chunks %d-%d", start, end-1)
		if progress != nil {
			progress(end, len(chunks))
		}
	}

	return index, nil
}

// Persist stores index under name.
func (s *IndexService) Persist(ctx context.Context, index *domain.VectorIndex, name string) error {
	if index == nil {
		return fmt.Errorf("%w: nil index", domain.ErrInvalidInput)
	}
	if name == "" {
		name = domain.DefaultIndexName
	}

	if err := s.store.Save(ctx, name, index); err != nil {
		return fmt.Errorf("persist index %q: %w", name, err)
	}
	logger.Info("Persisted index %q: %d vectors", name, index.Len())
	return nil
}

// Load reads the index stored under name.
func (s *IndexService) Load(ctx context.Context, name string) (*domain.VectorIndex, error) {
	if name == "" {
		name = domain.DefaultIndexName
	}

	index, err := s.store.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load index %q: %w", name, err)
	}
	if err := index.CheckCompatible(s.embedder.ModelName(), s.embedder.Dimensions()); err != nil {
		return nil, fmt.Errorf("load index %q: %w", name, err)
	}

	logger.Debug("Loaded index %q: %d vectors, model %s", name, index.Len(), index.Model)
	return index, nil
}

// Query embeds text and returns the k nearest chunks by exact distance.
// Equal distances keep index order.
func (s *IndexService) Query(
	ctx context.Context, index *domain.VectorIndex, text string, k int,
) ([]domain.ScoredChunk, error) {
	if index.Len() == 0 {
		return nil, domain.ErrEmptyIndex
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}

	query, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrEmbeddingService, err)
	}
	if len(query) != index.Dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrEmbeddingService, len(query), index.Dimensions)
	}

	scored := make([]domain.ScoredChunk, len(index.Entries))
	for i, e := range index.Entries {
		scored[i] = domain.ScoredChunk{
			ID:       e.ID,
			Chunk:    e.Chunk,
			Distance: s.distance(query, e.Vector),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Distance < scored[j].Distance
	})

	if k < len(scored) {
		scored = scored[:k]
	}
	logger.Debug("Query matched %d chunks, nearest distance %.4f", len(scored), scored[0].Distance)
	return scored, nil
}
