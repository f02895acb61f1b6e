package services

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

func chunksOf(texts ...string) []domain.Chunk {
	out := make([]domain.Chunk, len(texts))
	for i, t := range texts {
		out[i] = domain.Chunk{Index: i, Text: t, Tokens: len(t)}
	}
	return out
}

var factChunks = chunksOf(
	"The capital of France is Paris.",
	"Bananas are a yellow fruit.",
	"The capital of Germany is Berlin.",
)

func TestNewIndexService_Defaults(t *testing.T) {
	svc := NewIndexService(newVocabEmbedder(), memory.NewIndexStore(), IndexConfig{})

	assert.Equal(t, domain.DefaultEmbeddingBatchSize, svc.batchSize)
	assert.Equal(t, domain.DistanceCosine, svc.Metric())
}

func TestIndexService_Build(t *testing.T) {
	embedder := newVocabEmbedder()
	svc := NewIndexService(embedder, memory.NewIndexStore(), IndexConfig{BatchSize: 2})

	var progress [][2]int
	index, err := svc.Build(context.Background(), factChunks, func(done, total int) {
		progress = append(progress, [2]int{done, total})
	})
	require.NoError(t, err)

	assert.Equal(t, "vocab-embed", index.Model)
	assert.Equal(t, len(testVocabulary), index.Dimensions)
	require.Equal(t, 3, index.Len())
	for i, e := range index.Entries {
		assert.Equal(t, i, e.ID)
		assert.Equal(t, factChunks[i], e.Chunk)
		assert.Len(t, e.Vector, index.Dimensions)
	}
	require.NoError(t, index.Validate())

	assert.Len(t, embedder.batches, 2)
	assert.Equal(t, [][2]int{{2, 3}, {3, 3}}, progress)
}

func TestIndexService_Build_Empty(t *testing.T) {
	svc := NewIndexService(newVocabEmbedder(), memory.NewIndexStore(), IndexConfig{})

	index, err := svc.Build(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, index.Len())
}

func TestIndexService_Build_EmbeddingFailure(t *testing.T) {
	tests := []struct {
		name     string
		embedder *vocabEmbedder
	}{
		{"service error", &vocabEmbedder{model: "m", err: errUpstream}},
		{"second batch fails", &vocabEmbedder{model: "m", failBatch: 2}},
		{"missing vector", &vocabEmbedder{model: "m", shortBatch: true}},
		{"wrong dimensions", &vocabEmbedder{model: "m", dims: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewIndexService(tt.embedder, memory.NewIndexStore(), IndexConfig{BatchSize: 2})

			index, err := svc.Build(context.Background(), factChunks, nil)
			require.ErrorIs(t, err, domain.ErrEmbeddingService)
			assert.Nil(t, index)
		})
	}
}

func TestIndexService_PersistLoad(t *testing.T) {
	ctx := context.Background()
	store := memory.NewIndexStore()
	svc := NewIndexService(newVocabEmbedder(), store, IndexConfig{})

	index, err := svc.Build(ctx, factChunks, nil)
	require.NoError(t, err)
	require.NoError(t, svc.Persist(ctx, index, "facts"))

	loaded, err := svc.Load(ctx, "facts")
	require.NoError(t, err)
	assert.Equal(t, index, loaded)

	query := "capital of France"
	want, err := svc.Query(ctx, index, query, 3)
	require.NoError(t, err)
	got, err := svc.Query(ctx, loaded, query, 3)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestIndexService_Persist_DefaultName(t *testing.T) {
	ctx := context.Background()
	store := memory.NewIndexStore()
	svc := NewIndexService(newVocabEmbedder(), store, IndexConfig{})

	index, err := svc.Build(ctx, factChunks, nil)
	require.NoError(t, err)
	require.NoError(t, svc.Persist(ctx, index, ""))

	_, err = store.Load(ctx, domain.DefaultIndexName)
	require.NoError(t, err)
}

func TestIndexService_Persist_Nil(t *testing.T) {
	svc := NewIndexService(newVocabEmbedder(), memory.NewIndexStore(), IndexConfig{})

	err := svc.Persist(context.Background(), nil, "x")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIndexService_Load_NotFound(t *testing.T) {
	svc := NewIndexService(newVocabEmbedder(), memory.NewIndexStore(), IndexConfig{})

	_, err := svc.Load(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrIndexNotFound)
}

func TestIndexService_Load_Incompatible(t *testing.T) {
	ctx := context.Background()
	store := memory.NewIndexStore()

	builder := NewIndexService(newVocabEmbedder(), store, IndexConfig{})
	index, err := builder.Build(ctx, factChunks, nil)
	require.NoError(t, err)
	require.NoError(t, builder.Persist(ctx, index, "facts"))

	t.Run("different model", func(t *testing.T) {
		other := newVocabEmbedder()
		other.model = "other-embed"
		svc := NewIndexService(other, store, IndexConfig{})

		_, err := svc.Load(ctx, "facts")
		require.ErrorIs(t, err, domain.ErrIndexCorrupt)
	})

	t.Run("different dimensions", func(t *testing.T) {
		stored := &domain.VectorIndex{
			Model:      "vocab-embed",
			Dimensions: 3,
			Entries:    []domain.IndexEntry{{ID: 0, Chunk: factChunks[0], Vector: []float32{1, 0, 0}}},
		}
		require.NoError(t, store.Save(ctx, "small", stored))

		svc := NewIndexService(newVocabEmbedder(), store, IndexConfig{})
		_, err := svc.Load(ctx, "small")
		require.ErrorIs(t, err, domain.ErrIndexCorrupt)
	})
}

func TestIndexService_Query_Ordering(t *testing.T) {
	ctx := context.Background()
	svc := NewIndexService(newVocabEmbedder(), memory.NewIndexStore(), IndexConfig{})

	index, err := svc.Build(ctx, factChunks, nil)
	require.NoError(t, err)

	hits, err := svc.Query(ctx, index, "What is the capital of France?", 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, 0, hits[0].ID)
	assert.Equal(t, 2, hits[1].ID)
	assert.Equal(t, 1, hits[2].ID)
	for i := 1; i < len(hits); i++ {
		assert.LessOrEqual(t, hits[i-1].Distance, hits[i].Distance)
	}
}

func TestIndexService_Query_TruncatesToK(t *testing.T) {
	ctx := context.Background()
	svc := NewIndexService(newVocabEmbedder(), memory.NewIndexStore(), IndexConfig{})

	index, err := svc.Build(ctx, factChunks, nil)
	require.NoError(t, err)

	hits, err := svc.Query(ctx, index, "berlin", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 2, hits[0].ID)

	hits, err = svc.Query(ctx, index, "berlin", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestIndexService_Query_TiesKeepIndexOrder(t *testing.T) {
	ctx := context.Background()
	svc := NewIndexService(newVocabEmbedder(), memory.NewIndexStore(), IndexConfig{})

	index, err := svc.Build(ctx, chunksOf("paris", "paris", "berlin", "paris"), nil)
	require.NoError(t, err)

	hits, err := svc.Query(ctx, index, "paris", 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 3}, []int{hits[0].ID, hits[1].ID, hits[2].ID})
}

func TestIndexService_Query_L2(t *testing.T) {
	ctx := context.Background()
	svc := NewIndexService(newVocabEmbedder(), memory.NewIndexStore(), IndexConfig{Metric: domain.DistanceL2})
	assert.Equal(t, domain.DistanceL2, svc.Metric())

	index, err := svc.Build(ctx, chunksOf("paris paris paris", "paris", "berlin"), nil)
	require.NoError(t, err)

	hits, err := svc.Query(ctx, index, "paris", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, hits[0].ID)
	assert.InDelta(t, 0, hits[0].Distance, 1e-9)
	assert.InDelta(t, math.Sqrt2, hits[1].Distance, 1e-9)
	assert.InDelta(t, 2, hits[2].Distance, 1e-9)
}

func TestIndexService_Query_Errors(t *testing.T) {
	ctx := context.Background()
	embedder := newVocabEmbedder()
	svc := NewIndexService(embedder, memory.NewIndexStore(), IndexConfig{})

	t.Run("empty index", func(t *testing.T) {
		empty := &domain.VectorIndex{Model: "vocab-embed", Dimensions: len(testVocabulary)}
		_, err := svc.Query(ctx, empty, "paris", 4)
		require.ErrorIs(t, err, domain.ErrEmptyIndex)
	})

	index, err := svc.Build(ctx, factChunks, nil)
	require.NoError(t, err)

	t.Run("invalid k", func(t *testing.T) {
		_, err := svc.Query(ctx, index, "paris", 0)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("embedding failure", func(t *testing.T) {
		embedder.err = errUpstream
		defer func() { embedder.err = nil }()

		_, err := svc.Query(ctx, index, "paris", 4)
		require.ErrorIs(t, err, domain.ErrEmbeddingService)
		require.ErrorIs(t, err, errUpstream)
	})
}

func TestDistance(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}

	assert.InDelta(t, 0, cosineDistance(a, a), 1e-9)
	assert.InDelta(t, 1, cosineDistance(a, b), 1e-9)
	assert.InDelta(t, 2, cosineDistance(a, []float32{-1, 0}), 1e-9)
	assert.InDelta(t, 1, cosineDistance(a, []float32{0, 0}), 1e-9)

	assert.InDelta(t, math.Sqrt2, l2Distance(a, b), 1e-9)
	assert.InDelta(t, 0, l2Distance(b, b), 1e-9)
}
