package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

type countingEmbedder struct {
	calls int
}

func (c *countingEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	c.calls++
	return []float32{1}, nil
}

func (c *countingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	c.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1}
	}
	return out, nil
}

func (c *countingEmbedder) Dimensions() int              { return 1 }
func (c *countingEmbedder) ModelName() string            { return "counting" }
func (c *countingEmbedder) Ping(_ context.Context) error { return nil }
func (c *countingEmbedder) Close() error                 { return nil }

func TestWrap_Disabled(t *testing.T) {
	inner := &countingEmbedder{}
	assert.Same(t, inner, Wrap(inner, 0, 1))
}

func TestWrap_DelegatesMetadata(t *testing.T) {
	svc := Wrap(&countingEmbedder{}, 100, 1)
	assert.Equal(t, "counting", svc.ModelName())
	assert.Equal(t, 1, svc.Dimensions())
}

func TestEmbeddingService_PassesThrough(t *testing.T) {
	inner := &countingEmbedder{}
	svc := Wrap(inner, 1000, 10)

	_, err := svc.Embed(t.Context(), "a")
	require.NoError(t, err)
	vecs, err := svc.EmbedBatch(t.Context(), []string{"a", "b"})
	require.NoError(t, err)

	assert.Len(t, vecs, 2)
	assert.Equal(t, 2, inner.calls)
}

func TestEmbeddingService_ContextCancelled(t *testing.T) {
	inner := &countingEmbedder{}
	svc := Wrap(inner, 0.001, 1)

	// Drain the single burst token.
	_, err := svc.Embed(t.Context(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()

	_, err = svc.Embed(ctx, "b")
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestEmbeddingService_WaitExceedsDeadline(t *testing.T) {
	inner := &countingEmbedder{}
	svc := Wrap(inner, 0.001, 1)

	_, err := svc.Embed(t.Context(), "a")
	require.NoError(t, err)

	// rate.Limiter rejects up front when the deadline is shorter than the wait.
	ctx, cancel := context.WithTimeout(t.Context(), time.Second)
	defer cancel()

	_, err = svc.EmbedBatch(ctx, []string{"b"})
	require.ErrorIs(t, err, domain.ErrRateLimited)
}
