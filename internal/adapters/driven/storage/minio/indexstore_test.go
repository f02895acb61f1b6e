package minio

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestNewIndexStore(t *testing.T) {
	t.Run("requires endpoint", func(t *testing.T) {
		_, err := NewIndexStore(Config{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("default bucket", func(t *testing.T) {
		store, err := NewIndexStore(Config{Endpoint: "localhost:9000"})
		require.NoError(t, err)
		assert.Equal(t, DefaultBucket, store.Bucket())
	})

	t.Run("custom bucket", func(t *testing.T) {
		store, err := NewIndexStore(Config{Endpoint: "localhost:9000", Bucket: "mine", UseSSL: true})
		require.NoError(t, err)
		assert.Equal(t, "mine", store.Bucket())
	})
}

func TestIndexStore_InvalidName(t *testing.T) {
	store, err := NewIndexStore(Config{Endpoint: "localhost:9000"})
	require.NoError(t, err)

	err = store.Save(t.Context(), "../escape", &domain.VectorIndex{Dimensions: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = store.Load(t.Context(), "a/b")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = store.Delete(t.Context(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "index.json", metaKey("index"))

	a, b := vectorsKey("index"), vectorsKey("index")
	assert.True(t, strings.HasPrefix(a, "index/"))
	assert.True(t, strings.HasSuffix(a, ".vectors"))
	assert.NotEqual(t, a, b)
}

func TestIsNotFound(t *testing.T) {
	assert.False(t, isNotFound(nil))
	assert.False(t, isNotFound(errors.New("boom")))
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchBucket"}))
	assert.False(t, isNotFound(minio.ErrorResponse{Code: "AccessDenied"}))
}

func TestIsNotFound_Wrapped(t *testing.T) {
	err := fmt.Errorf("minio: get index.json: %w", minio.ErrorResponse{Code: "NoSuchKey"})
	assert.True(t, isNotFound(err))
}
