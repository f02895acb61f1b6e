package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func testIndex(n int) *domain.VectorIndex {
	idx := &domain.VectorIndex{Model: "nomic-embed-text", Dimensions: 3}
	for i := 0; i < n; i++ {
		idx.Entries = append(idx.Entries, domain.IndexEntry{
			ID:     i,
			Chunk:  domain.Chunk{Index: i, Text: "text", Overlap: 0, Tokens: 1},
			Vector: []float32{float32(i), 0.5, -1},
		})
	}
	return idx
}

func TestNewStore_Migrations(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
	require.NoError(t, store.Close())

	// Reopening applies nothing twice.
	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestIndexStore_SaveLoad(t *testing.T) {
	store := setupTestStore(t)
	indexes := store.IndexStore()

	idx := testIndex(4)
	idx.Entries[2].Chunk.Overlap = 2
	require.NoError(t, indexes.Save(t.Context(), "index", idx))

	got, err := indexes.Load(t.Context(), "index")
	require.NoError(t, err)
	assert.Equal(t, idx, got)
}

func TestIndexStore_LoadNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.IndexStore().Load(t.Context(), "index")
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
}

func TestIndexStore_Replace(t *testing.T) {
	store := setupTestStore(t)
	indexes := store.IndexStore()

	require.NoError(t, indexes.Save(t.Context(), "index", testIndex(5)))
	replacement := testIndex(2)
	replacement.Model = "all-minilm"
	require.NoError(t, indexes.Save(t.Context(), "index", replacement))

	got, err := indexes.Load(t.Context(), "index")
	require.NoError(t, err)
	assert.Equal(t, replacement, got)
}

func TestIndexStore_EmptyIndex(t *testing.T) {
	store := setupTestStore(t)
	indexes := store.IndexStore()

	empty := &domain.VectorIndex{Model: "m", Dimensions: 3}
	require.NoError(t, indexes.Save(t.Context(), "empty", empty))

	got, err := indexes.Load(t.Context(), "empty")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
	assert.Equal(t, 3, got.Dimensions)
}

func TestIndexStore_RejectsInvalidIndex(t *testing.T) {
	store := setupTestStore(t)

	idx := testIndex(2)
	idx.Entries[1].ID = 5
	err := store.IndexStore().Save(t.Context(), "index", idx)
	assert.ErrorIs(t, err, domain.ErrIndexCorrupt)

	_, err = store.IndexStore().Load(t.Context(), "index")
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
}

func TestIndexStore_CorruptRows(t *testing.T) {
	store := setupTestStore(t)
	indexes := store.IndexStore()
	require.NoError(t, indexes.Save(t.Context(), "index", testIndex(2)))

	_, err := store.db.Exec("UPDATE index_vectors SET vector = ? WHERE id = 1", []byte{1, 2, 3, 4})
	require.NoError(t, err)

	_, err = indexes.Load(t.Context(), "index")
	assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
}

func TestIndexStore_Delete(t *testing.T) {
	store := setupTestStore(t)
	indexes := store.IndexStore()
	require.NoError(t, indexes.Save(t.Context(), "index", testIndex(2)))

	require.NoError(t, indexes.Delete(t.Context(), "index"))
	_, err := indexes.Load(t.Context(), "index")
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM index_vectors").Scan(&count))
	assert.Zero(t, count)
}

func TestIndexStore_InvalidName(t *testing.T) {
	store := setupTestStore(t)

	err := store.IndexStore().Save(t.Context(), "bad name", testIndex(1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
