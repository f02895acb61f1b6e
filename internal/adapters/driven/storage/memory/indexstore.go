package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/codec"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore is an in-memory implementation of driven.IndexStore for testing.
// Indexes are deep-copied on save and load so callers cannot mutate stored state.
type IndexStore struct {
	mu      sync.RWMutex
	indexes map[string]*domain.VectorIndex
}

// NewIndexStore creates a new in-memory index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{
		indexes: make(map[string]*domain.VectorIndex),
	}
}

// Save stores a copy of the index.
func (s *IndexStore) Save(_ context.Context, name string, index *domain.VectorIndex) error {
	if err := codec.ValidateName(name); err != nil {
		return err
	}
	if err := index.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexes[name] = cloneIndex(index)
	return nil
}

// Load returns a copy of the stored index.
func (s *IndexStore) Load(_ context.Context, name string) (*domain.VectorIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.indexes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrIndexNotFound, name)
	}
	return cloneIndex(idx), nil
}

// Delete removes the stored index.
func (s *IndexStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.indexes, name)
	return nil
}

func cloneIndex(idx *domain.VectorIndex) *domain.VectorIndex {
	out := &domain.VectorIndex{
		Model:      idx.Model,
		Dimensions: idx.Dimensions,
	}
	if idx.Entries != nil {
		out.Entries = make([]domain.IndexEntry, len(idx.Entries))
	}
	for i, e := range idx.Entries {
		vec := make([]float32, len(e.Vector))
		copy(vec, e.Vector)
		out.Entries[i] = domain.IndexEntry{ID: e.ID, Chunk: e.Chunk, Vector: vec}
	}
	return out
}
