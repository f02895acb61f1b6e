package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// IndexStore persists vector indexes under a name.
//
// Save must be atomic: a concurrent Load observes either the previous index
// or the new one, never a partial write.
//
// Implementations may include:
//   - file (vector and metadata artifacts in a directory)
//   - sqlite (two tables in one transaction)
//   - minio (objects in an S3-compatible bucket)
//   - memory (for tests)
type IndexStore interface {
	// Save persists the index under name, replacing any previous one.
	Save(ctx context.Context, name string, index *domain.VectorIndex) error

	// Load reads the index stored under name.
	// Returns domain.ErrIndexNotFound if absent and domain.ErrIndexCorrupt
	// if the stored data cannot be decoded.
	Load(ctx context.Context, name string) (*domain.VectorIndex, error)

	// Delete removes the index stored under name. Deleting a missing index
	// is not an error.
	Delete(ctx context.Context, name string) error
}
