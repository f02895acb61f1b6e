package domain

import "fmt"

// DistanceMetric selects how vector distance is computed during queries.
type DistanceMetric string

// Available distance metrics.
const (
	// DistanceCosine is 1 - cosine similarity.
	DistanceCosine DistanceMetric = "cosine"

	// DistanceL2 is euclidean distance.
	DistanceL2 DistanceMetric = "l2"
)

// IsValid returns true if the metric is recognised.
func (m DistanceMetric) IsValid() bool {
	switch m {
	case DistanceCosine, DistanceL2:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m DistanceMetric) String() string {
	return string(m)
}

// DefaultIndexName is the index name used when none is configured.
const DefaultIndexName = "index"

// IndexEntry maps one chunk to its embedding under a stable integer id.
type IndexEntry struct {
	// ID is assigned in insertion order starting at zero.
	ID int

	// Chunk is the indexed chunk.
	Chunk Chunk

	// Vector is the chunk embedding.
	Vector []float32
}

// VectorIndex owns the embeddings of a set of chunks.
// Model and Dimensions identify the embedding configuration it was built
// with; an index is only usable with an embedder that matches both.
type VectorIndex struct {
	// Model is the embedding model identifier.
	Model string

	// Dimensions is the fixed vector size.
	Dimensions int

	// Entries holds the indexed chunks in id order.
	Entries []IndexEntry
}

// Len returns the number of vectors in the index.
func (ix *VectorIndex) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.Entries)
}

// CheckCompatible verifies the index was built with the given embedding
// model and dimensionality. It returns ErrIndexCorrupt on mismatch.
func (ix *VectorIndex) CheckCompatible(model string, dimensions int) error {
	if ix.Model != model {
		return fmt.Errorf("%w: built with model %q, embedder is %q", ErrIndexCorrupt, ix.Model, model)
	}
	if ix.Dimensions != dimensions {
		return fmt.Errorf("%w: built with %d dimensions, embedder has %d", ErrIndexCorrupt, ix.Dimensions, dimensions)
	}
	return nil
}

// Validate checks the structural invariants of the index: ids are 0..n-1 in
// order and every vector has the declared dimensionality.
func (ix *VectorIndex) Validate() error {
	if ix.Dimensions <= 0 {
		return fmt.Errorf("%w: invalid dimensions %d", ErrIndexCorrupt, ix.Dimensions)
	}
	for i, e := range ix.Entries {
		if e.ID != i {
			return fmt.Errorf("%w: entry %d has id %d", ErrIndexCorrupt, i, e.ID)
		}
		if len(e.Vector) != ix.Dimensions {
			return fmt.Errorf("%w: entry %d has %d dimensions, want %d",
				ErrIndexCorrupt, i, len(e.Vector), ix.Dimensions)
		}
	}
	return nil
}

// ScoredChunk is one retrieval hit: a chunk and its distance to the query.
type ScoredChunk struct {
	// ID is the index entry id.
	ID int

	// Chunk is the retrieved chunk.
	Chunk Chunk

	// Distance is the query distance; lower is more relevant.
	Distance float64
}
