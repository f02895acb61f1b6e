package driven

import "github.com/custodia-labs/docqa/internal/core/domain"

// Chunker splits extracted text into token-bounded chunks.
type Chunker interface {
	// Name returns the chunker name for logging.
	Name() string

	// Chunk splits text into ordered chunks. Empty text yields no chunks.
	// Concatenating each chunk's Body reconstructs the input.
	Chunk(text string) []domain.Chunk
}
