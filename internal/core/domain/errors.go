package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown document type or backend.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates the upstream API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Pipeline Errors.

	// ErrEmbeddingService indicates the embedding service failed or returned
	// a vector of unexpected dimensionality. Index builds abort on it.
	ErrEmbeddingService = errors.New("embedding service error")

	// ErrIndexNotFound indicates no persisted index exists at the location.
	ErrIndexNotFound = errors.New("index not found")

	// ErrIndexCorrupt indicates a persisted index is unreadable or was built
	// with a different embedding model or dimensionality.
	ErrIndexCorrupt = errors.New("index corrupt")

	// ErrEmptyIndex indicates a query against an index holding no vectors.
	ErrEmptyIndex = errors.New("index is empty")

	// ErrModelInvocation indicates the language model call failed.
	// Callers degrade gracefully: no answer, zero cost, state unchanged.
	ErrModelInvocation = errors.New("model invocation failed")

	// ErrNoDocuments indicates ingestion produced no text to index.
	ErrNoDocuments = errors.New("no document text to index")
)

// IsNoAnswer reports whether err is a query-time failure that should be
// shown to the user as "no answer available" rather than as a hard error.
func IsNoAnswer(err error) bool {
	return errors.Is(err, ErrIndexNotFound) ||
		errors.Is(err, ErrEmptyIndex) ||
		errors.Is(err, ErrModelInvocation)
}
