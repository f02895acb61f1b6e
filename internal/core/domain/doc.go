// Package domain defines the core business entities for docqa.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: Text extracted from one uploaded file
//   - Chunk: A token-bounded unit of retrieval
//   - VectorIndex: Chunk embeddings keyed by stable ids
//   - Conversation: The ordered turns of one session
//   - UsageLedger: The costs of answered questions
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
package domain
