package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Extractor pulls page-ordered text out of an uploaded file.
// Each extractor handles specific MIME types (e.g., PDF, plain text).
type Extractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Extract reads the file content and returns its pages in order.
	Extract(ctx context.Context, name string, content []byte) (*domain.Document, error)
}

// ExtractorRegistry selects an extractor by MIME type.
type ExtractorRegistry interface {
	// Register adds an extractor for its supported MIME types.
	Register(e Extractor)

	// Get returns the extractor for a MIME type.
	// Returns domain.ErrUnsupportedType if none is registered.
	Get(mimeType string) (Extractor, error)
}
