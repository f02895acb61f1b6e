// Package plaintext extracts text from plain text files.
package plaintext

import (
	"context"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

const bom = "\uFEFF"

// Extractor handles plain text documents. The whole file is one page.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/csv",
		"text/x-go",
		"text/x-python",
		"text/yaml",
		"text/toml",
		"application/json",
		"application/xml",
	}
}

// Extract decodes content as UTF-8 text.
// Invalid byte sequences are replaced and line endings normalised to "\n".
func (e *Extractor) Extract(_ context.Context, name string, content []byte) (*domain.Document, error) {
	text := Normalise(string(content))

	doc := &domain.Document{Name: name, MIMEType: "text/plain"}
	if strings.TrimSpace(text) != "" {
		doc.Pages = []string{text}
	}
	return doc, nil
}

// Normalise strips a byte order mark, repairs invalid UTF-8 and converts
// CRLF and CR line endings to LF.
func Normalise(text string) string {
	text = strings.TrimPrefix(text, bom)
	text = strings.ToValidUTF8(text, "�")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
