// Package pdf extracts page-ordered text from PDF files.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/extractors/plaintext"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor reads the text layer of each page. Scanned pages without a
// text layer yield no text; OCR is not attempted.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Extract returns one entry per page that has text, in page order.
// A page that fails to decode is skipped with a warning.
func (e *Extractor) Extract(ctx context.Context, name string, content []byte) (doc *domain.Document, err error) {
	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("%w: %s: malformed pdf: %v", domain.ErrInvalidInput, name, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, name, err)
	}

	doc = &domain.Document{Name: name, MIMEType: "application/pdf"}
	total := reader.NumPage()

	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			logger.Warn("pdf: %s page %d: %v", name, i, err)
			continue
		}

		text = strings.TrimSpace(plaintext.Normalise(text))
		if text == "" {
			continue
		}
		doc.Pages = append(doc.Pages, text)
	}

	logger.Debug("pdf: %s: %d of %d pages with text", name, len(doc.Pages), total)
	return doc, nil
}
