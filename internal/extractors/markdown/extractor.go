// Package markdown extracts readable text from Markdown files.
package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/extractors/plaintext"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

var (
	fencedCode    = regexp.MustCompile("(?s)```[^\n]*\n(.*?)```")
	images        = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	links         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings      = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	emphasis      = regexp.MustCompile(`(^|\W)(\*\*|__|\*|_)([^*_\n]+)(\*\*|__|\*|_)`)
	inlineCode    = regexp.MustCompile("`([^`\n]+)`")
	blockquotes   = regexp.MustCompile(`(?m)^>\s?`)
	rules         = regexp.MustCompile(`(?m)^\s*([-*_]\s*){3,}$`)
	bullets       = regexp.MustCompile(`(?m)^(\s*)[-*+]\s+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// Extractor handles Markdown documents. The whole file is one page.
type Extractor struct{}

// New creates a new Markdown extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Extract strips Markdown syntax while keeping the text of code blocks,
// links and images, and the paragraph structure.
func (e *Extractor) Extract(_ context.Context, name string, content []byte) (*domain.Document, error) {
	text := Strip(plaintext.Normalise(string(content)))

	doc := &domain.Document{Name: name, MIMEType: "text/markdown"}
	if text != "" {
		doc.Pages = []string{text}
	}
	return doc, nil
}

// Strip converts Markdown to plain text.
func Strip(content string) string {
	content = fencedCode.ReplaceAllString(content, "$1")
	content = images.ReplaceAllString(content, "$1")
	content = links.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "")
	content = emphasis.ReplaceAllString(content, "$1$3")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = blockquotes.ReplaceAllString(content, "")
	content = rules.ReplaceAllString(content, "")
	content = bullets.ReplaceAllString(content, "$1")
	content = multiNewlines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
