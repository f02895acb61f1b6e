// Package html extracts readable text from HTML pages.
package html

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	xhtml "golang.org/x/net/html"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/extractors/plaintext"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// invisible lists elements whose text is never shown.
const invisible = "head, script, style, noscript, svg, template, iframe"

// blockElements are rendered as paragraphs.
var blockElements = setOf("p", "div", "h1", "h2", "h3", "h4", "h5", "h6",
	"blockquote", "pre", "table", "section", "article", "main", "header",
	"footer", "nav", "aside", "figure", "ul", "ol", "dl")

// lineElements start a new line.
var lineElements = setOf("br", "hr", "li", "tr", "dt", "dd")

var (
	whitespace = regexp.MustCompile(`\s+`)
	spaces     = regexp.MustCompile(`[ \t\f\v]+`)
	blankRuns  = regexp.MustCompile(`\n\s*\n(\s*\n)*`)
)

// paragraphMark survives whitespace collapsing and becomes a paragraph break.
const paragraphMark = "\x00"

func setOf(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// Extractor handles HTML documents. The whole page is one page.
type Extractor struct{}

// New creates a new HTML extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Extract drops invisible elements and keeps block elements as paragraph
// breaks so the chunker can split on them.
func (e *Extractor) Extract(_ context.Context, name string, content []byte) (*domain.Document, error) {
	text, err := Strip(plaintext.Normalise(string(content)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	doc := &domain.Document{Name: name, MIMEType: "text/html"}
	if text != "" {
		doc.Pages = []string{text}
	}
	return doc, nil
}

// Strip converts HTML to plain text.
func Strip(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find(invisible).Remove()

	var buf bytes.Buffer
	for _, n := range doc.Nodes {
		render(&buf, n)
	}

	text := spaces.ReplaceAllString(buf.String(), " ")
	text = strings.ReplaceAll(text, paragraphMark, "\n\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text), nil
}

// render writes the visible text below n. Newlines inside text nodes are
// layout, not content, so they collapse to spaces.
func render(buf *bytes.Buffer, n *xhtml.Node) {
	switch n.Type {
	case xhtml.TextNode:
		text := strings.ReplaceAll(n.Data, paragraphMark, "")
		buf.WriteString(whitespace.ReplaceAllString(text, " "))
		return
	case xhtml.CommentNode:
		return
	}

	block := n.Type == xhtml.ElementNode && blockElements[n.Data]
	line := n.Type == xhtml.ElementNode && lineElements[n.Data]

	switch {
	case block:
		buf.WriteString(paragraphMark)
	case line:
		buf.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		render(buf, c)
	}
	if block {
		buf.WriteString(paragraphMark)
	}
}
