package domain

import "strings"

// PageSeparator joins pages within a document and documents within an
// ingestion batch.
const PageSeparator = "\n\n"

// Document is the raw text extracted from one uploaded file, in page order.
// It has no identity beyond its position in the ingestion batch.
type Document struct {
	// Name is the file name the text was extracted from.
	Name string

	// MIMEType is the detected content type.
	MIMEType string

	// Pages holds the extracted text of each page or section, in order.
	Pages []string
}

// Text returns the document pages joined with PageSeparator.
func (d Document) Text() string {
	return strings.Join(d.Pages, PageSeparator)
}

// JoinDocuments concatenates the text of every document with PageSeparator.
// Documents without text are skipped so they do not introduce empty sections.
func JoinDocuments(docs []Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		if t := d.Text(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, PageSeparator)
}

// Upload is one file handed to ingestion.
type Upload struct {
	// Name is the file name, used for messages and type detection.
	Name string

	// MIMEType selects the extractor.
	MIMEType string

	// Content is the raw file bytes.
	Content []byte
}

// IngestReport summarises a completed ingestion.
type IngestReport struct {
	// IndexName is the name the index was persisted under.
	IndexName string

	// Model is the embedding model the index was built with.
	Model string

	// Files is the number of uploads ingested.
	Files int

	// Pages is the number of pages with text across all uploads.
	Pages int

	// Chunks is the number of chunks indexed.
	Chunks int

	// Tokens is the total token count over all chunks.
	Tokens int
}
