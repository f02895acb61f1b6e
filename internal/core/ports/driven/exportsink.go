package driven

import "context"

// ExportSink persists an exported conversation as one record.
//
// Implementations may include:
//   - Notion (a page in a database)
//   - file (a markdown file)
type ExportSink interface {
	// Export creates one record with the given title and body.
	// It returns a reference to the created record (URL or path).
	Export(ctx context.Context, title, content string) (string, error)

	// Name identifies the sink.
	Name() string
}
