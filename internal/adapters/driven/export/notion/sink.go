// Package notion exports conversation transcripts as pages in a Notion database.
package notion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jomei/notionapi"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Sink implements the interface.
var _ driven.ExportSink = (*Sink)(nil)

// MaxTextLength is the longest content Notion accepts in one rich text object.
const MaxTextLength = 2000

// Config configures the Notion sink.
type Config struct {
	// Token is the integration token.
	Token string

	// DatabaseID is the parent database of created pages.
	DatabaseID string

	// HTTPClient overrides the client. Nil uses a client with a 30s timeout.
	HTTPClient *http.Client
}

// Sink creates one Notion page per export.
type Sink struct {
	pages      notionapi.PageService
	databaseID notionapi.DatabaseID
	now        func() time.Time
}

// NewSink creates a Notion sink.
func NewSink(cfg Config) (*Sink, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("%w: notion token is required (set NOTION_API_TOKEN)", domain.ErrInvalidInput)
	}
	if cfg.DatabaseID == "" {
		return nil, fmt.Errorf("%w: notion database id is required (set export.notion.database_id)", domain.ErrInvalidInput)
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	client := notionapi.NewClient(notionapi.Token(cfg.Token), notionapi.WithHTTPClient(cfg.HTTPClient))
	return &Sink{
		pages:      client.Page,
		databaseID: notionapi.DatabaseID(cfg.DatabaseID),
		now:        time.Now,
	}, nil
}

// Name identifies the sink.
func (s *Sink) Name() string {
	return "notion"
}

// Export creates a page titled title whose body is a heading followed by
// content. It returns the page URL.
func (s *Sink) Export(ctx context.Context, title, content string) (string, error) {
	page, err := s.pages.Create(ctx, s.request(title, content))
	if err != nil {
		var apiErr *notionapi.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("notion error %d: %s - %s", apiErr.Status, apiErr.Code, apiErr.Message)
		}
		return "", fmt.Errorf("create page: %w", err)
	}

	if page.URL != "" {
		return page.URL, nil
	}
	return page.ID.String(), nil
}

func (s *Sink) request(title, content string) *notionapi.PageCreateRequest {
	day := s.now().UTC().Truncate(24 * time.Hour)
	created := notionapi.Date(day)

	return &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: s.databaseID,
		},
		Properties: notionapi.Properties{
			"Name": &notionapi.TitleProperty{Title: richTexts(title)},
			"Created at": &notionapi.DateProperty{
				Date: &notionapi.DateObject{Start: &created},
			},
		},
		Children: []notionapi.Block{
			&notionapi.Heading2Block{
				BasicBlock: notionapi.BasicBlock{Object: notionapi.ObjectTypeBlock, Type: notionapi.BlockTypeHeading2},
				Heading2:   notionapi.Heading{RichText: richTexts(title)},
			},
			&notionapi.ParagraphBlock{
				BasicBlock: notionapi.BasicBlock{Object: notionapi.ObjectTypeBlock, Type: notionapi.BlockTypeParagraph},
				Paragraph:  notionapi.Paragraph{RichText: richTexts(content)},
			},
		},
	}
}

// richTexts splits s into text objects of at most MaxTextLength runes.
func richTexts(s string) []notionapi.RichText {
	parts := splitRunes(s, MaxTextLength)
	out := make([]notionapi.RichText, len(parts))
	for i, p := range parts {
		out[i] = notionapi.RichText{Type: "text", Text: &notionapi.Text{Content: p}}
	}
	return out
}

func splitRunes(s string, n int) []string {
	runes := []rune(s)
	if len(runes) <= n {
		return []string{s}
	}

	var parts []string
	for len(runes) > 0 {
		end := min(n, len(runes))
		parts = append(parts, string(runes[:end]))
		runes = runes[end:]
	}
	return parts
}
