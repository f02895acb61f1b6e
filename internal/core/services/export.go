package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure ExportService implements the interface.
var _ driving.ExportService = (*ExportService)(nil)

// Transcript line prefixes.
const (
	userPrefix      = "You: "
	assistantPrefix = "Assistant: "
)

// ExportService renders conversations and hands them to an export sink.
type ExportService struct {
	sink driven.ExportSink
}

// NewExportService creates a new export service.
func NewExportService(sink driven.ExportSink) *ExportService {
	return &ExportService{sink: sink}
}

// Transcript renders user and assistant turns one per line.
// System turns are omitted.
func (s *ExportService) Transcript(turns []domain.Turn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case domain.RoleUser:
			lines = append(lines, userPrefix+t.Content)
		case domain.RoleAssistant:
			lines = append(lines, assistantPrefix+t.Content)
		}
	}
	return strings.Join(lines, "\n")
}

// Export sends the transcript of turns to the sink under title.
func (s *ExportService) Export(ctx context.Context, title string, turns []domain.Turn) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: export title is empty", domain.ErrInvalidInput)
	}

	transcript := s.Transcript(turns)
	if transcript == "" {
		return "", fmt.Errorf("%w: conversation has nothing to export", domain.ErrInvalidInput)
	}

	ref, err := s.sink.Export(ctx, title, transcript)
	if err != nil {
		return "", fmt.Errorf("export to %s: %w", s.sink.Name(), err)
	}

	logger.Info("Exported %q to %s: %s", title, s.sink.Name(), ref)
	return ref, nil
}
