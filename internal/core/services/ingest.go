package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService extracts, chunks, embeds and persists uploaded files.
type IngestService struct {
	extractors driven.ExtractorRegistry
	chunker    driven.Chunker
	indexes    driving.IndexService
	indexName  string
}

// NewIngestService creates a new ingest service persisting under indexName.
func NewIngestService(
	extractors driven.ExtractorRegistry,
	chunker driven.Chunker,
	indexes driving.IndexService,
	indexName string,
) *IngestService {
	if indexName == "" {
		indexName = domain.DefaultIndexName
	}
	return &IngestService{
		extractors: extractors,
		chunker:    chunker,
		indexes:    indexes,
		indexName:  indexName,
	}
}

// Ingest indexes every upload together. The persisted index is only
// replaced once the whole batch has been embedded.
func (s *IngestService) Ingest(
	ctx context.Context, uploads []domain.Upload, progress driving.ProgressFunc,
) (*domain.IngestReport, error) {
	logger.Section("Ingest")

	if len(uploads) == 0 {
		return nil, domain.ErrNoDocuments
	}

	docs := make([]domain.Document, 0, len(uploads))
	pages := 0
	for _, u := range uploads {
		doc, err := s.extract(ctx, u)
		if err != nil {
			return nil, err
		}
		for _, p := range doc.Pages {
			if p != "" {
				pages++
			}
		}
		logger.Debug("Extracted %s (%s): %d pages", u.Name, u.MIMEType, len(doc.Pages))
		docs = append(docs, *doc)
	}

	text := domain.JoinDocuments(docs)
	if text == "" {
		return nil, domain.ErrNoDocuments
	}

	chunks := s.chunker.Chunk(text)
	if len(chunks) == 0 {
		return nil, domain.ErrNoDocuments
	}
	logger.Debug("%s produced %d chunks from %d bytes", s.chunker.Name(), len(chunks), len(text))

	index, err := s.indexes.Build(ctx, chunks, progress)
	if err != nil {
		return nil, err
	}
	if err := s.indexes.Persist(ctx, index, s.indexName); err != nil {
		return nil, err
	}

	tokens := 0
	for _, c := range chunks {
		tokens += c.Tokens
	}

	return &domain.IngestReport{
		IndexName: s.indexName,
		Model:     index.Model,
		Files:     len(uploads),
		Pages:     pages,
		Chunks:    len(chunks),
		Tokens:    tokens,
	}, nil
}

func (s *IngestService) extract(ctx context.Context, u domain.Upload) (*domain.Document, error) {
	extractor, err := s.extractors.Get(u.MIMEType)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", u.Name, err)
	}

	doc, err := extractor.Extract(ctx, u.Name, u.Content)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", u.Name, err)
	}
	return doc, nil
}
