package mcp

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Session answers questions and keeps the conversation and costs.
	Session driving.SessionService

	// Index loads the persisted index for the retrieve tool.
	Index driving.IndexService

	// Retriever selects passages for the retrieve tool.
	Retriever driving.Retriever

	// Export renders the transcript resource. Optional.
	Export driving.ExportService

	// IndexName is the persisted index to read. Empty uses domain.DefaultIndexName.
	IndexName string
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Session == nil {
		return ErrMissingSessionService
	}
	if p.Index == nil || p.Retriever == nil {
		return ErrMissingRetriever
	}
	return nil
}

func (p *Ports) indexName() string {
	if p.IndexName == "" {
		return domain.DefaultIndexName
	}
	return p.IndexName
}
