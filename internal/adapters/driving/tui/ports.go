// Package tui provides an interactive terminal chat for docqa.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Session answers questions and keeps the conversation and costs.
	Session driving.SessionService

	// Export sends transcripts to the configured sink. Optional.
	Export driving.ExportService

	// Models lists the chat models the model switch cycles through.
	Models []string
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(session driving.SessionService, export driving.ExportService, models []string) *Ports {
	return &Ports{
		Session: session,
		Export:  export,
		Models:  models,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Session == nil {
		return ErrMissingSessionService
	}
	return nil
}
