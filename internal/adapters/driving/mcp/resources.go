package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for docqa resources.
	uriScheme = "docqa://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "index",
		Name:        "index",
		Description: "Summary of the persisted document index",
		MIMEType:    "application/json",
	}, s.handleIndexResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "transcript",
		Name:        "transcript",
		Description: "Transcript of the current conversation",
		MIMEType:    "text/plain",
	}, s.handleTranscriptResource)
}

// indexInfo summarises an index without its vectors.
type indexInfo struct {
	Name       string `json:"name"`
	Exists     bool   `json:"exists"`
	Model      string `json:"model,omitempty"`
	Dimensions int    `json:"dimensions,omitempty"`
	Chunks     int    `json:"chunks"`
	Tokens     int    `json:"tokens"`
}

// handleIndexResource describes the persisted index.
func (s *Server) handleIndexResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	info := indexInfo{Name: s.ports.indexName()}

	index, err := s.ports.Index.Load(ctx, info.Name)
	switch {
	case errors.Is(err, domain.ErrIndexNotFound):
	case err != nil:
		return nil, fmt.Errorf("loading index: %w", err)
	default:
		info.Exists = true
		info.Model = index.Model
		info.Dimensions = index.Dimensions
		info.Chunks = index.Len()
		for _, e := range index.Entries {
			info.Tokens += e.Chunk.Tokens
		}
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling index info: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleTranscriptResource returns the conversation so far.
func (s *Server) handleTranscriptResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Export == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     s.ports.Export.Transcript(s.ports.Session.History()),
		}},
	}, nil
}
