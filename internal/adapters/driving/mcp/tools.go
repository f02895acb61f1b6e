package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed documents"`
	Model    string `json:"model,omitempty" jsonschema:"chat model to answer with (default: the configured model)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string          `json:"answer"`
	Answered  bool            `json:"answered"`
	Reason    string          `json:"reason,omitempty"`
	Model     string          `json:"model,omitempty"`
	Cost      float64         `json:"cost"`
	TotalCost float64         `json:"total_cost"`
	Sources   []PassageOutput `json:"sources"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the text to find relevant passages for"`
	K     int    `json:"k,omitempty" jsonschema:"number of passages to return (default 4)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Passages []PassageOutput `json:"passages"`
	Count    int             `json:"count"`
}

// PassageOutput is one retrieved chunk.
type PassageOutput struct {
	Index  int    `json:"index"`
	Text   string `json:"text"`
	Tokens int    `json:"tokens"`
}

// UsageInput is the input schema for the usage tool.
type UsageInput struct{}

// UsageOutput is the output schema for the usage tool.
type UsageOutput struct {
	Model     string    `json:"model"`
	Questions int       `json:"questions"`
	Costs     []float64 `json:"costs"`
	TotalCost float64   `json:"total_cost"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the indexed documents, continuing the current conversation",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Return the indexed passages most relevant to a query, nearest first",
	}, s.handleRetrieve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "usage",
		Description: "Report the dollar cost of each answered question and the session total",
	}, s.handleUsage)
}

// handleAsk handles the ask tool invocation. Questions that cannot be
// answered are reported in the output rather than as tool errors.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if input.Model != "" {
		if err := s.ports.Session.SetModel(input.Model); err != nil {
			return nil, AskOutput{}, err
		}
	}

	answer, err := s.ports.Session.Ask(ctx, input.Question)
	if err != nil {
		if !domain.IsNoAnswer(err) {
			return nil, AskOutput{}, err
		}
		return nil, AskOutput{
			Reason:    err.Error(),
			TotalCost: s.ports.Session.TotalCost(),
			Sources:   []PassageOutput{},
		}, nil
	}

	return nil, AskOutput{
		Answer:    answer.Text,
		Answered:  true,
		Model:     answer.Model,
		Cost:      answer.Cost,
		TotalCost: s.ports.Session.TotalCost(),
		Sources:   passages(answer.Chunks),
	}, nil
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	index, err := s.ports.Index.Load(ctx, s.ports.indexName())
	if err != nil {
		return nil, RetrieveOutput{}, fmt.Errorf("loading index: %w", err)
	}

	chunks, err := s.ports.Retriever.Retrieve(ctx, index, input.Query, input.K)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	return nil, RetrieveOutput{
		Passages: passages(chunks),
		Count:    len(chunks),
	}, nil
}

// handleUsage handles the usage tool invocation.
func (s *Server) handleUsage(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ UsageInput,
) (*mcp.CallToolResult, UsageOutput, error) {
	costs := s.ports.Session.Costs()
	return nil, UsageOutput{
		Model:     s.ports.Session.Model(),
		Questions: len(costs),
		Costs:     costs,
		TotalCost: s.ports.Session.TotalCost(),
	}, nil
}

func passages(chunks []domain.Chunk) []PassageOutput {
	out := make([]PassageOutput, len(chunks))
	for i, c := range chunks {
		out[i] = PassageOutput{Index: c.Index, Text: c.Text, Tokens: c.Tokens}
	}
	return out
}
