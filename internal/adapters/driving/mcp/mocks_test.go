package mcp

import (
	"context"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// mockSessionService is a mock implementation of driving.SessionService.
type mockSessionService struct {
	answer  domain.Answer
	err     error
	model   string
	costs   []float64
	history []domain.Turn

	asked []string
}

func (m *mockSessionService) Ask(_ context.Context, query string) (domain.Answer, error) {
	m.asked = append(m.asked, query)
	if m.err != nil {
		return domain.Answer{}, m.err
	}
	m.costs = append(m.costs, m.answer.Cost)
	return m.answer, nil
}

func (m *mockSessionService) Clear() { m.costs = nil }

func (m *mockSessionService) SetModel(model string) error {
	if model == "" {
		return domain.ErrInvalidInput
	}
	m.model = model
	return nil
}

func (m *mockSessionService) Model() string { return m.model }

func (m *mockSessionService) SetK(_ int) error { return nil }

func (m *mockSessionService) History() []domain.Turn { return m.history }

func (m *mockSessionService) Costs() []float64 {
	out := make([]float64, len(m.costs))
	copy(out, m.costs)
	return out
}

func (m *mockSessionService) TotalCost() float64 {
	var total float64
	for _, c := range m.costs {
		total += c
	}
	return total
}

func (m *mockSessionService) OnStatus(_ driving.StatusFunc) {}

func (m *mockSessionService) ReloadIndex() {}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	index  *domain.VectorIndex
	err    error
	loaded []string
}

func (m *mockIndexService) Build(
	_ context.Context, _ []domain.Chunk, _ driving.ProgressFunc,
) (*domain.VectorIndex, error) {
	return m.index, m.err
}

func (m *mockIndexService) Persist(_ context.Context, _ *domain.VectorIndex, _ string) error {
	return m.err
}

func (m *mockIndexService) Load(_ context.Context, name string) (*domain.VectorIndex, error) {
	m.loaded = append(m.loaded, name)
	return m.index, m.err
}

func (m *mockIndexService) Query(
	_ context.Context, _ *domain.VectorIndex, _ string, _ int,
) ([]domain.ScoredChunk, error) {
	return nil, m.err
}

// mockRetriever is a mock implementation of driving.Retriever.
type mockRetriever struct {
	chunks []domain.Chunk
	err    error
	k      int
}

func (m *mockRetriever) Retrieve(
	_ context.Context, _ *domain.VectorIndex, _ string, k int,
) ([]domain.Chunk, error) {
	m.k = k
	return m.chunks, m.err
}

// mockExportService is a mock implementation of driving.ExportService.
type mockExportService struct{}

func (m *mockExportService) Transcript(turns []domain.Turn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, t.Role.String()+": "+t.Content)
	}
	return strings.Join(lines, "\n")
}

func (m *mockExportService) Export(_ context.Context, title string, _ []domain.Turn) (string, error) {
	return "memory://" + title, nil
}

func newTestPorts() (*Ports, *mockSessionService, *mockIndexService, *mockRetriever) {
	session := &mockSessionService{}
	index := &mockIndexService{index: &domain.VectorIndex{Model: "embed", Dimensions: 3}}
	retriever := &mockRetriever{}
	ports := &Ports{
		Session:   session,
		Index:     index,
		Retriever: retriever,
		Export:    &mockExportService{},
		IndexName: "handbook",
	}
	return ports, session, index, retriever
}
