package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Session implements the interface.
var _ driving.SessionService = (*Session)(nil)

// SessionConfig configures a Session.
type SessionConfig struct {
	// IndexName is the persisted index questions are answered from.
	IndexName string

	// K is the number of chunks retrieved per question.
	K int

	// Model is the initial chat model. Empty uses the LLM service default.
	Model string

	// SystemPrompt seeds the conversation. Empty uses domain.DefaultSystemPrompt.
	SystemPrompt string
}

// Session answers questions over one index and keeps the conversation and
// cost ledger of a single user. Ask calls are serialised.
type Session struct {
	indexes   driving.IndexService
	retriever driving.Retriever
	answers   driving.AnswerService

	mu           sync.Mutex
	indexName    string
	k            int
	model        string
	index        *domain.VectorIndex
	conversation *domain.Conversation
	ledger       *domain.UsageLedger
	onStatus     driving.StatusFunc
}

// NewSession creates a session. The index is loaded on the first question.
func NewSession(
	indexes driving.IndexService,
	retriever driving.Retriever,
	answers driving.AnswerService,
	cfg SessionConfig,
) *Session {
	if cfg.IndexName == "" {
		cfg.IndexName = domain.DefaultIndexName
	}
	if cfg.K <= 0 {
		cfg.K = domain.DefaultRetrievalK
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = domain.DefaultSystemPrompt
	}

	return &Session{
		indexes:      indexes,
		retriever:    retriever,
		answers:      answers,
		indexName:    cfg.IndexName,
		k:            cfg.K,
		model:        cfg.Model,
		conversation: domain.NewConversationWithSystem(cfg.SystemPrompt),
		ledger:       domain.NewUsageLedger(),
	}
}

// OnStatus registers fn to receive status changes. It is called from the
// goroutine running Ask and must not call back into the session.
func (s *Session) OnStatus(fn driving.StatusFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStatus = fn
}

func (s *Session) status(st domain.SessionStatus) {
	if s.onStatus != nil {
		s.onStatus(st)
	}
}

// Ask answers query and records the exchange. On any failure the
// conversation and ledger are left as they were.
func (s *Session) Ask(ctx context.Context, query string) (domain.Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Answer{}, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.status(domain.StatusIdle)

	logger.Section("Ask")

	if s.index == nil {
		s.status(domain.StatusLoading)
		index, err := s.indexes.Load(ctx, s.indexName)
		if err != nil {
			return domain.Answer{}, err
		}
		s.index = index
	}

	s.status(domain.StatusRetrieving)
	chunks, err := s.retriever.Retrieve(ctx, s.index, query, s.k)
	if err != nil {
		return domain.Answer{}, err
	}

	s.status(domain.StatusGenerating)
	answer, err := s.answers.Answer(ctx, s.conversation.All(), query, chunks, s.model)
	if err != nil {
		return domain.Answer{}, err
	}

	if err := s.conversation.Append(domain.UserTurn(query)); err != nil {
		return domain.Answer{}, err
	}
	if err := s.conversation.Append(domain.AssistantTurn(answer.Text)); err != nil {
		return domain.Answer{}, err
	}
	if err := s.ledger.Record(answer.Cost); err != nil {
		return domain.Answer{}, err
	}

	logger.Debug("Session has %d turns, total cost $%.5f", s.conversation.Len(), s.ledger.Total())
	return answer, nil
}

// Clear resets the conversation to its System turn and empties the ledger.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversation.Reset()
	s.ledger.Reset()
}

// SetModel selects the chat model for subsequent questions.
func (s *Session) SetModel(model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return fmt.Errorf("%w: empty model name", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = model
	return nil
}

// Model returns the selected chat model. Empty means the LLM default.
func (s *Session) Model() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// SetK sets the number of chunks retrieved per question.
func (s *Session) SetK(k int) error {
	if k <= 0 {
		return fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.k = k
	return nil
}

// History returns every conversation turn in order.
func (s *Session) History() []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversation.All()
}

// Costs returns the cost of each answered question.
func (s *Session) Costs() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Costs()
}

// TotalCost returns the session's total cost.
func (s *Session) TotalCost() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Total()
}

// ReloadIndex drops the loaded index; the next question loads it again.
func (s *Session) ReloadIndex() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = nil
}
