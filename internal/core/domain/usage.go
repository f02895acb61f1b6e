package domain

import "fmt"

// Usage is the token accounting returned by one model invocation.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Total returns the combined token count.
func (u Usage) Total() int {
	return u.PromptTokens + u.CompletionTokens
}

// UsageLedger records the dollar cost of each answered question in a session.
// It is not persisted and is reset together with the conversation.
type UsageLedger struct {
	costs []float64
	total float64
}

// NewUsageLedger creates an empty ledger.
func NewUsageLedger() *UsageLedger {
	return &UsageLedger{}
}

// Record appends a cost. Negative costs are rejected.
func (l *UsageLedger) Record(cost float64) error {
	if cost < 0 {
		return fmt.Errorf("%w: negative cost %f", ErrInvalidInput, cost)
	}
	l.costs = append(l.costs, cost)
	l.total += cost
	return nil
}

// Total returns the sum of all recorded costs.
func (l *UsageLedger) Total() float64 {
	return l.total
}

// Costs returns a copy of the recorded costs in chronological order.
func (l *UsageLedger) Costs() []float64 {
	out := make([]float64, len(l.costs))
	copy(out, l.costs)
	return out
}

// Len returns the number of recorded costs.
func (l *UsageLedger) Len() int {
	return len(l.costs)
}

// Reset discards all recorded costs.
func (l *UsageLedger) Reset() {
	l.costs = nil
	l.total = 0
}
