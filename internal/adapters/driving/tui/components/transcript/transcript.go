// Package transcript renders the conversation in a scrollable viewport.
package transcript

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

const emptyHint = "Ask a question about your indexed documents."

// Transcript displays user and assistant turns, newest at the bottom.
type Transcript struct {
	viewport viewport.Model
	styles   *styles.Styles
	turns    []domain.Turn
	pending  string
}

// New creates an empty transcript.
func New(s *styles.Styles) *Transcript {
	if s == nil {
		s = styles.DefaultStyles()
	}

	vp := viewport.New(60, 10)
	// Only dedicated scroll keys; letters belong to the question input.
	vp.KeyMap = viewport.KeyMap{
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		Up:       key.NewBinding(key.WithKeys("up")),
		Down:     key.NewBinding(key.WithKeys("down")),
	}

	t := &Transcript{
		viewport: vp,
		styles:   s,
	}
	t.render()
	return t
}

// Init initialises the transcript.
func (t *Transcript) Init() tea.Cmd {
	return nil
}

// Update forwards scrolling input to the viewport.
func (t *Transcript) Update(msg tea.Msg) (*Transcript, tea.Cmd) {
	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return t, cmd
}

// View renders the visible part of the transcript.
func (t *Transcript) View() string {
	return t.viewport.View()
}

// SetTurns replaces the displayed conversation. System turns are skipped.
func (t *Transcript) SetTurns(turns []domain.Turn) {
	kept := make([]domain.Turn, 0, len(turns))
	for _, turn := range turns {
		if turn.Role != domain.RoleSystem {
			kept = append(kept, turn)
		}
	}
	t.turns = kept
	t.render()
}

// SetPending shows a question that has been sent but not yet answered.
// An empty question removes it.
func (t *Transcript) SetPending(question string) {
	t.pending = question
	t.render()
}

// Turns returns the displayed turns.
func (t *Transcript) Turns() []domain.Turn {
	return t.turns
}

// SetSize sets the viewport dimensions.
func (t *Transcript) SetSize(width, height int) {
	if width < 10 {
		width = 10
	}
	if height < 1 {
		height = 1
	}
	t.viewport.Width = width
	t.viewport.Height = height
	t.render()
}

func (t *Transcript) render() {
	if len(t.turns) == 0 && t.pending == "" {
		t.viewport.SetContent(t.styles.Muted.Render(emptyHint))
		return
	}

	wrap := lipgloss.NewStyle().Width(t.viewport.Width)
	var b strings.Builder
	for i, turn := range t.turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(wrap.Render(t.line(turn.Role, turn.Content)))
	}
	if t.pending != "" {
		if len(t.turns) > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(wrap.Render(t.line(domain.RoleUser, t.pending)))
	}

	t.viewport.SetContent(b.String())
	t.viewport.GotoBottom()
}

func (t *Transcript) line(role domain.Role, content string) string {
	if role == domain.RoleUser {
		return t.styles.User.Render("You:") + " " + content
	}
	return t.styles.Assistant.Render("Assistant:") + " " + content
}
