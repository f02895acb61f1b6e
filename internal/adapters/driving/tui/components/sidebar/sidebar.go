// Package sidebar renders the selected model and the running cost ledger.
package sidebar

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
)

// Sidebar shows the model in use, the cost of every answered question and
// the session total.
type Sidebar struct {
	styles *styles.Styles
	model  string
	costs  []float64
	total  float64
	height int
}

// New creates an empty sidebar.
func New(s *styles.Styles) *Sidebar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Sidebar{styles: s}
}

// SetModel sets the model name.
func (b *Sidebar) SetModel(model string) {
	b.model = model
}

// Model returns the displayed model name.
func (b *Sidebar) Model() string {
	return b.model
}

// SetCosts sets the per-question costs and their total.
func (b *Sidebar) SetCosts(costs []float64, total float64) {
	b.costs = append([]float64(nil), costs...)
	b.total = total
}

// SetHeight sets the rendered height, borders included.
func (b *Sidebar) SetHeight(height int) {
	b.height = height
}

// View renders the sidebar. Costs are shown to five decimal places; when
// they do not fit, the oldest are dropped.
func (b *Sidebar) View() string {
	lines := []string{
		b.styles.Title.Render("Model"),
		b.styles.Normal.Render(b.model),
		"",
		b.styles.Title.Render("Costs"),
	}

	costLines := make([]string, 0, len(b.costs))
	for i, c := range b.costs {
		costLines = append(costLines, b.styles.Normal.Render(fmt.Sprintf("Q%-3d $%.5f", i+1, c)))
	}
	if len(costLines) == 0 {
		costLines = append(costLines, b.styles.Muted.Render("none yet"))
	}

	footer := []string{"", b.styles.Success.Render(fmt.Sprintf("Total $%.5f", b.total))}

	// Two lines of border.
	if room := b.height - 2 - len(lines) - len(footer); b.height > 0 && len(costLines) > room {
		if room < 1 {
			room = 1
		}
		costLines = costLines[len(costLines)-room:]
	}

	lines = append(lines, costLines...)
	lines = append(lines, footer...)

	style := b.styles.Sidebar.Width(styles.SidebarWidth - 2)
	if b.height > 2 {
		style = style.Height(b.height - 2)
	}
	return style.Render(strings.Join(lines, "\n"))
}
