// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
)

// Input modes.
const (
	questionLabel       = "You: "
	questionPlaceholder = "Ask a question..."
	titleLabel          = "Title: "
	titlePlaceholder    = "Name this conversation..."
)

// ChatInput wraps a bubbles textinput for questions and export titles.
type ChatInput struct {
	textinput   textinput.Model
	styles      *styles.Styles
	width       int
	promptTitle bool
}

// NewChatInput creates a new chat input component in question mode.
func NewChatInput(s *styles.Styles) *ChatInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = questionPlaceholder
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 50

	return &ChatInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Init initialises the input.
func (c *ChatInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (c *ChatInput) Update(msg tea.Msg) (*ChatInput, tea.Cmd) {
	var cmd tea.Cmd
	c.textinput, cmd = c.textinput.Update(msg)
	return c, cmd
}

// View renders the input with its label.
func (c *ChatInput) View() string {
	label := c.styles.User.Render(questionLabel)
	if c.promptTitle {
		label = c.styles.Warning.Render(titleLabel)
	}
	input := c.styles.InputField.Render(c.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, input)
}

// PromptTitle switches the input to asking for an export title.
func (c *ChatInput) PromptTitle() {
	c.promptTitle = true
	c.textinput.Placeholder = titlePlaceholder
	c.textinput.Reset()
}

// PromptQuestion switches the input back to asking questions.
func (c *ChatInput) PromptQuestion() {
	c.promptTitle = false
	c.textinput.Placeholder = questionPlaceholder
	c.textinput.Reset()
}

// PromptingTitle reports whether the input is asking for an export title.
func (c *ChatInput) PromptingTitle() bool {
	return c.promptTitle
}

// Value returns the current input value.
func (c *ChatInput) Value() string {
	return c.textinput.Value()
}

// SetValue sets the input value.
func (c *ChatInput) SetValue(value string) {
	c.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (c *ChatInput) Focus() tea.Cmd {
	return c.textinput.Focus()
}

// Blur removes focus from the input.
func (c *ChatInput) Blur() {
	c.textinput.Blur()
}

// Focused returns whether the input is focused.
func (c *ChatInput) Focused() bool {
	return c.textinput.Focused()
}

// SetWidth sets the width of the input.
func (c *ChatInput) SetWidth(width int) {
	c.width = width
	// Account for label, border and padding
	inputWidth := width - 12
	if inputWidth < 20 {
		inputWidth = 20
	}
	c.textinput.Width = inputWidth
}

// Width returns the current width.
func (c *ChatInput) Width() int {
	return c.width
}

// Reset clears the input.
func (c *ChatInput) Reset() {
	c.textinput.Reset()
}
