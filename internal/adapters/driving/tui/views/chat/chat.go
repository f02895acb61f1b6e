// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/sidebar"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/transcript"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// View is the chat screen: transcript and question input on the left, the
// model and cost sidebar on the right and a status bar underneath.
//
// The session is only read while no question is in flight; Ask holds the
// session for its whole duration.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.ChatInput
	transcript *transcript.Transcript
	sidebar    *sidebar.Sidebar
	statusbar  *status.Bar
	spinner    spinner.Model

	session driving.SessionService
	export  driving.ExportService
	models  []string
	ctx     context.Context

	width  int
	height int
	ready  bool
	busy   bool
	err    error
}

// NewView creates a new chat view. export may be nil, in which case the
// export key reports that exporting is unavailable. models lists the chat
// models the switch key cycles through.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	session driving.SessionService,
	export driving.ExportService,
	models []string,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Title

	v := &View{
		styles:     s,
		keymap:     km,
		input:      input.NewChatInput(s),
		transcript: transcript.New(s),
		sidebar:    sidebar.New(s),
		statusbar:  status.NewBar(s, km),
		spinner:    sp,
		session:    session,
		export:     export,
		models:     models,
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
	v.refresh()
	return v
}

// WithContext sets the context questions and exports run under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.StatusChanged:
		if v.busy {
			v.statusbar.SetStatus(msg.Status)
		}
		return v, nil

	case messages.ExportCompleted:
		v.handleExport(msg)
		return v, nil

	case messages.ModelChanged:
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.sidebar.SetModel(msg.Model)
		v.setMessage("Model: " + msg.Model)
		return v, nil

	case messages.PromptReloaded:
		if !v.busy {
			v.setMessage(fmt.Sprintf("Reloaded %s prompt", msg.Name))
		}
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil

	case spinner.TickMsg:
		if !v.busy {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.statusbar.SetSpinner(v.spinner.View())
		return v, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	v.transcript, cmd = v.transcript.Update(msg)
	cmds = append(cmds, cmd)
	v.input, cmd = v.input.Update(msg)
	cmds = append(cmds, cmd)
	return v, tea.Batch(cmds...)
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.input.PromptingTitle() {
		return v.handleTitleKey(msg)
	}

	switch {
	case key.Matches(msg, v.keymap.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keymap.ScrollUp), key.Matches(msg, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd

	case key.Matches(msg, v.keymap.Ask):
		if v.busy {
			return v, nil
		}
		return v, v.submit()

	case key.Matches(msg, v.keymap.Clear):
		if v.busy {
			return v, nil
		}
		v.session.Clear()
		v.refresh()
		v.setMessage("Conversation cleared")
		return v, nil

	case key.Matches(msg, v.keymap.Export):
		if v.busy {
			return v, nil
		}
		if v.export == nil {
			v.setError(ErrNoExportService)
			return v, nil
		}
		v.input.PromptTitle()
		v.statusbar.Clear()
		v.statusbar.SetState(status.StatePrompt)
		return v, nil

	case key.Matches(msg, v.keymap.SwitchModel):
		if v.busy {
			return v, nil
		}
		return v, v.switchModel()
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleTitleKey processes keyboard input while asking for an export title.
func (v *View) handleTitleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Cancel):
		v.input.PromptQuestion()
		v.statusbar.Clear()
		return v, nil

	case key.Matches(msg, v.keymap.Ask):
		title := strings.TrimSpace(v.input.Value())
		if title == "" {
			return v, nil
		}
		v.input.PromptQuestion()
		v.statusbar.Clear()
		v.statusbar.SetMessage("Exporting...")
		return v, v.exportCmd(title, v.session.History())
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit sends the typed question.
func (v *View) submit() tea.Cmd {
	question := strings.TrimSpace(v.input.Value())
	if question == "" {
		return nil
	}

	v.busy = true
	v.err = nil
	v.input.Reset()
	v.transcript.SetPending(question)
	v.statusbar.Clear()
	v.statusbar.SetState(status.StateBusy)

	return tea.Batch(v.ask(question), v.spinner.Tick)
}

// ask runs one question against the session.
func (v *View) ask(question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := v.session.Ask(v.ctx, question)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

// exportCmd sends turns to the export sink under title.
func (v *View) exportCmd(title string, turns []domain.Turn) tea.Cmd {
	return func() tea.Msg {
		ref, err := v.export.Export(v.ctx, title, turns)
		return messages.ExportCompleted{Title: title, Ref: ref, Err: err}
	}
}

// switchModel selects the model after the current one in the list.
func (v *View) switchModel() tea.Cmd {
	if len(v.models) == 0 {
		return nil
	}

	next := v.models[0]
	current := v.session.Model()
	for i, m := range v.models {
		if m == current {
			next = v.models[(i+1)%len(v.models)]
			break
		}
	}
	if next == current {
		return nil
	}

	return func() tea.Msg {
		return messages.ModelChanged{Model: next, Err: v.session.SetModel(next)}
	}
}

// handleAnswer processes the result of a question.
func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.busy = false
	v.transcript.SetPending("")
	v.statusbar.Clear()

	if msg.Err != nil {
		if domain.IsNoAnswer(msg.Err) {
			v.setError(fmt.Errorf("no answer available: %w", msg.Err))
		} else {
			v.setError(msg.Err)
		}
		// Keep the question so it can be retried.
		v.input.SetValue(msg.Question)
	}

	v.refresh()
}

// handleExport processes the result of an export.
func (v *View) handleExport(msg messages.ExportCompleted) {
	if msg.Err != nil {
		v.setError(fmt.Errorf("export failed: %w", msg.Err))
		return
	}
	v.setMessage(fmt.Sprintf("Exported %q to %s", msg.Title, msg.Ref))
}

// refresh copies the conversation, model and costs from the session.
func (v *View) refresh() {
	if v.busy || v.session == nil {
		return
	}
	v.transcript.SetTurns(v.session.History())
	v.sidebar.SetModel(v.session.Model())
	v.sidebar.SetCosts(v.session.Costs(), v.session.TotalCost())
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

func (v *View) setMessage(message string) {
	v.err = nil
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage(message)
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		v.styles.Title.Render("docqa"),
		v.transcript.View(),
		v.input.View(),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", v.sidebar.View())

	return lipgloss.JoinVertical(lipgloss.Left, body, v.statusbar.View())
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	mainWidth := width - styles.SidebarWidth - 1
	// Title line, bordered input and status bar.
	v.transcript.SetSize(mainWidth, height-5)
	v.input.SetWidth(mainWidth)
	v.sidebar.SetHeight(height - 1)
	v.statusbar.SetWidth(width)
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Busy reports whether a question is in flight.
func (v *View) Busy() bool {
	return v.busy
}

// Input returns the current input text.
func (v *View) Input() string {
	return v.input.Value()
}

// SetInput sets the input text.
func (v *View) SetInput(text string) {
	v.input.SetValue(text)
}

// PromptingTitle reports whether the view is asking for an export title.
func (v *View) PromptingTitle() bool {
	return v.input.PromptingTitle()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// StatusMessage returns the message shown in the status bar.
func (v *View) StatusMessage() string {
	return v.statusbar.Message()
}
