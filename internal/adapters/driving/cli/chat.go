package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/logger"
)

// chatCmd represents the chat command.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive question-answering session",
	Long: `Start an interactive terminal session over the indexed documents.

Every answer is grounded in the passages retrieved for the question and the
conversation so far. The sidebar shows the model in use and the cost of each
answer.

Controls:
  enter    - Ask the typed question
  tab      - Switch chat model
  ctrl+l   - Clear the conversation and costs
  ctrl+e   - Export the conversation
  pgup/dn  - Scroll the transcript
  esc      - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) (err error) {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	if sessionService == nil {
		return notConfigured("session")
	}

	app, err := tui.NewApp(tui.NewPorts(sessionService, exportService, chatModels()))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	app.WithContext(ctx)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	sessionService.OnStatus(func(s domain.SessionStatus) {
		p.Send(messages.StatusChanged{Status: s})
	})
	defer sessionService.OnStatus(nil)

	if promptWatcher != nil {
		go func() {
			err := promptWatcher(ctx, func(name string) {
				p.Send(messages.PromptReloaded{Name: name})
			})
			if err != nil {
				logger.Warn("prompt watcher stopped: %v", err)
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// chatModels returns the models the chat UI can switch between for the
// configured provider, starting with the configured model.
func chatModels() []string {
	if settingsService == nil {
		return nil
	}
	settings, err := settingsService.Get()
	if err != nil || settings.LLM.Model == "" {
		return nil
	}

	models := domain.SelectableLLMModels()[settings.LLM.Provider]
	if !slices.Contains(models, settings.LLM.Model) {
		models = append([]string{settings.LLM.Model}, models...)
	}
	return models
}
