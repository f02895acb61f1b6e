package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// noAnswerMessage is shown when a question cannot be answered.
const noAnswerMessage = "No answer available"

var (
	askModel  string
	askK      int
	askJSON   bool
	askExport string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your documents",
	Long: `Retrieves the passages most relevant to the question from the index and
asks the language model to answer from them. When the passages are not
relevant the model answers from its own knowledge.

Use --export to send the exchange to the configured export sink.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askModel, "model", "m", "", "chat model to answer with")
	askCmd.Flags().IntVarP(&askK, "k", "k", 0, "number of passages to retrieve (default from settings)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	askCmd.Flags().StringVar(&askExport, "export", "", "export the exchange under this title")
	rootCmd.AddCommand(askCmd)
}

// askSource is one retrieved passage in JSON output.
type askSource struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// askResult is the JSON output of the ask command.
type askResult struct {
	Question         string      `json:"question"`
	Answer           string      `json:"answer"`
	Model            string      `json:"model,omitempty"`
	PromptTokens     int         `json:"prompt_tokens"`
	CompletionTokens int         `json:"completion_tokens"`
	Cost             float64     `json:"cost"`
	Sources          []askSource `json:"sources"`
	Exported         string      `json:"exported,omitempty"`
	Error            string      `json:"error,omitempty"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	if sessionService == nil {
		return notConfigured("session")
	}
	if askModel != "" {
		if err := sessionService.SetModel(askModel); err != nil {
			return err
		}
	}
	if askK != 0 {
		if err := sessionService.SetK(askK); err != nil {
			return err
		}
	}

	answer, err := sessionService.Ask(cmd.Context(), question)
	if err != nil {
		if !domain.IsNoAnswer(err) {
			return fmt.Errorf("ask failed: %w", err)
		}
		if askJSON {
			return outputAskJSON(cmd, askResult{Question: question, Sources: []askSource{}, Error: err.Error()})
		}
		cmd.Printf("%s: %v\n", noAnswerMessage, err)
		return nil
	}

	var exported string
	if askExport != "" {
		if exportService == nil {
			return notConfigured("export")
		}
		exported, err = exportService.Export(cmd.Context(), askExport, sessionService.History())
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
	}

	if askJSON {
		return outputAskJSON(cmd, newAskResult(question, answer, exported))
	}

	outputAskText(cmd, answer, exported)
	return nil
}

func newAskResult(question string, answer domain.Answer, exported string) askResult {
	sources := make([]askSource, len(answer.Chunks))
	for i, c := range answer.Chunks {
		sources[i] = askSource{Index: c.Index, Text: c.Text}
	}
	return askResult{
		Question:         question,
		Answer:           answer.Text,
		Model:            answer.Model,
		PromptTokens:     answer.Usage.PromptTokens,
		CompletionTokens: answer.Usage.CompletionTokens,
		Cost:             answer.Cost,
		Sources:          sources,
		Exported:         exported,
	}
}

func outputAskJSON(cmd *cobra.Command, result askResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAskText(cmd *cobra.Command, answer domain.Answer, exported string) {
	cmd.Println(answer.Text)
	cmd.Println()
	cmd.Printf("Model: %s  Tokens: %d  Cost: $%.5f\n", answer.Model, answer.Usage.Total(), answer.Cost)
	if verbose {
		for i, c := range answer.Chunks {
			cmd.Printf("[%d] chunk %d: %s\n", i+1, c.Index, truncate(c.Text, 80))
		}
	}
	if exported != "" {
		cmd.Printf("Exported to %s\n", exported)
	}
}

// truncate shortens s to at most n runes on one line.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
