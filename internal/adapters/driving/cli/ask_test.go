package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [question]", askCmd.Use)
	assert.Equal(t, "Ask a question about your documents", askCmd.Short)
}

func TestAskCmd_Flags(t *testing.T) {
	for _, name := range []string{"model", "k", "json", "export"} {
		assert.NotNil(t, askCmd.Flags().Lookup(name), "flag %s should exist", name)
	}
	assert.Equal(t, "m", askCmd.Flags().Lookup("model").Shorthand)
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"ask"})

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestAskCmd_Answers(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestFacts(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "What", "is", "the", "capital", "of", "France?"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Paris is the capital of France.")
	assert.Contains(t, buf.String(), "Model: gpt-3.5-turbo")
	assert.Contains(t, buf.String(), "Cost: $0.00250")

	require.Len(t, testEnv.llm.messages, 1)
	sent := testEnv.llm.messages[0]
	assert.Contains(t, sent[len(sent)-1].Content, "Question: What is the capital of France?")
	assert.Contains(t, sent[len(sent)-1].Content, "The capital of France is Paris.")
}

func TestAskCmd_ModelFlag(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestFacts(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "--model", "gpt-4", "capital of France"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-4"}, testEnv.llm.models)
	// 1000 prompt tokens at 0.03 plus 500 completion tokens at 0.06.
	assert.Contains(t, buf.String(), "Cost: $0.06000")
}

func TestAskCmd_InvalidK(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"ask", "--k", "-1", "capital"})

	err := rootCmd.Execute()

	require.Error(t, err)
}

func TestAskCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestFacts(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "--json", "--k", "1", "capital of France"})

	err := rootCmd.Execute()
	require.NoError(t, err)

	var result askResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "capital of France", result.Question)
	assert.Equal(t, "Paris is the capital of France.", result.Answer)
	assert.Equal(t, 1000, result.PromptTokens)
	assert.Equal(t, 500, result.CompletionTokens)
	assert.InDelta(t, 0.0025, result.Cost, 1e-9)
	require.Len(t, result.Sources, 1)
	assert.Contains(t, result.Sources[0].Text, "France")
	assert.Empty(t, result.Error)
}

func TestAskCmd_NoIndex(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "capital of France"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No answer available")
	assert.Empty(t, testEnv.llm.messages)
}

func TestAskCmd_NoIndexJSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "--json", "capital of France"})

	err := rootCmd.Execute()
	require.NoError(t, err)

	var result askResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Empty(t, result.Answer)
	assert.Contains(t, result.Error, "index not found")
	assert.Empty(t, result.Sources)
}

func TestAskCmd_ModelFailure(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestFacts(t)
	testEnv.llm.err = assert.AnError

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "capital of France"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No answer available")
	assert.Contains(t, buf.String(), "model invocation failed")
}

func TestAskCmd_Export(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestFacts(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "--export", "Geography", "capital of France"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Exported to memory://Geography")
	require.Equal(t, []string{"Geography"}, testEnv.sink.titles)
	assert.Equal(t, "You: capital of France\nAssistant: Paris is the capital of France.", testEnv.sink.contents[0])
}

func TestAskCmd_NotConfigured(t *testing.T) {
	cleanup := clearServices()
	defer cleanup()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"ask", "anything"})

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "session service not configured")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "one two", truncate("one\n\ntwo", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
