package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsShowCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	require.NoError(t, testEnv.config.Set("llm.api_key", "sk-1234567890abcdef"))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings", "show"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "[LLM]")
	assert.Contains(t, out, "API Key: sk-1...cdef")
	assert.Contains(t, out, "Max tokens: 1000")
	assert.Contains(t, out, "K: 4")
	assert.Contains(t, out, "Backend: Local files")
	assert.Contains(t, out, "Sink: file")
	// The embedding provider still lacks a key.
	assert.Contains(t, out, "Warning:")
}

func TestSettingsSetCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings", "set", "retrieval.k", "6"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Set retrieval.k")
	assert.Equal(t, 6, testEnv.config.GetInt("retrieval.k"))
}

func TestSettingsSetCmd_Invalid(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"settings", "set", "retrieval.metric", "manhattan"})

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to set retrieval.metric")
}

func TestSettingsSetCmd_ListsKeys(t *testing.T) {
	assert.Contains(t, settingsSetCmd.Long, "chunk.max_tokens")
	assert.Contains(t, settingsSetCmd.Long, "export.sink")
}

func TestSettingsLLMCmd_Ollama(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetIn(strings.NewReader("1\n\n"))
	rootCmd.SetArgs([]string{"settings", "llm"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "LLM provider configured: Ollama (local) (llama3.2)")
	assert.Equal(t, "ollama", testEnv.config.GetString("llm.provider"))
	assert.Equal(t, "llama3.2", testEnv.config.GetString("llm.model"))
}

func TestSettingsEmbeddingCmd_CustomModel(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetIn(strings.NewReader("1\nmxbai-embed-large\n"))
	rootCmd.SetArgs([]string{"settings", "embedding"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Re-run 'docqa ingest'")
	assert.Equal(t, "mxbai-embed-large", testEnv.config.GetString("embedding.model"))
}

func TestSettingsCmd_NotConfigured(t *testing.T) {
	cleanup := clearServices()
	defer cleanup()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"settings", "show"})

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings service not configured")
}
