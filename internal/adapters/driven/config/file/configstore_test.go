package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfigStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_Success(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".docqa", "config.toml"), store.Path())
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("llm = [unterminated"), 0600))

	_, err := NewConfigStore(dir)
	assert.Error(t, err)
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := newTestConfigStore(t)

	require.NoError(t, store.Set("llm.model", "gpt-4"))
	require.NoError(t, store.Set("retrieval.k", 6))
	require.NoError(t, store.Set("embedding.rps", 2.5))
	require.NoError(t, store.Set("minio.use_ssl", true))

	assert.Equal(t, "gpt-4", store.GetString("llm.model"))
	assert.Equal(t, 6, store.GetInt("retrieval.k"))
	assert.InDelta(t, 2.5, store.GetFloat("embedding.rps"), 1e-9)
	assert.True(t, store.GetBool("minio.use_ssl"))

	_, ok := store.Get("missing.key")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("retrieval.k"))
}

func TestConfigStore_Persistence(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("llm.provider", "openai"))
	require.NoError(t, store.Set("chunk.max_tokens", 500))
	require.NoError(t, store.Set("embedding.rps", 2))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "openai", reopened.GetString("llm.provider"))
	assert.Equal(t, 500, reopened.GetInt("chunk.max_tokens"))
	assert.InDelta(t, 2.0, reopened.GetFloat("embedding.rps"), 1e-9)
}

func TestConfigStore_NestedTables(t *testing.T) {
	dir := t.TempDir()
	content := `
[llm]
provider = "anthropic"
model = "claude-3-5-haiku-latest"

[export.notion]
database_id = "db-123"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", store.GetString("llm.provider"))
	assert.Equal(t, "claude-3-5-haiku-latest", store.GetString("llm.model"))
	assert.Equal(t, "db-123", store.GetString("export.notion.database_id"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("llm.api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_EnvOverlay(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("llm.model", "gpt-3.5-turbo"))
	require.NoError(t, store.Set("retrieval.k", 4))

	t.Setenv("DOCQA_LLM_MODEL", "gpt-4")
	t.Setenv("DOCQA_RETRIEVAL_K", "8")
	t.Setenv("DOCQA_MINIO_USE_SSL", "true")
	t.Setenv("DOCQA_EMBEDDING_RPS", "1.5")

	assert.Equal(t, "gpt-4", store.GetString("llm.model"))
	assert.Equal(t, 8, store.GetInt("retrieval.k"))
	assert.True(t, store.GetBool("minio.use_ssl"))
	assert.InDelta(t, 1.5, store.GetFloat("embedding.rps"), 1e-9)

	// The environment never reaches the file.
	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "gpt-4")
}

func TestConfigStore_ConventionalEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("NOTION_API_TOKEN", "secret_notion")
	t.Setenv("OLLAMA_HOST", "http://gpu:11434")

	store := newTestConfigStore(t)
	assert.Equal(t, "sk-test", store.GetString("openai.api_key"))
	assert.Equal(t, "secret_notion", store.GetString("notion.token"))
	assert.Equal(t, "http://gpu:11434", store.GetString("ollama.host"))
}

func TestConfigStore_PrefixedEnvBeatsConventional(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-conventional")
	t.Setenv("DOCQA_OPENAI_API_KEY", "sk-prefixed")

	store := newTestConfigStore(t)
	assert.Equal(t, "sk-prefixed", store.GetString("openai.api_key"))
}

func TestConfigStore_GetStringSlice(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("ingest.types", []string{"pdf", "txt"}))
	assert.Equal(t, []string{"pdf", "txt"}, store.GetStringSlice("ingest.types"))

	t.Setenv("DOCQA_INGEST_TYPES", "pdf, md ,")
	assert.Equal(t, []string{"pdf", "md"}, store.GetStringSlice("ingest.types"))
}

func TestConfigStore_SetFailureKeepsPreviousValue(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("llm.model", "gpt-4"))

	// Values TOML cannot encode fail the save.
	err := store.Set("llm.model", make(chan int))
	require.Error(t, err)
	assert.Equal(t, "gpt-4", store.GetString("llm.model"))
}

func TestConfigStore_Load_Reread(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("llm.model", "gpt-4"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("[llm]\nmodel = \"gpt-4o\"\n"), 0600))
	require.NoError(t, store.Load())
	assert.Equal(t, "gpt-4o", store.GetString("llm.model"))

	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, store.Load())
	_, ok := store.Get("llm.model")
	assert.False(t, ok)
}
