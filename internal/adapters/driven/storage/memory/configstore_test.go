package memory

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Seed(t *testing.T) {
	store := NewConfigStore(map[string]any{"llm.model": "gpt-4"}, map[string]any{"retrieval.k": 6})

	assert.Equal(t, "gpt-4", store.GetString("llm.model"))
	assert.Equal(t, 6, store.GetInt("retrieval.k"))
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore(map[string]any{
		"str":   "value",
		"int":   42,
		"int64": int64(7),
		"float": 0.5,
		"bool":  true,
		"slice": []any{"a", 1, "b"},
	})

	assert.Equal(t, "value", store.GetString("str"))
	assert.Empty(t, store.GetString("int"))

	assert.Equal(t, 42, store.GetInt("int"))
	assert.Equal(t, 7, store.GetInt("int64"))
	assert.Zero(t, store.GetInt("str"))

	assert.InDelta(t, 0.5, store.GetFloat("float"), 1e-9)
	assert.InDelta(t, 42.0, store.GetFloat("int"), 1e-9)
	assert.Zero(t, store.GetFloat("missing"))

	assert.True(t, store.GetBool("bool"))
	assert.False(t, store.GetBool("str"))

	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("slice"))
	assert.Nil(t, store.GetStringSlice("missing"))
}

func TestConfigStore_Set(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("key", "original"))
	require.NoError(t, store.Set("key", "updated"))

	val, ok := store.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "updated", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_SetErr(t *testing.T) {
	store := NewConfigStore()
	store.SetErr = errors.New("disk full")

	assert.EqualError(t, store.Set("key", "value"), "disk full")
	_, ok := store.Get("key")
	assert.False(t, ok)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("key", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("key")
		}()
	}
	wg.Wait()

	_, ok := store.Get("key")
	assert.True(t, ok)
}
