package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_CreatesNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	_, err := NewConfigStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[[[ not toml"), 0600))

	_, err := NewConfigStore(dir)
	assert.ErrorContains(t, err, "parsing")
	assert.ErrorContains(t, err, "config.toml")
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("llm.provider", "openai"))
	require.NoError(t, store.Set("retrieval.top_k", 5))
	require.NoError(t, store.Set("retrieval.similarity_threshold", 0.3))
	require.NoError(t, store.Set("llm.stream", true))
	require.NoError(t, store.Set("ingest.extensions", []string{".pdf", ".txt"}))

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", store.GetString("llm.provider"), "openai"},
		{"int", store.GetInt("retrieval.top_k"), 5},
		{"float", store.GetFloat("retrieval.similarity_threshold"), 0.3},
		{"int as float", store.GetFloat("retrieval.top_k"), 5.0},
		{"bool", store.GetBool("llm.stream"), true},
		{"slice", store.GetStringSlice("ingest.extensions"), []string{".pdf", ".txt"}},
		{"missing string", store.GetString("nope"), ""},
		{"missing int", store.GetInt("nope"), 0},
		{"missing float", store.GetFloat("nope"), 0.0},
		{"wrong type", store.GetInt("llm.provider"), 0},
		{"missing slice", store.GetStringSlice("nope"), []string(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestConfigStore_PersistsAsTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("retrieval.top_k", 7))
	require.NoError(t, store.Set("retrieval.similarity_threshold", 0.25))
	require.NoError(t, store.Set("llm.provider", "ollama"))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[retrieval]")
	assert.Contains(t, string(raw), "[llm]")

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 7, reloaded.GetInt("retrieval.top_k"))
	assert.Equal(t, 0.25, reloaded.GetFloat("retrieval.similarity_threshold"))
	assert.Equal(t, "ollama", reloaded.GetString("llm.provider"))
	assert.Equal(t, []string{"llm.provider", "retrieval.similarity_threshold", "retrieval.top_k"}, reloaded.Keys())
}

func TestConfigStore_LoadHandEditedFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[embedding]
provider = "hash"

[retrieval]
top_k = 8.0
history_turns = 4
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "hash", store.GetString("embedding.provider"))
	assert.Equal(t, 8, store.GetInt("retrieval.top_k"))
	assert.Equal(t, 4, store.GetInt("retrieval.history_turns"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("k", "v"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_SetRollsBackOnWriteError(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.Chmod(dir, 0500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0700) })

	assert.Error(t, store.Set("k", "v"))
	_, ok := store.Get("k")
	assert.False(t, ok)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Set("retrieval.top_k", i)
			_ = store.GetInt("retrieval.top_k")
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, store.GetInt("retrieval.top_k"), 0)
}

func TestNest(t *testing.T) {
	got := nest(map[string]any{
		"a.b":   1,
		"a.c.d": "x",
		"e":     true,
		"e.f":   2,
	})

	assert.Equal(t, map[string]any{
		"a": map[string]any{
			"b": 1,
			"c": map[string]any{"d": "x"},
		},
		"e": true,
	}, got)
}

func TestFlatten(t *testing.T) {
	out := make(map[string]any)
	flatten(map[string]any{
		"a": map[string]any{"b": int64(1), "c": map[string]any{"d": "x"}},
		"e": true,
	}, "", out)

	assert.Equal(t, map[string]any{"a.b": int64(1), "a.c.d": "x", "e": true}, out)
}
