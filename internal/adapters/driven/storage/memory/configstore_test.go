package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_TypedGetters(t *testing.T) {
	s := NewConfigStore(map[string]any{
		"llm.model":                      "gpt-4o-mini",
		"retrieval.top_k":                int64(7),
		"retrieval.similarity_threshold": 0.25,
		"llm.max_tokens":                 900,
		"feature.on":                     true,
		"list":                           []any{"a", 1, "b"},
	})

	assert.Equal(t, "gpt-4o-mini", s.GetString("llm.model"))
	assert.Equal(t, 7, s.GetInt("retrieval.top_k"))
	assert.Equal(t, 0.25, s.GetFloat("retrieval.similarity_threshold"))
	assert.Equal(t, 900.0, s.GetFloat("llm.max_tokens"))
	assert.True(t, s.GetBool("feature.on"))
	assert.Equal(t, []string{"a", "b"}, s.GetStringSlice("list"))
}

func TestConfigStore_MissingKeys(t *testing.T) {
	s := NewConfigStore()

	_, ok := s.Get("nope")
	assert.False(t, ok)
	assert.Empty(t, s.GetString("nope"))
	assert.Zero(t, s.GetInt("nope"))
	assert.Zero(t, s.GetFloat("nope"))
	assert.False(t, s.GetBool("nope"))
	assert.Nil(t, s.GetStringSlice("nope"))
}

func TestConfigStore_SetOverrides(t *testing.T) {
	s := NewConfigStore(map[string]any{"k": "old"})
	require.NoError(t, s.Set("k", "new"))

	assert.Equal(t, "new", s.GetString("k"))
	assert.NoError(t, s.Save())
	assert.NoError(t, s.Load())
	assert.Equal(t, ":memory:", s.Path())
}
