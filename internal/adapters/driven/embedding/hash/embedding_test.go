package hash

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/storage/vecmath"
)

func TestEmbed_Deterministic(t *testing.T) {
	s := NewEmbeddingService(0)
	ctx := context.Background()

	a, err := s.Embed(ctx, "Binary search trees")
	require.NoError(t, err)
	b, err := s.Embed(ctx, "binary SEARCH trees!")
	require.NoError(t, err)

	assert.Len(t, a, DefaultDimensions)
	assert.Equal(t, a, b)
	assert.InDelta(t, 1.0, vecmath.Cosine(a, b), 1e-6)
}

func TestEmbed_SharedWordsScoreHigher(t *testing.T) {
	s := NewEmbeddingService(0)
	ctx := context.Background()

	q, _ := s.Embed(ctx, "when is the midterm exam")
	near, _ := s.Embed(ctx, "the midterm exam is in week 7")
	far, _ := s.Embed(ctx, "photosynthesis converts light into chemical energy")

	assert.Greater(t, vecmath.Cosine(q, near), vecmath.Cosine(q, far))
}

func TestEmbed_EmptyTextIsZeroVector(t *testing.T) {
	s := NewEmbeddingService(8)

	vec, err := s.Embed(context.Background(), "   ...   ")
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 8), vec)
}

func TestEmbed_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEmbeddingService(0).Embed(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEmbedBatch(t *testing.T) {
	s := NewEmbeddingService(0)
	ctx := context.Background()

	out, err := s.EmbedBatch(ctx, []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, out, 2)

	alpha, _ := s.Embed(ctx, "alpha")
	assert.Equal(t, alpha, out[0])
}

func TestModelName(t *testing.T) {
	assert.Equal(t, "hash-256", NewEmbeddingService(0).ModelName())
	assert.Equal(t, "hash-64", NewEmbeddingService(64).ModelName())
	assert.Equal(t, 64, NewEmbeddingService(64).Dimensions())
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"cs101", "week", "3", "notes"}, Tokenize("CS101: Week-3 notes"))
	assert.Empty(t, Tokenize(""))
}
