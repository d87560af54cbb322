// Package hash provides an offline embedding service based on feature hashing.
//
// Each lowercased token is hashed with SHA-256 into one of a fixed number of
// buckets with a sign bit, and the resulting vector is L2-normalised. Texts
// that share words score high under cosine similarity. The embedder needs no
// network access and is fully deterministic.
package hash

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"strconv"
	"strings"
	"unicode"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/storage/vecmath"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "hash-256"
	DefaultDimensions = 256
)

// EmbeddingService embeds text by hashing its tokens.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a hash embedder with the given dimensionality.
// Zero or negative selects DefaultDimensions.
func NewEmbeddingService(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{dimensions: dimensions}
}

// Embed generates a vector embedding for the given text.
// Text without any letters or digits maps to the zero vector.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float32, s.dimensions)
	for _, tok := range Tokenize(text) {
		sum := sha256.Sum256([]byte(tok))
		idx := binary.BigEndian.Uint32(sum[:4]) % uint32(s.dimensions)
		if sum[4]&1 == 0 {
			vec[idx]++
		} else {
			vec[idx]--
		}
	}
	return vecmath.Normalize(vec), nil
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	if s.dimensions == DefaultDimensions {
		return DefaultModel
	}
	return "hash-" + strconv.Itoa(s.dimensions)
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// Tokenize lowercases text and splits it on anything that is not a letter or digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
