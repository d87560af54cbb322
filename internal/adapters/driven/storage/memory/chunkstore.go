// Package memory provides in-memory implementations of the driven ports,
// for tests and for the ephemeral "memory" store backend.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/storage/vecmath"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
// Search is a linear scan ranked by cosine similarity.
type ChunkStore struct {
	mu     sync.RWMutex
	chunks map[string]domain.Chunk
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks: make(map[string]domain.Chunk),
	}
}

// Upsert stores or replaces chunks by ID.
func (s *ChunkStore) Upsert(_ context.Context, chunks []domain.Chunk) error {
	for i := range chunks {
		if len(chunks[i].Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, chunks[i].ID)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		c.Embedding = append([]float32(nil), c.Embedding...)
		s.chunks[c.ID] = c
	}
	return nil
}

// Search ranks every matching chunk against the query vector.
func (s *ChunkStore) Search(_ context.Context, query []float32, k int, filter domain.ChunkFilter) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	results := make([]domain.ScoredChunk, 0, len(s.chunks))
	for id := range s.chunks {
		c := s.chunks[id]
		if !filter.Matches(&c) {
			continue
		}
		score := vecmath.Cosine(query, c.Embedding)
		c.Embedding = nil
		results = append(results, domain.ScoredChunk{Chunk: c, Score: score})
	}
	s.mu.RUnlock()

	return vecmath.TopK(results, k), nil
}

// Find returns matching chunks without embeddings.
func (s *ChunkStore) Find(_ context.Context, filter domain.ChunkFilter) ([]domain.Chunk, error) {
	s.mu.RLock()
	var out []domain.Chunk //nolint:prealloc // size unknown until filtered
	for id := range s.chunks {
		c := s.chunks[id]
		if filter.Matches(&c) {
			c.Embedding = nil
			out = append(out, c)
		}
	}
	s.mu.RUnlock()

	vecmath.SortChunks(out)
	return out, nil
}

// Delete removes matching chunks.
func (s *ChunkStore) Delete(_ context.Context, filter domain.ChunkFilter) (int, error) {
	if filter.IsEmpty() {
		return 0, fmt.Errorf("%w: delete requires a filter", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id := range s.chunks {
		c := s.chunks[id]
		if filter.Matches(&c) {
			delete(s.chunks, id)
			n++
		}
	}
	return n, nil
}

// Count returns the number of matching chunks.
func (s *ChunkStore) Count(_ context.Context, filter domain.ChunkFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if filter.IsEmpty() {
		return len(s.chunks), nil
	}
	n := 0
	for id := range s.chunks {
		c := s.chunks[id]
		if filter.Matches(&c) {
			n++
		}
	}
	return n, nil
}

// Courses returns the distinct course IDs in the store.
func (s *ChunkStore) Courses(_ context.Context) ([]string, error) {
	s.mu.RLock()
	seen := make(map[string]bool)
	for id := range s.chunks {
		if c := s.chunks[id].CourseID; c != "" {
			seen[c] = true
		}
	}
	s.mu.RUnlock()

	courses := make([]string, 0, len(seen))
	for c := range seen {
		courses = append(courses, c)
	}
	sort.Strings(courses)
	return courses, nil
}

// Close is a no-op.
func (s *ChunkStore) Close() error {
	return nil
}
