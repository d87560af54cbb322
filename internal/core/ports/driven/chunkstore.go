package driven

import (
	"context"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
)

// ChunkStore is the persistent vector index holding every course's chunks
// in one logical collection, disambiguated by metadata.
//
// Implementations must be safe for concurrent reads and for upsert
// alongside reads. Delete racing a Search on the same document is best
// effort: the search may or may not observe the deleted chunks.
type ChunkStore interface {
	// Upsert writes chunks keyed by chunk ID. Every chunk must carry its
	// embedding. Writing an existing ID replaces it.
	Upsert(ctx context.Context, chunks []domain.Chunk) error

	// Search returns up to k chunks matching the filter, ordered by
	// descending cosine similarity to the query vector.
	Search(ctx context.Context, query []float32, k int, filter domain.ChunkFilter) ([]domain.ScoredChunk, error)

	// Find returns every chunk matching the filter, without embeddings,
	// ordered by course, source file, page and chunk index.
	Find(ctx context.Context, filter domain.ChunkFilter) ([]domain.Chunk, error)

	// Delete removes every chunk matching the filter and reports how many
	// were removed. An empty filter is rejected with ErrInvalidInput.
	Delete(ctx context.Context, filter domain.ChunkFilter) (int, error)

	// Count returns the number of chunks matching the filter.
	Count(ctx context.Context, filter domain.ChunkFilter) (int, error)

	// Courses returns the distinct course IDs that have chunks, sorted
	// ascending. It never reads chunk content.
	Courses(ctx context.Context) ([]string, error)

	// Close releases resources.
	Close() error
}
