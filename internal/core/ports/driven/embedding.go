package driven

import "context"

// EmbeddingService maps text to vectors. Chunks at upload time and questions
// at ask time go through the same service, so an index built with one model
// cannot be queried with another; Dimensions must not change under it.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns len(texts) vectors, index-aligned with texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	Dimensions() int
	ModelName() string

	// Ping checks the provider answers and the credentials are accepted.
	Ping(ctx context.Context) error
	Close() error
}
