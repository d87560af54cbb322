package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/logger"
)

// defaultEmbedBatchSize caps the number of texts sent in one EmbedBatch call.
const defaultEmbedBatchSize = 64

// CourseIndex is the document store adapter: it pairs the chunk store with
// the embedding service so callers deal in text, never in vectors.
type CourseIndex struct {
	store     driven.ChunkStore
	embedder  driven.EmbeddingService
	timeout   time.Duration
	batchSize int
}

// IndexOption configures a CourseIndex.
type IndexOption func(*CourseIndex)

// WithEmbedTimeout bounds every embedding call.
func WithEmbedTimeout(d time.Duration) IndexOption {
	return func(ix *CourseIndex) {
		if d > 0 {
			ix.timeout = d
		}
	}
}

// WithEmbedBatchSize sets how many chunk texts are embedded per call.
func WithEmbedBatchSize(n int) IndexOption {
	return func(ix *CourseIndex) {
		if n > 0 {
			ix.batchSize = n
		}
	}
}

// NewCourseIndex creates a course index over store.
// The embedder may be nil; writes and queries then fail or come back empty.
func NewCourseIndex(store driven.ChunkStore, embedder driven.EmbeddingService, opts ...IndexOption) *CourseIndex {
	ix := &CourseIndex{
		store:     store,
		embedder:  embedder,
		timeout:   domain.DefaultProviderTimeout,
		batchSize: defaultEmbedBatchSize,
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Upsert embeds the chunks and writes them keyed by ID.
// Returns the stored IDs in input order.
func (ix *CourseIndex) Upsert(ctx context.Context, chunks []domain.Chunk) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	embedded, err := ix.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}
	if err := ix.store.Upsert(ctx, embedded); err != nil {
		return nil, fmt.Errorf("store chunks: %w", err)
	}
	return chunkIDs(embedded), nil
}

// ReplaceDocument stores chunks of one (course, source file) pair after
// removing whatever that pair held before. Embedding happens first, so a
// provider failure leaves the previous version in place.
func (ix *CourseIndex) ReplaceDocument(ctx context.Context, courseID, sourceFile string, chunks []domain.Chunk) ([]string, error) {
	embedded, err := ix.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	removed, err := ix.store.Delete(ctx, domain.ChunkFilter{CourseID: courseID, SourceFile: sourceFile})
	if err != nil {
		return nil, fmt.Errorf("remove previous version: %w", err)
	}
	if removed > 0 {
		logger.Debug("Replaced %d chunks of %s in %s", removed, sourceFile, courseID)
	}

	if len(embedded) == 0 {
		return nil, nil
	}
	if err := ix.store.Upsert(ctx, embedded); err != nil {
		return nil, fmt.Errorf("store chunks: %w", err)
	}
	return chunkIDs(embedded), nil
}

// Query returns up to k chunks nearest to text. Failures are logged and
// yield an empty result.
func (ix *CourseIndex) Query(ctx context.Context, text string, k int, filter domain.ChunkFilter) []domain.Chunk {
	scored := ix.QueryWithScores(ctx, text, k, filter)
	chunks := make([]domain.Chunk, len(scored))
	for i := range scored {
		chunks[i] = scored[i].Chunk
	}
	return chunks
}

// QueryWithScores is Query with cosine similarity scores, best first.
func (ix *CourseIndex) QueryWithScores(ctx context.Context, text string, k int, filter domain.ChunkFilter) []domain.ScoredChunk {
	if strings.TrimSpace(text) == "" || k <= 0 {
		return nil
	}
	if ix.embedder == nil {
		logger.Warn("Query skipped: %v", domain.ErrEmbeddingUnavailable)
		return nil
	}

	embedCtx, cancel := context.WithTimeout(ctx, ix.timeout)
	vec, err := ix.embedder.Embed(embedCtx, text)
	cancel()
	if err != nil {
		logger.Warn("Embedding query failed: %v", err)
		return nil
	}

	results, err := ix.store.Search(ctx, vec, k, filter)
	if err != nil {
		logger.Warn("Similarity search failed: %v", err)
		return nil
	}
	return results
}

// ListCourses returns every course that has chunks, sorted ascending.
func (ix *CourseIndex) ListCourses(ctx context.Context) ([]string, error) {
	courses, err := ix.store.Courses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// ListDocuments returns one summary per source file in the course.
// Metadata is taken from the first chunk seen for each file.
func (ix *CourseIndex) ListDocuments(ctx context.Context, courseID string) ([]domain.DocumentSummary, error) {
	courseID = domain.SanitizeCourseID(courseID)
	chunks, err := ix.store.Find(ctx, domain.ChunkFilter{CourseID: courseID})
	if err != nil {
		return nil, fmt.Errorf("list documents of %s: %w", courseID, err)
	}

	index := make(map[string]int)
	docs := []domain.DocumentSummary{}
	for i := range chunks {
		c := &chunks[i]
		if pos, ok := index[c.SourceFile]; ok {
			docs[pos].ChunkCount++
			continue
		}
		index[c.SourceFile] = len(docs)
		docs = append(docs, domain.DocumentSummary{
			CourseID:   c.CourseID,
			SourceFile: c.SourceFile,
			DocType:    c.DocType,
			FileType:   c.FileType,
			TotalPages: c.TotalPages,
			UploadedAt: c.UploadedAt,
			ChunkCount: 1,
		})
	}
	return docs, nil
}

// DeleteDocument removes every chunk of sourceFile within the course.
// Returns false when nothing matched.
func (ix *CourseIndex) DeleteDocument(ctx context.Context, courseID, sourceFile string) (bool, error) {
	if strings.TrimSpace(sourceFile) == "" {
		return false, fmt.Errorf("%w: source file is required", domain.ErrInvalidInput)
	}
	n, err := ix.store.Delete(ctx, domain.ChunkFilter{
		CourseID:   domain.SanitizeCourseID(courseID),
		SourceFile: sourceFile,
	})
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", sourceFile, err)
	}
	return n > 0, nil
}

// Stats returns index-wide totals.
func (ix *CourseIndex) Stats(ctx context.Context) (*domain.IndexStats, error) {
	total, err := ix.store.Count(ctx, domain.ChunkFilter{})
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}
	courses, err := ix.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.IndexStats{TotalChunks: total, Courses: courses}, nil
}

// IsEmpty reports whether the index holds no chunks.
func (ix *CourseIndex) IsEmpty(ctx context.Context) (bool, error) {
	n, err := ix.store.Count(ctx, domain.ChunkFilter{})
	if err != nil {
		return false, fmt.Errorf("count chunks: %w", err)
	}
	return n == 0, nil
}

// embedChunks returns copies of chunks carrying their embeddings.
func (ix *CourseIndex) embedChunks(ctx context.Context, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	if ix.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	out := make([]domain.Chunk, len(chunks))
	copy(out, chunks)

	for start := 0; start < len(out); start += ix.batchSize {
		end := min(start+ix.batchSize, len(out))
		texts := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			texts = append(texts, out[i].Content)
		}

		embedCtx, cancel := context.WithTimeout(ctx, ix.timeout)
		vecs, err := ix.embedder.EmbedBatch(embedCtx, texts)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
		if len(vecs) != len(texts) {
			return nil, fmt.Errorf("embedding returned %d vectors for %d texts", len(vecs), len(texts))
		}
		for i, v := range vecs {
			out[start+i].Embedding = v
		}
	}
	return out, nil
}

func chunkIDs(chunks []domain.Chunk) []string {
	ids := make([]string, len(chunks))
	for i := range chunks {
		ids[i] = chunks[i].ID
	}
	return ids
}
