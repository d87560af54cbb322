package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/embedding/hash"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/storage/memory"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
)

var testUploadedAt = time.Date(2026, 2, 3, 10, 30, 0, 0, time.UTC)

// mockLLM records every call and replays a canned reply.
type mockLLM struct {
	mu        sync.Mutex
	reply     string
	deltas    []string
	chatErr   error
	streamErr error
	recvErr   error
	calls     int
	messages  []driven.ChatMessage
	opts      driven.ChatOptions
}

func (m *mockLLM) record(messages []driven.ChatMessage, opts driven.ChatOptions) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.messages = messages
	m.opts = opts
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.record(messages, opts)
	if m.chatErr != nil {
		return "", m.chatErr
	}
	return m.reply, nil
}

func (m *mockLLM) ChatStream(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (driven.ChatStream, error) {
	m.record(messages, opts)
	if m.streamErr != nil {
		return nil, m.streamErr
	}
	return &mockStream{deltas: append([]string(nil), m.deltas...), err: m.recvErr}, nil
}

func (m *mockLLM) ModelName() string           { return "mock" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

func (m *mockLLM) lastMessages() []driven.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.messages
}

func (m *mockLLM) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockStream yields deltas, then err (or io.EOF).
type mockStream struct {
	deltas []string
	err    error
	closed bool
}

func (s *mockStream) Recv() (string, error) {
	if len(s.deltas) > 0 {
		d := s.deltas[0]
		s.deltas = s.deltas[1:]
		return d, nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", io.EOF
}

func (s *mockStream) Close() error {
	s.closed = true
	return nil
}

// blockingLLM streams nothing until its context ends.
type blockingLLM struct{ mockLLM }

func (b *blockingLLM) ChatStream(ctx context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (driven.ChatStream, error) {
	return &blockingStream{ctx: ctx}, nil
}

type blockingStream struct{ ctx context.Context }

func (s *blockingStream) Recv() (string, error) {
	<-s.ctx.Done()
	return "", s.ctx.Err()
}

func (s *blockingStream) Close() error { return nil }

// mockEmbedder fails on demand and records batch sizes.
type mockEmbedder struct {
	mu      sync.Mutex
	inner   *hash.EmbeddingService
	err     error
	batches []int
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{inner: hash.NewEmbeddingService(64)}
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.inner.Embed(ctx, text)
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batches = append(m.batches, len(texts))
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.inner.EmbedBatch(ctx, texts)
}

func (m *mockEmbedder) Dimensions() int              { return m.inner.Dimensions() }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// scoredStore returns canned search results over an in-memory store.
type scoredStore struct {
	*memory.ChunkStore
	results   []domain.ScoredChunk
	searchErr error
	countErr  error
}

func newScoredStore(results ...domain.ScoredChunk) *scoredStore {
	return &scoredStore{ChunkStore: memory.NewChunkStore(), results: results}
}

func (s *scoredStore) Search(_ context.Context, _ []float32, k int, _ domain.ChunkFilter) ([]domain.ScoredChunk, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	if len(s.results) > k {
		return s.results[:k], nil
	}
	return s.results, nil
}

func (s *scoredStore) Count(ctx context.Context, f domain.ChunkFilter) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.ChunkStore.Count(ctx, f)
}

// mockPromptStore serves a fixed template.
type mockPromptStore struct {
	template string
	err      error
}

func (m *mockPromptStore) Load(_ string) (string, error) { return m.template, m.err }
func (m *mockPromptStore) Reload()                       {}

// mockValidator records validation calls.
type mockValidator struct {
	embedErr, llmErr error
	embedCalls       int
	llmCalls         int
}

func (m *mockValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error {
	m.embedCalls++
	return m.embedErr
}

func (m *mockValidator) ValidateLLM(_ *domain.LLMSettings) error {
	m.llmCalls++
	return m.llmErr
}

var errBoom = errors.New("boom")

func newTestIndex() (*CourseIndex, *memory.ChunkStore) {
	store := memory.NewChunkStore()
	return NewCourseIndex(store, hash.NewEmbeddingService(0)), store
}

func testChunk(id, course, file string, page int, content string) domain.Chunk {
	return domain.Chunk{
		ID:         id,
		Content:    content,
		CourseID:   course,
		DocType:    domain.DocTypeLecture,
		SourceFile: file,
		PageNumber: page,
		TotalPages: max(page, 1),
		FileType:   domain.FileTypeTXT,
		UploadedAt: testUploadedAt,
	}
}

func seedIndex(t *testing.T, ix *CourseIndex, chunks ...domain.Chunk) {
	t.Helper()
	_, err := ix.Upsert(context.Background(), chunks)
	require.NoError(t, err)
}

func scored(c domain.Chunk, score float64) domain.ScoredChunk {
	return domain.ScoredChunk{Chunk: c, Score: score}
}

// collect drains a stream, failing the test if it never closes.
func collect(t *testing.T, events <-chan domain.AnswerEvent) []domain.AnswerEvent {
	t.Helper()
	var out []domain.AnswerEvent
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatal("stream did not close")
			return out
		}
	}
}
