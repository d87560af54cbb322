// Package storetest is a conformance suite run against every
// driven.ChunkStore implementation.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
)

// Factory returns an empty store. The suite closes it.
type Factory func(t *testing.T) driven.ChunkStore

// Run executes the conformance suite.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, s driven.ChunkStore)
	}{
		{"SearchRanksByCosine", testSearchRanks},
		{"SearchFilters", testSearchFilters},
		{"UpsertIsIdempotent", testUpsertIdempotent},
		{"UpsertRejectsMissingEmbedding", testUpsertMissingEmbedding},
		{"FindOrdersAndStripsEmbeddings", testFind},
		{"DeleteRemovesOnlyItsKey", testDelete},
		{"DeleteRequiresFilter", testDeleteRequiresFilter},
		{"Count", testCount},
		{"CoursesAreDistinctAndSorted", testCourses},
		{"RoundTripsMetadata", testMetadata},
		{"ConcurrentUpsertAndSearch", testConcurrent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { assert.NoError(t, s.Close()) })
			tt.fn(t, s)
		})
	}
}

// NewChunk builds a chunk with a fixed embedding.
func NewChunk(id, course, file string, page int, vec ...float32) domain.Chunk {
	return domain.Chunk{
		ID:         id,
		Content:    "content of " + id,
		CourseID:   course,
		DocType:    domain.DocTypeLecture,
		SourceFile: file,
		PageNumber: page,
		TotalPages: 3,
		FileType:   domain.FileTypePDF,
		UploadedAt: time.Date(2026, 2, 1, 10, 30, 0, 0, time.UTC),
		Embedding:  vec,
	}
}

func seed(t *testing.T, s driven.ChunkStore) {
	t.Helper()
	chunks := []domain.Chunk{
		NewChunk("a_1_0", "CS101", "week1.pdf", 1, 1, 0, 0),
		NewChunk("a_1_1", "CS101", "week1.pdf", 1, 0.9, 0.1, 0),
		NewChunk("a_2_0", "CS101", "week1.pdf", 2, 0, 1, 0),
		NewChunk("b_1_0", "CS101", "syllabus.txt", 1, 0.7, 0.7, 0),
		NewChunk("c_1_0", "MATH200", "week1.pdf", 1, 1, 0, 0.1),
	}
	chunks[3].DocType = domain.DocTypeSyllabus
	require.NoError(t, s.Upsert(context.Background(), chunks))
}

func ids(results []domain.ScoredChunk) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Chunk.ID
	}
	return out
}

func testSearchRanks(t *testing.T, s driven.ChunkStore) {
	seed(t, s)
	results, err := s.Search(context.Background(), []float32{1, 0, 0}, 3, domain.ChunkFilter{})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "a_1_0", results[0].Chunk.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
	for _, r := range results {
		assert.Empty(t, r.Chunk.Embedding)
	}
}

func testSearchFilters(t *testing.T, s driven.ChunkStore) {
	seed(t, s)
	ctx := context.Background()

	results, err := s.Search(ctx, []float32{1, 0, 0}, 10, domain.ChunkFilter{CourseID: "MATH200"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c_1_0"}, ids(results))

	results, err = s.Search(ctx, []float32{1, 0, 0}, 10, domain.ChunkFilter{CourseID: "CS101", DocType: domain.DocTypeSyllabus})
	require.NoError(t, err)
	assert.Equal(t, []string{"b_1_0"}, ids(results))

	results, err = s.Search(ctx, []float32{1, 0, 0}, 10, domain.ChunkFilter{CourseID: "PHYS1"})
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = s.Search(ctx, []float32{1, 0, 0}, 10, domain.ChunkFilter{})
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

func testUpsertIdempotent(t *testing.T, s driven.ChunkStore) {
	ctx := context.Background()
	c := NewChunk("x_1_0", "CS101", "a.txt", 1, 1, 0)
	require.NoError(t, s.Upsert(ctx, []domain.Chunk{c}))
	c.Content = "updated"
	require.NoError(t, s.Upsert(ctx, []domain.Chunk{c}))

	n, err := s.Count(ctx, domain.ChunkFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	found, err := s.Find(ctx, domain.ChunkFilter{CourseID: "CS101"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "updated", found[0].Content)
}

func testUpsertMissingEmbedding(t *testing.T, s driven.ChunkStore) {
	err := s.Upsert(context.Background(), []domain.Chunk{NewChunk("x", "CS101", "a.txt", 1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func testFind(t *testing.T, s driven.ChunkStore) {
	seed(t, s)
	found, err := s.Find(context.Background(), domain.ChunkFilter{CourseID: "CS101"})
	require.NoError(t, err)

	got := make([]string, len(found))
	for i, c := range found {
		got[i] = c.ID
		assert.Empty(t, c.Embedding)
	}
	assert.Equal(t, []string{"b_1_0", "a_1_0", "a_1_1", "a_2_0"}, got)
}

func testDelete(t *testing.T, s driven.ChunkStore) {
	seed(t, s)
	ctx := context.Background()

	n, err := s.Delete(ctx, domain.ChunkFilter{CourseID: "CS101", SourceFile: "week1.pdf"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	remaining, err := s.Find(ctx, domain.ChunkFilter{})
	require.NoError(t, err)
	got := make([]string, len(remaining))
	for i, c := range remaining {
		got[i] = c.ID
	}
	assert.Equal(t, []string{"b_1_0", "c_1_0"}, got)

	n, err = s.Delete(ctx, domain.ChunkFilter{CourseID: "CS101", SourceFile: "missing.pdf"})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func testDeleteRequiresFilter(t *testing.T, s driven.ChunkStore) {
	seed(t, s)
	_, err := s.Delete(context.Background(), domain.ChunkFilter{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	n, err := s.Count(context.Background(), domain.ChunkFilter{})
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func testCount(t *testing.T, s driven.ChunkStore) {
	ctx := context.Background()
	n, err := s.Count(ctx, domain.ChunkFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)

	seed(t, s)
	n, err = s.Count(ctx, domain.ChunkFilter{CourseID: "CS101"})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func testCourses(t *testing.T, s driven.ChunkStore) {
	ctx := context.Background()
	courses, err := s.Courses(ctx)
	require.NoError(t, err)
	assert.Empty(t, courses)

	seed(t, s)
	require.NoError(t, s.Upsert(ctx, []domain.Chunk{NewChunk("d_1_0", "BIO1", "cells.pdf", 1, 0, 0, 1)}))
	courses, err = s.Courses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"BIO1", "CS101", "MATH200"}, courses)

	_, err = s.Delete(ctx, domain.ChunkFilter{CourseID: "MATH200"})
	require.NoError(t, err)
	courses, err = s.Courses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"BIO1", "CS101"}, courses)
}

func testMetadata(t *testing.T, s driven.ChunkStore) {
	ctx := context.Background()
	in := NewChunk("m_3_2", "CS101", "lecture 3.pdf", 3, 0.5, 0.5)
	in.ChunkIndex = 2
	in.DocType = domain.DocTypeExam
	require.NoError(t, s.Upsert(ctx, []domain.Chunk{in}))

	found, err := s.Find(ctx, domain.ChunkFilter{SourceFile: "lecture 3.pdf"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	got := found[0]
	assert.Equal(t, in.ID, got.ID)
	assert.Equal(t, in.Content, got.Content)
	assert.Equal(t, in.CourseID, got.CourseID)
	assert.Equal(t, in.DocType, got.DocType)
	assert.Equal(t, in.SourceFile, got.SourceFile)
	assert.Equal(t, 3, got.PageNumber)
	assert.Equal(t, 2, got.ChunkIndex)
	assert.Equal(t, 3, got.TotalPages)
	assert.Equal(t, domain.FileTypePDF, got.FileType)
	assert.True(t, in.UploadedAt.Equal(got.UploadedAt), "uploaded at %v != %v", in.UploadedAt, got.UploadedAt)
}

func testConcurrent(t *testing.T, s driven.ChunkStore) {
	ctx := context.Background()
	var wg sync.WaitGroup
	errs := make(chan error, 40)

	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c := NewChunk(fmt.Sprintf("c_%d_0", i), "CS101", fmt.Sprintf("f%d.txt", i), 1, float32(i+1), 1)
			errs <- s.Upsert(ctx, []domain.Chunk{c})
		}(i)
		go func() {
			defer wg.Done()
			_, err := s.Search(ctx, []float32{1, 1}, 5, domain.ChunkFilter{CourseID: "CS101"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	n, err := s.Count(ctx, domain.ChunkFilter{})
	require.NoError(t, err)
	assert.Equal(t, 20, n)
}
