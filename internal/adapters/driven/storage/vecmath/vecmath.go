// Package vecmath holds the similarity helpers shared by the chunk stores
// that rank vectors in process.
package vecmath

import (
	"math"
	"sort"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b.
// Mismatched lengths and zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Normalize scales v to unit length in place and returns it.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	n := math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) / n)
	}
	return v
}

// TopK sorts results by descending score and keeps the first k.
// Ties keep chunk ID order so results are deterministic.
func TopK(results []domain.ScoredChunk, k int) []domain.ScoredChunk {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})
	if k >= 0 && len(results) > k {
		results = results[:k]
	}
	return results
}

// SortChunks orders chunks by course, source file, page and chunk index.
func SortChunks(chunks []domain.Chunk) {
	sort.Slice(chunks, func(i, j int) bool {
		a, b := &chunks[i], &chunks[j]
		if a.CourseID != b.CourseID {
			return a.CourseID < b.CourseID
		}
		if a.SourceFile != b.SourceFile {
			return a.SourceFile < b.SourceFile
		}
		if a.PageNumber != b.PageNumber {
			return a.PageNumber < b.PageNumber
		}
		return a.ChunkIndex < b.ChunkIndex
	})
}
