package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/logger"
)

// Course detection constants.
const (
	// detectedConfidence is the confidence of an explicit course mention.
	detectedConfidence = 0.9

	// scopeConfidence is the minimum confidence that restricts retrieval to
	// a detected course.
	scopeConfidence = 0.5
)

// Retriever applies the course scoping policy on top of the course index.
type Retriever struct {
	index     *CourseIndex
	topK      int
	threshold float64
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithTopK sets the default number of chunks retrieved.
func WithTopK(k int) RetrieverOption {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithSimilarityThreshold sets the minimum score kept by RetrieveWithScores.
func WithSimilarityThreshold(t float64) RetrieverOption {
	return func(r *Retriever) {
		r.threshold = t
	}
}

// NewRetriever creates a retriever over index.
func NewRetriever(index *CourseIndex, opts ...RetrieverOption) *Retriever {
	r := &Retriever{
		index:     index,
		topK:      domain.DefaultTopK,
		threshold: domain.DefaultSimilarityThreshold,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RetrieveOption narrows a single retrieval.
type RetrieveOption func(*retrieveParams)

type retrieveParams struct {
	k       int
	docType domain.DocType
}

// WithK overrides the number of chunks for one retrieval.
func WithK(k int) RetrieveOption {
	return func(p *retrieveParams) {
		if k > 0 {
			p.k = k
		}
	}
}

// WithDocType restricts one retrieval to a document type.
func WithDocType(d domain.DocType) RetrieveOption {
	return func(p *retrieveParams) {
		p.docType = d
	}
}

// Retrieve returns the chunks most similar to query within the selected scope.
func (r *Retriever) Retrieve(ctx context.Context, query, selector string, opts ...RetrieveOption) []domain.Chunk {
	_, chunks := r.RetrieveScoped(ctx, query, selector, opts...)
	return chunks
}

// RetrieveScoped is Retrieve that also reports the course retrieval was
// restricted to, empty when every course was searched.
func (r *Retriever) RetrieveScoped(ctx context.Context, query, selector string, opts ...RetrieveOption) (string, []domain.Chunk) {
	p := r.params(opts)
	scope := r.ResolveScope(ctx, query, selector)
	filter := domain.ChunkFilter{CourseID: scope, DocType: p.docType}

	chunks := r.index.Query(ctx, query, p.k, filter)
	logger.Debug("Retrieved %d chunks (scope=%q, k=%d)", len(chunks), scope, p.k)
	return scope, chunks
}

// RetrieveWithScores returns scored chunks, dropping every pair below the
// similarity threshold. Order is preserved.
func (r *Retriever) RetrieveWithScores(ctx context.Context, query, selector string, opts ...RetrieveOption) []domain.ScoredChunk {
	p := r.params(opts)
	scope := r.ResolveScope(ctx, query, selector)
	filter := domain.ChunkFilter{CourseID: scope, DocType: p.docType}

	results := r.index.QueryWithScores(ctx, query, p.k, filter)
	kept := make([]domain.ScoredChunk, 0, len(results))
	for _, sc := range results {
		if sc.Score >= r.threshold {
			kept = append(kept, sc)
		}
	}
	logger.Debug("Kept %d of %d scored chunks at threshold %.2f", len(kept), len(results), r.threshold)
	return kept
}

// ResolveScope turns a course selector into a course filter. Explicit
// selectors are sanitised. AUTO or empty selectors detect the course from
// the query and fall back to every course ("").
func (r *Retriever) ResolveScope(ctx context.Context, query, selector string) string {
	if !domain.IsAutoSelector(selector) {
		return domain.SanitizeCourseID(selector)
	}

	courses, err := r.index.ListCourses(ctx)
	if err != nil {
		logger.Warn("Course detection skipped: %v", err)
		return ""
	}
	course, confidence := DetectCourse(query, courses)
	if confidence >= scopeConfidence {
		logger.Info("Detected course %s from query", course)
		return course
	}
	return ""
}

func (r *Retriever) params(opts []RetrieveOption) retrieveParams {
	p := retrieveParams{k: r.topK}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// DetectCourse looks for an explicit mention of one of courses in query.
// A course matches on its ID as a whole word, case-insensitively, or with
// "-" or "_" read as a space. Courses are tried in ascending order and the
// first match wins with confidence 0.9. No match returns ("", 0).
func DetectCourse(query string, courses []string) (string, float64) {
	if len(courses) == 0 {
		return "", 0
	}
	sorted := append([]string(nil), courses...)
	sort.Strings(sorted)

	q := strings.ToLower(query)
	for _, course := range sorted {
		if coursePattern(course).MatchString(q) {
			return course, detectedConfidence
		}
	}
	return "", 0
}

// coursePatterns caches the compiled mention pattern per course ID.
var coursePatterns sync.Map // string -> *regexp.Regexp

// coursePattern returns the whole-word pattern matching any spelling of
// course in a lowercased query.
func coursePattern(course string) *regexp.Regexp {
	if re, ok := coursePatterns.Load(course); ok {
		return re.(*regexp.Regexp)
	}

	id := strings.ToLower(course)
	var alts []string
	seen := make(map[string]bool)
	for _, v := range []string{id, strings.ReplaceAll(id, "-", " "), strings.ReplaceAll(id, "_", " ")} {
		if !seen[v] {
			seen[v] = true
			alts = append(alts, regexp.QuoteMeta(v))
		}
	}
	re := regexp.MustCompile(`\b(?:` + strings.Join(alts, "|") + `)\b`)
	actual, _ := coursePatterns.LoadOrStore(course, re)
	return actual.(*regexp.Regexp)
}

// FormatContext renders chunks as the numbered, source-tagged context block
// handed to the language model.
func FormatContext(chunks []domain.Chunk) string {
	if len(chunks) == 0 {
		return "No relevant documents found."
	}

	parts := make([]string, 0, len(chunks))
	for i := range chunks {
		c := &chunks[i]
		var b strings.Builder
		fmt.Fprintf(&b, "[Source: %s", orDefault(c.SourceFile, "Unknown"))
		if c.PageNumber > 0 {
			fmt.Fprintf(&b, ", Page %d", c.PageNumber)
		}
		fmt.Fprintf(&b, ", Type: %s, Course: %s]", orDefault(string(c.DocType), "unknown"), orDefault(c.CourseID, "Unknown"))
		parts = append(parts, fmt.Sprintf("--- Document %d %s ---\n%s", i+1, b.String(), c.Content))
	}
	return strings.Join(parts, "\n\n")
}

// Citations returns one citation per (source file, page), in first-seen order.
func Citations(chunks []domain.Chunk) []domain.Citation {
	seen := make(map[domain.CitationKey]bool)
	out := []domain.Citation{}
	for i := range chunks {
		c := &chunks[i]
		cit := domain.Citation{
			SourceFile: orDefault(c.SourceFile, "Unknown"),
			PageNumber: c.PageNumber,
			DocType:    c.DocType,
			CourseID:   c.CourseID,
		}
		if seen[cit.Key()] {
			continue
		}
		seen[cit.Key()] = true
		cit.Snippet = Snippet(c.Content)
		out = append(out, cit)
	}
	return out
}

// Snippet truncates content to domain.SnippetLength characters, appending
// "..." when anything was cut.
func Snippet(content string) string {
	runes := []rune(content)
	if len(runes) <= domain.SnippetLength {
		return content
	}
	return string(runes[:domain.SnippetLength]) + "..."
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
