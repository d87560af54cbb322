// Package chunker splits page text into overlapping chunks with a
// recursive separator cascade.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// DefaultSeparators is the separator cascade, tried in order: paragraph
// break, line break, sentence end, space, then a hard cut between characters.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Verify interface compliance at compile time.
var _ driven.Chunker = (*Processor)(nil)

// Processor splits text into chunks of at most chunkSize characters.
// Lengths are counted in characters, not bytes.
type Processor struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparators replaces the separator cascade.
// A trailing "" is appended when missing so splitting always terminates.
func WithSeparators(seps ...string) Option {
	return func(p *Processor) {
		if len(seps) == 0 {
			return
		}
		s := append([]string(nil), seps...)
		if s[len(s)-1] != "" {
			s = append(s, "")
		}
		p.separators = s
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Chunk splits one page of text and tags every chunk with meta.
// Chunk IDs are <fileHash>_<page>_<index>.
func (p *Processor) Chunk(text string, meta domain.ChunkMeta) []domain.Chunk {
	pieces := p.Split(text)
	if len(pieces) == 0 {
		return nil
	}

	total := meta.TotalPages
	if total < 1 {
		total = 1
	}

	chunks := make([]domain.Chunk, 0, len(pieces))
	for i, content := range pieces {
		chunks = append(chunks, domain.Chunk{
			ID:         ChunkID(meta.FileHash, meta.PageNumber, i),
			Content:    content,
			CourseID:   meta.CourseID,
			DocType:    meta.DocType,
			SourceFile: meta.SourceFile,
			PageNumber: meta.PageNumber,
			ChunkIndex: i,
			TotalPages: total,
			FileType:   meta.FileType,
			UploadedAt: meta.UploadedAt,
		})
	}
	return chunks
}

// ChunkFile chunks every page of one file. TotalPages defaults to the
// number of pages and each page restarts chunk indices at 0.
func (p *Processor) ChunkFile(pages []domain.Page, meta domain.ChunkMeta) []domain.Chunk {
	if meta.TotalPages < 1 {
		meta.TotalPages = len(pages)
	}

	var chunks []domain.Chunk
	for _, page := range pages {
		meta.PageNumber = page.Number
		chunks = append(chunks, p.Chunk(page.Text, meta)...)
	}
	return chunks
}

// ChunkID builds the deterministic chunk identifier.
func ChunkID(fileHash string, page, index int) string {
	return fmt.Sprintf("%s_%d_%d", fileHash, page, index)
}

// Split returns the trimmed, non-empty chunk texts for text.
// Blank input yields nil.
func (p *Processor) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return p.split(text, p.separators)
}

// split picks the first separator present in text, cuts text on it and
// merges the pieces back up to the size budget. Pieces that are still too
// large are split again with the remaining separators.
func (p *Processor) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var rest []string
	for i, s := range separators {
		if s == "" {
			separator = s
			break
		}
		if strings.Contains(text, s) {
			separator = s
			rest = separators[i+1:]
			break
		}
	}

	var out, good []string
	for _, s := range splitKeepSeparator(text, separator) {
		if runeLen(s) < p.chunkSize {
			good = append(good, s)
			continue
		}
		if len(good) > 0 {
			out = append(out, p.merge(good)...)
			good = nil
		}
		if len(rest) == 0 {
			out = append(out, s)
		} else {
			out = append(out, p.split(s, rest)...)
		}
	}
	if len(good) > 0 {
		out = append(out, p.merge(good)...)
	}
	return out
}

// merge greedily joins pieces into chunks of at most chunkSize characters.
// After each emitted chunk, pieces are dropped from the front until at most
// overlap characters remain, and those are carried into the next chunk.
func (p *Processor) merge(pieces []string) []string {
	var (
		out     []string
		current []string
		total   int
	)

	for _, piece := range pieces {
		n := runeLen(piece)
		if total+n > p.chunkSize && len(current) > 0 {
			if doc := join(current); doc != "" {
				out = append(out, doc)
			}
			for total > p.overlap || (total+n > p.chunkSize && total > 0) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
	}

	if doc := join(current); doc != "" {
		out = append(out, doc)
	}
	return out
}

// splitKeepSeparator cuts text on sep, keeping each separator at the start
// of the piece that follows it. An empty sep splits into characters.
// Empty pieces are dropped.
func splitKeepSeparator(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, len(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}

	var out []string
	prev, pos := 0, 0
	for {
		idx := strings.Index(text[pos:], sep)
		if idx < 0 {
			break
		}
		at := pos + idx
		if at > prev {
			out = append(out, text[prev:at])
		}
		prev = at
		pos = at + len(sep)
	}
	if prev < len(text) {
		out = append(out, text[prev:])
	}
	return out
}

func join(pieces []string) string {
	return strings.TrimSpace(strings.Join(pieces, ""))
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
