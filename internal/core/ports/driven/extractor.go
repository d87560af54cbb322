package driven

import (
	"context"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
)

// TextExtractor reads page text out of an uploaded file.
type TextExtractor interface {
	// Extensions returns the lower-case file extensions handled, with dot.
	Extensions() []string

	// FileType returns the file type recorded on chunks from this extractor.
	FileType() domain.FileType

	// Extract returns the file's pages in order. Pages with no text are
	// still returned so that page numbering matches the source.
	Extract(ctx context.Context, data []byte) ([]domain.Page, error)
}

// ExtractorRegistry selects a TextExtractor by filename.
type ExtractorRegistry interface {
	// ForFile returns the extractor for the filename's extension.
	// Returns ErrUnsupportedType when no extractor handles it.
	ForFile(filename string) (TextExtractor, error)

	// Extensions returns every supported extension.
	Extensions() []string
}

// Chunker splits page text into overlapping chunks.
type Chunker interface {
	// Name returns the chunker name for logging.
	Name() string

	// Chunk splits text and tags every chunk with meta. Chunk indices start
	// at 0 for each call. Blank text yields no chunks.
	Chunk(text string, meta domain.ChunkMeta) []domain.Chunk

	// ChunkFile chunks every page of one file, taking page numbers from the
	// pages. TotalPages defaults to len(pages).
	ChunkFile(pages []domain.Page, meta domain.ChunkMeta) []domain.Chunk
}
