package domain

import (
	"strings"
	"time"
)

// DocType classifies an uploaded course document.
type DocType string

// Available document types.
const (
	DocTypeLecture    DocType = "lecture"
	DocTypeAssignment DocType = "assignment"
	DocTypeSyllabus   DocType = "syllabus"
	DocTypeExam       DocType = "exam"
	DocTypeSchedule   DocType = "schedule"
	DocTypeMisc       DocType = "misc"
)

// IsValid returns true if the document type is recognised.
func (d DocType) IsValid() bool {
	switch d {
	case DocTypeLecture, DocTypeAssignment, DocTypeSyllabus,
		DocTypeExam, DocTypeSchedule, DocTypeMisc:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (d DocType) String() string {
	return string(d)
}

// ParseDocType converts user input into a DocType.
// Empty input defaults to DocTypeMisc.
func ParseDocType(s string) (DocType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DocTypeMisc, true
	}
	d := DocType(s)
	return d, d.IsValid()
}

// AllDocTypes returns the fixed document type enumeration.
func AllDocTypes() []DocType {
	return []DocType{
		DocTypeLecture,
		DocTypeAssignment,
		DocTypeSyllabus,
		DocTypeExam,
		DocTypeSchedule,
		DocTypeMisc,
	}
}

// FileType identifies the container format an upload was read from.
type FileType string

// Supported file types.
const (
	FileTypePDF FileType = "pdf"
	FileTypeTXT FileType = "txt"
)

// IsValid returns true if the file type is supported.
func (f FileType) IsValid() bool {
	return f == FileTypePDF || f == FileTypeTXT
}

// String returns the string representation.
func (f FileType) String() string {
	return string(f)
}

// Chunk is the atomic retrievable unit: a bounded span of one page of one
// source file, tagged with its course and document metadata.
type Chunk struct {
	// ID is <fileHash>_<page>_<index>, stable for identical file bytes.
	ID string

	// Content is the trimmed chunk text. Never empty.
	Content string

	// CourseID is the sanitised course the chunk belongs to.
	CourseID string

	// DocType classifies the source document.
	DocType DocType

	// SourceFile is the original filename.
	SourceFile string

	// PageNumber is 1-based. Plain text files always use page 1.
	PageNumber int

	// ChunkIndex is the 0-based position within the page.
	ChunkIndex int

	// TotalPages is the page count of the source file.
	TotalPages int

	// FileType is the container format of the source file.
	FileType FileType

	// UploadedAt is when the source file was ingested.
	UploadedAt time.Time

	// Embedding is the vector representation used for similarity search.
	// Empty on chunks returned from queries.
	Embedding []float32
}

// ChunkMeta carries the per-page metadata the chunker attaches to every
// chunk it produces.
type ChunkMeta struct {
	CourseID   string
	DocType    DocType
	SourceFile string
	PageNumber int
	TotalPages int
	FileType   FileType

	// FileHash prefixes every chunk ID. It must differ between courses and
	// file names so two uploads never share IDs.
	FileHash   string
	UploadedAt time.Time
}

// ScoredChunk pairs a chunk with its cosine similarity to a query.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// ChunkFilter restricts store operations by metadata equality.
// Non-empty fields are combined with AND; the zero value matches everything.
type ChunkFilter struct {
	CourseID   string
	SourceFile string
	DocType    DocType
}

// IsEmpty returns true if the filter places no restriction.
func (f ChunkFilter) IsEmpty() bool {
	return f.CourseID == "" && f.SourceFile == "" && f.DocType == ""
}

// Matches reports whether a chunk satisfies every set field.
func (f ChunkFilter) Matches(c *Chunk) bool {
	if f.CourseID != "" && c.CourseID != f.CourseID {
		return false
	}
	if f.SourceFile != "" && c.SourceFile != f.SourceFile {
		return false
	}
	if f.DocType != "" && c.DocType != f.DocType {
		return false
	}
	return true
}

// DocumentSummary describes one uploaded file within a course.
// Metadata comes from any one of the file's chunks.
type DocumentSummary struct {
	CourseID   string
	SourceFile string
	DocType    DocType
	FileType   FileType
	TotalPages int
	UploadedAt time.Time
	ChunkCount int
}

// IndexStats summarises the whole index.
type IndexStats struct {
	TotalChunks int
	Courses     []string
}

// Page is the extracted text of one page of a source file.
type Page struct {
	// Number is 1-based.
	Number int
	Text   string
}
