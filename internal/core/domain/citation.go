package domain

import "fmt"

// SnippetLength is the maximum number of characters kept in a citation preview.
const SnippetLength = 200

// Citation points at a (source file, page) location that grounded an answer.
// Citations are deduplicated on that pair.
type Citation struct {
	SourceFile string
	PageNumber int
	DocType    DocType
	CourseID   string

	// Snippet is the first SnippetLength characters of the first chunk seen
	// for this location, followed by "..." when truncated.
	Snippet string
}

// Key returns the deduplication key of the citation.
func (c Citation) Key() CitationKey {
	return CitationKey{SourceFile: c.SourceFile, PageNumber: c.PageNumber}
}

// CitationKey identifies a cited location.
type CitationKey struct {
	SourceFile string
	PageNumber int
}

// Label renders the citation as "file, page N (COURSE, type)". The page is
// omitted when unknown.
func (c Citation) Label() string {
	label := c.SourceFile
	if c.PageNumber > 0 {
		label += fmt.Sprintf(", page %d", c.PageNumber)
	}
	return fmt.Sprintf("%s (%s, %s)", label, c.CourseID, c.DocType)
}
