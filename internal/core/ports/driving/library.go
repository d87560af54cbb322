package driving

import (
	"context"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
)

// LibraryService manages the indexed course documents.
// It works without an LLM configured.
type LibraryService interface {
	// ListCourses returns every course with documents, sorted ascending.
	ListCourses(ctx context.Context) ([]string, error)

	// ListDocuments returns one summary per file in the course.
	ListDocuments(ctx context.Context, courseID string) ([]domain.DocumentSummary, error)

	// DeleteDocument removes every chunk of the file within the course.
	// Returns false, nil when the document does not exist.
	DeleteDocument(ctx context.Context, courseID, sourceFile string) (bool, error)

	// Stats returns index-wide totals.
	Stats(ctx context.Context) (*domain.IndexStats, error)
}
