package services

import (
	"context"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driving"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/logger"
)

// Ensure LibraryService implements the interface.
var _ driving.LibraryService = (*LibraryService)(nil)

// LibraryService manages indexed course documents. It needs no LLM.
type LibraryService struct {
	index *CourseIndex
}

// NewLibraryService creates a new library service.
func NewLibraryService(index *CourseIndex) *LibraryService {
	return &LibraryService{index: index}
}

// ListCourses returns every course with documents, sorted ascending.
func (s *LibraryService) ListCourses(ctx context.Context) ([]string, error) {
	return s.index.ListCourses(ctx)
}

// ListDocuments returns one summary per file in the course.
func (s *LibraryService) ListDocuments(ctx context.Context, courseID string) ([]domain.DocumentSummary, error) {
	return s.index.ListDocuments(ctx, courseID)
}

// DeleteDocument removes every chunk of the file within the course.
func (s *LibraryService) DeleteDocument(ctx context.Context, courseID, sourceFile string) (bool, error) {
	deleted, err := s.index.DeleteDocument(ctx, courseID, sourceFile)
	if err != nil {
		return false, err
	}
	if deleted {
		logger.Info("Deleted %s from %s", sourceFile, domain.SanitizeCourseID(courseID))
	}
	return deleted, nil
}

// Stats returns index-wide totals.
func (s *LibraryService) Stats(ctx context.Context) (*domain.IndexStats, error) {
	return s.index.Stats(ctx)
}
