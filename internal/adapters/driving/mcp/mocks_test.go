package mcp

import (
	"context"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driving"
)

// mockAssistantService is a mock implementation of driving.AssistantService.
type mockAssistantService struct {
	result *domain.AnswerResult
	report *domain.RelevanceReport
	err    error

	sessions  int
	lastOpts  driving.AskOptions
	lastScope string
	history   []int
}

func (m *mockAssistantService) NewSession() *domain.Session {
	m.sessions++
	return domain.NewSession("mcp-test")
}

func (m *mockAssistantService) Available() error {
	return nil
}

func (m *mockAssistantService) Ask(
	_ context.Context,
	session *domain.Session,
	question string,
	opts driving.AskOptions,
) (*domain.AnswerResult, error) {
	m.lastOpts = opts
	m.lastScope = session.SelectedCourse()
	m.history = append(m.history, session.Len())
	if m.err != nil {
		return nil, m.err
	}
	session.Append(domain.RoleUser, question)
	session.Append(domain.RoleAssistant, m.result.Answer)
	return m.result, nil
}

func (m *mockAssistantService) AskStream(
	_ context.Context,
	_ *domain.Session,
	_ string,
	_ driving.AskOptions,
) (<-chan domain.AnswerEvent, error) {
	return nil, m.err
}

func (m *mockAssistantService) CheckRelevance(_ context.Context, _, _ string) (*domain.RelevanceReport, error) {
	return m.report, m.err
}

// mockLibraryService is a mock implementation of driving.LibraryService.
type mockLibraryService struct {
	courses []string
	docs    []domain.DocumentSummary
	stats   *domain.IndexStats
	deleted bool
	err     error

	lastCourse string
	lastFile   string
}

func (m *mockLibraryService) ListCourses(_ context.Context) ([]string, error) {
	return m.courses, m.err
}

func (m *mockLibraryService) ListDocuments(_ context.Context, courseID string) ([]domain.DocumentSummary, error) {
	m.lastCourse = courseID
	return m.docs, m.err
}

func (m *mockLibraryService) DeleteDocument(_ context.Context, courseID, sourceFile string) (bool, error) {
	m.lastCourse, m.lastFile = courseID, sourceFile
	return m.deleted, m.err
}

func (m *mockLibraryService) Stats(_ context.Context) (*domain.IndexStats, error) {
	return m.stats, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	report *domain.IngestReport
	err    error
	req    domain.UploadRequest
}

func (m *mockIngestService) Upload(_ context.Context, req domain.UploadRequest) (*domain.IngestReport, error) {
	m.req = req
	return m.report, m.err
}

func (m *mockIngestService) SupportedExtensions() []string {
	return []string{".pdf", ".txt"}
}
