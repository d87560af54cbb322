package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driving"
)

// mockAssistantService implements driving.AssistantService for testing.
type mockAssistantService struct {
	result    *domain.AnswerResult
	events    []domain.AnswerEvent
	relevance *domain.RelevanceReport
	err       error

	lastQuestion string
	lastCourse   string
	lastOpts     driving.AskOptions
	streamed     bool
}

func (m *mockAssistantService) NewSession() *domain.Session {
	return domain.NewSession("test")
}

func (m *mockAssistantService) Available() error {
	return m.err
}

func (m *mockAssistantService) Ask(_ context.Context, session *domain.Session, question string, opts driving.AskOptions) (*domain.AnswerResult, error) {
	m.lastQuestion, m.lastCourse, m.lastOpts = question, session.SelectedCourse(), opts
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.AnswerResult{}, nil
	}
	return m.result, nil
}

func (m *mockAssistantService) AskStream(_ context.Context, session *domain.Session, question string, opts driving.AskOptions) (<-chan domain.AnswerEvent, error) {
	m.lastQuestion, m.lastCourse, m.lastOpts = question, session.SelectedCourse(), opts
	m.streamed = true
	if m.err != nil {
		return nil, m.err
	}
	ch := make(chan domain.AnswerEvent, len(m.events))
	for _, ev := range m.events {
		ch <- ev
	}
	close(ch)
	return ch, nil
}

func (m *mockAssistantService) CheckRelevance(_ context.Context, question, courseSelector string) (*domain.RelevanceReport, error) {
	m.lastQuestion, m.lastCourse = question, courseSelector
	if m.err != nil {
		return nil, m.err
	}
	return m.relevance, nil
}

// mockIngestService implements driving.IngestService for testing.
type mockIngestService struct {
	report   *domain.IngestReport
	err      error
	requests []domain.UploadRequest
}

func (m *mockIngestService) Upload(_ context.Context, req domain.UploadRequest) (*domain.IngestReport, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if m.report != nil {
		return m.report, nil
	}
	names := make([]string, 0, len(req.Files))
	for _, f := range req.Files {
		names = append(names, f.Name)
	}
	return &domain.IngestReport{
		CourseID:      domain.SanitizeCourseID(req.CourseID),
		ChunksIndexed: len(req.Files),
		FilesIndexed:  names,
	}, nil
}

func (m *mockIngestService) SupportedExtensions() []string {
	return []string{".pdf", ".txt"}
}

// mockLibraryService implements driving.LibraryService for testing.
type mockLibraryService struct {
	courses []string
	docs    []domain.DocumentSummary
	stats   *domain.IndexStats
	deleted bool
	err     error

	lastCourse string
	lastFile   string
}

func (m *mockLibraryService) ListCourses(context.Context) ([]string, error) {
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

func (m *mockLibraryService) Stats(context.Context) (*domain.IndexStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.stats == nil {
		return &domain.IndexStats{}, nil
	}
	return m.stats, nil
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	setErr      error
	pingErr     error

	setKey, setValue string
	embedding        []string
	llm              []string
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.embedding = []string{string(provider), model, apiKey}
	return m.setErr
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.llm = []string{string(provider), model, apiKey}
	return m.setErr
}

func (m *mockSettingsService) Set(key, value string) error {
	m.setKey, m.setValue = key, value
	return m.setErr
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error {
	return m.pingErr
}

func (m *mockSettingsService) ValidateLLMConfig() error {
	return m.pingErr
}

// testServices holds the mocks installed for one test.
type testServices struct {
	assistant *mockAssistantService
	ingest    *mockIngestService
	library   *mockLibraryService
	settings  *mockSettingsService
}

// setupTestServices installs fresh mocks and restores the previous
// services when the test ends.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	prevAssistant, prevIngest, prevLibrary, prevSettings := assistantService, ingestService, libraryService, settingsService
	t.Cleanup(func() {
		assistantService, ingestService, libraryService, settingsService = prevAssistant, prevIngest, prevLibrary, prevSettings
	})

	s := &testServices{
		assistant: &mockAssistantService{},
		ingest:    &mockIngestService{},
		library:   &mockLibraryService{},
		settings:  &mockSettingsService{settings: domain.DefaultAppSettings()},
	}
	SetServices(Services{
		Assistant: s.assistant,
		Ingest:    s.ingest,
		Library:   s.library,
		Settings:  s.settings,
	})
	return s
}

// clearServices removes every service for the duration of the test.
func clearServices(t *testing.T) {
	t.Helper()
	prevAssistant, prevIngest, prevLibrary, prevSettings := assistantService, ingestService, libraryService, settingsService
	t.Cleanup(func() {
		assistantService, ingestService, libraryService, settingsService = prevAssistant, prevIngest, prevLibrary, prevSettings
	})
	SetServices(Services{})
}

// execute runs the root command with args and returns everything written
// to stdout and stderr. Flags are reset first so tests do not leak state.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// captureOutput collects what fn prints through any command under root.
func captureOutput(fn func()) string {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()
	fn()
	return buf.String()
}
