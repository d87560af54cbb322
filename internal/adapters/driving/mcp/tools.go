package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driving"
)

// maxUploadSize caps a file read by the upload tool.
const maxUploadSize = 100 << 20

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question  string `json:"question" jsonschema:"the question to answer from the course documents"`
	Course    string `json:"course,omitempty" jsonschema:"course ID to search, or AUTO to detect it from the question (default AUTO)"`
	DocType   string `json:"doc_type,omitempty" jsonschema:"restrict retrieval to one document type: lecture, assignment, syllabus, exam, schedule or misc"`
	SessionID string `json:"session_id,omitempty" jsonschema:"conversation ID; reuse it to ask follow-up questions"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer     string         `json:"answer"`
	Scope      string         `json:"scope,omitempty"`
	NumSources int            `json:"num_sources"`
	Sources    []SourceOutput `json:"sources"`
}

// SourceOutput is one citation of an answer.
type SourceOutput struct {
	SourceFile string `json:"source_file"`
	PageNumber int    `json:"page_number,omitempty"`
	CourseID   string `json:"course_id"`
	DocType    string `json:"doc_type"`
	Snippet    string `json:"snippet,omitempty"`
}

// CheckInput is the input schema for the check_relevance tool.
type CheckInput struct {
	Question string `json:"question" jsonschema:"the question to check"`
	Course   string `json:"course,omitempty" jsonschema:"course ID, or AUTO (default AUTO)"`
}

// CheckOutput is the output schema for the check_relevance tool.
type CheckOutput struct {
	HasRelevantDocs bool    `json:"has_relevant_docs"`
	NumRelevant     int     `json:"num_relevant"`
	TopScore        float64 `json:"top_score"`
	Message         string  `json:"message,omitempty"`
}

// ResetInput is the input schema for the reset_session tool.
type ResetInput struct {
	SessionID string `json:"session_id" jsonschema:"the conversation to forget"`
}

// ResetOutput is the output schema for the reset_session tool.
type ResetOutput struct {
	Reset bool `json:"reset"`
}

// ListCoursesInput is the input schema for the list_courses tool.
type ListCoursesInput struct{}

// ListCoursesOutput is the output schema for the list_courses tool.
type ListCoursesOutput struct {
	Courses []string `json:"courses"`
	Count   int      `json:"count"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct {
	Course string `json:"course" jsonschema:"the course ID"`
}

// DocumentOutput summarises one uploaded file.
type DocumentOutput struct {
	SourceFile string `json:"source_file"`
	DocType    string `json:"doc_type"`
	FileType   string `json:"file_type"`
	TotalPages int    `json:"total_pages"`
	ChunkCount int    `json:"chunk_count"`
	UploadedAt string `json:"uploaded_at,omitempty"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Course    string           `json:"course"`
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DeleteDocumentInput is the input schema for the delete_document tool.
type DeleteDocumentInput struct {
	Course string `json:"course" jsonschema:"the course ID"`
	File   string `json:"file" jsonschema:"the source file name as listed by list_documents"`
}

// DeleteDocumentOutput is the output schema for the delete_document tool.
type DeleteDocumentOutput struct {
	Deleted bool `json:"deleted"`
}

// UploadInput is the input schema for the upload_files tool.
type UploadInput struct {
	Course  string   `json:"course" jsonschema:"the course ID to file the documents under"`
	DocType string   `json:"doc_type,omitempty" jsonschema:"document type (default misc)"`
	Paths   []string `json:"paths" jsonschema:"local paths of PDF or text files to upload"`
}

// UploadOutput is the output schema for the upload_files tool.
type UploadOutput struct {
	Course        string   `json:"course"`
	ChunksIndexed int      `json:"chunks_indexed"`
	FilesIndexed  []string `json:"files_indexed"`
	Errors        []string `json:"errors,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using only the uploaded course documents, with citations",
	}, s.handleAsk)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_relevance",
		Description: "Check whether any uploaded document is relevant to a question",
	}, s.handleCheck)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reset_session",
		Description: "Forget the history of a conversation",
	}, s.handleReset)

	if s.ports.Library != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_courses",
			Description: "List the courses that have uploaded documents",
		}, s.handleListCourses)
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_documents",
			Description: "List the documents uploaded to a course",
		}, s.handleListDocuments)
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "delete_document",
			Description: "Remove a document and all of its chunks from a course",
		}, s.handleDeleteDocument)
	}
	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "upload_files",
			Description: "Index local PDF or text files into a course",
		}, s.handleUpload)
	}
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	var opts driving.AskOptions
	if input.DocType != "" {
		docType, ok := domain.ParseDocType(input.DocType)
		if !ok {
			return nil, AskOutput{}, fmt.Errorf("%w: unknown document type %q", domain.ErrInvalidInput, input.DocType)
		}
		opts.DocType = docType
	}

	session := s.convos.get(input.SessionID)
	if input.Course != "" {
		session.SelectCourse(input.Course)
	}

	result, err := s.ports.Assistant.Ask(ctx, session, input.Question, opts)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:     result.Answer,
		Scope:      result.Scope,
		NumSources: result.NumSources,
		Sources:    make([]SourceOutput, len(result.Sources)),
	}
	for i, c := range result.Sources {
		output.Sources[i] = SourceOutput{
			SourceFile: c.SourceFile,
			PageNumber: c.PageNumber,
			CourseID:   c.CourseID,
			DocType:    string(c.DocType),
			Snippet:    c.Snippet,
		}
	}
	return nil, output, nil
}

func (s *Server) handleCheck(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CheckInput,
) (*mcp.CallToolResult, CheckOutput, error) {
	report, err := s.ports.Assistant.CheckRelevance(ctx, input.Question, input.Course)
	if err != nil {
		return nil, CheckOutput{}, err
	}
	return nil, CheckOutput{
		HasRelevantDocs: report.HasRelevantDocs,
		NumRelevant:     report.NumRelevant,
		TopScore:        report.TopScore,
		Message:         report.Message,
	}, nil
}

func (s *Server) handleReset(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ResetInput,
) (*mcp.CallToolResult, ResetOutput, error) {
	return nil, ResetOutput{Reset: s.convos.forget(input.SessionID)}, nil
}

func (s *Server) handleListCourses(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListCoursesInput,
) (*mcp.CallToolResult, ListCoursesOutput, error) {
	courses, err := s.ports.Library.ListCourses(ctx)
	if err != nil {
		return nil, ListCoursesOutput{}, err
	}
	if courses == nil {
		courses = []string{}
	}
	return nil, ListCoursesOutput{Courses: courses, Count: len(courses)}, nil
}

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	course := domain.SanitizeCourseID(input.Course)
	docs, err := s.ports.Library.ListDocuments(ctx, course)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}
	return nil, ListDocumentsOutput{
		Course:    course,
		Documents: documentOutputs(docs),
		Count:     len(docs),
	}, nil
}

func (s *Server) handleDeleteDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteDocumentInput,
) (*mcp.CallToolResult, DeleteDocumentOutput, error) {
	deleted, err := s.ports.Library.DeleteDocument(ctx, input.Course, input.File)
	if err != nil {
		return nil, DeleteDocumentOutput{}, err
	}
	return nil, DeleteDocumentOutput{Deleted: deleted}, nil
}

func (s *Server) handleUpload(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UploadInput,
) (*mcp.CallToolResult, UploadOutput, error) {
	if s.ports.Ingest == nil {
		return nil, UploadOutput{}, ErrUploadDisabled
	}
	docType, ok := domain.ParseDocType(input.DocType)
	if !ok {
		return nil, UploadOutput{}, fmt.Errorf("%w: unknown document type %q", domain.ErrInvalidInput, input.DocType)
	}

	var readErrors []string
	files := make([]domain.UploadFile, 0, len(input.Paths))
	for _, p := range input.Paths {
		data, err := readUpload(p)
		if err != nil {
			readErrors = append(readErrors, err.Error())
			continue
		}
		files = append(files, domain.UploadFile{Name: filepath.Base(p), Data: data})
	}

	if len(files) == 0 && len(readErrors) > 0 {
		if err := domain.ValidateCourseID(input.Course); err != nil {
			return nil, UploadOutput{}, err
		}
		return nil, UploadOutput{
			Course:       domain.SanitizeCourseID(input.Course),
			FilesIndexed: []string{},
			Errors:       readErrors,
		}, nil
	}

	report, err := s.ports.Ingest.Upload(ctx, domain.UploadRequest{
		CourseID: input.Course,
		DocType:  docType,
		Files:    files,
	})
	if err != nil {
		return nil, UploadOutput{}, err
	}

	output := UploadOutput{
		Course:        report.CourseID,
		ChunksIndexed: report.ChunksIndexed,
		FilesIndexed:  append([]string{}, report.FilesIndexed...),
		Errors:        append(readErrors, report.ErrorMessages()...),
	}
	return nil, output, nil
}

// readUpload reads a local file for upload, failing with a FileError.
func readUpload(path string) ([]byte, error) {
	name := filepath.Base(path)
	info, err := os.Stat(path)
	if err != nil {
		return nil, &domain.FileError{Filename: name, Err: err}
	}
	if info.IsDir() {
		return nil, &domain.FileError{Filename: name, Err: fmt.Errorf("%w: is a directory", domain.ErrInvalidInput)}
	}
	if info.Size() > maxUploadSize {
		return nil, &domain.FileError{Filename: name, Err: fmt.Errorf("%w: file exceeds %d MB", domain.ErrInvalidInput, maxUploadSize>>20)}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.FileError{Filename: name, Err: err}
	}
	return data, nil
}

func documentOutputs(docs []domain.DocumentSummary) []DocumentOutput {
	out := make([]DocumentOutput, len(docs))
	for i := range docs {
		d := &docs[i]
		out[i] = DocumentOutput{
			SourceFile: d.SourceFile,
			DocType:    string(d.DocType),
			FileType:   string(d.FileType),
			TotalPages: d.TotalPages,
			ChunkCount: d.ChunkCount,
		}
		if !d.UploadedAt.IsZero() {
			out[i].UploadedAt = d.UploadedAt.UTC().Format("2006-01-02T15:04:05Z")
		}
	}
	return out
}
