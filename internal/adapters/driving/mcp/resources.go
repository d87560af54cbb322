package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for coursemate resources.
	uriScheme = "coursemate://"

	jsonMIME = "application/json"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "courses",
		Name:        "courses",
		Description: "Courses that have uploaded documents",
		MIMEType:    jsonMIME,
	}, s.handleCoursesResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "stats",
		Name:        "stats",
		Description: "Index totals: chunk count and courses",
		MIMEType:    jsonMIME,
	}, s.handleStatsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "courses/{courseId}/documents",
		Name:        "course-documents",
		Description: "Documents uploaded to a specific course",
		MIMEType:    jsonMIME,
	}, s.handleDocumentsResource)
}

// handleCoursesResource returns the indexed courses.
func (s *Server) handleCoursesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Library == nil {
		return jsonResult(req.Params.URI, []string{})
	}

	courses, err := s.ports.Library.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	if courses == nil {
		courses = []string{}
	}
	return jsonResult(req.Params.URI, courses)
}

// handleStatsResource returns index-wide totals.
func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Library == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	stats, err := s.ports.Library.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}

	type statsInfo struct {
		TotalChunks int      `json:"total_chunks"`
		Courses     []string `json:"courses"`
	}
	info := statsInfo{TotalChunks: stats.TotalChunks, Courses: stats.Courses}
	if info.Courses == nil {
		info.Courses = []string{}
	}
	return jsonResult(req.Params.URI, info)
}

// handleDocumentsResource returns the documents of one course.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Library == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	courseID := extractCourseID(req.Params.URI)
	if courseID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docs, err := s.ports.Library.ListDocuments(ctx, domain.SanitizeCourseID(courseID))
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return jsonResult(req.Params.URI, documentOutputs(docs))
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: jsonMIME,
			Text:     string(data),
		}},
	}, nil
}

// extractCourseID extracts the course ID from coursemate://courses/{courseId}/documents.
func extractCourseID(uri string) string {
	const prefix = uriScheme + "courses/"
	const suffix = "/documents"

	rest, ok := strings.CutPrefix(uri, prefix)
	if !ok {
		return ""
	}
	id, ok := strings.CutSuffix(rest, suffix)
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
