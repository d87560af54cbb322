// Package mcp serves the course assistant over the Model Context Protocol,
// letting AI clients ask grounded questions and browse course documents.
package mcp

import (
	"errors"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driving"
)

var (
	ErrMissingAssistantService = errors.New("mcp: assistant service is required")

	// ErrUploadDisabled is returned by upload_files on a server started
	// without an ingest service.
	ErrUploadDisabled = errors.New("mcp: uploads are not enabled on this server")
)

// Ports are the services behind the MCP tools. Only Assistant is required;
// library tools and resources need Library, upload_files needs Ingest.
type Ports struct {
	Assistant driving.AssistantService
	Library   driving.LibraryService
	Ingest    driving.IngestService
}

func (p *Ports) Validate() error {
	if p == nil || p.Assistant == nil {
		return ErrMissingAssistantService
	}
	return nil
}
