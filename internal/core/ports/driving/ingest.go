package driving

import (
	"context"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
)

// IngestService turns uploaded files into indexed chunks.
type IngestService interface {
	// Upload validates the request, then extracts, chunks, embeds and stores
	// every file. Validation failures are returned as errors before any
	// file is touched. Per-file failures are collected in the report.
	Upload(ctx context.Context, req domain.UploadRequest) (*domain.IngestReport, error)

	// SupportedExtensions returns the file extensions that can be uploaded.
	SupportedExtensions() []string
}
