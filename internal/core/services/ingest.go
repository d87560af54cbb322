package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driving"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// fileHashLength is the number of hex characters of the SHA-256 kept in chunk IDs.
const fileHashLength = 16

// IngestService runs the upload pipeline: extract, chunk, embed, store.
type IngestService struct {
	extractors driven.ExtractorRegistry
	chunker    driven.Chunker
	index      *CourseIndex
	workers    int
	now        func() time.Time
}

// NewIngestService creates a new ingest service processing up to workers
// files at once.
func NewIngestService(
	extractors driven.ExtractorRegistry,
	chunker driven.Chunker,
	index *CourseIndex,
	workers int,
) *IngestService {
	if workers <= 0 {
		workers = domain.DefaultIngestWorkers
	}
	return &IngestService{
		extractors: extractors,
		chunker:    chunker,
		index:      index,
		workers:    workers,
		now:        time.Now,
	}
}

// SupportedExtensions returns the file extensions that can be uploaded.
func (s *IngestService) SupportedExtensions() []string {
	return s.extractors.Extensions()
}

// Upload validates the request and indexes every file. A file that fails
// is reported and the rest of the batch carries on; nothing is rolled back.
func (s *IngestService) Upload(ctx context.Context, req domain.UploadRequest) (*domain.IngestReport, error) {
	if err := domain.ValidateCourseID(req.CourseID); err != nil {
		return nil, err
	}
	if len(req.Files) == 0 {
		return nil, fmt.Errorf("%w: no files provided", domain.ErrInvalidInput)
	}
	docType := req.DocType
	if docType == "" {
		docType = domain.DocTypeMisc
	}
	if !docType.IsValid() {
		return nil, fmt.Errorf("%w: unknown document type %q", domain.ErrInvalidInput, docType)
	}

	courseID := domain.SanitizeCourseID(req.CourseID)
	uploadedAt := s.now().UTC()
	logger.Section("Upload")
	logger.Info("Indexing %d file(s) into %s as %s", len(req.Files), courseID, docType)

	type result struct {
		chunks int
		err    error
	}
	results := make([]result, len(req.Files))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(s.workers, len(req.Files)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				n, err := s.processFile(ctx, courseID, docType, req.Files[i], uploadedAt)
				results[i] = result{chunks: n, err: err}
			}
		}()
	}
	for i := range req.Files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	report := &domain.IngestReport{CourseID: courseID, FilesIndexed: []string{}}
	for i, r := range results {
		name := req.Files[i].Name
		if r.err != nil {
			logger.Warn("Error processing %s: %v", name, r.err)
			report.Errors = append(report.Errors, &domain.FileError{Filename: name, Err: r.err})
			continue
		}
		report.FilesIndexed = append(report.FilesIndexed, name)
		report.ChunksIndexed += r.chunks
	}
	logger.Info("Indexed %d chunks from %d file(s), %d failed",
		report.ChunksIndexed, len(report.FilesIndexed), len(report.Errors))
	return report, nil
}

// processFile indexes one file and returns the number of chunks stored.
// A re-upload under the same name replaces the previous version.
func (s *IngestService) processFile(
	ctx context.Context,
	courseID string,
	docType domain.DocType,
	file domain.UploadFile,
	uploadedAt time.Time,
) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if strings.TrimSpace(file.Name) == "" {
		return 0, fmt.Errorf("%w: file has no name", domain.ErrInvalidInput)
	}

	extractor, err := s.extractors.ForFile(file.Name)
	if err != nil {
		return 0, err
	}
	pages, err := extractor.Extract(ctx, file.Data)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", extractor.FileType(), err)
	}

	chunks := s.chunker.ChunkFile(pages, domain.ChunkMeta{
		CourseID:   courseID,
		DocType:    docType,
		SourceFile: file.Name,
		TotalPages: max(len(pages), 1),
		FileType:   extractor.FileType(),
		FileHash:   DocumentHash(courseID, file.Name, file.Data),
		UploadedAt: uploadedAt,
	})
	if len(chunks) == 0 {
		return 0, errors.New("no text could be extracted")
	}

	ids, err := s.index.ReplaceDocument(ctx, courseID, file.Name, chunks)
	if err != nil {
		return 0, err
	}
	logger.Debug("Indexed %s: %d pages, %d chunks", file.Name, len(pages), len(ids))
	return len(ids), nil
}

// DocumentHash keys the chunks of one (course, file) upload. The same bytes
// under another course or name get a different key, so their chunks never
// collide. Re-uploading identical bytes reproduces the same IDs.
func DocumentHash(courseID, name string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(courseID))
	h.Write([]byte{0})
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))[:fileHashLength]
}
