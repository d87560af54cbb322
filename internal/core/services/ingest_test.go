package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driven/storage/memory"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/normalisers"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/normalisers/pdf"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/normalisers/plaintext"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/postprocessors/chunker"
)

func newTestIngest(workers int) (*IngestService, *CourseIndex, *memory.ChunkStore) {
	ix, store := newTestIndex()
	registry := normalisers.NewRegistry(plaintext.New(), pdf.New())
	svc := NewIngestService(registry, chunker.New(), ix, workers)
	svc.now = func() time.Time { return testUploadedAt }
	return svc, ix, store
}

func txt(name, body string) domain.UploadFile {
	return domain.UploadFile{Name: name, Data: []byte(body)}
}

func TestIngestService_Upload_Validation(t *testing.T) {
	svc, _, _ := newTestIngest(1)
	files := []domain.UploadFile{txt("a.txt", "hello")}

	tests := []struct {
		name    string
		req     domain.UploadRequest
		message string
	}{
		{"empty course", domain.UploadRequest{CourseID: "  ", Files: files}, "Course ID cannot be empty"},
		{"short course", domain.UploadRequest{CourseID: "a!", Files: files}, "Course ID must be at least 2 characters"},
		{"long course", domain.UploadRequest{CourseID: strings.Repeat("x", 51), Files: files}, "Course ID cannot exceed 50 characters"},
		{"no files", domain.UploadRequest{CourseID: "CS101"}, "no files provided"},
		{"bad doc type", domain.UploadRequest{CourseID: "CS101", DocType: "notes", Files: files}, "unknown document type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := svc.Upload(context.Background(), tt.req)
			assert.Nil(t, report)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestIngestService_Upload_EndToEnd(t *testing.T) {
	svc, ix, store := newTestIngest(2)
	ctx := context.Background()
	body := strings.Repeat("word ", 500)
	require.Len(t, body, 2500)

	report, err := svc.Upload(ctx, domain.UploadRequest{
		CourseID: "cs 101",
		DocType:  domain.DocTypeLecture,
		Files:    []domain.UploadFile{txt("week1.txt", body)},
	})

	require.NoError(t, err)
	assert.Equal(t, "CS101", report.CourseID)
	assert.Equal(t, 3, report.ChunksIndexed)
	assert.Equal(t, []string{"week1.txt"}, report.FilesIndexed)
	assert.False(t, report.HasErrors())

	chunks, err := store.Find(ctx, domain.ChunkFilter{CourseID: "CS101"})
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	hash := DocumentHash("CS101", "week1.txt", []byte(body))
	for i, c := range chunks {
		assert.Equal(t, 1, c.PageNumber)
		assert.Equal(t, 1, c.TotalPages)
		assert.Equal(t, i, c.ChunkIndex)
		assert.Equal(t, fmt.Sprintf("%s_1_%d", hash, i), c.ID)
		assert.Equal(t, domain.FileTypeTXT, c.FileType)
		assert.Equal(t, domain.DocTypeLecture, c.DocType)
		assert.True(t, c.UploadedAt.Equal(testUploadedAt))
	}

	docs, err := NewLibraryService(ix).ListDocuments(ctx, "CS101")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "week1.txt", docs[0].SourceFile)
	assert.Equal(t, 3, docs[0].ChunkCount)
}

func TestIngestService_Upload_PerFileFailures(t *testing.T) {
	svc, _, _ := newTestIngest(3)

	report, err := svc.Upload(context.Background(), domain.UploadRequest{
		CourseID: "CS101",
		Files: []domain.UploadFile{
			txt("good.txt", "Dijkstra finds shortest paths."),
			txt("slides.docx", "binary"),
			txt("blank.txt", "   \n  "),
			{Name: "broken.pdf", Data: []byte("not a pdf")},
			txt("also-good.txt", "Prim builds spanning trees."),
		},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"good.txt", "also-good.txt"}, report.FilesIndexed)
	assert.Equal(t, 2, report.ChunksIndexed)
	require.Len(t, report.Errors, 3)
	assert.Equal(t, "slides.docx", report.Errors[0].Filename)
	assert.ErrorIs(t, report.Errors[0], domain.ErrUnsupportedType)
	assert.Equal(t, "blank.txt", report.Errors[1].Filename)
	assert.Equal(t, "broken.pdf", report.Errors[2].Filename)
	assert.Equal(t, "Error processing slides.docx: unsupported type: .docx", report.ErrorMessages()[0])
}

func TestIngestService_Upload_DefaultsToMisc(t *testing.T) {
	svc, _, store := newTestIngest(1)

	_, err := svc.Upload(context.Background(), domain.UploadRequest{
		CourseID: "CS101",
		Files:    []domain.UploadFile{txt("n.txt", "some notes")},
	})
	require.NoError(t, err)

	chunks, _ := store.Find(context.Background(), domain.ChunkFilter{})
	require.Len(t, chunks, 1)
	assert.Equal(t, domain.DocTypeMisc, chunks[0].DocType)
}

func TestIngestService_Upload_ReuploadIdenticalBytes(t *testing.T) {
	svc, _, store := newTestIngest(1)
	ctx := context.Background()
	req := domain.UploadRequest{CourseID: "CS101", Files: []domain.UploadFile{txt("n.txt", strings.Repeat("graph ", 400))}}

	_, err := svc.Upload(ctx, req)
	require.NoError(t, err)
	first, _ := store.Find(ctx, domain.ChunkFilter{})

	_, err = svc.Upload(ctx, req)
	require.NoError(t, err)
	second, _ := store.Find(ctx, domain.ChunkFilter{})

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestIngestService_Upload_ReuploadReplaces(t *testing.T) {
	svc, _, store := newTestIngest(1)
	ctx := context.Background()

	_, err := svc.Upload(ctx, domain.UploadRequest{CourseID: "CS101", Files: []domain.UploadFile{txt("n.txt", strings.Repeat("old ", 700))}})
	require.NoError(t, err)
	_, err = svc.Upload(ctx, domain.UploadRequest{CourseID: "CS101", Files: []domain.UploadFile{txt("n.txt", "new short version")}})
	require.NoError(t, err)

	chunks, _ := store.Find(ctx, domain.ChunkFilter{CourseID: "CS101", SourceFile: "n.txt"})
	require.Len(t, chunks, 1)
	assert.Equal(t, "new short version", chunks[0].Content)
}

func TestIngestService_Upload_ManyFilesKeepOrder(t *testing.T) {
	svc, _, _ := newTestIngest(3)
	var files []domain.UploadFile
	var names []string
	for i := 0; i < 12; i++ {
		name := fmt.Sprintf("file%02d.txt", i)
		names = append(names, name)
		files = append(files, txt(name, fmt.Sprintf("content of file %d", i)))
	}

	report, err := svc.Upload(context.Background(), domain.UploadRequest{CourseID: "CS101", Files: files})

	require.NoError(t, err)
	assert.Equal(t, names, report.FilesIndexed)
	assert.Equal(t, 12, report.ChunksIndexed)
}

func TestIngestService_Upload_CancelledContext(t *testing.T) {
	svc, _, _ := newTestIngest(2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := svc.Upload(ctx, domain.UploadRequest{CourseID: "CS101", Files: []domain.UploadFile{txt("a.txt", "x")}})

	require.NoError(t, err)
	require.Len(t, report.Errors, 1)
	assert.ErrorIs(t, report.Errors[0], context.Canceled)
}

func TestIngestService_SupportedExtensions(t *testing.T) {
	svc, _, _ := newTestIngest(1)
	assert.Equal(t, []string{".pdf", ".text", ".txt"}, svc.SupportedExtensions())
}

func TestDocumentHash(t *testing.T) {
	data := []byte("hello")
	h := DocumentHash("CS101", "a.txt", data)

	assert.Len(t, h, 16)
	assert.Equal(t, h, DocumentHash("CS101", "a.txt", data))

	tests := map[string]string{
		"other bytes":  DocumentHash("CS101", "a.txt", []byte("hello!")),
		"other course": DocumentHash("MATH200", "a.txt", data),
		"other name":   DocumentHash("CS101", "b.txt", data),
		"shifted join": DocumentHash("CS10", "1a.txt", data),
	}
	for name, other := range tests {
		assert.NotEqual(t, h, other, name)
	}
}

func TestIngestService_Upload_SameFileInTwoCourses(t *testing.T) {
	svc, ix, _ := newTestIngest(1)
	ctx := context.Background()
	syllabus := txt("syllabus.txt", "Office hours are on Tuesdays. Exams are closed book.")

	for _, course := range []string{"CS101", "MATH200"} {
		report, err := svc.Upload(ctx, domain.UploadRequest{CourseID: course, Files: []domain.UploadFile{syllabus}})
		require.NoError(t, err)
		require.False(t, report.HasErrors())
	}

	library := NewLibraryService(ix)
	for _, course := range []string{"CS101", "MATH200"} {
		docs, err := library.ListDocuments(ctx, course)
		require.NoError(t, err)
		require.Len(t, docs, 1, course)
		assert.Equal(t, "syllabus.txt", docs[0].SourceFile)
	}
}

func TestIngestService_Upload_IdenticalBytesUnderTwoNames(t *testing.T) {
	svc, ix, _ := newTestIngest(1)
	ctx := context.Background()
	body := "Graphs are made of vertices and edges."

	report, err := svc.Upload(ctx, domain.UploadRequest{
		CourseID: "CS101",
		Files:    []domain.UploadFile{txt("notes.txt", body), txt("notes-copy.txt", body)},
	})
	require.NoError(t, err)
	require.False(t, report.HasErrors())

	docs, err := NewLibraryService(ix).ListDocuments(ctx, "CS101")
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}
