package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file extension with no text extractor.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNoDocuments indicates the index holds no chunks at all.
	ErrNoDocuments = errors.New("no documents uploaded")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Asking questions is disabled; document management keeps working.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Uploads and retrieval are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationFailed indicates the language model failed to produce an answer.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// FileError records an ingestion failure for a single uploaded file.
// A failing file never aborts the rest of its batch.
type FileError struct {
	// Filename is the name of the file that failed.
	Filename string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *FileError) Error() string {
	return fmt.Sprintf("Error processing %s: %v", e.Filename, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FileError) Unwrap() error {
	return e.Err
}
