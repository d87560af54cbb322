package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrNoDocuments", ErrNoDocuments},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrGenerationFailed", ErrGenerationFailed},
		{"ErrRateLimited", ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_Wrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("%w: %w", ErrGenerationFailed, cause)

	assert.True(t, errors.Is(err, ErrGenerationFailed))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrLLMUnavailable))
}

func TestFileError(t *testing.T) {
	err := &FileError{Filename: "notes.docx", Err: ErrUnsupportedType}

	assert.Equal(t, "Error processing notes.docx: unsupported type", err.Error())
	assert.True(t, errors.Is(err, ErrUnsupportedType))

	var fe *FileError
	wrapped := fmt.Errorf("ingest: %w", err)
	assert.True(t, errors.As(wrapped, &fe))
	assert.Equal(t, "notes.docx", fe.Filename)
}
