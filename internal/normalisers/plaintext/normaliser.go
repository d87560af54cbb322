// Package plaintext extracts text from plain text uploads.
package plaintext

import (
	"context"
	"strings"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.TextExtractor = (*Normaliser)(nil)

// Normaliser handles plain text documents. The whole body is one page.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".txt", ".text"}
}

// FileType returns the file type recorded on chunks.
func (n *Normaliser) FileType() domain.FileType {
	return domain.FileTypeTXT
}

// Extract returns the body as page 1. Invalid UTF-8 is replaced, a
// leading byte order mark is dropped and line endings are normalised.
func (n *Normaliser) Extract(_ context.Context, data []byte) ([]domain.Page, error) {
	if data == nil {
		return nil, domain.ErrInvalidInput
	}

	text := strings.ToValidUTF8(string(data), "\uFFFD")
	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	return []domain.Page{{Number: 1, Text: text}}, nil
}
