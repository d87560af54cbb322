// Package pdf extracts per-page text from PDF uploads.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.TextExtractor = (*Normaliser)(nil)

// ErrNoPages is returned for a PDF that parses but has no pages.
var ErrNoPages = errors.New("pdf has no pages")

// Normaliser handles PDF documents.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".pdf"}
}

// FileType returns the file type recorded on chunks.
func (n *Normaliser) FileType() domain.FileType {
	return domain.FileTypePDF
}

// Extract returns the plain text of every page, numbered from 1.
// Pages whose text cannot be read are returned empty so that numbering
// still matches the document.
func (n *Normaliser) Extract(ctx context.Context, data []byte) (pages []domain.Page, err error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty pdf", domain.ErrInvalidInput)
	}

	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("corrupt pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	total := r.NumPage()
	if total == 0 {
		return nil, ErrNoPages
	}

	pages = make([]domain.Page, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages = append(pages, domain.Page{Number: i, Text: pageText(r.Page(i))})
	}
	return pages, nil
}

func pageText(p pdf.Page) string {
	if p.V.IsNull() {
		return ""
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}
