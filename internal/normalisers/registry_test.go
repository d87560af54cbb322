package normalisers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/normalisers/pdf"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/normalisers/plaintext"
)

func TestRegistry_ForFile(t *testing.T) {
	r := NewRegistry(pdf.New(), plaintext.New())

	tests := []struct {
		filename string
		want     domain.FileType
		wantErr  bool
	}{
		{"week1.pdf", domain.FileTypePDF, false},
		{"WEEK1.PDF", domain.FileTypePDF, false},
		{"notes.txt", domain.FileTypeTXT, false},
		{"notes.text", domain.FileTypeTXT, false},
		{"slides.pptx", "", true},
		{"README", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			e, err := r.ForFile(tt.filename)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnsupportedType)
				assert.Nil(t, e)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.FileType())
		})
	}
}

func TestRegistry_Extensions(t *testing.T) {
	r := NewRegistry(pdf.New(), plaintext.New())
	assert.Equal(t, []string{".pdf", ".text", ".txt"}, r.Extensions())
}
