package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".pdf"}, New().Extensions())
	assert.Equal(t, domain.FileTypePDF, New().FileType())
}

func TestExtract_Empty(t *testing.T) {
	pages, err := New().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, pages)
}

func TestExtract_NotAPDF(t *testing.T) {
	inputs := [][]byte{
		[]byte("this is not a pdf at all"),
		[]byte("%PDF-1.4\ngarbage without xref"),
	}
	for _, in := range inputs {
		pages, err := New().Extract(context.Background(), in)
		assert.Error(t, err)
		assert.Nil(t, pages)
	}
}
