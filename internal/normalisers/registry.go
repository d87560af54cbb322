package normalisers

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps file extensions to extractors.
type Registry struct {
	byExt map[string]driven.TextExtractor
}

// NewRegistry creates a registry holding the given extractors.
// A later extractor wins when two claim the same extension.
func NewRegistry(extractors ...driven.TextExtractor) *Registry {
	r := &Registry{byExt: make(map[string]driven.TextExtractor)}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds an extractor for every extension it handles.
func (r *Registry) Register(e driven.TextExtractor) {
	for _, ext := range e.Extensions() {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// ForFile returns the extractor for the filename's extension.
func (r *Registry) ForFile(filename string) (driven.TextExtractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if e, ok := r.byExt[ext]; ok {
		return e, nil
	}
	if ext == "" {
		return nil, fmt.Errorf("%w: file has no extension", domain.ErrUnsupportedType)
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, ext)
}

// Extensions returns every supported extension, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
