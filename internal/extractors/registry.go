package extractors

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
	"github.com/veldt-labs/grantrag-cli/internal/core/ports/driven"
	"github.com/veldt-labs/grantrag-cli/internal/extractors/docx"
	"github.com/veldt-labs/grantrag-cli/internal/extractors/pdf"
	"github.com/veldt-labs/grantrag-cli/internal/extractors/plaintext"
	"github.com/veldt-labs/grantrag-cli/internal/extractors/xlsx"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry dispatches extraction by file extension.
type Registry struct {
	byExtension map[string]driven.Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExtension: make(map[string]driven.Extractor)}
}

// Defaults creates a registry with all built-in extractors registered.
func Defaults() *Registry {
	r := NewRegistry()
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(xlsx.New())
	r.Register(plaintext.New())
	return r
}

// Register adds an extractor for each extension it supports.
// Later registrations win on extension collisions.
func (r *Registry) Register(e driven.Extractor) {
	for _, ext := range e.SupportedExtensions() {
		r.byExtension[strings.ToLower(ext)] = e
	}
}

// ForFile returns the extractor for the file's extension.
func (r *Registry) ForFile(path string) (driven.Extractor, error) {
	ext := strings.ToLower(filepath.Ext(path))
	e, ok := r.byExtension[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, ext)
	}
	return e, nil
}

// SupportedExtensions returns all registered extensions, sorted.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.byExtension))
	for ext := range r.byExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
