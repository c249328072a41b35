// Package plaintext extracts text files verbatim.
package plaintext

import (
	"context"
	"fmt"

	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
	"github.com/veldt-labs/grantrag-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".txt"}
}

// Extract reads the file as UTF-8 text verbatim, prefixed with the
// provenance header.
func (e *Extractor) Extract(_ context.Context, file domain.SourceFile, content []byte) (*domain.ExtractedDocument, error) {
	text := fmt.Sprintf("File: %s\nLocation: %s\n\n%s", file.Name, file.ParentFolder, string(content))
	return &domain.ExtractedDocument{Text: text}, nil
}
