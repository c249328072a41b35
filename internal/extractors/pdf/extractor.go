// Package pdf extracts text from PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
	"github.com/veldt-labs/grantrag-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles PDF documents.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".pdf"}
}

// Extract concatenates per-page text with a blank-line separator.
// Empty or undecodable pages contribute nothing; only a document that
// cannot be opened at all is an error.
func (e *Extractor) Extract(_ context.Context, file domain.SourceFile, content []byte) (*domain.ExtractedDocument, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %w", domain.ErrExtractionFailed, err)
	}

	var body strings.Builder
	pageCount := reader.NumPage()
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil || pageText == "" {
			continue
		}

		body.WriteString(pageText)
		body.WriteString("\n\n")
	}

	text := fmt.Sprintf("File: %s\nLocation: %s\n\n%s", file.Name, file.ParentFolder, body.String())
	return &domain.ExtractedDocument{
		Text:      text,
		PageCount: pageCount,
	}, nil
}
