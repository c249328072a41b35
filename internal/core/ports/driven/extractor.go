package driven

import (
	"context"

	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
)

// Extractor converts a raw file into plain text plus structural metadata.
// Each extractor handles specific file extensions.
type Extractor interface {
	// SupportedExtensions returns the lowercase extensions this extractor
	// handles, including the leading dot (e.g. ".pdf").
	SupportedExtensions() []string

	// Extract converts raw file bytes into an extracted document.
	// The file-based formats prefix the text with the two-line
	// "File:"/"Location:" provenance header.
	Extract(ctx context.Context, file domain.SourceFile, content []byte) (*domain.ExtractedDocument, error)
}

// ExtractorRegistry selects an extractor by file extension.
type ExtractorRegistry interface {
	// ForFile returns the extractor for the file's extension, or
	// domain.ErrUnsupportedFormat if no extractor handles it.
	ForFile(path string) (Extractor, error)

	// SupportedExtensions returns all registered extensions.
	SupportedExtensions() []string
}
