// Package domain defines the core business entities for GrantRAG.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Project: A named grant application under assessment
//   - Chunk: An indexed unit of extracted document text
//   - FileOutcome / IngestReport: Per-file and per-run ingestion accounting
//   - Answer: A retrieval-augmented answer with cited sources
//   - EligibilityResult / SelectionResult / Report / Recommendation:
//     Assessment records produced from answers
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
