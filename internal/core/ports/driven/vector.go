package driven

import (
	"context"

	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
)

// VectorIndex stores chunks under a project-scoped namespace and provides
// cosine similarity search. The namespace key is always the sanitised
// project name; no cross-namespace query is ever issued.
type VectorIndex interface {
	// Upsert inserts or fully replaces the chunk with the given ID.
	// Safe to call twice with the same ID.
	Upsert(ctx context.Context, namespace string, chunk domain.Chunk) error

	// Delete removes chunks by ID, best-effort. Deleting a nonexistent ID
	// is not an error.
	Delete(ctx context.Context, namespace string, chunkIDs []string) error

	// Search returns the k nearest chunks to the query embedding, ordered
	// best-first. An empty namespace yields an empty result, not an error.
	Search(ctx context.Context, namespace string, embedding []float32, k int) ([]domain.RetrievedChunk, error)

	// ListIDs returns every chunk ID stored under the namespace.
	ListIDs(ctx context.Context, namespace string) ([]string, error)

	// Count returns the number of chunks stored under the namespace.
	Count(ctx context.Context, namespace string) (int, error)

	// Close releases resources.
	Close() error
}
