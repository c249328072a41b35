// Package memory provides in-memory implementations of the storage ports
// for testing.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
	"github.com/veldt-labs/grantrag-cli/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory implementation of driven.VectorIndex for testing.
type VectorIndex struct {
	mu     sync.RWMutex
	chunks map[string]map[string]domain.Chunk // namespace -> id -> chunk
}

// NewVectorIndex creates a new in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		chunks: make(map[string]map[string]domain.Chunk),
	}
}

// Upsert inserts or replaces a chunk.
func (v *VectorIndex) Upsert(_ context.Context, namespace string, chunk domain.Chunk) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.chunks[namespace] == nil {
		v.chunks[namespace] = make(map[string]domain.Chunk)
	}
	v.chunks[namespace][chunk.ID] = chunk
	return nil
}

// Delete removes chunks by ID.
func (v *VectorIndex) Delete(_ context.Context, namespace string, chunkIDs []string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, id := range chunkIDs {
		delete(v.chunks[namespace], id)
	}
	return nil
}

// Search returns the k nearest chunks by cosine similarity.
func (v *VectorIndex) Search(
	_ context.Context,
	namespace string,
	embedding []float32,
	k int,
) ([]domain.RetrievedChunk, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if k <= 0 {
		return nil, nil
	}

	var scored []domain.RetrievedChunk
	for _, chunk := range v.chunks[namespace] {
		score, ok := cosine(embedding, chunk.Embedding)
		if !ok {
			continue
		}
		scored = append(scored, domain.RetrievedChunk{
			Content:  chunk.Content,
			Metadata: chunk.Metadata,
			Score:    score,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// ListIDs returns every chunk ID under a namespace, sorted.
func (v *VectorIndex) ListIDs(_ context.Context, namespace string) ([]string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	ids := make([]string, 0, len(v.chunks[namespace]))
	for id := range v.chunks[namespace] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Count returns the number of chunks under a namespace.
func (v *VectorIndex) Count(_ context.Context, namespace string) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.chunks[namespace]), nil
}

// Close is a no-op.
func (v *VectorIndex) Close() error {
	return nil
}

func cosine(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), true
}
