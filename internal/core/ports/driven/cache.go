package driven

import (
	"context"

	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
)

// QueryCache memoizes raw retrieval results per project namespace, keyed by
// a deterministic hash of the query string. Entries expire after the
// store's time-to-live; an expired or absent entry is a miss, never an
// error. Writes happen only after the retrieval succeeded.
type QueryCache interface {
	// Get returns the cached chunks for (namespace, queryHash).
	// The second return is false on a miss.
	Get(ctx context.Context, namespace, queryHash string) ([]domain.RetrievedChunk, bool, error)

	// Put stores the chunks for (namespace, queryHash).
	Put(ctx context.Context, namespace, queryHash string, chunks []domain.RetrievedChunk) error
}

// AnswerCache memoizes synthesised answers per project namespace with the
// same keying and expiry rules as QueryCache. A language model failure is
// never written, so it cannot poison the cache.
type AnswerCache interface {
	// Get returns the cached answer for (namespace, queryHash).
	// The second return is false on a miss.
	Get(ctx context.Context, namespace, queryHash string) (*domain.Answer, bool, error)

	// Put stores the answer for (namespace, queryHash).
	Put(ctx context.Context, namespace, queryHash string, answer domain.Answer) error
}

// StatsStore persists per-project running statistics.
type StatsStore interface {
	// Get returns the stats for a namespace, zero-valued when absent.
	Get(ctx context.Context, namespace string) (domain.ProjectStats, error)

	// Put replaces the stats for a namespace.
	Put(ctx context.Context, namespace string, stats domain.ProjectStats) error
}
