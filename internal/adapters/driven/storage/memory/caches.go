package memory

import (
	"context"
	"sync"
	"time"

	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
	"github.com/veldt-labs/grantrag-cli/internal/core/ports/driven"
)

// Ensure implementations satisfy the interfaces.
var (
	_ driven.QueryCache  = (*QueryCache)(nil)
	_ driven.AnswerCache = (*AnswerCache)(nil)
	_ driven.StatsStore  = (*StatsStore)(nil)
)

func cacheKey(namespace, queryHash string) string {
	return namespace + "\x00" + queryHash
}

// QueryCache is an in-memory implementation of driven.QueryCache for testing.
type QueryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]queryEntry
}

type queryEntry struct {
	chunks   []domain.RetrievedChunk
	cachedAt time.Time
}

// NewQueryCache creates a new in-memory query cache with a 1 hour TTL.
func NewQueryCache() *QueryCache {
	return &QueryCache{
		ttl:     time.Hour,
		entries: make(map[string]queryEntry),
	}
}

// SetTTL overrides the expiry window.
func (c *QueryCache) SetTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = ttl
}

// Get returns the cached chunks for (namespace, queryHash).
func (c *QueryCache) Get(_ context.Context, namespace, queryHash string) ([]domain.RetrievedChunk, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[cacheKey(namespace, queryHash)]
	if !ok || time.Since(entry.cachedAt) > c.ttl {
		return nil, false, nil
	}
	return entry.chunks, true, nil
}

// Put stores the chunks for (namespace, queryHash).
func (c *QueryCache) Put(_ context.Context, namespace, queryHash string, chunks []domain.RetrievedChunk) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(namespace, queryHash)] = queryEntry{chunks: chunks, cachedAt: time.Now()}
	return nil
}

// AnswerCache is an in-memory implementation of driven.AnswerCache for testing.
type AnswerCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]answerEntry
}

type answerEntry struct {
	answer   domain.Answer
	cachedAt time.Time
}

// NewAnswerCache creates a new in-memory answer cache with a 1 hour TTL.
func NewAnswerCache() *AnswerCache {
	return &AnswerCache{
		ttl:     time.Hour,
		entries: make(map[string]answerEntry),
	}
}

// SetTTL overrides the expiry window.
func (c *AnswerCache) SetTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = ttl
}

// Get returns the cached answer for (namespace, queryHash).
func (c *AnswerCache) Get(_ context.Context, namespace, queryHash string) (*domain.Answer, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[cacheKey(namespace, queryHash)]
	if !ok || time.Since(entry.cachedAt) > c.ttl {
		return nil, false, nil
	}
	answer := entry.answer
	return &answer, true, nil
}

// Put stores the answer for (namespace, queryHash).
func (c *AnswerCache) Put(_ context.Context, namespace, queryHash string, answer domain.Answer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(namespace, queryHash)] = answerEntry{answer: answer, cachedAt: time.Now()}
	return nil
}

// StatsStore is an in-memory implementation of driven.StatsStore for testing.
type StatsStore struct {
	mu    sync.RWMutex
	stats map[string]domain.ProjectStats
}

// NewStatsStore creates a new in-memory stats store.
func NewStatsStore() *StatsStore {
	return &StatsStore{
		stats: make(map[string]domain.ProjectStats),
	}
}

// Get returns stats for a namespace, zero-valued when absent.
func (s *StatsStore) Get(_ context.Context, namespace string) (domain.ProjectStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats[namespace], nil
}

// Put replaces stats for a namespace.
func (s *StatsStore) Put(_ context.Context, namespace string, stats domain.ProjectStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[namespace] = stats
	return nil
}
