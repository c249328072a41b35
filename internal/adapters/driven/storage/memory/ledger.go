package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/veldt-labs/grantrag-cli/internal/core/ports/driven"
)

// Ensure IngestionLedger implements the interface.
var _ driven.IngestionLedger = (*IngestionLedger)(nil)

// IngestionLedger is an in-memory implementation of driven.IngestionLedger
// for testing.
type IngestionLedger struct {
	mu      sync.RWMutex
	entries map[string]map[string]time.Time // namespace -> path -> mod time
}

// NewIngestionLedger creates a new in-memory ingestion ledger.
func NewIngestionLedger() *IngestionLedger {
	return &IngestionLedger{
		entries: make(map[string]map[string]time.Time),
	}
}

// Get returns the recorded modification time for a path.
func (l *IngestionLedger) Get(_ context.Context, namespace, path string) (time.Time, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	modTime, ok := l.entries[namespace][path]
	return modTime, ok, nil
}

// Commit records the modification time for a path.
func (l *IngestionLedger) Commit(_ context.Context, namespace, path string, modTime time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.entries[namespace] == nil {
		l.entries[namespace] = make(map[string]time.Time)
	}
	l.entries[namespace][path] = modTime
	return nil
}

// Paths returns every recorded path under a namespace, sorted.
func (l *IngestionLedger) Paths(_ context.Context, namespace string) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	paths := make([]string, 0, len(l.entries[namespace]))
	for path := range l.entries[namespace] {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}
