package driven

import (
	"context"
	"time"
)

// IngestionLedger maps (namespace, file path) to the file's last observed
// modification time. It is read before ingestion to decide skip-vs-process
// and committed only after every chunk of a file has been indexed.
// Entries are never deleted automatically; removed source files keep their
// ledger entries (and their indexed chunks).
type IngestionLedger interface {
	// Get returns the recorded modification time for a path.
	// The second return is false when the path has never been ingested.
	Get(ctx context.Context, namespace, path string) (time.Time, bool, error)

	// Commit records the modification time for a path, replacing any
	// previous entry.
	Commit(ctx context.Context, namespace, path string, modTime time.Time) error

	// Paths returns every recorded path under the namespace.
	Paths(ctx context.Context, namespace string) ([]string, error)
}
