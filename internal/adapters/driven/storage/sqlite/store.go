package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/veldt-labs/grantrag-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
	"github.com/veldt-labs/grantrag-cli/internal/core/ports/driven"
)

// DefaultCacheTTL is how long cached retrievals and answers stay valid.
const DefaultCacheTTL = time.Hour

// Store is a unified SQLite-based storage that provides access to the
// vector index, ingestion ledger, caches and stats through wrapper types.
type Store struct {
	db       *sql.DB
	path     string
	cacheTTL time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithCacheTTL overrides the cache expiry window.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.cacheTTL = ttl
	}
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.grantrag/data/index.db.
func NewStore(dataDir string, opts ...Option) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".grantrag", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:       db,
		path:     dbPath,
		cacheTTL: DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// VectorIndex returns a VectorIndex interface backed by this store.
func (s *Store) VectorIndex() driven.VectorIndex {
	return &vectorIndex{store: s}
}

// IngestionLedger returns an IngestionLedger interface backed by this store.
func (s *Store) IngestionLedger() driven.IngestionLedger {
	return &ingestionLedger{store: s}
}

// QueryCache returns a QueryCache interface backed by this store.
func (s *Store) QueryCache() driven.QueryCache {
	return &queryCache{store: s}
}

// AnswerCache returns an AnswerCache interface backed by this store.
func (s *Store) AnswerCache() driven.AnswerCache {
	return &answerCache{store: s}
}

// StatsStore returns a StatsStore interface backed by this store.
func (s *Store) StatsStore() driven.StatsStore {
	return &statsStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Vector Index ====================

// vectorIndex implements driven.VectorIndex.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Upsert inserts or replaces a chunk under a namespace.
func (v *vectorIndex) Upsert(ctx context.Context, namespace string, chunk domain.Chunk) error {
	metadataJSON, err := json.Marshal(chunk.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling chunk metadata: %w", err)
	}

	embeddingBlob := float32SliceToBytes(chunk.Embedding)

	_, err = v.store.db.ExecContext(ctx, `
		INSERT INTO chunks (namespace, id, content, embedding, metadata)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(namespace, id) DO UPDATE SET
			content = excluded.content,
			embedding = excluded.embedding,
			metadata = excluded.metadata
	`, namespace, chunk.ID, chunk.Content, embeddingBlob, string(metadataJSON))

	if err != nil {
		return fmt.Errorf("saving chunk: %w", err)
	}
	return nil
}

// Delete removes chunks by ID. Nonexistent IDs are not an error.
func (v *vectorIndex) Delete(ctx context.Context, namespace string, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		"DELETE FROM chunks WHERE namespace = ? AND id = ?")
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, id := range chunkIDs {
		if _, err := stmt.ExecContext(ctx, namespace, id); err != nil {
			return fmt.Errorf("deleting chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Search scans the namespace and returns the k chunks whose embeddings are
// closest to the query by cosine similarity, best first.
func (v *vectorIndex) Search(
	ctx context.Context,
	namespace string,
	embedding []float32,
	k int,
) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	rows, err := v.store.db.QueryContext(ctx, `
		SELECT content, embedding, metadata
		FROM chunks WHERE namespace = ?
	`, namespace)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var scored []domain.RetrievedChunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var content string
		var embeddingBlob []byte
		var metadataJSON string
		if err := rows.Scan(&content, &embeddingBlob, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}

		candidate := bytesToFloat32Slice(embeddingBlob)
		score, ok := cosineSimilarity(embedding, candidate)
		if !ok {
			continue
		}

		var metadata domain.ChunkMetadata
		if metadataJSON != "" {
			if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
				return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
			}
		}

		scored = append(scored, domain.RetrievedChunk{
			Content:  content,
			Metadata: metadata,
			Score:    score,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// ListIDs returns every chunk ID under a namespace.
func (v *vectorIndex) ListIDs(ctx context.Context, namespace string) ([]string, error) {
	rows, err := v.store.db.QueryContext(ctx,
		"SELECT id FROM chunks WHERE namespace = ?", namespace)
	if err != nil {
		return nil, fmt.Errorf("querying chunk ids: %w", err)
	}
	defer rows.Close()

	var ids []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning chunk id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunk ids: %w", err)
	}
	return ids, nil
}

// Count returns the number of chunks under a namespace.
func (v *vectorIndex) Count(ctx context.Context, namespace string) (int, error) {
	var count int
	err := v.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE namespace = ?", namespace).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// Close is a no-op; the owning Store manages the connection.
func (v *vectorIndex) Close() error {
	return nil
}

// ==================== Ingestion Ledger ====================

// ingestionLedger implements driven.IngestionLedger.
type ingestionLedger struct {
	store *Store
}

var _ driven.IngestionLedger = (*ingestionLedger)(nil)

// Get returns the recorded modification time for a path.
func (l *ingestionLedger) Get(ctx context.Context, namespace, path string) (time.Time, bool, error) {
	var modTime time.Time
	err := l.store.db.QueryRowContext(ctx, `
		SELECT mod_time FROM ingestion_ledger
		WHERE namespace = ? AND path = ?
	`, namespace, path).Scan(&modTime)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("scanning ledger entry: %w", err)
	}
	return modTime, true, nil
}

// Commit records the modification time for a path.
func (l *ingestionLedger) Commit(ctx context.Context, namespace, path string, modTime time.Time) error {
	_, err := l.store.db.ExecContext(ctx, `
		INSERT INTO ingestion_ledger (namespace, path, mod_time)
		VALUES (?, ?, ?)
		ON CONFLICT(namespace, path) DO UPDATE SET
			mod_time = excluded.mod_time
	`, namespace, path, modTime.UTC())
	if err != nil {
		return fmt.Errorf("committing ledger entry: %w", err)
	}
	return nil
}

// Paths returns every recorded path under a namespace.
func (l *ingestionLedger) Paths(ctx context.Context, namespace string) ([]string, error) {
	rows, err := l.store.db.QueryContext(ctx,
		"SELECT path FROM ingestion_ledger WHERE namespace = ?", namespace)
	if err != nil {
		return nil, fmt.Errorf("querying ledger paths: %w", err)
	}
	defer rows.Close()

	var paths []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("scanning ledger path: %w", err)
		}
		paths = append(paths, path)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ledger paths: %w", err)
	}
	return paths, nil
}

// ==================== Query Cache ====================

// queryCache implements driven.QueryCache.
type queryCache struct {
	store *Store
}

var _ driven.QueryCache = (*queryCache)(nil)

// Get returns cached retrieval results, expiring stale entries.
func (c *queryCache) Get(ctx context.Context, namespace, queryHash string) ([]domain.RetrievedChunk, bool, error) {
	var chunksJSON string
	var cachedAt time.Time
	err := c.store.db.QueryRowContext(ctx, `
		SELECT chunks, cached_at FROM query_cache
		WHERE namespace = ? AND query_hash = ?
	`, namespace, queryHash).Scan(&chunksJSON, &cachedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("scanning query cache: %w", err)
	}

	if time.Since(cachedAt) > c.store.cacheTTL {
		_, _ = c.store.db.ExecContext(ctx,
			"DELETE FROM query_cache WHERE namespace = ? AND query_hash = ?",
			namespace, queryHash)
		return nil, false, nil
	}

	var chunks []domain.RetrievedChunk
	if err := json.Unmarshal([]byte(chunksJSON), &chunks); err != nil {
		return nil, false, fmt.Errorf("unmarshaling cached chunks: %w", err)
	}
	return chunks, true, nil
}

// Put stores retrieval results for a query hash.
func (c *queryCache) Put(ctx context.Context, namespace, queryHash string, chunks []domain.RetrievedChunk) error {
	chunksJSON, err := json.Marshal(chunks)
	if err != nil {
		return fmt.Errorf("marshalling chunks: %w", err)
	}

	_, err = c.store.db.ExecContext(ctx, `
		INSERT INTO query_cache (namespace, query_hash, chunks, cached_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, query_hash) DO UPDATE SET
			chunks = excluded.chunks,
			cached_at = excluded.cached_at
	`, namespace, queryHash, string(chunksJSON), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving query cache entry: %w", err)
	}
	return nil
}

// ==================== Answer Cache ====================

// answerCache implements driven.AnswerCache.
type answerCache struct {
	store *Store
}

var _ driven.AnswerCache = (*answerCache)(nil)

// Get returns a cached answer, expiring stale entries.
func (c *answerCache) Get(ctx context.Context, namespace, queryHash string) (*domain.Answer, bool, error) {
	var answerJSON string
	var cachedAt time.Time
	err := c.store.db.QueryRowContext(ctx, `
		SELECT answer, cached_at FROM answer_cache
		WHERE namespace = ? AND query_hash = ?
	`, namespace, queryHash).Scan(&answerJSON, &cachedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("scanning answer cache: %w", err)
	}

	if time.Since(cachedAt) > c.store.cacheTTL {
		_, _ = c.store.db.ExecContext(ctx,
			"DELETE FROM answer_cache WHERE namespace = ? AND query_hash = ?",
			namespace, queryHash)
		return nil, false, nil
	}

	var answer domain.Answer
	if err := json.Unmarshal([]byte(answerJSON), &answer); err != nil {
		return nil, false, fmt.Errorf("unmarshaling cached answer: %w", err)
	}
	return &answer, true, nil
}

// Put stores an answer for a query hash.
func (c *answerCache) Put(ctx context.Context, namespace, queryHash string, answer domain.Answer) error {
	answerJSON, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("marshalling answer: %w", err)
	}

	_, err = c.store.db.ExecContext(ctx, `
		INSERT INTO answer_cache (namespace, query_hash, answer, cached_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, query_hash) DO UPDATE SET
			answer = excluded.answer,
			cached_at = excluded.cached_at
	`, namespace, queryHash, string(answerJSON), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving answer cache entry: %w", err)
	}
	return nil
}

// ==================== Stats Store ====================

// statsStore implements driven.StatsStore.
type statsStore struct {
	store *Store
}

var _ driven.StatsStore = (*statsStore)(nil)

// Get returns stats for a namespace, zero-valued when absent.
func (s *statsStore) Get(ctx context.Context, namespace string) (domain.ProjectStats, error) {
	var stats domain.ProjectStats
	var lastUpdate sql.NullTime
	err := s.store.db.QueryRowContext(ctx, `
		SELECT documents_processed, chunks_stored, last_update
		FROM project_stats WHERE namespace = ?
	`, namespace).Scan(&stats.DocumentsProcessed, &stats.ChunksStored, &lastUpdate)
	if err == sql.ErrNoRows {
		return domain.ProjectStats{}, nil
	}
	if err != nil {
		return domain.ProjectStats{}, fmt.Errorf("scanning project stats: %w", err)
	}

	if lastUpdate.Valid {
		stats.LastUpdate = lastUpdate.Time
	}
	return stats, nil
}

// Put replaces stats for a namespace.
func (s *statsStore) Put(ctx context.Context, namespace string, stats domain.ProjectStats) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO project_stats (namespace, documents_processed, chunks_stored, last_update)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace) DO UPDATE SET
			documents_processed = excluded.documents_processed,
			chunks_stored = excluded.chunks_stored,
			last_update = excluded.last_update
	`, namespace, stats.DocumentsProcessed, stats.ChunksStored, stats.LastUpdate)
	if err != nil {
		return fmt.Errorf("saving project stats: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// cosineSimilarity returns the cosine of the angle between two vectors.
// The second return is false when the vectors differ in length or either
// has zero magnitude.
func cosineSimilarity(a, b []float32) (float64, bool) {
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
