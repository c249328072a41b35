package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T, opts ...Option) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "grantrag-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir, opts...)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

func testChunk(id, content string, embedding []float32) domain.Chunk {
	return domain.Chunk{
		ID:        id,
		Content:   content,
		Embedding: embedding,
		Metadata: domain.ChunkMetadata{
			Source:   "/projects/demo/" + id + ".txt",
			FileName: id + ".txt",
		},
	}
}

// ==================== Store Creation and Initialization Tests ====================

func TestNewStore_Success(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "grantrag-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	dbPath := filepath.Join(tempDir, "index.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)

	err = store.db.Ping()
	assert.NoError(t, err)
}

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Migrations(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	var count int
	err := store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Greater(t, count, 0, "should have at least one migration")

	tables := []string{
		"chunks",
		"ingestion_ledger",
		"query_cache",
		"answer_cache",
		"project_stats",
	}

	for _, table := range tables {
		var tableExists int
		err := store.db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&tableExists)
		require.NoError(t, err)
		assert.Equal(t, 1, tableExists, "table %s should exist", table)
	}
}

func TestStore_MigrationIdempotency(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "grantrag-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store1, err := NewStore(tempDir)
	require.NoError(t, err)

	var count1 int
	err = store1.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count1)
	require.NoError(t, err)
	require.NoError(t, store1.Close())

	// Reopen; migrations must not run again
	store2, err := NewStore(tempDir)
	require.NoError(t, err)
	defer store2.Close()

	var count2 int
	err = store2.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count2)
	require.NoError(t, err)
	assert.Equal(t, count1, count2)
}

func TestStore_InterfaceGetters(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.NotNil(t, store.VectorIndex())
	assert.NotNil(t, store.IngestionLedger())
	assert.NotNil(t, store.QueryCache())
	assert.NotNil(t, store.AnswerCache())
	assert.NotNil(t, store.StatsStore())
}

// ==================== Vector Index Tests ====================

func TestVectorIndex_UpsertAndSearch(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	index := store.VectorIndex()

	require.NoError(t, index.Upsert(ctx, "demo_ns", testChunk("proposal_0", "water access proposal", []float32{1, 0, 0})))
	require.NoError(t, index.Upsert(ctx, "demo_ns", testChunk("proposal_1", "budget breakdown", []float32{0, 1, 0})))
	require.NoError(t, index.Upsert(ctx, "demo_ns", testChunk("proposal_2", "community impact", []float32{0.9, 0.1, 0})))

	results, err := index.Search(ctx, "demo_ns", []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Best match first
	assert.Equal(t, "water access proposal", results[0].Content)
	assert.Equal(t, "community impact", results[1].Content)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.Equal(t, "proposal_0.txt", results[0].Metadata.FileName)
}

func TestVectorIndex_UpsertReplaces(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	index := store.VectorIndex()

	require.NoError(t, index.Upsert(ctx, "demo_ns", testChunk("doc_0", "original", []float32{1, 0})))
	require.NoError(t, index.Upsert(ctx, "demo_ns", testChunk("doc_0", "replaced", []float32{1, 0})))

	count, err := index.Count(ctx, "demo_ns")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := index.Search(ctx, "demo_ns", []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "replaced", results[0].Content)
}

func TestVectorIndex_NamespaceIsolation(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	index := store.VectorIndex()

	require.NoError(t, index.Upsert(ctx, "project_a", testChunk("a_0", "alpha", []float32{1, 0})))
	require.NoError(t, index.Upsert(ctx, "project_b", testChunk("b_0", "beta", []float32{1, 0})))

	results, err := index.Search(ctx, "project_a", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alpha", results[0].Content)

	ids, err := index.ListIDs(ctx, "project_b")
	require.NoError(t, err)
	assert.Equal(t, []string{"b_0"}, ids)
}

func TestVectorIndex_SearchEmptyNamespace(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	results, err := store.VectorIndex().Search(context.Background(), "missing_ns", []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestVectorIndex_Delete(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	index := store.VectorIndex()

	require.NoError(t, index.Upsert(ctx, "demo_ns", testChunk("doc_0", "first", []float32{1, 0})))
	require.NoError(t, index.Upsert(ctx, "demo_ns", testChunk("doc_1", "second", []float32{0, 1})))

	err := index.Delete(ctx, "demo_ns", []string{"doc_0", "never-existed"})
	require.NoError(t, err)

	ids, err := index.ListIDs(ctx, "demo_ns")
	require.NoError(t, err)
	assert.Equal(t, []string{"doc_1"}, ids)
}

func TestVectorIndex_LargeEmbeddings(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	index := store.VectorIndex()

	largeEmbedding := make([]float32, 1536)
	for i := range largeEmbedding {
		largeEmbedding[i] = float32(i) * 0.001
	}

	require.NoError(t, index.Upsert(ctx, "demo_ns", testChunk("doc_0", "large", largeEmbedding)))

	results, err := index.Search(ctx, "demo_ns", largeEmbedding, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestVectorIndex_SkipsMismatchedDimensions(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	index := store.VectorIndex()

	require.NoError(t, index.Upsert(ctx, "demo_ns", testChunk("doc_0", "three dims", []float32{1, 0, 0})))
	require.NoError(t, index.Upsert(ctx, "demo_ns", testChunk("doc_1", "two dims", []float32{1, 0})))

	results, err := index.Search(ctx, "demo_ns", []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "three dims", results[0].Content)
}

// ==================== Ingestion Ledger Tests ====================

func TestIngestionLedger_GetMiss(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, seen, err := store.IngestionLedger().Get(context.Background(), "demo_ns", "/projects/demo/a.txt")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestIngestionLedger_CommitAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	ledger := store.IngestionLedger()

	modTime := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, ledger.Commit(ctx, "demo_ns", "/projects/demo/a.txt", modTime))

	got, seen, err := ledger.Get(ctx, "demo_ns", "/projects/demo/a.txt")
	require.NoError(t, err)
	assert.True(t, seen)
	assert.True(t, modTime.Equal(got))

	// Replacing an entry keeps only the latest mod time
	later := modTime.Add(time.Hour)
	require.NoError(t, ledger.Commit(ctx, "demo_ns", "/projects/demo/a.txt", later))

	got, seen, err = ledger.Get(ctx, "demo_ns", "/projects/demo/a.txt")
	require.NoError(t, err)
	assert.True(t, seen)
	assert.True(t, later.Equal(got))
}

func TestIngestionLedger_Paths(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	ledger := store.IngestionLedger()
	now := time.Now().UTC()

	require.NoError(t, ledger.Commit(ctx, "demo_ns", "/projects/demo/a.txt", now))
	require.NoError(t, ledger.Commit(ctx, "demo_ns", "/projects/demo/b.txt", now))
	require.NoError(t, ledger.Commit(ctx, "other_ns", "/projects/other/c.txt", now))

	paths, err := ledger.Paths(ctx, "demo_ns")
	require.NoError(t, err)
	assert.Len(t, paths, 2)
	assert.Contains(t, paths, "/projects/demo/a.txt")
	assert.Contains(t, paths, "/projects/demo/b.txt")
}

// ==================== Cache Tests ====================

func TestQueryCache_PutAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	cache := store.QueryCache()

	chunks := []domain.RetrievedChunk{
		{Content: "chunk one", Score: 0.9, Metadata: domain.ChunkMetadata{FileName: "a.txt"}},
		{Content: "chunk two", Score: 0.7, Metadata: domain.ChunkMetadata{FileName: "b.txt"}},
	}
	require.NoError(t, cache.Put(ctx, "demo_ns", "hash-1", chunks))

	got, hit, err := cache.Get(ctx, "demo_ns", "hash-1")
	require.NoError(t, err)
	assert.True(t, hit)
	require.Len(t, got, 2)
	assert.Equal(t, "chunk one", got[0].Content)
	assert.Equal(t, "a.txt", got[0].Metadata.FileName)
	assert.InDelta(t, 0.9, got[0].Score, 1e-9)
}

func TestQueryCache_MissOnDifferentNamespace(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	cache := store.QueryCache()

	require.NoError(t, cache.Put(ctx, "project_a", "hash-1", []domain.RetrievedChunk{{Content: "x"}}))

	_, hit, err := cache.Get(ctx, "project_b", "hash-1")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestQueryCache_Expiry(t *testing.T) {
	store, cleanup := setupTestStore(t, WithCacheTTL(time.Millisecond))
	defer cleanup()

	ctx := context.Background()
	cache := store.QueryCache()

	require.NoError(t, cache.Put(ctx, "demo_ns", "hash-1", []domain.RetrievedChunk{{Content: "x"}}))
	time.Sleep(10 * time.Millisecond)

	_, hit, err := cache.Get(ctx, "demo_ns", "hash-1")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestAnswerCache_PutAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	cache := store.AnswerCache()

	answer := domain.Answer{
		Text:      "The project serves 4,000 households.",
		Sources:   []string{"proposal.txt"},
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, cache.Put(ctx, "demo_ns", "hash-1", answer))

	got, hit, err := cache.Get(ctx, "demo_ns", "hash-1")
	require.NoError(t, err)
	assert.True(t, hit)
	require.NotNil(t, got)
	assert.Equal(t, answer.Text, got.Text)
	assert.Equal(t, answer.Sources, got.Sources)
}

func TestAnswerCache_Expiry(t *testing.T) {
	store, cleanup := setupTestStore(t, WithCacheTTL(time.Millisecond))
	defer cleanup()

	ctx := context.Background()
	cache := store.AnswerCache()

	require.NoError(t, cache.Put(ctx, "demo_ns", "hash-1", domain.Answer{Text: "stale"}))
	time.Sleep(10 * time.Millisecond)

	_, hit, err := cache.Get(ctx, "demo_ns", "hash-1")
	require.NoError(t, err)
	assert.False(t, hit)
}

// ==================== Stats Store Tests ====================

func TestStatsStore_GetAbsent(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	stats, err := store.StatsStore().Get(context.Background(), "demo_ns")
	require.NoError(t, err)
	assert.Zero(t, stats.DocumentsProcessed)
	assert.Zero(t, stats.ChunksStored)
	assert.True(t, stats.LastUpdate.IsZero())
}

func TestStatsStore_PutAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	statsStore := store.StatsStore()

	now := time.Now().UTC().Truncate(time.Second)
	stats := domain.ProjectStats{
		DocumentsProcessed: 3,
		ChunksStored:       42,
		LastUpdate:         now,
	}
	require.NoError(t, statsStore.Put(ctx, "demo_ns", stats))

	got, err := statsStore.Get(ctx, "demo_ns")
	require.NoError(t, err)
	assert.Equal(t, 3, got.DocumentsProcessed)
	assert.Equal(t, 42, got.ChunksStored)
	assert.True(t, now.Equal(got.LastUpdate))

	// Replace
	stats.ChunksStored = 50
	require.NoError(t, statsStore.Put(ctx, "demo_ns", stats))
	got, err = statsStore.Get(ctx, "demo_ns")
	require.NoError(t, err)
	assert.Equal(t, 50, got.ChunksStored)
}

// ==================== Helper Function Tests ====================

func TestFloat32SliceToBytes(t *testing.T) {
	tests := []struct {
		name   string
		input  []float32
		output []byte
	}{
		{
			name:   "empty slice",
			input:  []float32{},
			output: nil,
		},
		{
			name:   "nil slice",
			input:  nil,
			output: nil,
		},
		{
			name:   "single value",
			input:  []float32{1.0},
			output: []byte{0x00, 0x00, 0x80, 0x3f},
		},
		{
			name:  "multiple values",
			input: []float32{0.0, 1.0, -1.0},
			output: []byte{
				0x00, 0x00, 0x00, 0x00, // 0.0
				0x00, 0x00, 0x80, 0x3f, // 1.0
				0x00, 0x00, 0x80, 0xbf, // -1.0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := float32SliceToBytes(tt.input)
			assert.Equal(t, tt.output, result)
		})
	}
}

func TestFloat32Roundtrip(t *testing.T) {
	original := []float32{0.1, 0.2, 0.3, -0.5, 100.5, -200.75}

	bytes := float32SliceToBytes(original)
	roundtrip := bytesToFloat32Slice(bytes)

	assert.Equal(t, original, roundtrip)
}

func TestCosineSimilarity(t *testing.T) {
	score, ok := cosineSimilarity([]float32{1, 0}, []float32{1, 0})
	assert.True(t, ok)
	assert.InDelta(t, 1.0, score, 1e-9)

	score, ok = cosineSimilarity([]float32{1, 0}, []float32{0, 1})
	assert.True(t, ok)
	assert.InDelta(t, 0.0, score, 1e-9)

	score, ok = cosineSimilarity([]float32{1, 0}, []float32{-1, 0})
	assert.True(t, ok)
	assert.InDelta(t, -1.0, score, 1e-9)

	_, ok = cosineSimilarity([]float32{1, 0}, []float32{1, 0, 0})
	assert.False(t, ok)

	_, ok = cosineSimilarity([]float32{0, 0}, []float32{1, 0})
	assert.False(t, ok)
}
