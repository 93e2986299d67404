package embedcache

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codeintel/internal/storage"
)

func newTestStore(t *testing.T) *storage.EmbeddingCacheStore {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.CreateSchema(db))
	return storage.NewEmbeddingCacheStore(db)
}

func TestCacheLookupMissThenHitFromMirror(t *testing.T) {
	store := newTestStore(t)
	cache, err := New(store)
	require.NoError(t, err)
	ctx := context.Background()

	// Written to the durable store only, so the mirror starts empty.
	emb := []float32{0.1, 0.2, 0.3}
	require.NoError(t, store.Store("hash-1", emb, 3, "model-a"))

	// First lookup hits the durable store and populates the mirror.
	results, err := cache.Lookup(ctx, []string{"hash-1"}, "model-a")
	require.NoError(t, err)
	require.Contains(t, results, "hash-1")
	assert.Equal(t, emb, results["hash-1"].Embedding)

	// Second lookup is served from the in-process mirror.
	results, err = cache.Lookup(ctx, []string{"hash-1"}, "model-a")
	require.NoError(t, err)
	require.Contains(t, results, "hash-1")
	assert.Equal(t, emb, results["hash-1"].Embedding)
}

func TestCacheLookupMissingHash(t *testing.T) {
	cache, err := New(newTestStore(t))
	require.NoError(t, err)
	ctx := context.Background()

	results, err := cache.Lookup(ctx, []string{"never-stored"}, "model-a")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCacheScopedByModel(t *testing.T) {
	cache, err := New(newTestStore(t))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, cache.Store(ctx, "hash-1", []float32{1, 2}, 2, "model-a"))

	results, err := cache.Lookup(ctx, []string{"hash-1"}, "model-b")
	require.NoError(t, err)
	assert.Empty(t, results)
}
