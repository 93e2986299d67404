// Package embedcache implements the two-tier embedding cache (C9):
// SQLite is the durable, process-wide store; an in-process chromem-go
// collection mirrors hits seen during the current run so repeated
// content hashes (common with generated/template code) skip the
// round trip. The in-process tier is populated from, and never a
// substitute for, the SQLite row — dropping it changes performance,
// not correctness.
package embedcache

import (
	"context"
	"fmt"
	"sync"

	"github.com/philippgille/chromem-go"

	"github.com/kraklabs/codeintel/internal/model"
	"github.com/kraklabs/codeintel/internal/storage"
)

// Cache is the content-hash-keyed embedding cache. It is safe for
// concurrent use: the durable store accepts concurrent writers for
// the same hash (the first stored value is kept, counters monotonic),
// and the in-process mirror is guarded by its own lock.
type Cache struct {
	store      *storage.EmbeddingCacheStore
	db         *chromem.DB
	collection *chromem.Collection
	mu         sync.RWMutex
}

// New builds a Cache over an already-open database connection.
func New(db *storage.EmbeddingCacheStore) (*Cache, error) {
	cdb := chromem.NewDB()
	collection, err := cdb.CreateCollection("embedding-cache", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-process embedding mirror: %w", err)
	}
	return &Cache{store: db, db: cdb, collection: collection}, nil
}

func mirrorKey(contentHash, modelName string) string {
	return contentHash + "\x00" + modelName
}

// Lookup resolves a batch of content hashes against a model. It
// checks the in-process mirror first, then falls back to the durable
// store for whatever is still missing, populating the mirror with
// what it finds there.
func (c *Cache) Lookup(ctx context.Context, hashes []string, modelName string) (map[string]*model.EmbeddingCacheEntry, error) {
	result := make(map[string]*model.EmbeddingCacheEntry, len(hashes))
	var misses []string

	c.mu.RLock()
	for _, h := range hashes {
		if doc, err := c.collection.GetByID(ctx, mirrorKey(h, modelName)); err == nil {
			result[h] = &model.EmbeddingCacheEntry{
				ContentHash:  h,
				ModelName:    modelName,
				Embedding:    doc.Embedding,
				EmbeddingDim: len(doc.Embedding),
			}
		} else {
			misses = append(misses, h)
		}
	}
	c.mu.RUnlock()

	if len(misses) == 0 {
		return result, nil
	}

	found, err := c.store.Lookup(misses, modelName)
	if err != nil {
		return nil, fmt.Errorf("embedding cache lookup: %w", err)
	}
	for hash, entry := range found {
		result[hash] = entry
		c.mirror(ctx, hash, modelName, entry.Embedding)
	}
	return result, nil
}

// Store records a freshly computed embedding in both tiers. Cache
// writes are best-effort to the indexing pipeline: callers should log
// a failure here rather than abort indexing over it.
func (c *Cache) Store(ctx context.Context, contentHash string, embedding []float32, nativeDim int, modelName string) error {
	if err := c.store.Store(contentHash, embedding, nativeDim, modelName); err != nil {
		return fmt.Errorf("embedding cache store: %w", err)
	}
	c.mirror(ctx, contentHash, modelName, embedding)
	return nil
}

func (c *Cache) mirror(ctx context.Context, contentHash, modelName string, embedding []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.collection.AddDocument(ctx, chromem.Document{
		ID:        mirrorKey(contentHash, modelName),
		Embedding: embedding,
	})
}
