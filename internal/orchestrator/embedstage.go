package orchestrator

import (
	"context"
	"log"

	"github.com/kraklabs/codeintel/internal/embed"
	"github.com/kraklabs/codeintel/internal/embedcache"
	"github.com/kraklabs/codeintel/internal/model"
)

// embedStats tracks cache/embedding outcomes for the final __RESULT__
// line.
type embedStats struct {
	CacheHits   int
	CacheMisses int
	Embedded    int
	Failed      int
}

// embedChunks fills in Embedding for every chunk, batch-querying the
// cache first and embedding only the misses, one content hash at a
// time regardless of how many chunks share it.
func embedChunks(ctx context.Context, cache *embedcache.Cache, provider embed.Provider, modelName string, batchSize int, chunks []*model.Chunk) embedStats {
	var stats embedStats
	if len(chunks) == 0 {
		return stats
	}

	byHash := make(map[string][]*model.Chunk)
	var hashes []string
	for _, c := range chunks {
		if _, ok := byHash[c.ContentHash]; !ok {
			hashes = append(hashes, c.ContentHash)
		}
		byHash[c.ContentHash] = append(byHash[c.ContentHash], c)
	}

	found, err := cache.Lookup(ctx, hashes, modelName)
	if err != nil {
		log.Printf("embedding cache lookup failed, treating all as misses: %v", err)
		found = map[string]*model.EmbeddingCacheEntry{}
	}

	var missHashes []string
	for _, h := range hashes {
		entry, ok := found[h]
		if !ok {
			missHashes = append(missHashes, h)
			continue
		}
		stats.CacheHits += len(byHash[h])
		embedding := model.PadEmbedding(entry.Embedding)
		for _, c := range byHash[h] {
			c.Embedding = embedding
		}
	}
	stats.CacheMisses = len(missHashes)

	if len(missHashes) == 0 {
		return stats
	}

	// One representative chunk's content per missing hash — identical
	// content hashes to the same embedding, so only one needs encoding.
	texts := make([]string, len(missHashes))
	for i, h := range missHashes {
		texts[i] = byHash[h][0].Content
	}

	vectors, failedHashes := embedWithRetry(ctx, provider, texts, batchSize)
	for i, h := range missHashes {
		vec := vectors[i]
		if vec == nil {
			stats.Failed += len(byHash[h])
			continue
		}
		if err := cache.Store(ctx, h, vec, len(vec), modelName); err != nil {
			log.Printf("embedding cache store failed for %s: %v", h, err)
		}
		padded := model.PadEmbedding(vec)
		for _, c := range byHash[h] {
			c.Embedding = padded
		}
		stats.Embedded += len(byHash[h])
	}
	_ = failedHashes

	return stats
}

// embedWithRetry embeds texts in batches of batchSize. A failed batch
// is retried once at half size; a second failure drops that half's
// texts entirely (vectors[i] stays nil) as an EmbedFailure — chunks
// without a vector are never inserted.
// The halving is one level deep, not recursive: a batch of size 1 that
// fails twice is simply skipped rather than retried forever.
func embedWithRetry(ctx context.Context, provider embed.Provider, texts []string, batchSize int) ([][]float32, int) {
	out := make([][]float32, len(texts))
	failed := 0

	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		vecs, err := provider.Embed(ctx, batch, embed.EmbedModePassage)
		if err == nil {
			copy(out[start:end], vecs)
			continue
		}
		log.Printf("embed batch [%d:%d) failed, retrying at half size: %v", start, end, err)

		half := (len(batch) + 1) / 2
		failed += embedHalfOnce(ctx, provider, batch[:half], out[start:start+half])
		if half < len(batch) {
			failed += embedHalfOnce(ctx, provider, batch[half:], out[start+half:end])
		}
	}

	return out, failed
}

// embedHalfOnce makes a single embed attempt for one half of a failed
// batch, writing results into dst and returning the count left nil on
// failure. No further halving is attempted.
func embedHalfOnce(ctx context.Context, provider embed.Provider, texts []string, dst [][]float32) int {
	vecs, err := provider.Embed(ctx, texts, embed.EmbedModePassage)
	if err != nil {
		log.Printf("embed half-batch of %d failed on retry, skipping: %v", len(texts), err)
		return len(texts)
	}
	copy(dst, vecs)
	return 0
}
