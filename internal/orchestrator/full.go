package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kraklabs/codeintel/internal/chunker"
	"github.com/kraklabs/codeintel/internal/embed"
	"github.com/kraklabs/codeintel/internal/embedcache"
	"github.com/kraklabs/codeintel/internal/langregistry"
	"github.com/kraklabs/codeintel/internal/model"
	"github.com/kraklabs/codeintel/internal/storage"
)

// parallelThreshold mirrors the worker-pool fallback rule: below this
// many files, the per-file overhead of fan-out isn't worth it.
const parallelThreshold = 10

// RunFull executes the full-mode pipeline: discover every
// indexable file under RepoPath, chunk and augment each one, resolve
// embeddings through the cache, replace the repo/branch's stored
// chunks wholesale, then rebuild the import/reference/call graphs.
func RunFull(ctx context.Context, opts *Options) (*Result, error) {
	start := time.Now()
	repoID := model.ComputeRepoID(opts.RepoURL)

	db, err := openDatabase(opts.DatabaseURL)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	relPaths, err := DiscoverFiles(opts.RepoPath)
	if err != nil {
		return nil, err
	}

	registry := langregistry.Default()
	c := chunker.New(registry, chunker.Options{
		NestedThreshold:  opts.NestedThreshold,
		FallbackMaxLines: opts.FallbackMaxLines,
		FallbackOverlap:  opts.FallbackOverlap,
	})

	files, chunks, skipped := processFilesParallel(c, registry, repoID, opts.RepoURL, opts.RepoBranch, opts.RepoPath, relPaths)

	provider, err := embed.NewProvider(embed.Config{Model: opts.EmbeddingModel})
	if err != nil {
		return nil, err
	}
	defer provider.Close()
	if err := provider.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("initialize embedding provider: %w", err)
	}

	cacheStore := storage.NewEmbeddingCacheStore(db)
	cache, err := embedcache.New(cacheStore)
	if err != nil {
		return nil, err
	}

	eStats := embedChunks(ctx, cache, provider, opts.EmbeddingModel, opts.EmbedBatch, chunks)
	chunks = dropUnembedded(chunks)

	if err := writeFull(db, repoID, opts.RepoBranch, files, chunks); err != nil {
		return nil, err
	}

	gStats, err := rebuildGraphs(db, repoID, opts.RepoBranch, registry, chunks)
	if err != nil {
		return nil, err
	}

	return &Result{
		Mode:            "full",
		FilesProcessed:  len(files),
		FilesSkipped:    skipped,
		ChunksInserted:  len(chunks),
		CacheHits:       eStats.CacheHits,
		CacheMisses:     eStats.CacheMisses,
		EmbeddingsFailed: eStats.Failed,
		ImportEdges:     gStats.ImportEdges,
		Relationships:   gStats.Relationships,
		ElapsedSeconds:  time.Since(start).Seconds(),
	}, nil
}

// dropUnembedded filters out chunks that never got a vector; an
// embedding-less chunk is never inserted.
func dropUnembedded(chunks []*model.Chunk) []*model.Chunk {
	out := make([]*model.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if c.Embedding != nil {
			out = append(out, c)
		}
	}
	return out
}

// processFilesParallel fans work out over an errgroup-bounded pool for
// large trees and falls back to sequential processing for small ones,
// the same shape as a parse-files pipeline moving between bulk and
// single-file modes.
func processFilesParallel(c *chunker.Chunker, registry *langregistry.Registry, repoID, repoURL, branch, rootDir string, relPaths []string) ([]*model.File, []*model.Chunk, int) {
	if len(relPaths) < parallelThreshold {
		return processFilesSequential(c, registry, repoID, repoURL, branch, rootDir, relPaths)
	}

	numWorkers := runtime.NumCPU()
	if numWorkers < 1 {
		numWorkers = 1
	}

	var mu sync.Mutex
	var files []*model.File
	var allChunks []*model.Chunk
	var skipped int32

	g := new(errgroup.Group)
	g.SetLimit(numWorkers)

	for _, rp := range relPaths {
		rp := rp
		g.Go(func() error {
			f, chunks, err := processOneFile(c, registry, repoID, repoURL, branch, rootDir, rp)
			if err != nil {
				atomic.AddInt32(&skipped, 1)
				return nil
			}
			mu.Lock()
			files = append(files, f)
			allChunks = append(allChunks, chunks...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return files, allChunks, int(skipped)
}

func processFilesSequential(c *chunker.Chunker, registry *langregistry.Registry, repoID, repoURL, branch, rootDir string, relPaths []string) ([]*model.File, []*model.Chunk, int) {
	var files []*model.File
	var allChunks []*model.Chunk
	skipped := 0

	for _, rp := range relPaths {
		f, chunks, err := processOneFile(c, registry, repoID, repoURL, branch, rootDir, rp)
		if err != nil {
			skipped++
			continue
		}
		files = append(files, f)
		allChunks = append(allChunks, chunks...)
	}

	return files, allChunks, skipped
}

func processOneFile(c *chunker.Chunker, registry *langregistry.Registry, repoID, repoURL, branch, rootDir, relPath string) (*model.File, []*model.Chunk, error) {
	fullPath := filepath.Join(rootDir, relPath)
	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, nil, err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, nil, err
	}

	f, chunks := processFile(c, registry, repoID, repoURL, branch, relPath, content, info.ModTime())
	return f, chunks, nil
}
