package orchestrator

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/kraklabs/codeintel/internal/chunker"
	"github.com/kraklabs/codeintel/internal/embed"
	"github.com/kraklabs/codeintel/internal/embedcache"
	"github.com/kraklabs/codeintel/internal/git"
	"github.com/kraklabs/codeintel/internal/langregistry"
	"github.com/kraklabs/codeintel/internal/model"
	"github.com/kraklabs/codeintel/internal/storage"
)

// parseChangedFiles parses the CHANGED_FILES env var format: a
// comma-separated list of "A:path", "M:path", "D:path", or
// "R:old->new" entries, for callers that pass an explicit change list
// instead of a BASE_REF to diff against.
func parseChangedFiles(raw string) []model.FileChange {
	var changes []model.FileChange
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		code, rest, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}
		switch strings.ToUpper(code) {
		case "A":
			changes = append(changes, model.FileChange{Path: rest, Status: model.ChangeAdded})
		case "M":
			changes = append(changes, model.FileChange{Path: rest, Status: model.ChangeModified})
		case "D":
			changes = append(changes, model.FileChange{Path: rest, Status: model.ChangeDeleted})
		case "R":
			oldPath, newPath, ok := strings.Cut(rest, "->")
			if !ok {
				continue
			}
			changes = append(changes, model.FileChange{Path: oldPath, Status: model.ChangeDeleted})
			changes = append(changes, model.FileChange{Path: newPath, OldPath: oldPath, Status: model.ChangeAdded})
		}
	}
	return changes
}

// RunIncremental executes the incremental-mode pipeline: resolve the
// change list (explicit or via git diff against BaseRef),
// delete chunks for removed/modified files, re-chunk and re-embed
// added/modified files, write only the touched rows, then rebuild the
// graphs over the repo/branch's full chunk set.
func RunIncremental(ctx context.Context, opts *Options) (*Result, error) {
	start := time.Now()
	repoID := model.ComputeRepoID(opts.RepoURL)

	db, err := openDatabase(opts.DatabaseURL)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var changes []model.FileChange
	if opts.ChangedFiles != "" {
		changes = parseChangedFiles(opts.ChangedFiles)
	} else {
		ops := git.NewOperations()
		changes, err = ops.ChangedFiles(opts.RepoPath, opts.BaseRef)
		if err != nil {
			return nil, err
		}
	}

	registry := langregistry.Default()
	c := chunker.New(registry, chunker.Options{
		NestedThreshold:  opts.NestedThreshold,
		FallbackMaxLines: opts.FallbackMaxLines,
		FallbackOverlap:  opts.FallbackOverlap,
	})

	cw := storage.NewChunkWriterWithDB(db)

	var toIndex []string
	deleted := 0
	for _, ch := range changes {
		path := ch.Path
		if !IsIndexable(path) {
			continue
		}
		switch ch.Status {
		case model.ChangeDeleted:
			if err := cw.DeleteChunksByFile(path, repoID, opts.RepoBranch); err != nil {
				return nil, err
			}
			deleted++
		case model.ChangeAdded, model.ChangeModified:
			if err := cw.DeleteChunksByFile(path, repoID, opts.RepoBranch); err != nil {
				return nil, err
			}
			toIndex = append(toIndex, path)
		}
	}

	var files []*model.File
	var chunks []*model.Chunk
	skipped := 0
	for _, relPath := range toIndex {
		f, fc, err := processOneFile(c, registry, repoID, opts.RepoURL, opts.RepoBranch, opts.RepoPath, relPath)
		if err != nil {
			skipped++
			continue
		}
		files = append(files, f)
		chunks = append(chunks, fc...)
	}

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

	if err := writeIncremental(db, files, chunks); err != nil {
		return nil, err
	}

	allChunks, err := loadAllChunks(db, repoID, opts.RepoBranch)
	if err != nil {
		return nil, err
	}

	gStats, err := rebuildGraphs(db, repoID, opts.RepoBranch, registry, allChunks)
	if err != nil {
		return nil, err
	}

	return &Result{
		Mode:             "incremental",
		FilesProcessed:   len(files),
		FilesSkipped:     skipped,
		ChunksInserted:   len(chunks),
		ChunksDeleted:    deleted,
		CacheHits:        eStats.CacheHits,
		CacheMisses:      eStats.CacheMisses,
		EmbeddingsFailed: eStats.Failed,
		ImportEdges:      gStats.ImportEdges,
		Relationships:    gStats.Relationships,
		ElapsedSeconds:   time.Since(start).Seconds(),
	}, nil
}

func loadAllChunks(db *sql.DB, repoID, branch string) ([]*model.Chunk, error) {
	reader := storage.NewChunkReaderWithDB(db)
	return reader.ReadAllChunks(repoID, branch)
}
