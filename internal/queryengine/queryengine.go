// Package queryengine implements the Query Engine (C13): semantic,
// keyword, and hybrid search plus the symbol- and import-graph
// traversal operations (definitions, usages, import tree, circular
// dependencies, hub files, call graph) that read back what the
// indexing orchestrator wrote.
//
// An Engine holds no write path of its own and caches only within its
// own process lifetime, grounded on internal/graph/searcher.go's
// otter-backed file cache.
package queryengine

import (
	"database/sql"
	"fmt"

	"github.com/maypok86/otter"

	"github.com/kraklabs/codeintel/internal/embed"
	"github.com/kraklabs/codeintel/internal/importgraph"
	"github.com/kraklabs/codeintel/internal/model"
)

// graphCacheCapacity bounds the three lookup caches; each entry is a
// handful of string slices, so this is a generous ceiling rather than
// a tuned value.
const graphCacheCapacity = 4096

// Engine answers read-only queries against an already-indexed
// (repo_id, branch) database.
type Engine struct {
	db             *sql.DB
	provider       embed.Provider
	embeddingModel string

	treeCache  otter.Cache[string, *importgraph.Tree]
	cycleCache otter.Cache[string, []Cycle]
	hubCache   otter.Cache[string, []Hub]
}

// New builds an Engine over an already-open database connection and
// embedding provider. The caller retains ownership of both.
func New(db *sql.DB, provider embed.Provider, embeddingModel string) (*Engine, error) {
	treeCache, err := otter.MustBuilder[string, *importgraph.Tree](graphCacheCapacity).Build()
	if err != nil {
		return nil, fmt.Errorf("build import-tree cache: %w", err)
	}
	cycleCache, err := otter.MustBuilder[string, []Cycle](graphCacheCapacity).Build()
	if err != nil {
		return nil, fmt.Errorf("build cycle cache: %w", err)
	}
	hubCache, err := otter.MustBuilder[string, []Hub](graphCacheCapacity).Build()
	if err != nil {
		return nil, fmt.Errorf("build hub cache: %w", err)
	}

	return &Engine{
		db:             db,
		provider:       provider,
		embeddingModel: embeddingModel,
		treeCache:      treeCache,
		cycleCache:     cycleCache,
		hubCache:       hubCache,
	}, nil
}

// InvalidateAll drops every cached graph query. A caller that keeps an
// Engine alive across a re-index must call this first — the cache has
// no other way to learn the underlying file_imports rows changed,
// mirroring teacher's searcher.Reload clearing its file cache wholesale
// rather than tracking which entries a reload actually touched.
func (e *Engine) InvalidateAll() {
	e.treeCache.Clear()
	e.cycleCache.Clear()
	e.hubCache.Clear()
}

// Close releases the Engine's caches. It does not close the database
// connection or embedding provider, which the caller owns.
func (e *Engine) Close() {
	e.treeCache.Close()
	e.cycleCache.Close()
	e.hubCache.Close()
}

func chunksByID(chunks []*model.Chunk) map[string]*model.Chunk {
	out := make(map[string]*model.Chunk, len(chunks))
	for _, c := range chunks {
		out[c.ID] = c
	}
	return out
}

func dedupeStrings(vals []string) []string {
	seen := make(map[string]bool, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
