package orchestrator

import (
	"database/sql"
	"fmt"

	"github.com/kraklabs/codeintel/internal/callgraph"
	"github.com/kraklabs/codeintel/internal/importgraph"
	"github.com/kraklabs/codeintel/internal/langregistry"
	"github.com/kraklabs/codeintel/internal/model"
	"github.com/kraklabs/codeintel/internal/relationships"
	"github.com/kraklabs/codeintel/internal/storage"
)

// writeFull persists the full set of files/chunks for one repo/branch,
// replacing whatever was there before.
func writeFull(db *sql.DB, repoID, branch string, files []*model.File, chunks []*model.Chunk) error {
	fw := storage.NewFileWriter(db)
	if err := fw.WriteFilesBatch(files); err != nil {
		return fmt.Errorf("write files: %w", err)
	}

	cw := storage.NewChunkWriterWithDB(db)
	if err := cw.WriteChunks(repoID, branch, chunks); err != nil {
		return fmt.Errorf("write chunks: %w", err)
	}
	return nil
}

// writeIncremental persists only the touched files/chunks, keeping
// everything else already stored for the repo/branch untouched.
func writeIncremental(db *sql.DB, files []*model.File, chunks []*model.Chunk) error {
	fw := storage.NewFileWriter(db)
	if err := fw.WriteFilesBatch(files); err != nil {
		return fmt.Errorf("write files: %w", err)
	}

	cw := storage.NewChunkWriterWithDB(db)
	if err := cw.WriteChunksIncremental(chunks); err != nil {
		return fmt.Errorf("write chunks: %w", err)
	}
	return nil
}

// rebuildGraphs runs C6/C7/C8 over the current full chunk set of one
// repo/branch. Each stage deletes and replaces only the edges scoped to
// the chunks it touches, so it is safe to call after either a full or
// an incremental write.
func rebuildGraphs(db *sql.DB, repoID, branch string, registry *langregistry.Registry, allChunks []*model.Chunk) (graphStats, error) {
	var stats graphStats

	importBuilder := importgraph.NewBuilder(db, repoID, branch)
	edges, err := importBuilder.BuildEdges()
	if err != nil {
		return stats, fmt.Errorf("build import edges: %w", err)
	}
	stored, err := importBuilder.StoreEdges(edges)
	if err != nil {
		return stats, fmt.Errorf("store import edges: %w", err)
	}
	stats.ImportEdges = stored

	chunkIDs := make([]string, len(allChunks))
	for i, c := range allChunks {
		chunkIDs[i] = c.ID
	}

	relStore := storage.NewRelationshipStore(db)

	refRels := relationships.Build(allChunks)
	callRels, err := callgraph.Build(allChunks, registry)
	if err != nil {
		return stats, fmt.Errorf("build call graph: %w", err)
	}

	combined := append(refRels, callRels...)
	if err := relStore.ReplaceForChunks(chunkIDs, combined); err != nil {
		return stats, fmt.Errorf("store relationships: %w", err)
	}
	stats.Relationships = len(combined)

	return stats, nil
}

// graphStats summarizes the C6/C7/C8 rebuild for the final result.
type graphStats struct {
	ImportEdges   int
	Relationships int
}
