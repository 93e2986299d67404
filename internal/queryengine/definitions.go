package queryengine

import (
	"fmt"

	"github.com/kraklabs/codeintel/internal/model"
	"github.com/kraklabs/codeintel/internal/storage"
)

// Definition is one symbol-defining (or re-exporting) chunk.
type Definition struct {
	Chunk          *model.Chunk
	IsReexport     bool
	ReexportSource string // defining file path; only set when IsReexport
}

// Definitions finds chunks whose symbol_names contains symbol, plus,
// when includeReexports is set, chunks that export the symbol and
// carry an imports/references edge to one of those defining chunks.
func (e *Engine) Definitions(repoID, branch, symbol string, includeReexports bool, limit int) ([]Definition, error) {
	reader := storage.NewChunkReaderWithDB(e.db)
	direct, err := reader.ReadChunksBySymbol(symbol, repoID, branch)
	if err != nil {
		return nil, fmt.Errorf("read chunks by symbol: %w", err)
	}

	defs := make([]Definition, 0, len(direct))
	for _, c := range direct {
		defs = append(defs, Definition{Chunk: c})
	}

	if includeReexports {
		reexports, err := e.findReexports(repoID, branch, symbol, direct)
		if err != nil {
			return nil, err
		}
		defs = append(defs, reexports...)
	}

	if limit > 0 && len(defs) > limit {
		defs = defs[:limit]
	}
	return defs, nil
}

// findReexports locates chunks that re-export symbol: they declare it
// in Exports (not SymbolNames, since they don't define it) and have an
// imports or references edge reaching one of the chunks that actually
// defines it.
func (e *Engine) findReexports(repoID, branch, symbol string, direct []*model.Chunk) ([]Definition, error) {
	if len(direct) == 0 {
		return nil, nil
	}
	directByID := chunksByID(direct)

	reader := storage.NewChunkReaderWithDB(e.db)
	all, err := reader.ReadAllChunks(repoID, branch)
	if err != nil {
		return nil, fmt.Errorf("read all chunks: %w", err)
	}

	var candidates []*model.Chunk
	for _, c := range all {
		if _, isDirect := directByID[c.ID]; isDirect {
			continue
		}
		if containsString(c.Exports, symbol) {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	candidateIDs := make([]string, len(candidates))
	candidateByID := chunksByID(candidates)
	for i, c := range candidates {
		candidateIDs[i] = c.ID
	}

	relStore := storage.NewRelationshipStore(e.db)
	imports, err := relStore.OutgoingFrom(candidateIDs, model.RelationshipImports)
	if err != nil {
		return nil, fmt.Errorf("outgoing imports: %w", err)
	}
	references, err := relStore.OutgoingFrom(candidateIDs, model.RelationshipReferences)
	if err != nil {
		return nil, fmt.Errorf("outgoing references: %w", err)
	}

	var out []Definition
	seen := map[string]bool{}
	for _, rel := range append(imports, references...) {
		target, ok := directByID[rel.TargetChunkID]
		if !ok {
			continue
		}
		source, ok := candidateByID[rel.SourceChunkID]
		if !ok || seen[source.ID] {
			continue
		}
		seen[source.ID] = true
		out = append(out, Definition{Chunk: source, IsReexport: true, ReexportSource: target.FilePath})
	}
	return out, nil
}

func containsString(vals []string, target string) bool {
	for _, v := range vals {
		if v == target {
			return true
		}
	}
	return false
}
