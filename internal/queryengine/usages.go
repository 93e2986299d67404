package queryengine

import (
	"fmt"

	"github.com/kraklabs/codeintel/internal/model"
	"github.com/kraklabs/codeintel/internal/storage"
)

// Usage is one chunk whose calls/imports/references edge targets a
// chunk defining the queried symbol.
type Usage struct {
	Chunk     *model.Chunk
	UsageType model.RelationshipType
	IsDynamic bool
}

// Usages finds every chunk with an outgoing calls/imports/references
// edge to a chunk that defines symbol.
func (e *Engine) Usages(repoID, branch, symbol string, limit int) ([]Usage, error) {
	reader := storage.NewChunkReaderWithDB(e.db)
	defs, err := reader.ReadChunksBySymbol(symbol, repoID, branch)
	if err != nil {
		return nil, fmt.Errorf("read chunks by symbol: %w", err)
	}
	if len(defs) == 0 {
		return nil, nil
	}

	defIDs := make([]string, len(defs))
	for i, d := range defs {
		defIDs[i] = d.ID
	}

	relStore := storage.NewRelationshipStore(e.db)
	rels, err := relStore.IncomingTo(defIDs, "")
	if err != nil {
		return nil, fmt.Errorf("incoming relationships: %w", err)
	}
	if len(rels) == 0 {
		return nil, nil
	}

	sourceIDs := make([]string, 0, len(rels))
	for _, r := range rels {
		sourceIDs = append(sourceIDs, r.SourceChunkID)
	}
	sources, err := reader.ReadChunksByIDs(dedupeStrings(sourceIDs))
	if err != nil {
		return nil, fmt.Errorf("load usage chunks: %w", err)
	}
	byID := chunksByID(sources)

	out := make([]Usage, 0, len(rels))
	for _, r := range rels {
		c, ok := byID[r.SourceChunkID]
		if !ok {
			continue
		}
		isDynamic, _ := r.Metadata["is_dynamic"].(bool)
		out = append(out, Usage{Chunk: c, UsageType: r.Type, IsDynamic: isDynamic})
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
