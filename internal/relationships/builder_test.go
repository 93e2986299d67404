package relationships

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codeintel/internal/model"
)

func TestBuildImportsEdge(t *testing.T) {
	consumer := &model.Chunk{ID: "c1", Imports: []string{"helper"}, Content: "helper()"}
	producer := &model.Chunk{ID: "c2", Exports: []string{"helper"}, SymbolNames: []string{"helper"}, Content: "func helper() {}"}

	rels := Build([]*model.Chunk{consumer, producer})

	require.Len(t, rels, 1)
	assert.Equal(t, "c1", rels[0].SourceChunkID)
	assert.Equal(t, "c2", rels[0].TargetChunkID)
	assert.Equal(t, model.RelationshipImports, rels[0].Type)
}

func TestBuildReferencesEdgeWhenNoImport(t *testing.T) {
	defining := &model.Chunk{ID: "c1", SymbolNames: []string{"processData"}, Content: "func processData() {}"}
	using := &model.Chunk{ID: "c2", Content: "result := processData(x)"}

	rels := Build([]*model.Chunk{defining, using})

	require.Len(t, rels, 1)
	assert.Equal(t, "c2", rels[0].SourceChunkID)
	assert.Equal(t, "c1", rels[0].TargetChunkID)
	assert.Equal(t, model.RelationshipReferences, rels[0].Type)
}

func TestBuildSkipsShortSymbols(t *testing.T) {
	defining := &model.Chunk{ID: "c1", SymbolNames: []string{"go"}, Content: "func go() {}"}
	using := &model.Chunk{ID: "c2", Content: "go()"}

	rels := Build([]*model.Chunk{defining, using})

	assert.Empty(t, rels)
}

func TestBuildPrefersImportsOverReferences(t *testing.T) {
	consumer := &model.Chunk{ID: "c1", Imports: []string{"helper"}, Content: "helper()"}
	producer := &model.Chunk{ID: "c2", Exports: []string{"helper"}, SymbolNames: []string{"helper"}, Content: "func helper() {}"}

	rels := Build([]*model.Chunk{consumer, producer})

	var imports, references int
	for _, r := range rels {
		switch r.Type {
		case model.RelationshipImports:
			imports++
		case model.RelationshipReferences:
			references++
		}
	}
	assert.Equal(t, 1, imports)
	assert.Equal(t, 0, references)
}

func TestBuildDedupesEdges(t *testing.T) {
	defining := &model.Chunk{ID: "c1", SymbolNames: []string{"processData"}, Content: "func processData() {}"}
	using := &model.Chunk{ID: "c2", Content: "processData(); processData();"}

	rels := Build([]*model.Chunk{defining, using})

	assert.Len(t, rels, 1)
}

func TestBuildNoSelfEdges(t *testing.T) {
	solo := &model.Chunk{ID: "c1", Exports: []string{"x"}, Imports: []string{"x"}, SymbolNames: []string{"x"}, Content: "x()"}

	rels := Build([]*model.Chunk{solo})

	assert.Empty(t, rels)
}
