package callgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codeintel/internal/langregistry"
	"github.com/kraklabs/codeintel/internal/model"
)

func TestBuildResolvesSameFilePlainCall(t *testing.T) {
	reg := langregistry.Default()

	caller := &model.Chunk{
		ID: "c1", FilePath: "a.go", Language: "go",
		SymbolNames: []string{"caller"},
		Content:     "func caller() {\n\thelper()\n}",
	}
	callee := &model.Chunk{
		ID: "c2", FilePath: "a.go", Language: "go",
		SymbolNames: []string{"helper"},
		Content:     "func helper() {}",
	}

	rels, err := Build([]*model.Chunk{caller, callee}, reg)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, "c1", rels[0].SourceChunkID)
	assert.Equal(t, "c2", rels[0].TargetChunkID)
	assert.Equal(t, model.RelationshipCalls, rels[0].Type)
	assert.Equal(t, "helper", rels[0].Metadata["callee_name"])
}

func TestBuildDropsSelfEdges(t *testing.T) {
	reg := langregistry.Default()
	recursive := &model.Chunk{
		ID: "c1", FilePath: "a.go", Language: "go",
		SymbolNames: []string{"recurse"},
		Content:     "func recurse() {\n\trecurse()\n}",
	}

	rels, err := Build([]*model.Chunk{recursive}, reg)
	require.NoError(t, err)
	assert.Empty(t, rels)
}

func TestBuildUnresolvedCallDropped(t *testing.T) {
	reg := langregistry.Default()
	lonely := &model.Chunk{
		ID: "c1", FilePath: "a.go", Language: "go",
		SymbolNames: []string{"caller"},
		Content:     "func caller() {\n\tneverDefined()\n}",
	}

	rels, err := Build([]*model.Chunk{lonely}, reg)
	require.NoError(t, err)
	assert.Empty(t, rels)
}

func TestIsBuiltinCallFiltersKnownBuiltins(t *testing.T) {
	assert.True(t, isBuiltinCall(model.CallSite{CalleeName: "len"}))
	assert.True(t, isBuiltinCall(model.CallSite{CalleeName: "log", Receiver: "console", IsMethod: true}))
	assert.False(t, isBuiltinCall(model.CallSite{CalleeName: "processData"}))
}

func TestBuildUnsupportedLanguageSkipped(t *testing.T) {
	reg := langregistry.Default()
	chunk := &model.Chunk{ID: "c1", FilePath: "a.cs", Language: "csharp", Content: "void M() {}"}

	rels, err := Build([]*model.Chunk{chunk}, reg)
	require.NoError(t, err)
	assert.Empty(t, rels)
}
