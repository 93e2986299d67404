package queryengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codeintel/internal/model"
	"github.com/kraklabs/codeintel/internal/storage"
)

func TestDefinitions(t *testing.T) {
	t.Parallel()

	t.Run("finds direct definitions by symbol name", func(t *testing.T) {
		t.Parallel()
		e, _ := newTestEngine(t)
		writer := storage.NewChunkWriterWithDB(e.db)

		chunks := []*model.Chunk{
			makeChunk("c1", "a.go", "Widget", model.ChunkFunction, nil, 1),
			makeChunk("c2", "b.go", "Gadget", model.ChunkFunction, nil, 2),
		}
		require.NoError(t, writer.WriteChunks(testRepo, testBranch, chunks))

		defs, err := e.Definitions(testRepo, testBranch, "Widget", false, 10)
		require.NoError(t, err)
		require.Len(t, defs, 1)
		assert.Equal(t, "c1", defs[0].Chunk.ID)
		assert.False(t, defs[0].IsReexport)
	})

	t.Run("resolves re-exports through an imports edge", func(t *testing.T) {
		t.Parallel()
		e, _ := newTestEngine(t)
		writer := storage.NewChunkWriterWithDB(e.db)

		origin := makeChunk("c1", "origin.go", "Widget", model.ChunkFunction, nil, 1)
		reexport := makeChunk("c2", "barrel.go", "index", model.ChunkModule, []string{"Widget"}, 2)
		require.NoError(t, writer.WriteChunks(testRepo, testBranch, []*model.Chunk{origin, reexport}))

		relStore := storage.NewRelationshipStore(e.db)
		rels := []*model.Relationship{
			{SourceChunkID: "c2", TargetChunkID: "c1", Type: model.RelationshipImports, Metadata: map[string]any{"imported_symbol": "Widget"}},
		}
		require.NoError(t, relStore.ReplaceForChunks([]string{"c1", "c2"}, rels))

		defs, err := e.Definitions(testRepo, testBranch, "Widget", true, 10)
		require.NoError(t, err)
		require.Len(t, defs, 2)

		var sawReexport bool
		for _, d := range defs {
			if d.IsReexport {
				sawReexport = true
				assert.Equal(t, "c2", d.Chunk.ID)
				assert.Equal(t, "origin.go", d.ReexportSource)
			}
		}
		assert.True(t, sawReexport)
	})

	t.Run("skips re-export resolution when not requested", func(t *testing.T) {
		t.Parallel()
		e, _ := newTestEngine(t)
		writer := storage.NewChunkWriterWithDB(e.db)

		origin := makeChunk("c1", "origin.go", "Widget", model.ChunkFunction, nil, 1)
		reexport := makeChunk("c2", "barrel.go", "index", model.ChunkModule, []string{"Widget"}, 2)
		require.NoError(t, writer.WriteChunks(testRepo, testBranch, []*model.Chunk{origin, reexport}))

		relStore := storage.NewRelationshipStore(e.db)
		rels := []*model.Relationship{
			{SourceChunkID: "c2", TargetChunkID: "c1", Type: model.RelationshipImports, Metadata: map[string]any{"imported_symbol": "Widget"}},
		}
		require.NoError(t, relStore.ReplaceForChunks([]string{"c1", "c2"}, rels))

		defs, err := e.Definitions(testRepo, testBranch, "Widget", false, 10)
		require.NoError(t, err)
		require.Len(t, defs, 1)
		assert.Equal(t, "c1", defs[0].Chunk.ID)
	})

	t.Run("zero limit returns every definition", func(t *testing.T) {
		t.Parallel()
		e, _ := newTestEngine(t)
		writer := storage.NewChunkWriterWithDB(e.db)

		chunks := []*model.Chunk{
			makeChunk("c1", "a.go", "Widget", model.ChunkFunction, nil, 1),
		}
		require.NoError(t, writer.WriteChunks(testRepo, testBranch, chunks))

		defs, err := e.Definitions(testRepo, testBranch, "Widget", false, 0)
		require.NoError(t, err)
		assert.Len(t, defs, 1)
	})
}
