package queryengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codeintel/internal/model"
	"github.com/kraklabs/codeintel/internal/storage"
)

func TestCallGraph(t *testing.T) {
	t.Parallel()

	t.Run("follows callees to the requested depth", func(t *testing.T) {
		t.Parallel()
		e, _ := newTestEngine(t)
		writer := storage.NewChunkWriterWithDB(e.db)

		a := makeChunk("a", "a.go", "main", model.ChunkFunction, nil, 1)
		b := makeChunk("b", "b.go", "handle", model.ChunkFunction, nil, 2)
		c := makeChunk("c", "c.go", "validate", model.ChunkFunction, nil, 3)
		require.NoError(t, writer.WriteChunks(testRepo, testBranch, []*model.Chunk{a, b, c}))

		relStore := storage.NewRelationshipStore(e.db)
		rels := []*model.Relationship{
			{SourceChunkID: "a", TargetChunkID: "b", Type: model.RelationshipCalls, Metadata: map[string]any{"callee_name": "handle", "line": 10}},
			{SourceChunkID: "b", TargetChunkID: "c", Type: model.RelationshipCalls, Metadata: map[string]any{"callee_name": "validate", "line": 20}},
		}
		require.NoError(t, relStore.ReplaceForChunks([]string{"a", "b", "c"}, rels))

		result, err := e.CallGraph(testRepo, testBranch, "main", DirectionCallees, 1, 0)
		require.NoError(t, err)
		require.Len(t, result.Nodes, 2) // seed + "b", not "c" at depth 1
		require.Len(t, result.Edges, 1)
		assert.Equal(t, "handle", result.Edges[0].CalleeName)
		assert.Equal(t, 10, result.Edges[0].Line)

		deeper, err := e.CallGraph(testRepo, testBranch, "main", DirectionCallees, 2, 0)
		require.NoError(t, err)
		assert.Len(t, deeper.Nodes, 3)
		assert.Len(t, deeper.Edges, 2)
	})

	t.Run("follows callers when direction is callers", func(t *testing.T) {
		t.Parallel()
		e, _ := newTestEngine(t)
		writer := storage.NewChunkWriterWithDB(e.db)

		a := makeChunk("a", "a.go", "main", model.ChunkFunction, nil, 1)
		b := makeChunk("b", "b.go", "handle", model.ChunkFunction, nil, 2)
		require.NoError(t, writer.WriteChunks(testRepo, testBranch, []*model.Chunk{a, b}))

		relStore := storage.NewRelationshipStore(e.db)
		rels := []*model.Relationship{
			{SourceChunkID: "a", TargetChunkID: "b", Type: model.RelationshipCalls, Metadata: map[string]any{"callee_name": "handle"}},
		}
		require.NoError(t, relStore.ReplaceForChunks([]string{"a", "b"}, rels))

		result, err := e.CallGraph(testRepo, testBranch, "handle", DirectionCallers, 1, 0)
		require.NoError(t, err)
		require.Len(t, result.Nodes, 2)
		require.Len(t, result.Edges, 1)
		assert.Equal(t, "a", result.Edges[0].SourceChunkID)
	})

	t.Run("reads metadata line as float64 the way storage round-trips it", func(t *testing.T) {
		t.Parallel()
		e, _ := newTestEngine(t)
		writer := storage.NewChunkWriterWithDB(e.db)

		a := makeChunk("a", "a.go", "main", model.ChunkFunction, nil, 1)
		b := makeChunk("b", "b.go", "handle", model.ChunkFunction, nil, 2)
		require.NoError(t, writer.WriteChunks(testRepo, testBranch, []*model.Chunk{a, b}))

		relStore := storage.NewRelationshipStore(e.db)
		rels := []*model.Relationship{
			{SourceChunkID: "a", TargetChunkID: "b", Type: model.RelationshipCalls, Metadata: map[string]any{"callee_name": "handle", "line": 42}},
		}
		require.NoError(t, relStore.ReplaceForChunks([]string{"a", "b"}, rels))

		result, err := e.CallGraph(testRepo, testBranch, "main", DirectionCallees, 1, 0)
		require.NoError(t, err)
		require.Len(t, result.Edges, 1)
		assert.Equal(t, 42, result.Edges[0].Line)
	})

	t.Run("bounds traversal by node limit", func(t *testing.T) {
		t.Parallel()
		e, _ := newTestEngine(t)
		writer := storage.NewChunkWriterWithDB(e.db)

		a := makeChunk("a", "a.go", "main", model.ChunkFunction, nil, 1)
		b := makeChunk("b", "b.go", "one", model.ChunkFunction, nil, 2)
		c := makeChunk("c", "c.go", "two", model.ChunkFunction, nil, 3)
		require.NoError(t, writer.WriteChunks(testRepo, testBranch, []*model.Chunk{a, b, c}))

		relStore := storage.NewRelationshipStore(e.db)
		rels := []*model.Relationship{
			{SourceChunkID: "a", TargetChunkID: "b", Type: model.RelationshipCalls, Metadata: map[string]any{"callee_name": "one"}},
			{SourceChunkID: "a", TargetChunkID: "c", Type: model.RelationshipCalls, Metadata: map[string]any{"callee_name": "two"}},
		}
		require.NoError(t, relStore.ReplaceForChunks([]string{"a", "b", "c"}, rels))

		result, err := e.CallGraph(testRepo, testBranch, "main", DirectionCallees, 2, 2)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(result.Nodes), 2)
	})

	t.Run("unknown function returns an empty result", func(t *testing.T) {
		t.Parallel()
		e, _ := newTestEngine(t)
		result, err := e.CallGraph(testRepo, testBranch, "missing", DirectionBoth, 1, 0)
		require.NoError(t, err)
		assert.Empty(t, result.Nodes)
		assert.Empty(t, result.Edges)
	})
}
