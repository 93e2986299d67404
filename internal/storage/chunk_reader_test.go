package storage

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codeintel/internal/model"
)

func makeTestChunk(id, filePath string) *model.Chunk {
	content := "func example() {}"
	return &model.Chunk{
		ID:            id,
		FilePath:      filePath,
		RepoID:        "repo1",
		Branch:        "main",
		Language:      "go",
		ChunkType:     model.ChunkFunction,
		SymbolName:    "example",
		SymbolNames:   []string{"example"},
		LineStart:     1,
		LineEnd:       1,
		Content:       content,
		ContentHash:   model.ComputeContentHash(content),
		Embedding:     makeTestEmbedding(model.DPad),
		FullTextIndex: content,
	}
}

func makeTestEmbedding(dim int) []float32 {
	emb := make([]float32, dim)
	for i := range emb {
		emb[i] = float32(i) / float32(dim)
	}
	return emb
}

func TestReadAllChunks(t *testing.T) {
	t.Parallel()

	t.Run("reads all chunks for a repo/branch", func(t *testing.T) {
		t.Parallel()
		db := NewTestDB(t)
		writer := NewChunkWriterWithDB(db)

		chunks := []*model.Chunk{
			makeTestChunk("chunk-1", "file1.go"),
			makeTestChunk("chunk-2", "file2.go"),
			makeTestChunk("chunk-3", "file1.go"),
		}
		require.NoError(t, writer.WriteChunks("repo1", "main", chunks))

		reader := NewChunkReaderWithDB(db)
		results, err := reader.ReadAllChunks("repo1", "main")
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})

	t.Run("preserves chunk data", func(t *testing.T) {
		t.Parallel()
		db := NewTestDB(t)
		writer := NewChunkWriterWithDB(db)

		original := makeTestChunk("test-chunk", "internal/test.go")
		original.LineStart = 10
		original.LineEnd = 20
		require.NoError(t, writer.WriteChunks("repo1", "main", []*model.Chunk{original}))

		reader := NewChunkReaderWithDB(db)
		results, err := reader.ReadAllChunks("repo1", "main")
		require.NoError(t, err)
		require.Len(t, results, 1)

		chunk := results[0]
		assert.Equal(t, original.ID, chunk.ID)
		assert.Equal(t, original.FilePath, chunk.FilePath)
		assert.Equal(t, original.ChunkType, chunk.ChunkType)
		assert.Equal(t, original.SymbolName, chunk.SymbolName)
		assert.Equal(t, original.Content, chunk.Content)
		assert.Equal(t, original.ContentHash, chunk.ContentHash)
		assert.Equal(t, original.LineStart, chunk.LineStart)
		assert.Equal(t, original.LineEnd, chunk.LineEnd)
		require.Equal(t, len(original.Embedding), len(chunk.Embedding))
		for i := range original.Embedding {
			assert.InDelta(t, original.Embedding[i], chunk.Embedding[i], 0.00001)
		}
	})

	t.Run("returns empty slice for empty database", func(t *testing.T) {
		t.Parallel()
		db := NewTestDB(t)
		reader := NewChunkReaderWithDB(db)

		results, err := reader.ReadAllChunks("repo1", "main")
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("scopes by repo and branch", func(t *testing.T) {
		t.Parallel()
		db := NewTestDB(t)
		writer := NewChunkWriterWithDB(db)

		c1 := makeTestChunk("chunk-1", "file.go")
		c1.RepoID, c1.Branch = "repo1", "main"
		c2 := makeTestChunk("chunk-2", "file.go")
		c2.RepoID, c2.Branch = "repo2", "main"

		require.NoError(t, writer.WriteChunks("repo1", "main", []*model.Chunk{c1}))
		require.NoError(t, writer.WriteChunks("repo2", "main", []*model.Chunk{c2}))

		reader := NewChunkReaderWithDB(db)
		results, err := reader.ReadAllChunks("repo1", "main")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "chunk-1", results[0].ID)
	})
}

func TestReadChunksByFile(t *testing.T) {
	t.Parallel()

	t.Run("filters by file path", func(t *testing.T) {
		t.Parallel()
		db := NewTestDB(t)
		writer := NewChunkWriterWithDB(db)

		chunks := []*model.Chunk{
			makeTestChunk("chunk-1", "file1.go"),
			makeTestChunk("chunk-2", "file1.go"),
			makeTestChunk("chunk-3", "file2.go"),
		}
		require.NoError(t, writer.WriteChunks("repo1", "main", chunks))

		reader := NewChunkReaderWithDB(db)
		results, err := reader.ReadChunksByFile("file1.go", "repo1", "main")
		require.NoError(t, err)
		assert.Len(t, results, 2)
		for _, c := range results {
			assert.Equal(t, "file1.go", c.FilePath)
		}
	})

	t.Run("orders by line_start", func(t *testing.T) {
		t.Parallel()
		db := NewTestDB(t)
		writer := NewChunkWriterWithDB(db)

		c3 := makeTestChunk("chunk-3", "file.go")
		c3.LineStart, c3.LineEnd = 30, 40
		c1 := makeTestChunk("chunk-1", "file.go")
		c1.LineStart, c1.LineEnd = 10, 20
		c2 := makeTestChunk("chunk-2", "file.go")
		c2.LineStart, c2.LineEnd = 20, 30

		require.NoError(t, writer.WriteChunks("repo1", "main", []*model.Chunk{c3, c1, c2}))

		reader := NewChunkReaderWithDB(db)
		results, err := reader.ReadChunksByFile("file.go", "repo1", "main")
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "chunk-1", results[0].ID)
		assert.Equal(t, "chunk-2", results[1].ID)
		assert.Equal(t, "chunk-3", results[2].ID)
	})

	t.Run("returns empty for non-existent file", func(t *testing.T) {
		t.Parallel()
		db := NewTestDB(t)
		writer := NewChunkWriterWithDB(db)
		require.NoError(t, writer.WriteChunks("repo1", "main", []*model.Chunk{makeTestChunk("chunk-1", "file1.go")}))

		reader := NewChunkReaderWithDB(db)
		results, err := reader.ReadChunksByFile("nonexistent.go", "repo1", "main")
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestReadChunksByType(t *testing.T) {
	t.Parallel()

	t.Run("filters by chunk type", func(t *testing.T) {
		t.Parallel()
		db := NewTestDB(t)
		writer := NewChunkWriterWithDB(db)

		fn1 := makeTestChunk("chunk-1", "file1.go")
		fn1.ChunkType = model.ChunkFunction
		cls := makeTestChunk("chunk-2", "file2.go")
		cls.ChunkType = model.ChunkClass
		fn2 := makeTestChunk("chunk-3", "file3.go")
		fn2.ChunkType = model.ChunkFunction

		require.NoError(t, writer.WriteChunks("repo1", "main", []*model.Chunk{fn1, cls, fn2}))

		reader := NewChunkReaderWithDB(db)
		results, err := reader.ReadChunksByType(model.ChunkFunction, "repo1", "main")
		require.NoError(t, err)
		assert.Len(t, results, 2)
		for _, c := range results {
			assert.Equal(t, model.ChunkFunction, c.ChunkType)
		}
	})
}

func TestReadChunksByIDs(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	writer := NewChunkWriterWithDB(db)
	chunks := []*model.Chunk{
		makeTestChunk("chunk-1", "file1.go"),
		makeTestChunk("chunk-2", "file2.go"),
		makeTestChunk("chunk-3", "file3.go"),
	}
	require.NoError(t, writer.WriteChunks("repo1", "main", chunks))

	reader := NewChunkReaderWithDB(db)
	results, err := reader.ReadChunksByIDs([]string{"chunk-1", "chunk-3"})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestReadWriteRoundTrip(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	writer := NewChunkWriterWithDB(db)

	chunks := make([]*model.Chunk, 500)
	for i := range chunks {
		c := makeTestChunk(fmt.Sprintf("chunk-%d", i), "file.go")
		c.LineStart = i * 10
		c.LineEnd = (i + 1) * 10
		chunks[i] = c
	}
	require.NoError(t, writer.WriteChunks("repo1", "main", chunks))

	reader := NewChunkReaderWithDB(db)
	results, err := reader.ReadAllChunks("repo1", "main")
	require.NoError(t, err)
	assert.Len(t, results, 500)
	assert.Equal(t, model.DPad, len(results[0].Embedding))
}
