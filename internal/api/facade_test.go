package api

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codeintel/internal/embed"
	"github.com/kraklabs/codeintel/internal/model"
	"github.com/kraklabs/codeintel/internal/queryengine"
	"github.com/kraklabs/codeintel/internal/storage"
)

const testRepoURL = "https://example.com/widget.git"

func newTestFacade(t *testing.T) (*Facade, *sql.DB) {
	t.Helper()
	db := storage.NewTestDB(t)
	provider := embed.NewMockProvider()
	engine, err := queryengine.New(db, provider, "mock-model")
	require.NoError(t, err)
	t.Cleanup(engine.Close)
	return NewFacade(db, engine, "mock-model"), db
}

func seedChunk(t *testing.T, db *sql.DB, id, filePath, symbol string) {
	t.Helper()
	fileWriter := storage.NewFileWriter(db)
	require.NoError(t, fileWriter.WriteFile(&model.File{
		Path:         filePath,
		RepoID:       model.ComputeRepoID(testRepoURL),
		RepoURL:      testRepoURL,
		Branch:       "main",
		Language:     "go",
		Size:         10,
		LastModified: "2026-01-01T00:00:00Z",
	}))

	content := "func " + symbol + "() {}"
	chunk := &model.Chunk{
		ID:            id,
		FilePath:      filePath,
		RepoID:        model.ComputeRepoID(testRepoURL),
		Branch:        "main",
		Language:      "go",
		ChunkType:     model.ChunkFunction,
		SymbolName:    symbol,
		SymbolNames:   []string{symbol},
		LineStart:     1,
		LineEnd:       3,
		Content:       content,
		ContentHash:   model.ComputeContentHash(content),
		Embedding:     model.PadEmbedding(make([]float32, 384)),
		FullTextIndex: content,
	}
	writer := storage.NewChunkWriterWithDB(db)
	require.NoError(t, writer.WriteChunks(model.ComputeRepoID(testRepoURL), "main", []*model.Chunk{chunk}))
}

func TestHealth(t *testing.T) {
	t.Parallel()
	f, _ := newTestFacade(t)
	resp := f.Health(context.Background())
	require.Equal(t, "ok", resp.Status)
	require.True(t, resp.StoreReachable)
	require.Equal(t, "mock-model", resp.Model)
}
