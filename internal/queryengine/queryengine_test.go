package queryengine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codeintel/internal/embed"
	"github.com/kraklabs/codeintel/internal/model"
	"github.com/kraklabs/codeintel/internal/storage"
)

const (
	testRepo   = "repo1"
	testBranch = "main"
)

func newTestEngine(t *testing.T) (*Engine, *embed.MockProvider) {
	t.Helper()
	db := storage.NewTestDB(t)
	provider := embed.NewMockProvider()
	e, err := New(db, provider, "mock-model")
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e, provider
}

func testEmbedding(seed int) []float32 {
	raw := make([]float32, 384)
	for i := range raw {
		raw[i] = float32((i+seed)%97) / 97.0
	}
	return model.PadEmbedding(raw)
}

func makeChunk(id, filePath, symbol string, chunkType model.ChunkType, exports []string, seed int) *model.Chunk {
	content := "func " + symbol + "() {}"
	names := []string{symbol}
	return &model.Chunk{
		ID:            id,
		FilePath:      filePath,
		RepoID:        testRepo,
		Branch:        testBranch,
		Language:      "go",
		ChunkType:     chunkType,
		SymbolName:    symbol,
		SymbolNames:   names,
		Exports:       exports,
		LineStart:     1,
		LineEnd:       3,
		Content:       content,
		ContentHash:   model.ComputeContentHash(content),
		Embedding:     testEmbedding(seed),
		FullTextIndex: content,
	}
}
