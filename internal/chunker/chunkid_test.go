package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkID_Deterministic(t *testing.T) {
	a := ChunkID("repo1", "main", "src/foo.go", 10, 20)
	b := ChunkID("repo1", "main", "src/foo.go", 10, 20)
	assert.Equal(t, a, b)
}

func TestChunkID_DiffersByLocation(t *testing.T) {
	a := ChunkID("repo1", "main", "src/foo.go", 10, 20)
	b := ChunkID("repo1", "main", "src/foo.go", 10, 21)
	assert.NotEqual(t, a, b)
}

func TestChunkID_DiffersByRepo(t *testing.T) {
	a := ChunkID("repo1", "main", "src/foo.go", 10, 20)
	b := ChunkID("repo2", "main", "src/foo.go", 10, 20)
	assert.NotEqual(t, a, b)
}
