package configchunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codeintel/internal/model"
)

func TestIsConfigFile(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path string
		want bool
	}{
		{"tsconfig.json", true},
		{"tsconfig.build.json", true},
		{"package.json", true},
		{"go.mod", true},
		{".eslintrc.yml", true},
		{".github/workflows/ci.yml", true},
		{".npmrc", true},
		{"vite.config.ts", true},
		{"main.go", false},
		{"README.md", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsConfigFile(tc.path), tc.path)
	}
}

func TestExtractTSConfig(t *testing.T) {
	t.Parallel()

	content := `{
		// strict project
		"compilerOptions": {
			"strict": true,
			"target": "ES2022",
			"module": "NodeNext",
		}
	}`
	meta := extractTSConfig(content)
	require.NotNil(t, meta.StrictMode)
	assert.True(t, *meta.StrictMode)
	assert.Equal(t, "ES2022", meta.TargetVersion)
	assert.Equal(t, "NodeNext", meta.ModuleType)
}

func TestExtractPackageJSON(t *testing.T) {
	t.Parallel()

	content := `{
		"type": "module",
		"dependencies": {"react": "^18.0.0", "left-pad": "^1.0.0"},
		"devDependencies": {"typescript": "^5.0.0", "eslint": "^9.0.0"}
	}`
	meta := extractPackageJSON(content)
	assert.Contains(t, meta.Dependencies, "react")
	assert.Contains(t, meta.Dependencies, "left-pad")
	assert.Contains(t, meta.DevDependencies, "typescript")
	assert.Equal(t, "esm", meta.ModuleType)
}

func TestExtractGoMod(t *testing.T) {
	t.Parallel()

	content := "module example.com/foo\n\ngo 1.25\n\nrequire (\n\tgithub.com/stretchr/testify v1.11.1\n\tgithub.com/spf13/cobra v1.10.1\n)\n"
	meta := extractGoMod(content)
	assert.Equal(t, "1.25", meta.TargetVersion)
	assert.Contains(t, meta.Dependencies, "github.com/stretchr/testify")
	assert.Contains(t, meta.Dependencies, "github.com/spf13/cobra")
}

func TestExtractCargo(t *testing.T) {
	t.Parallel()

	content := "[package]\nname = \"demo\"\nedition = \"2021\"\n\n[dependencies]\nserde = \"1\"\ntokio = \"1\"\n"
	meta := extractCargo(content)
	assert.Equal(t, "edition 2021", meta.TargetVersion)
	assert.ElementsMatch(t, []string{"serde", "tokio"}, meta.Dependencies)
}

func TestChunk_GoModSymbolNames(t *testing.T) {
	t.Parallel()

	content := "module example.com/foo\n\ngo 1.25\n"
	chunks := Chunk(content, "go.mod")
	require.Len(t, chunks, 1)
	assert.Equal(t, model.ChunkConfig, chunks[0].RawChunk.ChunkType)
	assert.Contains(t, chunks[0].RawChunk.SymbolNames, "go.mod")
	assert.Contains(t, chunks[0].RawChunk.SymbolNames, "go:1.25")
}

func TestChunk_EmptyContent(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Chunk("   \n", "package.json"))
}
