package orchestrator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsIndexable(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"src/main.go", true},
		{"src/app.ts", true},
		{"README.md", true},
		{"package.json", true},
		{"node_modules/lib/index.js", false},
		{"vendor/pkg/pkg.go", false},
		{".git/HEAD", false},
		{"dist/bundle.min.js", false},
		{"yarn.lock", false},
		{"image.png", false},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, IsIndexable(c.path), c.path)
	}
}

func TestDiscoverFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "node_modules", "lib.js"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	files, err := DiscoverFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go"}, files)
}

func TestDiscoverFiles_SizeCap(t *testing.T) {
	dir := t.TempDir()
	big := make([]byte, MaxFileSize+1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "huge.go"), big, 0644))

	files, err := DiscoverFiles(dir)
	require.NoError(t, err)
	assert.Empty(t, files)
}
