package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacadeStats(t *testing.T) {
	t.Parallel()
	f, db := newTestFacade(t)
	seedChunk(t, db, "c1", "widget.go", "Widget")

	resp, err := f.Stats(map[string]interface{}{"repo_url": testRepoURL})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Stats.FileCount)
	assert.Equal(t, 1, resp.Stats.ChunkCount)
}

func TestFacadeRepos(t *testing.T) {
	t.Parallel()
	f, db := newTestFacade(t)
	seedChunk(t, db, "c1", "widget.go", "Widget")

	resp, err := f.Repos()
	require.NoError(t, err)
	require.Len(t, resp.Repos, 1)
	assert.Equal(t, testRepoURL, resp.Repos[0].RepoURL)
}

func TestFacadeDeleteIndex(t *testing.T) {
	t.Parallel()

	t.Run("removes the repo's records", func(t *testing.T) {
		t.Parallel()
		f, db := newTestFacade(t)
		seedChunk(t, db, "c1", "widget.go", "Widget")

		resp, err := f.DeleteIndex(testRepoURL, map[string]interface{}{})
		require.NoError(t, err)
		assert.True(t, resp.Deleted)

		stats, err := f.Stats(map[string]interface{}{"repo_url": testRepoURL})
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Stats.FileCount)
	})

	t.Run("requires repo_url", func(t *testing.T) {
		t.Parallel()
		f, _ := newTestFacade(t)
		_, err := f.DeleteIndex("", map[string]interface{}{})
		assert.Error(t, err)
	})
}
