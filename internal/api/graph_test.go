package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codeintel/internal/importgraph"
	"github.com/kraklabs/codeintel/internal/model"
)

func TestFacadeImportTree(t *testing.T) {
	t.Parallel()
	f, db := newTestFacade(t)

	repoID := model.ComputeRepoID(testRepoURL)
	builder := importgraph.NewBuilder(db, repoID, "main")
	_, err := builder.StoreEdges([]importgraph.Edge{
		{SourceFile: "a.go", TargetFile: "b.go", ImportType: model.ImportStatic},
	})
	require.NoError(t, err)

	resp, err := f.ImportTree("b.go", map[string]interface{}{"repo_url": testRepoURL})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go"}, resp.Tree.DirectImporters)
}

func TestFacadeCircularDependencies(t *testing.T) {
	t.Parallel()
	f, db := newTestFacade(t)

	repoID := model.ComputeRepoID(testRepoURL)
	builder := importgraph.NewBuilder(db, repoID, "main")
	_, err := builder.StoreEdges([]importgraph.Edge{
		{SourceFile: "a.go", TargetFile: "a.go", ImportType: model.ImportStatic},
	})
	require.NoError(t, err)

	resp, err := f.CircularDependencies(map[string]interface{}{"repo_url": testRepoURL})
	require.NoError(t, err)
	require.Len(t, resp.Cycles, 1)
	assert.Equal(t, "direct", resp.Cycles[0].Type)
}

func TestFacadeHubFiles(t *testing.T) {
	t.Parallel()
	f, db := newTestFacade(t)

	repoID := model.ComputeRepoID(testRepoURL)
	builder := importgraph.NewBuilder(db, repoID, "main")
	_, err := builder.StoreEdges([]importgraph.Edge{
		{SourceFile: "a.go", TargetFile: "util.go", ImportType: model.ImportStatic},
		{SourceFile: "b.go", TargetFile: "util.go", ImportType: model.ImportStatic},
	})
	require.NoError(t, err)

	resp, err := f.HubFiles(map[string]interface{}{"repo_url": testRepoURL, "threshold": float64(2)})
	require.NoError(t, err)
	require.Len(t, resp.Hubs, 1)
	assert.Equal(t, "util.go", resp.Hubs[0].FilePath)
}

func TestFacadeCallGraph(t *testing.T) {
	t.Parallel()

	t.Run("rejects an unknown direction", func(t *testing.T) {
		t.Parallel()
		f, _ := newTestFacade(t)
		_, err := f.CallGraph("main", map[string]interface{}{
			"repo_url":  testRepoURL,
			"direction": "sideways",
		})
		assert.Error(t, err)
	})

	t.Run("traverses callees from the seed function", func(t *testing.T) {
		t.Parallel()
		f, db := newTestFacade(t)
		seedChunk(t, db, "a", "a.go", "main")
		seedChunk(t, db, "b", "b.go", "handle")

		resp, err := f.CallGraph("main", map[string]interface{}{"repo_url": testRepoURL})
		require.NoError(t, err)
		require.Len(t, resp.Nodes, 1) // no calls relationship seeded, so just the seed
	})
}
