package queryengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codeintel/internal/importgraph"
	"github.com/kraklabs/codeintel/internal/model"
)

func storeImports(t *testing.T, e *Engine, edges []importgraph.Edge) {
	t.Helper()
	builder := importgraph.NewBuilder(e.db, testRepo, testBranch)
	_, err := builder.StoreEdges(edges)
	require.NoError(t, err)
}

func TestImportTree(t *testing.T) {
	t.Parallel()

	t.Run("reports direct imports and importers", func(t *testing.T) {
		t.Parallel()
		e, _ := newTestEngine(t)
		storeImports(t, e, []importgraph.Edge{
			{SourceFile: "a.go", TargetFile: "b.go", ImportType: model.ImportStatic},
			{SourceFile: "b.go", TargetFile: "c.go", ImportType: model.ImportStatic},
		})

		tree, err := e.ImportTree(testRepo, testBranch, "b.go")
		require.NoError(t, err)
		assert.Equal(t, []string{"c.go"}, tree.DirectImports)
		assert.Equal(t, []string{"a.go"}, tree.DirectImporters)
	})

	t.Run("caches repeated lookups", func(t *testing.T) {
		t.Parallel()
		e, _ := newTestEngine(t)
		storeImports(t, e, []importgraph.Edge{
			{SourceFile: "a.go", TargetFile: "b.go", ImportType: model.ImportStatic},
		})

		first, err := e.ImportTree(testRepo, testBranch, "a.go")
		require.NoError(t, err)

		// Clearing the underlying edges directly (bypassing InvalidateAll)
		// proves the second call is served from cache, not re-queried.
		storeImports(t, e, nil)

		second, err := e.ImportTree(testRepo, testBranch, "a.go")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestCircularDependencies(t *testing.T) {
	t.Parallel()

	t.Run("finds an indirect cycle a->b->c->a", func(t *testing.T) {
		t.Parallel()
		e, _ := newTestEngine(t)
		storeImports(t, e, []importgraph.Edge{
			{SourceFile: "a.go", TargetFile: "b.go", ImportType: model.ImportStatic},
			{SourceFile: "b.go", TargetFile: "c.go", ImportType: model.ImportStatic},
			{SourceFile: "c.go", TargetFile: "a.go", ImportType: model.ImportStatic},
		})

		cycles, err := e.CircularDependencies(testRepo, testBranch, 0)
		require.NoError(t, err)
		require.Len(t, cycles, 1)
		assert.Equal(t, "indirect", cycles[0].Type)
		assert.ElementsMatch(t, []string{"a.go", "b.go", "c.go"}, cycles[0].Nodes)
	})

	t.Run("adding a direct back-edge surfaces a second, direct cycle", func(t *testing.T) {
		t.Parallel()
		e, _ := newTestEngine(t)
		storeImports(t, e, []importgraph.Edge{
			{SourceFile: "a.go", TargetFile: "b.go", ImportType: model.ImportStatic},
			{SourceFile: "b.go", TargetFile: "c.go", ImportType: model.ImportStatic},
			{SourceFile: "c.go", TargetFile: "a.go", ImportType: model.ImportStatic},
			{SourceFile: "b.go", TargetFile: "a.go", ImportType: model.ImportStatic},
		})

		cycles, err := e.CircularDependencies(testRepo, testBranch, 0)
		require.NoError(t, err)
		require.Len(t, cycles, 2)

		var sawDirect, sawIndirect bool
		for _, c := range cycles {
			switch c.Type {
			case "direct":
				sawDirect = true
				assert.ElementsMatch(t, []string{"a.go", "b.go"}, c.Nodes)
			case "indirect":
				sawIndirect = true
			}
		}
		assert.True(t, sawDirect)
		assert.True(t, sawIndirect)
	})

	t.Run("a self-import is a direct cycle of one node", func(t *testing.T) {
		t.Parallel()
		e, _ := newTestEngine(t)
		storeImports(t, e, []importgraph.Edge{
			{SourceFile: "a.go", TargetFile: "a.go", ImportType: model.ImportStatic},
		})

		cycles, err := e.CircularDependencies(testRepo, testBranch, 0)
		require.NoError(t, err)
		require.Len(t, cycles, 1)
		assert.Equal(t, "direct", cycles[0].Type)
		assert.Equal(t, []string{"a.go"}, cycles[0].Nodes)
	})

	t.Run("acyclic graph reports nothing", func(t *testing.T) {
		t.Parallel()
		e, _ := newTestEngine(t)
		storeImports(t, e, []importgraph.Edge{
			{SourceFile: "a.go", TargetFile: "b.go", ImportType: model.ImportStatic},
			{SourceFile: "b.go", TargetFile: "c.go", ImportType: model.ImportStatic},
		})

		cycles, err := e.CircularDependencies(testRepo, testBranch, 0)
		require.NoError(t, err)
		assert.Empty(t, cycles)
	})
}

func TestHubFiles(t *testing.T) {
	t.Parallel()

	t.Run("reports files at or above the import threshold, sorted by count desc", func(t *testing.T) {
		t.Parallel()
		e, _ := newTestEngine(t)
		storeImports(t, e, []importgraph.Edge{
			{SourceFile: "a.go", TargetFile: "util.go", ImportType: model.ImportStatic},
			{SourceFile: "b.go", TargetFile: "util.go", ImportType: model.ImportStatic},
			{SourceFile: "c.go", TargetFile: "util.go", ImportType: model.ImportStatic},
			{SourceFile: "a.go", TargetFile: "rare.go", ImportType: model.ImportStatic},
		})

		hubs, err := e.HubFiles(testRepo, testBranch, 2, 10)
		require.NoError(t, err)
		require.Len(t, hubs, 1)
		assert.Equal(t, "util.go", hubs[0].FilePath)
		assert.Equal(t, 3, hubs[0].ImportCount)
		assert.ElementsMatch(t, []string{"a.go", "b.go", "c.go"}, hubs[0].Importers)
	})

	t.Run("below-threshold files are excluded", func(t *testing.T) {
		t.Parallel()
		e, _ := newTestEngine(t)
		storeImports(t, e, []importgraph.Edge{
			{SourceFile: "a.go", TargetFile: "rare.go", ImportType: model.ImportStatic},
		})

		hubs, err := e.HubFiles(testRepo, testBranch, 2, 10)
		require.NoError(t, err)
		assert.Empty(t, hubs)
	})
}

func TestInvalidateAll(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t)
	storeImports(t, e, []importgraph.Edge{
		{SourceFile: "a.go", TargetFile: "b.go", ImportType: model.ImportStatic},
	})

	first, err := e.ImportTree(testRepo, testBranch, "a.go")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.go"}, first.DirectImports)

	storeImports(t, e, []importgraph.Edge{
		{SourceFile: "a.go", TargetFile: "c.go", ImportType: model.ImportStatic},
	})
	e.InvalidateAll()

	second, err := e.ImportTree(testRepo, testBranch, "a.go")
	require.NoError(t, err)
	assert.Equal(t, []string{"c.go"}, second.DirectImports)
}
