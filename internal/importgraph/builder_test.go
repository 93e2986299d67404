package importgraph

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBuilderTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE files (path TEXT, repo_id TEXT, branch TEXT);
		CREATE TABLE chunks (file_path TEXT, repo_id TEXT, branch TEXT, imports TEXT);
		CREATE TABLE file_imports (
			source_file TEXT, target_file TEXT, import_type TEXT,
			imported_symbols TEXT, repo_id TEXT, branch TEXT
		);
	`)
	require.NoError(t, err)
	return db
}

func TestBuilder_BuildAndStoreEdges(t *testing.T) {
	t.Parallel()

	db := setupBuilderTestDB(t)
	_, err := db.Exec(`INSERT INTO files (path, repo_id, branch) VALUES
		('src/main.ts', 'r1', 'main'),
		('src/utils.ts', 'r1', 'main')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO chunks (file_path, repo_id, branch, imports) VALUES
		('src/main.ts', 'r1', 'main', '["./utils"]')`)
	require.NoError(t, err)

	b := NewBuilder(db, "r1", "main")
	edges, err := b.BuildEdges()
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "src/main.ts", edges[0].SourceFile)
	assert.Equal(t, "src/utils.ts", edges[0].TargetFile)

	stored, err := b.StoreEdges(edges)
	require.NoError(t, err)
	assert.Equal(t, 1, stored)
}

func TestBuilder_GetImportTree(t *testing.T) {
	t.Parallel()

	db := setupBuilderTestDB(t)
	_, err := db.Exec(`INSERT INTO file_imports (source_file, target_file, import_type, imported_symbols, repo_id, branch) VALUES
		('a.ts', 'b.ts', 'static', '[]', 'r1', 'm'),
		('b.ts', 'c.ts', 'static', '[]', 'r1', 'm'),
		('x.ts', 'a.ts', 'static', '[]', 'r1', 'm')`)
	require.NoError(t, err)

	b := NewBuilder(db, "r1", "m")
	tree, err := b.GetImportTree("a.ts")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.ts"}, tree.DirectImports)
	assert.Equal(t, []string{"x.ts"}, tree.DirectImporters)
	assert.Equal(t, []string{"c.ts"}, tree.IndirectImports)
}

func TestBuilder_DetectCycles(t *testing.T) {
	t.Parallel()

	db := setupBuilderTestDB(t)
	_, err := db.Exec(`INSERT INTO file_imports (source_file, target_file, import_type, imported_symbols, repo_id, branch) VALUES
		('a.ts', 'b.ts', 'static', '[]', 'r1', 'm'),
		('b.ts', 'a.ts', 'static', '[]', 'r1', 'm')`)
	require.NoError(t, err)

	b := NewBuilder(db, "r1", "m")
	cycles, err := b.DetectCycles(10)
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, "direct", cycles[0].Type)
}

func TestBuilder_FindHubFiles(t *testing.T) {
	t.Parallel()

	db := setupBuilderTestDB(t)
	for _, src := range []string{"a.ts", "b.ts", "c.ts"} {
		_, err := db.Exec(`INSERT INTO file_imports (source_file, target_file, import_type, imported_symbols, repo_id, branch) VALUES (?, 'shared.ts', 'static', '[]', 'r1', 'm')`, src)
		require.NoError(t, err)
	}

	b := NewBuilder(db, "r1", "m")
	hubs, err := b.FindHubFiles(2, 10)
	require.NoError(t, err)
	require.Len(t, hubs, 1)
	assert.Equal(t, "shared.ts", hubs[0].FilePath)
	assert.Equal(t, 3, hubs[0].ImportCount)
}
