package orchestrator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"
)

func TestAddWatchDirsSkipsIgnoredDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "objects"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "pkg"), 0o755))

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, addWatchDirs(watcher, root))

	watched := watcher.WatchList()
	for _, dir := range watched {
		require.NotContains(t, dir, ".git")
		require.NotContains(t, dir, "node_modules")
	}
	require.Contains(t, watched, filepath.Join(root, "src"))
}
