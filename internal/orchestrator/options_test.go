package orchestrator

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearIndexerEnv(t *testing.T) {
	keys := []string{
		"DATABASE_URL", "REPO_PATH", "REPO_URL", "REPO_BRANCH",
		"EMBEDDING_MODEL", "BASE_REF", "CHANGED_FILES",
		"NESTED_FUNCTION_THRESHOLD", "FALLBACK_MAX_LINES",
		"FALLBACK_OVERLAP_LINES", "EMBED_BATCH",
	}
	for _, k := range keys {
		orig, had := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, orig)
			}
		})
	}
}

func TestLoadOptions_RequiredFieldsMissing(t *testing.T) {
	clearIndexerEnv(t)
	_, err := LoadOptions()
	require.Error(t, err)
}

func TestLoadOptions_DefaultsApplied(t *testing.T) {
	clearIndexerEnv(t)
	os.Setenv("DATABASE_URL", "test.db")
	os.Setenv("REPO_PATH", "/repo")
	os.Setenv("REPO_URL", "https://example.com/repo.git")

	opts, err := LoadOptions()
	require.NoError(t, err)

	assert.Equal(t, "main", opts.RepoBranch)
	assert.Equal(t, 50, opts.NestedThreshold)
	assert.Equal(t, 500, opts.FallbackMaxLines)
	assert.Equal(t, 50, opts.FallbackOverlap)
	assert.Equal(t, 64, opts.EmbedBatch)
	assert.False(t, opts.Incremental())
}

func TestOptions_IncrementalWhenBaseRefSet(t *testing.T) {
	clearIndexerEnv(t)
	os.Setenv("DATABASE_URL", "test.db")
	os.Setenv("REPO_PATH", "/repo")
	os.Setenv("REPO_URL", "https://example.com/repo.git")
	os.Setenv("BASE_REF", "main")

	opts, err := LoadOptions()
	require.NoError(t, err)
	assert.True(t, opts.Incremental())
}

func TestOptions_IncrementalWhenChangedFilesSet(t *testing.T) {
	clearIndexerEnv(t)
	os.Setenv("DATABASE_URL", "test.db")
	os.Setenv("REPO_PATH", "/repo")
	os.Setenv("REPO_URL", "https://example.com/repo.git")
	os.Setenv("CHANGED_FILES", "A:foo.go")

	opts, err := LoadOptions()
	require.NoError(t, err)
	assert.True(t, opts.Incremental())
}
