package cliquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgsMapBuildsFromPairs(t *testing.T) {
	m := argsMap("repo_url", "https://example.com/widget.git", "limit", 10)
	assert.Equal(t, "https://example.com/widget.git", m["repo_url"])
	assert.Equal(t, 10, m["limit"])
}

func TestArgsMapIgnoresTrailingUnpairedKey(t *testing.T) {
	m := argsMap("repo_url", "x", "dangling")
	assert.Equal(t, "x", m["repo_url"])
	assert.Len(t, m, 1)
}

func TestOpenFacadeRequiresDatabaseURL(t *testing.T) {
	flagDatabaseURL = ""
	_, _, err := openFacade()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database-url")
}
