package cliindex

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyFlagOverridesOnlySetsNonEmptyFlags(t *testing.T) {
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("REPO_URL")
	t.Setenv("REPO_BRANCH", "from-env")

	flagDatabaseURL = "./codeintel.db"
	flagRepoURL = ""
	flagRepoBranch = ""
	defer func() {
		flagDatabaseURL = ""
		flagRepoURL = ""
		flagRepoBranch = ""
		os.Unsetenv("DATABASE_URL")
	}()

	applyFlagOverrides()

	assert.Equal(t, "./codeintel.db", os.Getenv("DATABASE_URL"))
	assert.Empty(t, os.Getenv("REPO_URL"))
	assert.Equal(t, "from-env", os.Getenv("REPO_BRANCH"))
}
