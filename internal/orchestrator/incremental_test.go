package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kraklabs/codeintel/internal/model"
)

func TestParseChangedFiles(t *testing.T) {
	changes := parseChangedFiles("A:src/new.go,M:src/old.go,D:src/gone.go,R:src/from.go->src/to.go")

	want := []model.FileChange{
		{Path: "src/new.go", Status: model.ChangeAdded},
		{Path: "src/old.go", Status: model.ChangeModified},
		{Path: "src/gone.go", Status: model.ChangeDeleted},
		{Path: "src/from.go", Status: model.ChangeDeleted},
		{Path: "src/to.go", OldPath: "src/from.go", Status: model.ChangeAdded},
	}
	assert.Equal(t, want, changes)
}

func TestParseChangedFiles_EmptyAndMalformed(t *testing.T) {
	assert.Empty(t, parseChangedFiles(""))
	assert.Empty(t, parseChangedFiles("garbage"))
	assert.Empty(t, parseChangedFiles("R:onlyold"))
}
