package git

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kraklabs/codeintel/internal/model"
)

func TestParseNameStatus_AddModifyDelete(t *testing.T) {
	raw := "A\x00new.go\x00M\x00changed.go\x00D\x00gone.go\x00"
	changes := parseNameStatus(raw)

	want := []model.FileChange{
		{Path: "new.go", Status: model.ChangeAdded},
		{Path: "changed.go", Status: model.ChangeModified},
		{Path: "gone.go", Status: model.ChangeDeleted},
	}
	assert.Equal(t, want, changes)
}

func TestParseNameStatus_RenameExpandsToDeleteAndAdd(t *testing.T) {
	raw := "R100\x00old.go\x00new.go\x00"
	changes := parseNameStatus(raw)

	want := []model.FileChange{
		{Path: "old.go", Status: model.ChangeDeleted},
		{Path: "new.go", OldPath: "old.go", Status: model.ChangeAdded},
	}
	assert.Equal(t, want, changes)
}

func TestParseNameStatus_UnrecognizedCodeFallsBackToModified(t *testing.T) {
	raw := "T\x00typechanged.go\x00"
	changes := parseNameStatus(raw)

	want := []model.FileChange{
		{Path: "typechanged.go", Status: model.ChangeModified},
	}
	assert.Equal(t, want, changes)
}

func TestParseNameStatus_Empty(t *testing.T) {
	assert.Empty(t, parseNameStatus(""))
}
