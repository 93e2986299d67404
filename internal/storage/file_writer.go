package storage

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/kraklabs/codeintel/internal/model"
)

// FileWriter handles writing file records to SQLite.
type FileWriter struct {
	db *sql.DB
}

// NewFileWriter creates a FileWriter instance.
// DB must have schema already created via CreateSchema().
func NewFileWriter(db *sql.DB) *FileWriter {
	return &FileWriter{db: db}
}

// WriteFile writes or updates a single file record.
func (w *FileWriter) WriteFile(f *model.File) error {
	_, err := sq.Insert("files").
		Columns("path", "repo_id", "repo_url", "branch", "language", "size", "last_modified").
		Values(f.Path, f.RepoID, f.RepoURL, f.Branch, nullableString(f.Language), f.Size, f.LastModified).
		Options("OR REPLACE").
		RunWith(w.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to write file %s: %w", f.Path, err)
	}
	return nil
}

// WriteFilesBatch writes multiple file records in a single transaction.
func (w *FileWriter) WriteFilesBatch(files []*model.File) error {
	if len(files) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO files (path, repo_id, repo_url, branch, language, size, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, f := range files {
		if _, err := stmt.Exec(f.Path, f.RepoID, f.RepoURL, f.Branch, nullableString(f.Language), f.Size, f.LastModified); err != nil {
			return fmt.Errorf("failed to insert file %s: %w", f.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	return nil
}

// DeleteFile removes a file and cascades to its chunks.
func (w *FileWriter) DeleteFile(path, repoID, branch string) error {
	_, err := sq.Delete("files").
		Where(sq.Eq{"path": path, "repo_id": repoID, "branch": branch}).
		RunWith(w.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to delete file %s: %w", path, err)
	}
	return nil
}

// Close releases resources held by the writer. The underlying DB
// connection is owned by the caller and is not closed here.
func (w *FileWriter) Close() error {
	return nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

