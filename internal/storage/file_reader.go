package storage

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/kraklabs/codeintel/internal/model"
)

// FileReader handles reading file records from SQLite.
type FileReader struct {
	db *sql.DB
}

// NewFileReader creates a FileReader instance.
func NewFileReader(db *sql.DB) *FileReader {
	return &FileReader{db: db}
}

// ListFiles returns every indexed file for a repo/branch.
func (r *FileReader) ListFiles(repoID, branch string) ([]*model.File, error) {
	rows, err := sq.Select("path", "repo_url", "language", "size", "last_modified").
		From("files").
		Where(sq.Eq{"repo_id": repoID, "branch": branch}).
		OrderBy("path").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var files []*model.File
	for rows.Next() {
		var path, repoURL string
		var language sql.NullString
		var size int64
		var lastModified string
		if err := rows.Scan(&path, &repoURL, &language, &size, &lastModified); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, &model.File{
			Path:         path,
			RepoID:       repoID,
			RepoURL:      repoURL,
			Branch:       branch,
			Language:     language.String,
			Size:         size,
			LastModified: lastModified,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating files: %w", err)
	}
	return files, nil
}

// GetFile reads a single file's record, or nil if not indexed.
func (r *FileReader) GetFile(path, repoID, branch string) (*model.File, error) {
	var repoURL string
	var language sql.NullString
	var size int64
	var lastModified string

	err := sq.Select("repo_url", "language", "size", "last_modified").
		From("files").
		Where(sq.Eq{"path": path, "repo_id": repoID, "branch": branch}).
		RunWith(r.db).
		QueryRow().
		Scan(&repoURL, &language, &size, &lastModified)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query file %s: %w", path, err)
	}

	return &model.File{
		Path:         path,
		RepoID:       repoID,
		RepoURL:      repoURL,
		Branch:       branch,
		Language:     language.String,
		Size:         size,
		LastModified: lastModified,
	}, nil
}

// Close releases resources held by the reader. The underlying DB
// connection is owned by the caller.
func (r *FileReader) Close() error {
	return nil
}
