package storage

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/kraklabs/codeintel/internal/model"
)

// ChunkWriter handles writing chunks to SQLite. Uses transactions for
// atomic updates and delete-then-insert for upsert semantics, mirroring
// the sync pattern the FTS5/vec0 virtual tables already require.
type ChunkWriter struct {
	db     *sql.DB
	ownsDB bool
}

// NewChunkWriter opens or creates a SQLite database for chunk storage,
// creating the schema if needed. The returned writer owns the
// connection and closes it on Close.
func NewChunkWriter(dbPath string) (*ChunkWriter, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	version, err := GetSchemaVersion(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to check schema version: %w", err)
	}

	if version == "0" {
		if err := CreateSchema(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &ChunkWriter{db: db, ownsDB: true}, nil
}

// NewChunkWriterWithDB wraps an already-open connection. The caller
// retains ownership; Close is then a no-op on the connection.
func NewChunkWriterWithDB(db *sql.DB) *ChunkWriter {
	return &ChunkWriter{db: db, ownsDB: false}
}

// WriteChunks performs a full replace of all chunks for a repo/branch.
// Use for initial indexing or complete rebuilds.
func (w *ChunkWriter) WriteChunks(repoID, branch string, chunks []*model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := sq.Delete("chunks").
		Where(sq.Eq{"repo_id": repoID, "branch": branch}).
		RunWith(tx).
		Exec(); err != nil {
		return fmt.Errorf("failed to clear chunks: %w", err)
	}

	if err := insertChunks(tx, chunks); err != nil {
		return err
	}
	if err := UpdateVectorIndex(tx, chunks); err != nil {
		return fmt.Errorf("failed to update vector index: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// WriteChunksIncremental deletes existing chunks for the touched files,
// then inserts the replacement set. Use for per-file reindexing.
func (w *ChunkWriter) WriteChunksIncremental(chunks []*model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	type fileKey struct{ path, repoID, branch string }
	seen := map[fileKey]bool{}
	for _, chunk := range chunks {
		seen[fileKey{chunk.FilePath, chunk.RepoID, chunk.Branch}] = true
	}

	for k := range seen {
		if _, err := sq.Delete("chunks").
			Where(sq.Eq{"file_path": k.path, "repo_id": k.repoID, "branch": k.branch}).
			RunWith(tx).
			Exec(); err != nil {
			return fmt.Errorf("failed to delete chunks for file %s: %w", k.path, err)
		}
	}

	if err := insertChunks(tx, chunks); err != nil {
		return err
	}
	if err := UpdateVectorIndex(tx, chunks); err != nil {
		return fmt.Errorf("failed to update vector index: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteChunksByFile removes every chunk belonging to one file, used
// when a file is deleted or renamed during incremental indexing.
func (w *ChunkWriter) DeleteChunksByFile(filePath, repoID, branch string) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := sq.Select("chunk_id").
		From("chunks").
		Where(sq.Eq{"file_path": filePath, "repo_id": repoID, "branch": branch}).
		RunWith(tx).
		Query()
	if err != nil {
		return fmt.Errorf("failed to list chunks for %s: %w", filePath, err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan chunk id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()

	if _, err := sq.Delete("chunks").
		Where(sq.Eq{"file_path": filePath, "repo_id": repoID, "branch": branch}).
		RunWith(tx).
		Exec(); err != nil {
		return fmt.Errorf("failed to delete chunks for %s: %w", filePath, err)
	}
	if err := DeleteVectorsByFile(tx, ids); err != nil {
		return fmt.Errorf("failed to delete vectors for %s: %w", filePath, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

func insertChunks(tx *sql.Tx, chunks []*model.Chunk) error {
	now := time.Now().UTC().Format(time.RFC3339)
	for _, chunk := range chunks {
		embBytes := SerializeEmbedding(chunk.Embedding)

		_, err := sq.Insert("chunks").
			Columns(
				"chunk_id", "file_path", "repo_id", "branch", "language", "chunk_type",
				"symbol_name", "symbol_names", "imports", "exports",
				"line_start", "line_end", "content", "content_hash",
				"embedding", "full_text_index", "created_at", "updated_at",
			).
			Values(
				chunk.ID, chunk.FilePath, chunk.RepoID, chunk.Branch, nullableString(chunk.Language), string(chunk.ChunkType),
				nullableString(chunk.SymbolName), EncodeStringArray(chunk.SymbolNames), EncodeStringArray(chunk.Imports), EncodeStringArray(chunk.Exports),
				chunk.LineStart, chunk.LineEnd, chunk.Content, chunk.ContentHash,
				embBytes, chunk.FullTextIndex, now, now,
			).
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", chunk.ID, err)
		}
	}
	return nil
}

// Close releases the writer's connection if it owns one.
func (w *ChunkWriter) Close() error {
	if !w.ownsDB {
		return nil
	}
	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
