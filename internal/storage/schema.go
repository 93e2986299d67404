package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/kraklabs/codeintel/internal/model"
)

// CreateSchema creates all tables, indexes, and virtual tables for the
// unified index. Uses a transaction for the core tables, then creates
// the virtual tables (chunks_vec, chunks_fts) outside it since SQLite
// requires virtual table DDL to run without an open transaction.
//
// Must be called with SQLite PRAGMA foreign_keys = ON.
// sqlite-vec must be initialized before calling this (InitVectorExtension).
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	tables := []struct {
		name string
		ddl  string
	}{
		{"files", createFilesTable},
		{"chunks", createChunksTable},
		{"relationships", createRelationshipsTable},
		{"file_imports", createFileImportsTable},
		{"embedding_cache", createEmbeddingCacheTable},
		{"cache_metadata", createCacheMetadataTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range getAllIndexes() {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}

	if err := CreateVectorIndex(db, model.DPad); err != nil {
		return fmt.Errorf("failed to create vector index: %w", err)
	}

	if err := CreateFTSIndex(db); err != nil {
		return fmt.Errorf("failed to create FTS index: %w", err)
	}

	if err := createFTSTriggers(db); err != nil {
		return fmt.Errorf("failed to create FTS triggers: %w", err)
	}

	tx, err = db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin metadata transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	bootstrapSQL := `
		INSERT INTO cache_metadata (key, value, updated_at) VALUES
			('schema_version', '3.0', ?),
			('embedding_dimensions', '1536', ?)
	`
	if _, err := tx.Exec(bootstrapSQL, now, now); err != nil {
		return fmt.Errorf("failed to bootstrap cache_metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit metadata transaction: %w", err)
	}

	return nil
}

// GetSchemaVersion retrieves the schema version from cache_metadata.
// Returns "0" if the table doesn't exist (new database).
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='cache_metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check cache_metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM cache_metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in cache_metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

// UpdateSchemaVersion sets or updates the schema version in cache_metadata.
func UpdateSchemaVersion(db *sql.DB, version string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO cache_metadata (key, value, updated_at)
		VALUES ('schema_version', ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	_, err := db.Exec(query, version, now)
	if err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}
	return nil
}

// Table DDL constants

const createFilesTable = `
CREATE TABLE files (
    path          TEXT NOT NULL,
    repo_id       TEXT NOT NULL,
    repo_url      TEXT NOT NULL DEFAULT '',  -- denormalized, not a join key
    branch        TEXT NOT NULL,
    language      TEXT,
    size          INTEGER NOT NULL DEFAULT 0,
    last_modified TEXT NOT NULL,
    PRIMARY KEY (path, repo_id, branch)
)
`

const createChunksTable = `
CREATE TABLE chunks (
    chunk_id         TEXT PRIMARY KEY,
    file_path        TEXT NOT NULL,
    repo_id          TEXT NOT NULL,
    branch           TEXT NOT NULL,
    language         TEXT,
    chunk_type       TEXT NOT NULL,
    symbol_name      TEXT,
    symbol_names     TEXT NOT NULL DEFAULT '[]',  -- JSON array
    imports          TEXT NOT NULL DEFAULT '[]',  -- JSON array
    exports          TEXT NOT NULL DEFAULT '[]',  -- JSON array
    line_start       INTEGER NOT NULL,
    line_end         INTEGER NOT NULL,
    content          TEXT NOT NULL,
    content_hash     TEXT NOT NULL,
    embedding        BLOB,                        -- float32[1536], little-endian, NULL until embedded
    full_text_index  TEXT NOT NULL,
    created_at       TEXT NOT NULL,
    updated_at       TEXT NOT NULL,
    FOREIGN KEY (file_path, repo_id, branch) REFERENCES files(path, repo_id, branch) ON DELETE CASCADE
)
`

const createRelationshipsTable = `
CREATE TABLE relationships (
    source_chunk_id   TEXT NOT NULL,
    target_chunk_id   TEXT NOT NULL,
    relationship_type TEXT NOT NULL,
    metadata          TEXT NOT NULL DEFAULT '{}',  -- JSON object
    PRIMARY KEY (source_chunk_id, target_chunk_id, relationship_type)
)
`

const createFileImportsTable = `
CREATE TABLE file_imports (
    source_file      TEXT NOT NULL,
    target_file      TEXT NOT NULL,
    repo_id          TEXT NOT NULL,
    branch           TEXT NOT NULL,
    import_type      TEXT NOT NULL,
    imported_symbols TEXT NOT NULL DEFAULT '[]',  -- JSON array
    PRIMARY KEY (source_file, target_file, repo_id, branch)
)
`

const createEmbeddingCacheTable = `
CREATE TABLE embedding_cache (
    content_hash   TEXT NOT NULL,
    model_name     TEXT NOT NULL,
    embedding      BLOB NOT NULL,
    embedding_dim  INTEGER NOT NULL,
    created_at     TEXT NOT NULL,
    last_used_at   TEXT NOT NULL,
    hit_count      INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (content_hash, model_name)
)
`

const createCacheMetadataTable = `
CREATE TABLE cache_metadata (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

// getAllIndexes returns all index creation statements.
func getAllIndexes() []string {
	return []string{
		"CREATE INDEX idx_files_repo_branch ON files(repo_id, branch)",
		"CREATE INDEX idx_files_repo_url ON files(repo_url)",

		"CREATE INDEX idx_chunks_repo_branch ON chunks(repo_id, branch)",
		"CREATE INDEX idx_chunks_file_path ON chunks(file_path, repo_id, branch)",
		"CREATE INDEX idx_chunks_chunk_type ON chunks(chunk_type)",
		"CREATE INDEX idx_chunks_symbol_name ON chunks(symbol_name)",
		"CREATE INDEX idx_chunks_content_hash ON chunks(content_hash)",

		"CREATE INDEX idx_relationships_source_type ON relationships(source_chunk_id, relationship_type)",
		"CREATE INDEX idx_relationships_target_type ON relationships(target_chunk_id, relationship_type)",

		"CREATE INDEX idx_file_imports_repo_branch ON file_imports(repo_id, branch)",
		"CREATE INDEX idx_file_imports_source ON file_imports(source_file, repo_id, branch)",
		"CREATE INDEX idx_file_imports_target ON file_imports(target_file, repo_id, branch)",

		"CREATE INDEX idx_embedding_cache_hash_model ON embedding_cache(content_hash, model_name)",
	}
}

// createFTSTriggers keeps chunks_fts in sync with the chunks table.
// Mirrors the teacher's files_fts trigger set, retargeted at chunk
// granularity: the full_text_index column (not raw content) is what's
// indexed, since that column already carries the query-time rendering.
func createFTSTriggers(db *sql.DB) error {
	triggers := []string{
		`CREATE TRIGGER chunks_fts_insert AFTER INSERT ON chunks
		BEGIN
			DELETE FROM chunks_fts WHERE chunk_id = NEW.chunk_id;
			INSERT INTO chunks_fts(chunk_id, text)
			VALUES (NEW.chunk_id, NEW.full_text_index);
		END`,

		`CREATE TRIGGER chunks_fts_update AFTER UPDATE OF full_text_index ON chunks
		BEGIN
			DELETE FROM chunks_fts WHERE chunk_id = OLD.chunk_id;
			INSERT INTO chunks_fts(chunk_id, text)
			VALUES (NEW.chunk_id, NEW.full_text_index);
		END`,

		`CREATE TRIGGER chunks_fts_delete AFTER DELETE ON chunks
		BEGIN
			DELETE FROM chunks_fts WHERE chunk_id = OLD.chunk_id;
		END`,
	}

	for i, trigger := range triggers {
		if _, err := db.Exec(trigger); err != nil {
			return fmt.Errorf("failed to create trigger %d: %w", i+1, err)
		}
	}

	return nil
}
