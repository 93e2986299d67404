package storage

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/kraklabs/codeintel/internal/model"
)

// ChunkReader handles reading chunks from SQLite.
type ChunkReader struct {
	db     *sql.DB
	ownsDB bool
}

// NewChunkReader opens a SQLite database read-only for chunk access.
func NewChunkReader(dbPath string) (*ChunkReader, error) {
	db, err := sql.Open("sqlite3", dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &ChunkReader{db: db, ownsDB: true}, nil
}

// NewChunkReaderWithDB wraps an already-open connection; the caller
// retains ownership.
func NewChunkReaderWithDB(db *sql.DB) *ChunkReader {
	return &ChunkReader{db: db, ownsDB: false}
}

var chunkColumns = []string{
	"chunk_id", "file_path", "repo_id", "branch", "language", "chunk_type",
	"symbol_name", "symbol_names", "imports", "exports",
	"line_start", "line_end", "content", "content_hash",
	"embedding", "full_text_index",
}

// ReadAllChunks loads every chunk for a repo/branch.
func (r *ChunkReader) ReadAllChunks(repoID, branch string) ([]*model.Chunk, error) {
	rows, err := sq.Select(chunkColumns...).
		From("chunks").
		Where(sq.Eq{"repo_id": repoID, "branch": branch}).
		OrderBy("chunk_id").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()
	return scanChunks(rows)
}

// ReadChunksByFile loads all chunks for one file.
func (r *ChunkReader) ReadChunksByFile(filePath, repoID, branch string) ([]*model.Chunk, error) {
	rows, err := sq.Select(chunkColumns...).
		From("chunks").
		Where(sq.Eq{"file_path": filePath, "repo_id": repoID, "branch": branch}).
		OrderBy("line_start").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks by file: %w", err)
	}
	defer rows.Close()
	return scanChunks(rows)
}

// ReadChunksByIDs loads chunks matching the given chunk IDs, in no
// particular order — callers needing fusion order re-rank themselves.
func (r *ChunkReader) ReadChunksByIDs(ids []string) ([]*model.Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := sq.Select(chunkColumns...).
		From("chunks").
		Where(sq.Eq{"chunk_id": ids}).
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks by id: %w", err)
	}
	defer rows.Close()
	return scanChunks(rows)
}

// ReadChunksByType loads chunks of a given type for a repo/branch.
func (r *ChunkReader) ReadChunksByType(chunkType model.ChunkType, repoID, branch string) ([]*model.Chunk, error) {
	rows, err := sq.Select(chunkColumns...).
		From("chunks").
		Where(sq.Eq{"chunk_type": string(chunkType), "repo_id": repoID, "branch": branch}).
		OrderBy("file_path", "line_start").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks by type: %w", err)
	}
	defer rows.Close()
	return scanChunks(rows)
}

// ReadChunksBySymbol loads chunks whose symbol_names array contains
// symbolName exactly (so a class-like chunk also matches its direct
// method names), the basis for the definitions(symbol) query operation.
func (r *ChunkReader) ReadChunksBySymbol(symbolName, repoID, branch string) ([]*model.Chunk, error) {
	rows, err := sq.Select(chunkColumns...).
		From("chunks").
		Where(sq.Eq{"repo_id": repoID, "branch": branch}).
		Where(sq.Expr("EXISTS (SELECT 1 FROM json_each(chunks.symbol_names) WHERE json_each.value = ?)", symbolName)).
		OrderBy("file_path", "line_start").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks by symbol: %w", err)
	}
	defer rows.Close()
	return scanChunks(rows)
}

func scanChunks(rows *sql.Rows) ([]*model.Chunk, error) {
	var chunks []*model.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chunks: %w", err)
	}
	return chunks, nil
}

func scanChunk(rows *sql.Rows) (*model.Chunk, error) {
	var (
		id, filePath, repoID, branch, chunkType string
		language, symbolName                    sql.NullString
		symbolNamesJSON, importsJSON, exportsJSON string
		lineStart, lineEnd                      int
		content, contentHash                    string
		embBytes                                []byte
		fullTextIndex                            string
	)

	err := rows.Scan(
		&id, &filePath, &repoID, &branch, &language, &chunkType,
		&symbolName, &symbolNamesJSON, &importsJSON, &exportsJSON,
		&lineStart, &lineEnd, &content, &contentHash,
		&embBytes, &fullTextIndex,
	)
	if err != nil {
		return nil, err
	}

	embedding, err := DeserializeEmbedding(embBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize embedding for chunk %s: %w", id, err)
	}
	symbolNames, err := DecodeStringArray(symbolNamesJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode symbol_names for chunk %s: %w", id, err)
	}
	imports, err := DecodeStringArray(importsJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode imports for chunk %s: %w", id, err)
	}
	exports, err := DecodeStringArray(exportsJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exports for chunk %s: %w", id, err)
	}

	return &model.Chunk{
		ID:            id,
		FilePath:      filePath,
		RepoID:        repoID,
		Branch:        branch,
		Language:      language.String,
		ChunkType:     model.ChunkType(chunkType),
		SymbolName:    symbolName.String,
		SymbolNames:   symbolNames,
		Imports:       imports,
		Exports:       exports,
		LineStart:     lineStart,
		LineEnd:       lineEnd,
		Content:       content,
		ContentHash:   contentHash,
		Embedding:     embedding,
		FullTextIndex: fullTextIndex,
	}, nil
}

// Close releases the reader's connection if it owns one.
func (r *ChunkReader) Close() error {
	if !r.ownsDB {
		return nil
	}
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
