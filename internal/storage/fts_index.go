package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/kraklabs/codeintel/internal/model"
)

// CreateFTSIndex creates FTS5 virtual table for full-text search.
// FTS5 is built into SQLite and provides fast full-text search with ranking.
//
// The virtual table indexes chunk text for:
// - Fast keyword search
// - Phrase queries
// - Boolean operators (AND, OR, NOT)
// - Snippet extraction with highlighting
// - BM25 ranking
//
// This complements vector search by enabling exact keyword matching.
func CreateFTSIndex(db *sql.DB) error {
	createSQL := `
		CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
			chunk_id UNINDEXED,
			text,
			tokenize = 'unicode61 remove_diacritics 0'
		)
	`

	if _, err := db.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create FTS5 index: %w", err)
	}

	return nil
}

// UpdateFTSIndex syncs FTS5 index with chunks table.
// Inserts or replaces text entries for full-text search.
//
// This should be called in the same transaction as chunk writes
// to maintain consistency between chunks and FTS5 index.
//
// Note: FTS5 virtual tables don't support INSERT OR REPLACE properly,
// so we delete first, then insert to achieve upsert semantics.
func UpdateFTSIndex(tx *sql.Tx, chunks []*model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	deleteStmt, err := tx.Prepare("DELETE FROM chunks_fts WHERE chunk_id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare FTS5 delete statement: %w", err)
	}
	defer deleteStmt.Close()

	insertStmt, err := tx.Prepare("INSERT INTO chunks_fts (chunk_id, text) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare FTS5 insert statement: %w", err)
	}
	defer insertStmt.Close()

	for _, chunk := range chunks {
		if _, err := deleteStmt.Exec(chunk.ID); err != nil {
			return fmt.Errorf("failed to delete FTS5 entry for chunk %s: %w", chunk.ID, err)
		}

		if _, err := insertStmt.Exec(chunk.ID, chunk.FullTextIndex); err != nil {
			return fmt.Errorf("failed to insert FTS5 entry for chunk %s: %w", chunk.ID, err)
		}
	}

	return nil
}

// DeleteFTSByFile removes FTS5 entries for specified chunk IDs.
// Used during incremental updates when chunks are deleted.
func DeleteFTSByFile(tx *sql.Tx, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}

	stmt, err := tx.Prepare("DELETE FROM chunks_fts WHERE chunk_id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare FTS5 delete statement: %w", err)
	}
	defer stmt.Close()

	for _, id := range chunkIDs {
		if _, err := stmt.Exec(id); err != nil {
			return fmt.Errorf("failed to delete FTS5 entry for chunk %s: %w", id, err)
		}
	}

	return nil
}

// FTSResult represents a full-text search result.
type FTSResult struct {
	ChunkID string
	Rank    float64 // BM25 rank (lower is better, SQLite's native convention)
	Snippet string  // Text snippet with highlighted matches
	Chunk   *model.Chunk
}

// QueryFTS performs full-text search with snippets and BM25 ranking.
// filters supports "chunk_type", "file_path", "repo_id", "branch".
func QueryFTS(db *sql.DB, query string, filters map[string]interface{}, limit int) ([]*FTSResult, error) {
	sqlQuery := `
		SELECT
			chunks_fts.chunk_id,
			bm25(chunks_fts) as rank,
			snippet(chunks_fts, 1, '<mark>', '</mark>', '...', 32) as snippet,
			chunks.file_path,
			chunks.repo_id,
			chunks.branch,
			chunks.language,
			chunks.chunk_type,
			chunks.symbol_name,
			chunks.symbol_names,
			chunks.imports,
			chunks.exports,
			chunks.line_start,
			chunks.line_end,
			chunks.content,
			chunks.content_hash,
			chunks.embedding,
			chunks.full_text_index,
			chunks.created_at,
			chunks.updated_at
		FROM chunks_fts
		INNER JOIN chunks ON chunks_fts.chunk_id = chunks.chunk_id
		WHERE chunks_fts.text MATCH ?
	`

	var args []interface{}
	args = append(args, query)

	if chunkType, ok := filters["chunk_type"].(string); ok && chunkType != "" {
		sqlQuery += " AND chunks.chunk_type = ?"
		args = append(args, chunkType)
	}
	if filePath, ok := filters["file_path"].(string); ok && filePath != "" {
		sqlQuery += " AND chunks.file_path = ?"
		args = append(args, filePath)
	}
	if repoID, ok := filters["repo_id"].(string); ok && repoID != "" {
		sqlQuery += " AND chunks.repo_id = ?"
		args = append(args, repoID)
	}
	if branch, ok := filters["branch"].(string); ok && branch != "" {
		sqlQuery += " AND chunks.branch = ?"
		args = append(args, branch)
	}

	sqlQuery += " ORDER BY rank LIMIT ?"
	args = append(args, limit)

	rows, err := db.Query(sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query FTS5: %w", err)
	}
	defer rows.Close()

	var results []*FTSResult
	for rows.Next() {
		var (
			chunkID, snippet                          string
			rank                                       float64
			filePath, repoID, branch, chunkType        string
			language, symbolName                      sql.NullString
			symbolNamesJSON, importsJSON, exportsJSON  string
			lineStart, lineEnd                         int
			content, contentHash, fullTextIndex        string
			embBytes                                   []byte
			createdAtStr, updatedAtStr                 string
		)

		err := rows.Scan(
			&chunkID, &rank, &snippet,
			&filePath, &repoID, &branch, &language, &chunkType,
			&symbolName, &symbolNamesJSON, &importsJSON, &exportsJSON,
			&lineStart, &lineEnd, &content, &contentHash,
			&embBytes, &fullTextIndex, &createdAtStr, &updatedAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan FTS5 result: %w", err)
		}

		embedding, err := DeserializeEmbedding(embBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize embedding: %w", err)
		}

		symbolNames, err := DecodeStringArray(symbolNamesJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode symbol_names for chunk %s: %w", chunkID, err)
		}
		imports, err := DecodeStringArray(importsJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode imports for chunk %s: %w", chunkID, err)
		}
		exports, err := DecodeStringArray(exportsJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode exports for chunk %s: %w", chunkID, err)
		}

		chunk := &model.Chunk{
			ID:            chunkID,
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
		}

		results = append(results, &FTSResult{
			ChunkID: chunkID,
			Rank:    rank,
			Snippet: snippet,
			Chunk:   chunk,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating FTS5 results: %w", err)
	}

	return results, nil
}

// SearchText is a high-level API for full-text search.
// Returns just the chunks (without snippet metadata) for simpler usage.
func SearchText(db *sql.DB, query string, filters map[string]interface{}, limit int) ([]*model.Chunk, error) {
	results, err := QueryFTS(db, query, filters, limit)
	if err != nil {
		return nil, err
	}

	chunks := make([]*model.Chunk, len(results))
	for i, r := range results {
		chunks[i] = r.Chunk
	}

	return chunks, nil
}

// BuildFTSQuery constructs an FTS5 query from user input.
//
// Examples:
//   - Simple: "error handler" -> "error handler"
//   - Phrase: BuildFTSQuery("error handler", true) -> `"error handler"`
func BuildFTSQuery(input string, isPhrase bool) string {
	input = escapeFTSQuery(input)

	if isPhrase {
		return fmt.Sprintf(`"%s"`, input)
	}

	return input
}

// escapeFTSQuery escapes FTS5 special characters (double quotes).
func escapeFTSQuery(input string) string {
	return strings.ReplaceAll(input, `"`, `""`)
}

// FTSIndexStats reports on the size of the chunks_fts index.
type FTSIndexStats struct {
	TotalEntries int
	IndexSize    int64 // Size in bytes
}

// GetFTSStats retrieves FTS5 index statistics.
func GetFTSStats(db *sql.DB) (*FTSIndexStats, error) {
	var stats FTSIndexStats

	err := db.QueryRow("SELECT COUNT(*) FROM chunks_fts").Scan(&stats.TotalEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to query FTS5 entry count: %w", err)
	}

	var pageCount, pageSize int64
	_ = db.QueryRow("PRAGMA page_count").Scan(&pageCount)
	_ = db.QueryRow("PRAGMA page_size").Scan(&pageSize)
	stats.IndexSize = pageCount * pageSize

	return &stats, nil
}

// parseTimestamp parses RFC3339 timestamps read back from the database.
func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
