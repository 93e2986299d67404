package storage

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/kraklabs/codeintel/internal/model"
)

// ListRepos returns one row per distinct (repo_id, repo_url, branch)
// tuple currently indexed, the basis for the repo-listing surface.
func ListRepos(db *sql.DB) ([]*model.RepoSummary, error) {
	rows, err := sq.Select("repo_id", "repo_url", "branch", "COUNT(*)").
		From("files").
		GroupBy("repo_id", "repo_url", "branch").
		OrderBy("repo_url", "branch").
		RunWith(db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to list repos: %w", err)
	}
	defer rows.Close()

	var repos []*model.RepoSummary
	for rows.Next() {
		var s model.RepoSummary
		if err := rows.Scan(&s.RepoID, &s.RepoURL, &s.Branch, &s.FileCount); err != nil {
			return nil, fmt.Errorf("failed to scan repo summary: %w", err)
		}
		repos = append(repos, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating repos: %w", err)
	}
	return repos, nil
}

// GetIndexStats reports file/chunk/relationship counts for one
// repo/branch, the basis for the stats surface.
func GetIndexStats(db *sql.DB, repoID, branch string) (*model.IndexStats, error) {
	stats := &model.IndexStats{}

	if err := sq.Select("COUNT(*)").From("files").
		Where(sq.Eq{"repo_id": repoID, "branch": branch}).
		RunWith(db).QueryRow().Scan(&stats.FileCount); err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}

	if err := sq.Select("COUNT(*)").From("chunks").
		Where(sq.Eq{"repo_id": repoID, "branch": branch}).
		RunWith(db).QueryRow().Scan(&stats.ChunkCount); err != nil {
		return nil, fmt.Errorf("failed to count chunks: %w", err)
	}

	if err := sq.Select("COUNT(*)").From("chunks").
		Where(sq.Eq{"repo_id": repoID, "branch": branch}).
		Where("embedding IS NOT NULL AND length(embedding) > 0").
		RunWith(db).QueryRow().Scan(&stats.EmbeddedCount); err != nil {
		return nil, fmt.Errorf("failed to count embedded chunks: %w", err)
	}

	var chunkIDs []string
	rows, err := sq.Select("chunk_id").From("chunks").
		Where(sq.Eq{"repo_id": repoID, "branch": branch}).
		RunWith(db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to list chunk ids: %w", err)
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan chunk id: %w", err)
		}
		chunkIDs = append(chunkIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chunk ids: %w", err)
	}

	if len(chunkIDs) > 0 {
		if err := sq.Select("COUNT(*)").From("relationships").
			Where(sq.Eq{"source_chunk_id": chunkIDs}).
			RunWith(db).QueryRow().Scan(&stats.RelationshipCount); err != nil {
			return nil, fmt.Errorf("failed to count relationships: %w", err)
		}
	}

	return stats, nil
}

// DeleteRepo removes every record belonging to a repo, optionally
// scoped to a single branch when branch is non-empty. Mirrors the
// per-file delete-then-clean-sidecar-indexes convention used by
// ChunkWriter.DeleteChunksByFile, widened to the whole repo.
func DeleteRepo(db *sql.DB, repoID, branch string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	filesWhere := sq.Eq{"repo_id": repoID}
	if branch != "" {
		filesWhere["branch"] = branch
	}

	chunkRows, err := sq.Select("chunk_id").From("chunks").Where(filesWhere).RunWith(tx).Query()
	if err != nil {
		return fmt.Errorf("failed to list chunk ids: %w", err)
	}
	var chunkIDs []string
	for chunkRows.Next() {
		var id string
		if err := chunkRows.Scan(&id); err != nil {
			chunkRows.Close()
			return fmt.Errorf("failed to scan chunk id: %w", err)
		}
		chunkIDs = append(chunkIDs, id)
	}
	chunkRows.Close()
	if err := chunkRows.Err(); err != nil {
		return fmt.Errorf("error iterating chunk ids: %w", err)
	}

	if len(chunkIDs) > 0 {
		if _, err := sq.Delete("relationships").
			Where(sq.Or{
				sq.Eq{"source_chunk_id": chunkIDs},
				sq.Eq{"target_chunk_id": chunkIDs},
			}).
			RunWith(tx).Exec(); err != nil {
			return fmt.Errorf("failed to delete relationships: %w", err)
		}
		if err := DeleteVectorsByFile(tx, chunkIDs); err != nil {
			return fmt.Errorf("failed to delete vectors: %w", err)
		}
	}

	if _, err := sq.Delete("chunks").Where(filesWhere).RunWith(tx).Exec(); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}

	if _, err := sq.Delete("file_imports").Where(filesWhere).RunWith(tx).Exec(); err != nil {
		return fmt.Errorf("failed to delete file imports: %w", err)
	}

	if _, err := sq.Delete("files").Where(filesWhere).RunWith(tx).Exec(); err != nil {
		return fmt.Errorf("failed to delete files: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit repo delete: %w", err)
	}
	return nil
}
