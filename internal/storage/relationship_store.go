package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/kraklabs/codeintel/internal/model"
)

// RelationshipStore handles reading and writing chunk-to-chunk edges
// (C7 imports/references, C8 calls).
type RelationshipStore struct {
	db *sql.DB
}

// NewRelationshipStore wraps an already-open connection.
func NewRelationshipStore(db *sql.DB) *RelationshipStore {
	return &RelationshipStore{db: db}
}

// ReplaceForChunks deletes every relationship whose source or target
// is one of chunkIDs, then inserts rels. Idempotent delete-then-insert,
// matching the chunk/vector/FTS sync convention used throughout.
func (s *RelationshipStore) ReplaceForChunks(chunkIDs []string, rels []*model.Relationship) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if len(chunkIDs) > 0 {
		if _, err := sq.Delete("relationships").
			Where(sq.Or{
				sq.Eq{"source_chunk_id": chunkIDs},
				sq.Eq{"target_chunk_id": chunkIDs},
			}).
			RunWith(tx).
			Exec(); err != nil {
			return fmt.Errorf("failed to clear relationships: %w", err)
		}
	}

	for _, rel := range rels {
		if rel.SourceChunkID == rel.TargetChunkID {
			continue // self-edges forbidden
		}
		metaJSON, err := json.Marshal(rel.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal relationship metadata: %w", err)
		}
		if _, err := sq.Insert("relationships").
			Columns("source_chunk_id", "target_chunk_id", "relationship_type", "metadata").
			Values(rel.SourceChunkID, rel.TargetChunkID, string(rel.Type), string(metaJSON)).
			Options("OR REPLACE").
			RunWith(tx).
			Exec(); err != nil {
			return fmt.Errorf("failed to insert relationship %s->%s: %w", rel.SourceChunkID, rel.TargetChunkID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit relationships: %w", err)
	}
	return nil
}

// OutgoingFrom loads every relationship whose source is one of the
// given chunk ids, optionally filtered by type.
func (s *RelationshipStore) OutgoingFrom(chunkIDs []string, relType model.RelationshipType) ([]*model.Relationship, error) {
	if len(chunkIDs) == 0 {
		return nil, nil
	}
	q := sq.Select("source_chunk_id", "target_chunk_id", "relationship_type", "metadata").
		From("relationships").
		Where(sq.Eq{"source_chunk_id": chunkIDs})
	if relType != "" {
		q = q.Where(sq.Eq{"relationship_type": string(relType)})
	}
	rows, err := q.RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query outgoing relationships: %w", err)
	}
	defer rows.Close()
	return scanRelationships(rows)
}

// IncomingTo loads every relationship whose target is one of the
// given chunk ids, optionally filtered by type.
func (s *RelationshipStore) IncomingTo(chunkIDs []string, relType model.RelationshipType) ([]*model.Relationship, error) {
	if len(chunkIDs) == 0 {
		return nil, nil
	}
	q := sq.Select("source_chunk_id", "target_chunk_id", "relationship_type", "metadata").
		From("relationships").
		Where(sq.Eq{"target_chunk_id": chunkIDs})
	if relType != "" {
		q = q.Where(sq.Eq{"relationship_type": string(relType)})
	}
	rows, err := q.RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query incoming relationships: %w", err)
	}
	defer rows.Close()
	return scanRelationships(rows)
}

func scanRelationships(rows *sql.Rows) ([]*model.Relationship, error) {
	var rels []*model.Relationship
	for rows.Next() {
		var source, target, relType, metaJSON string
		if err := rows.Scan(&source, &target, &relType, &metaJSON); err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}
		var meta map[string]any
		if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal relationship metadata: %w", err)
		}
		rels = append(rels, &model.Relationship{
			SourceChunkID: source,
			TargetChunkID: target,
			Type:          model.RelationshipType(relType),
			Metadata:      meta,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating relationships: %w", err)
	}
	return rels, nil
}
