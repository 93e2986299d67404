package storage

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/kraklabs/codeintel/internal/model"
)

// EmbeddingCacheStore is the durable, content-addressed embedding
// cache backing C9. It is process-wide and shared across repos and
// branches: the primary key is (content_hash, model_name) only.
type EmbeddingCacheStore struct {
	db *sql.DB
}

// NewEmbeddingCacheStore wraps an already-open connection.
func NewEmbeddingCacheStore(db *sql.DB) *EmbeddingCacheStore {
	return &EmbeddingCacheStore{db: db}
}

// Lookup resolves a batch of content hashes against a model in a
// single round-trip, bumping last_used_at/hit_count on every hit.
// Hashes with no cached entry are simply absent from the result map.
func (s *EmbeddingCacheStore) Lookup(hashes []string, modelName string) (map[string]*model.EmbeddingCacheEntry, error) {
	result := make(map[string]*model.EmbeddingCacheEntry)
	if len(hashes) == 0 {
		return result, nil
	}

	rows, err := sq.Select("content_hash", "model_name", "embedding", "embedding_dim", "created_at", "last_used_at", "hit_count").
		From("embedding_cache").
		Where(sq.Eq{"content_hash": hashes, "model_name": modelName}).
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query embedding cache: %w", err)
	}

	var hits []string
	for rows.Next() {
		var entry model.EmbeddingCacheEntry
		var embBytes []byte
		if err := rows.Scan(&entry.ContentHash, &entry.ModelName, &embBytes, &entry.EmbeddingDim, &entry.CreatedAt, &entry.LastUsedAt, &entry.HitCount); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan embedding cache row: %w", err)
		}
		embedding, err := DeserializeEmbedding(embBytes)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to deserialize cached embedding for %s: %w", entry.ContentHash, err)
		}
		entry.Embedding = embedding
		result[entry.ContentHash] = &entry
		hits = append(hits, entry.ContentHash)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating embedding cache rows: %w", err)
	}
	rows.Close()

	if err := s.bumpUsage(hits, modelName); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *EmbeddingCacheStore) bumpUsage(hashes []string, modelName string) error {
	if len(hashes) == 0 {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := sq.Update("embedding_cache").
		Set("last_used_at", now).
		Set("hit_count", sq.Expr("hit_count + 1")).
		Where(sq.Eq{"content_hash": hashes, "model_name": modelName}).
		RunWith(s.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to bump embedding cache usage: %w", err)
	}
	return nil
}

// Store upserts one entry. On conflict (already cached), it behaves
// as a hit: last_used_at and hit_count advance rather than the row
// being overwritten, since the value is a pure function of content
// and model and cannot legitimately change.
func (s *EmbeddingCacheStore) Store(contentHash string, embedding []float32, nativeDim int, modelName string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	embBytes := SerializeEmbedding(embedding)

	_, err := s.db.Exec(`
		INSERT INTO embedding_cache (content_hash, model_name, embedding, embedding_dim, created_at, last_used_at, hit_count)
		VALUES (?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(content_hash, model_name) DO UPDATE SET
			last_used_at = excluded.last_used_at,
			hit_count = hit_count + 1
	`, contentHash, modelName, embBytes, nativeDim, now, now)
	if err != nil {
		return fmt.Errorf("failed to store embedding cache entry for %s: %w", contentHash, err)
	}
	return nil
}
