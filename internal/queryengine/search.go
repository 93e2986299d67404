package queryengine

import (
	"context"
	"fmt"

	"github.com/kraklabs/codeintel/internal/embed"
	"github.com/kraklabs/codeintel/internal/hybrid"
	"github.com/kraklabs/codeintel/internal/model"
	"github.com/kraklabs/codeintel/internal/querybuilder"
	"github.com/kraklabs/codeintel/internal/storage"
)

// vectorOverfetchFactor compensates for QueryVectorSimilarity having
// no (repo_id, branch) filter of its own: when a filter is requested,
// the engine asks the ANN index for more rows than limit and discards
// the ones outside scope. vectorOverfetchCap bounds how far it will
// go before giving up rather than scanning the whole index.
const (
	vectorOverfetchFactor = 8
	vectorOverfetchCap    = 2000
)

// SemanticSearch embeds query and ranks chunks by cosine distance,
// optionally scoped to one (repo_id, branch).
func (e *Engine) SemanticSearch(ctx context.Context, repoID, branch, query string, limit int) ([]hybrid.ScoredResult, error) {
	if limit <= 0 {
		limit = 10
	}

	vecs, err := e.provider.Embed(ctx, []string{query}, embed.EmbedModeQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedding provider returned no vector for query")
	}
	queryEmb := model.PadEmbedding(vecs[0])

	fetch := limit
	if repoID != "" || branch != "" {
		fetch = limit * vectorOverfetchFactor
		if fetch > vectorOverfetchCap {
			fetch = vectorOverfetchCap
		}
	}

	hits, err := storage.QueryVectorSimilarity(e.db, queryEmb, fetch)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ChunkID
	}
	reader := storage.NewChunkReaderWithDB(e.db)
	chunks, err := reader.ReadChunksByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("load chunks for vector hits: %w", err)
	}
	byID := chunksByID(chunks)

	results := make([]hybrid.ScoredResult, 0, limit)
	for _, h := range hits {
		c, ok := byID[h.ChunkID]
		if !ok {
			continue
		}
		if repoID != "" && c.RepoID != repoID {
			continue
		}
		if branch != "" && c.Branch != branch {
			continue
		}
		results = append(results, hybrid.ScoredResult{
			ChunkID: h.ChunkID,
			Chunk:   c,
			Score:   1 - h.Distance,
		})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

// KeywordSearch runs the C11 query builder's expression against the
// FTS5 index and applies the exact-match boost to each hit's score.
func (e *Engine) KeywordSearch(repoID, branch, query string, limit int, applyExactMatchBoost bool) ([]hybrid.ScoredResult, error) {
	if limit <= 0 {
		limit = 10
	}
	expr := querybuilder.BuildExpression(query)
	return e.keywordSearchExpr(repoID, branch, query, expr, limit, applyExactMatchBoost)
}

func (e *Engine) keywordSearchExpr(repoID, branch, rawQuery, expr string, limit int, applyExactMatchBoost bool) ([]hybrid.ScoredResult, error) {
	if expr == "" {
		return nil, nil
	}

	filters := map[string]interface{}{}
	if repoID != "" {
		filters["repo_id"] = repoID
	}
	if branch != "" {
		filters["branch"] = branch
	}

	ftsResults, err := storage.QueryFTS(e.db, expr, filters, limit)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	out := make([]hybrid.ScoredResult, 0, len(ftsResults))
	for _, r := range ftsResults {
		score := -r.Rank // SQLite's bm25() is lower-is-better; flip so higher is better.
		if applyExactMatchBoost {
			score *= querybuilder.ExactMatchBoost(rawQuery, r.Chunk.SymbolNames)
		}
		out = append(out, hybrid.ScoredResult{ChunkID: r.ChunkID, Chunk: r.Chunk, Score: score})
	}
	return rerankByScore(out), nil
}

// HybridSearch fuses semantic and keyword search with RRF (C12),
// extracting quoted phrases from query first so they match as exact
// FTS5 phrases rather than being tokenized into identifier variants.
func (e *Engine) HybridSearch(ctx context.Context, repoID, branch, query string, cfg hybrid.Config, limit int) ([]hybrid.Match, bool, error) {
	if limit <= 0 {
		limit = 10
	}

	vector, err := e.SemanticSearch(ctx, repoID, branch, query, limit)
	if err != nil {
		return nil, false, err
	}

	phrases, remainder := hybrid.ExtractQuotedPhrases(query)
	keyword, err := e.keywordSearchExpr(repoID, branch, query, buildHybridExpression(phrases, remainder), limit, true)
	if err != nil {
		return nil, false, err
	}

	matches, fallbackUsed := hybrid.Combine(vector, keyword, cfg, limit)
	return matches, fallbackUsed, nil
}

func buildHybridExpression(phrases []string, remainder string) string {
	var clauses []string
	for _, p := range phrases {
		clauses = append(clauses, fmt.Sprintf("%q", p))
	}
	if rest := querybuilder.BuildExpression(remainder); rest != "" {
		clauses = append(clauses, rest)
	}
	if len(clauses) == 0 {
		return ""
	}
	joined := clauses[0]
	for _, c := range clauses[1:] {
		joined += " OR " + c
	}
	return joined
}

// rerankByScore sorts descending by Score, stable on ties so equal
// scores keep the caller's input order (QueryFTS's bm25 rank order).
func rerankByScore(results []hybrid.ScoredResult) []hybrid.ScoredResult {
	for i := 1; i < len(results); i++ {
		j := i
		for j > 0 && results[j-1].Score < results[j].Score {
			results[j-1], results[j] = results[j], results[j-1]
			j--
		}
	}
	return results
}
