package api

import (
	"context"

	"github.com/kraklabs/codeintel/internal/cxerr"
	"github.com/kraklabs/codeintel/internal/hybrid"
	"github.com/kraklabs/codeintel/internal/model"
)

// ScoredChunk is one ranked hit, the shape shared by /search and
// /keyword-search responses.
type ScoredChunk struct {
	Chunk *model.Chunk `json:"chunk"`
	Score float64      `json:"score"`
}

// SearchResponse answers POST /search.
type SearchResponse struct {
	Results []ScoredChunk `json:"results"`
}

// Search runs semantic (vector) search. args: query (required),
// repo_url (required), branch (default "main"), limit (default 10,
// max 200).
func (f *Facade) Search(ctx context.Context, args map[string]interface{}) (*SearchResponse, error) {
	query, err := parseStringArg(args, "query", true)
	if err != nil {
		return nil, cxerr.Wrap(cxerr.InputInvalid, err)
	}
	repoID, branch, err := resolveRepo(args)
	if err != nil {
		return nil, err
	}
	limit := clampLimit(args, DefaultSearchLimit, MaxSearchLimit)

	results, err := f.engine.SemanticSearch(ctx, repoID, branch, query, limit)
	if err != nil {
		return nil, err
	}
	return &SearchResponse{Results: toScoredChunks(results)}, nil
}

// KeywordSearchResponse answers POST /keyword-search.
type KeywordSearchResponse struct {
	Results []ScoredChunk `json:"results"`
}

// KeywordSearch runs full-text keyword search. args: query
// (required), repo_url (required), branch (default "main"), limit
// (default 10, max 200), exact_match_boost (default true).
func (f *Facade) KeywordSearch(args map[string]interface{}) (*KeywordSearchResponse, error) {
	query, err := parseStringArg(args, "query", true)
	if err != nil {
		return nil, cxerr.Wrap(cxerr.InputInvalid, err)
	}
	repoID, branch, err := resolveRepo(args)
	if err != nil {
		return nil, err
	}
	limit := clampLimit(args, DefaultSearchLimit, MaxSearchLimit)
	boost := parseBoolArg(args, "exact_match_boost", true)

	results, err := f.engine.KeywordSearch(repoID, branch, query, limit, boost)
	if err != nil {
		return nil, err
	}
	return &KeywordSearchResponse{Results: toScoredChunks(results)}, nil
}

// HybridMatch is one fused result with its per-source score
// breakdown, the shape POST /hybrid-search returns.
type HybridMatch struct {
	Chunk        *model.Chunk `json:"chunk"`
	VectorScore  float64      `json:"vector_score"`
	KeywordScore float64      `json:"keyword_score"`
	RRFScore     float64      `json:"rrf_score"`
	Sources      []string     `json:"sources"`
}

// HybridSearchResponse answers POST /hybrid-search.
type HybridSearchResponse struct {
	Results      []HybridMatch `json:"results"`
	FallbackUsed bool          `json:"fallback_used"`
}

// HybridSearch fuses semantic and keyword rankings by reciprocal rank
// fusion. args: query (required), repo_url (required), branch
// (default "main"), limit (default 10, max 200), exact_match_boost
// (default true), weights ({vector, keyword}, default 0.6/0.4).
func (f *Facade) HybridSearch(ctx context.Context, args map[string]interface{}) (*HybridSearchResponse, error) {
	query, err := parseStringArg(args, "query", true)
	if err != nil {
		return nil, cxerr.Wrap(cxerr.InputInvalid, err)
	}
	repoID, branch, err := resolveRepo(args)
	if err != nil {
		return nil, err
	}
	limit := clampLimit(args, DefaultSearchLimit, MaxSearchLimit)

	cfg := hybrid.DefaultConfig()
	if weights, ok := args["weights"].(map[string]interface{}); ok {
		vectorWeight := parseFloatArg(weights, "vector", hybrid.DefaultVectorWeight)
		keywordWeight := parseFloatArg(weights, "keyword", hybrid.DefaultKeywordWeight)
		cfg = hybrid.NewConfig(vectorWeight, keywordWeight, hybrid.DefaultRRFK, cfg.FallbackToVector)
	}

	matches, fallbackUsed, err := f.engine.HybridSearch(ctx, repoID, branch, query, cfg, limit)
	if err != nil {
		return nil, err
	}

	results := make([]HybridMatch, len(matches))
	for i, m := range matches {
		results[i] = HybridMatch{
			Chunk:        m.Chunk,
			VectorScore:  m.VectorScore,
			KeywordScore: m.KeywordScore,
			RRFScore:     m.RRFScore,
			Sources:      m.Sources,
		}
	}
	return &HybridSearchResponse{Results: results, FallbackUsed: fallbackUsed}, nil
}

func toScoredChunks(results []hybrid.ScoredResult) []ScoredChunk {
	out := make([]ScoredChunk, len(results))
	for i, r := range results {
		out[i] = ScoredChunk{Chunk: r.Chunk, Score: r.Score}
	}
	return out
}
