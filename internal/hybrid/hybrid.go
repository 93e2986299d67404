// Package hybrid implements the hybrid fuser (C12): quoted-phrase
// extraction and Reciprocal Rank Fusion of a vector ranking with a
// keyword ranking into one combined result set.
package hybrid

import (
	"regexp"
	"sort"
	"strings"

	"github.com/kraklabs/codeintel/internal/model"
)

// DefaultRRFK is the RRF smoothing constant (higher favors lower-ranked
// results more evenly).
const DefaultRRFK = 60

// DefaultVectorWeight and DefaultKeywordWeight are the default fusion
// weights (60% vector, 40% keyword), normalized to sum to 1 regardless
// of what a caller passes in.
const (
	DefaultVectorWeight  = 0.6
	DefaultKeywordWeight = 0.4
)

// Config configures one hybrid-search fusion.
type Config struct {
	VectorWeight     float64
	KeywordWeight    float64
	RRFK             int
	FallbackToVector bool
}

// NewConfig builds a Config with weights normalized to sum to 1.
func NewConfig(vectorWeight, keywordWeight float64, rrfK int, fallbackToVector bool) Config {
	total := vectorWeight + keywordWeight
	if total > 0 {
		vectorWeight /= total
		keywordWeight /= total
	}
	if rrfK == 0 {
		rrfK = DefaultRRFK
	}
	return Config{
		VectorWeight:     vectorWeight,
		KeywordWeight:    keywordWeight,
		RRFK:             rrfK,
		FallbackToVector: fallbackToVector,
	}
}

// DefaultConfig returns the documented default fusion configuration.
func DefaultConfig() Config {
	return NewConfig(DefaultVectorWeight, DefaultKeywordWeight, DefaultRRFK, true)
}

// ScoredResult is one ranked hit from either the vector or the keyword
// search, in the order that search returned it (rank is derived from
// position, 1-indexed, by Combine).
type ScoredResult struct {
	ChunkID string
	Chunk   *model.Chunk
	Score   float64
}

// Match is one fused result: its contribution from each source plus
// the combined RRF score.
type Match struct {
	ChunkID      string
	Chunk        *model.Chunk
	VectorScore  float64
	VectorRank   int // 0 means absent from the vector ranking
	KeywordScore float64
	KeywordRank  int // 0 means absent from the keyword ranking
	RRFScore     float64
	Sources      []string
}

var quotedPhrase = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
var extraSpace = regexp.MustCompile(`\s+`)

// ExtractQuotedPhrases pulls out single- or double-quoted phrases from
// a query, returning them alongside the query with those phrases (and
// their quotes) removed and whitespace collapsed.
func ExtractQuotedPhrases(query string) ([]string, string) {
	var phrases []string
	for _, m := range quotedPhrase.FindAllStringSubmatch(query, -1) {
		phrase := m[1]
		if phrase == "" {
			phrase = m[2]
		}
		if phrase != "" {
			phrases = append(phrases, phrase)
		}
	}

	remaining := quotedPhrase.ReplaceAllString(query, "")
	remaining = extraSpace.ReplaceAllString(remaining, " ")
	return phrases, strings.TrimSpace(remaining)
}

// rrfContribution computes one ranking source's RRF score: 0 if the
// item didn't appear in that ranking, weight/(k+rank) otherwise.
func rrfContribution(rank int, weight float64, k int) float64 {
	if rank == 0 {
		return 0
	}
	return weight / float64(k+rank)
}

// Combine fuses a vector ranking and a keyword ranking with Reciprocal
// Rank Fusion. If the keyword ranking is empty and
// fallback is enabled, it bypasses fusion entirely and returns the
// vector ranking truncated to limit, with fallbackUsed=true.
func Combine(vectorResults, keywordResults []ScoredResult, cfg Config, limit int) (matches []Match, fallbackUsed bool) {
	if len(keywordResults) == 0 && cfg.FallbackToVector {
		out := make([]Match, 0, limit)
		for i, r := range vectorResults {
			if i >= limit {
				break
			}
			out = append(out, Match{
				ChunkID:     r.ChunkID,
				Chunk:       r.Chunk,
				VectorScore: r.Score,
				VectorRank:  i + 1,
				RRFScore:    rrfContribution(i+1, cfg.VectorWeight, cfg.RRFK),
				Sources:     []string{"vector"},
			})
		}
		return out, true
	}

	byID := make(map[string]*Match)
	var order []string

	for i, r := range vectorResults {
		m, ok := byID[r.ChunkID]
		if !ok {
			m = &Match{ChunkID: r.ChunkID, Chunk: r.Chunk}
			byID[r.ChunkID] = m
			order = append(order, r.ChunkID)
		}
		m.VectorScore = r.Score
		m.VectorRank = i + 1
		m.Sources = appendUnique(m.Sources, "vector")
	}

	for i, r := range keywordResults {
		m, ok := byID[r.ChunkID]
		if !ok {
			m = &Match{ChunkID: r.ChunkID, Chunk: r.Chunk}
			byID[r.ChunkID] = m
			order = append(order, r.ChunkID)
		} else if m.Chunk == nil {
			m.Chunk = r.Chunk
		}
		m.KeywordScore = r.Score
		m.KeywordRank = i + 1
		m.Sources = appendUnique(m.Sources, "keyword")
	}

	results := make([]Match, 0, len(order))
	for _, id := range order {
		m := byID[id]
		m.RRFScore = rrfContribution(m.VectorRank, cfg.VectorWeight, cfg.RRFK) +
			rrfContribution(m.KeywordRank, cfg.KeywordWeight, cfg.RRFK)
		results = append(results, *m)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RRFScore > results[j].RRFScore
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, false
}

func appendUnique(sources []string, s string) []string {
	for _, existing := range sources {
		if existing == s {
			return sources
		}
	}
	return append(sources, s)
}
