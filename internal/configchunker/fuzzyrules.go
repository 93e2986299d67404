package configchunker

import (
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// canonicalESLintRules is a representative set of core ESLint rule
// names. Plugin-scoped variants ("@typescript-eslint/no-unused-vars",
// "react/no-unused-vars") fuzzy-match against this set so retrieval
// can find a config chunk by the rule family, not just one plugin's
// exact spelling of it.
var canonicalESLintRules = []string{
	"no-unused-vars", "no-undef", "no-console", "eqeqeq", "no-var",
	"prefer-const", "no-shadow", "no-empty", "no-explicit-any",
	"no-duplicate-imports", "no-use-before-define", "camelcase",
}

var (
	ruleIndex     bleve.Index
	ruleIndexOnce sync.Once
)

func fuzzyRuleIndex() bleve.Index {
	ruleIndexOnce.Do(func() {
		idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
		if err != nil {
			return
		}

		batch := idx.NewBatch()
		for _, name := range canonicalESLintRules {
			if err := batch.Index(name, map[string]string{"name": name}); err != nil {
				return
			}
		}
		if err := idx.Batch(batch); err != nil {
			return
		}
		ruleIndex = idx
	})
	return ruleIndex
}

// bareRuleName strips an ESLint rule name's plugin scope
// ("@typescript-eslint/no-unused-vars" -> "no-unused-vars").
func bareRuleName(rule string) string {
	if i := strings.LastIndex(rule, "/"); i >= 0 {
		return rule[i+1:]
	}
	return rule
}

// canonicalRuleNames resolves each rule to its closest canonical
// core-rule spelling via bleve fuzzy matching, returning the distinct
// canonical names found (a rule that already is its own canonical
// spelling, or that matches nothing closely, contributes nothing new).
func canonicalRuleNames(rules []string) []string {
	idx := fuzzyRuleIndex()
	if idx == nil {
		return nil
	}

	seen := make(map[string]bool, len(rules))
	var out []string
	for _, rule := range rules {
		bare := bareRuleName(rule)

		query := bleve.NewMatchQuery(bare)
		query.SetField("name")
		query.Fuzziness = 2
		req := bleve.NewSearchRequest(query)
		req.Size = 1

		result, err := idx.Search(req)
		if err != nil || len(result.Hits) == 0 {
			continue
		}
		canonical := result.Hits[0].ID
		if canonical == rule || seen[canonical] {
			continue
		}
		seen[canonical] = true
		out = append(out, canonical)
	}
	return out
}
