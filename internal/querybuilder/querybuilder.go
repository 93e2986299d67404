// Package querybuilder implements the BM25 query builder (C11): it
// turns a raw search string into a full-text expression that also
// matches camelCase/snake_case identifier variants, and scores exact
// or variant symbol-name matches with a boost multiplier.
package querybuilder

import (
	"regexp"
	"strings"
)

// DefaultExactMatchBoost is the multiplier applied when the raw query
// exactly matches a chunk's symbol name.
const DefaultExactMatchBoost = 3.0

// VariantMatchFactor scales DefaultExactMatchBoost down for a
// variant-only match (camelCase/snake_case normalization, not a literal
// match).
const VariantMatchFactor = 0.7

var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// Variants normalizes an identifier into the set of forms it should
// match under: itself lowercased, its camelCase split, the snake_case
// join of that split, its snake_case split, and the camelCase join of
// that split. Order is first-seen, duplicates removed.
func Variants(identifier string) []string {
	lower := strings.ToLower(identifier)
	variations := []string{lower}

	camelSplit := camelBoundary.ReplaceAllString(identifier, "$1 $2")
	camelParts := strings.Fields(strings.ToLower(camelSplit))
	if len(camelParts) > 1 {
		variations = append(variations, camelParts...)
		variations = append(variations, strings.Join(camelParts, "_"))
	}

	snakeParts := strings.Split(lower, "_")
	if len(snakeParts) > 1 {
		variations = append(variations, snakeParts...)
		variations = append(variations, camelJoin(snakeParts))
	}

	return dedupe(variations)
}

func camelJoin(parts []string) string {
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(p)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return strings.ToLower(b.String())
}

func dedupe(vals []string) []string {
	seen := make(map[string]bool, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Tokenize splits a raw query on whitespace.
func Tokenize(query string) []string {
	return strings.Fields(query)
}

// BuildExpression builds an FTS5 MATCH expression: each token expands
// to an OR group of its identifier variants, and the groups are
// themselves OR-joined, so a match against any variant of any token is
// sufficient.
func BuildExpression(query string) string {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return query
	}

	groups := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		variants := Variants(tok)
		if len(variants) == 0 {
			continue
		}
		if len(variants) == 1 {
			groups = append(groups, escapeTerm(variants[0]))
			continue
		}
		escaped := make([]string, len(variants))
		for i, v := range variants {
			escaped[i] = escapeTerm(v)
		}
		groups = append(groups, "("+strings.Join(escaped, " OR ")+")")
	}

	if len(groups) == 0 {
		return query
	}
	return strings.Join(groups, " OR ")
}

// escapeTerm guards a bare FTS5 term against characters that would
// otherwise be parsed as query syntax.
func escapeTerm(term string) string {
	if strings.ContainsAny(term, `"().:*`) {
		return `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
	}
	return term
}

// ExactMatchBoost returns the multiplier a chunk's score should
// receive given the raw query and that chunk's symbol names:
// DefaultExactMatchBoost for a literal (case-insensitive) match,
// DefaultExactMatchBoost*VariantMatchFactor for a normalized-variant
// match, or 1.0 for no match.
func ExactMatchBoost(query string, symbolNames []string) float64 {
	if len(symbolNames) == 0 {
		return 1.0
	}

	queryNormalized := strings.ToLower(strings.TrimSpace(query))
	queryVariants := setOf(Variants(query))

	for _, symbol := range symbolNames {
		symbolLower := strings.ToLower(symbol)
		if queryNormalized == symbolLower {
			return DefaultExactMatchBoost
		}
		for _, v := range Variants(symbol) {
			if queryVariants[v] {
				return DefaultExactMatchBoost * VariantMatchFactor
			}
		}
	}

	return 1.0
}

func setOf(vals []string) map[string]bool {
	out := make(map[string]bool, len(vals))
	for _, v := range vals {
		out[v] = true
	}
	return out
}
