// Package relationships implements the Relationship Builder (C7):
// chunk-level imports and references edges inferred from symbol
// exports and content occurrence, grounded on the resolve-then-edge
// shape of internal/graph's Builder and internal/importgraph's
// edge-dedup convention.
package relationships

import (
	"regexp"

	"github.com/kraklabs/codeintel/internal/model"
)

// MinSymbolLength is the shortest symbol name considered for a
// references edge; shorter names produce too many false positives
// from word-boundary content scanning.
const MinSymbolLength = 3

// Build infers imports and references edges across every chunk in one
// repo/branch. Chunks are assumed to already belong to the same
// (repo_id, branch) scope; callers partition before calling.
func Build(chunks []*model.Chunk) []*model.Relationship {
	bySymbol := exportIndex(chunks)
	patterns := map[string]*regexp.Regexp{}

	seen := make(map[string]bool)
	var out []*model.Relationship

	imported := importEdges(chunks, bySymbol, seen)
	out = append(out, imported...)

	referenced := referenceEdges(chunks, seen, patterns)
	out = append(out, referenced...)

	return out
}

// exportIndex maps an exported symbol name to the chunks that export
// it. A symbol can be exported by more than one chunk (e.g. re-exports
// across files); all candidates are recorded and the importer links
// to every one, since the builder has no cross-file resolution step
// of its own (that's C6's job for file-level edges).
func exportIndex(chunks []*model.Chunk) map[string][]*model.Chunk {
	idx := make(map[string][]*model.Chunk)
	for _, c := range chunks {
		for _, sym := range c.Exports {
			idx[sym] = append(idx[sym], c)
		}
	}
	return idx
}

func edgeKey(source, target string, relType model.RelationshipType) string {
	return source + "\x00" + target + "\x00" + string(relType)
}

// importEdges emits (importing_chunk -> exporting_chunk, imports) for
// every symbol an importing chunk lists that some other chunk exports.
func importEdges(chunks []*model.Chunk, bySymbol map[string][]*model.Chunk, seen map[string]bool) []*model.Relationship {
	var out []*model.Relationship
	for _, importing := range chunks {
		for _, sym := range importing.Imports {
			for _, exporting := range bySymbol[sym] {
				if exporting.ID == importing.ID {
					continue
				}
				key := edgeKey(importing.ID, exporting.ID, model.RelationshipImports)
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, &model.Relationship{
					SourceChunkID: importing.ID,
					TargetChunkID: exporting.ID,
					Type:          model.RelationshipImports,
					Metadata:      map[string]any{"imported_symbol": sym},
				})
			}
		}
	}
	return out
}

// referenceEdges emits (using_chunk -> defining_chunk, references) for
// every symbol a chunk defines that appears, word-bounded, in another
// chunk's content — unless an imports edge already connects that pair
// in the same direction.
func referenceEdges(chunks []*model.Chunk, seen map[string]bool, patterns map[string]*regexp.Regexp) []*model.Relationship {
	var out []*model.Relationship
	for _, defining := range chunks {
		for _, sym := range defining.SymbolNames {
			if len(sym) < MinSymbolLength {
				continue
			}
			pattern := symbolPattern(sym, patterns)
			for _, using := range chunks {
				if using.ID == defining.ID {
					continue
				}
				key := edgeKey(using.ID, defining.ID, model.RelationshipImports)
				if seen[key] {
					continue // already an imports edge in this direction
				}
				refKey := edgeKey(using.ID, defining.ID, model.RelationshipReferences)
				if seen[refKey] {
					continue
				}
				if !pattern.MatchString(using.Content) {
					continue
				}
				seen[refKey] = true
				out = append(out, &model.Relationship{
					SourceChunkID: using.ID,
					TargetChunkID: defining.ID,
					Type:          model.RelationshipReferences,
					Metadata:      map[string]any{"symbol": sym},
				})
			}
		}
	}
	return out
}

// symbolPattern builds a word-boundary regex matching sym followed by
// `(`, `.`, or whitespace.
func symbolPattern(sym string, cache map[string]*regexp.Regexp) *regexp.Regexp {
	if re, ok := cache[sym]; ok {
		return re
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(sym) + `(\s|\(|\.)`)
	cache[sym] = re
	return re
}
