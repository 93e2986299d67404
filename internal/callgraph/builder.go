// Package callgraph implements the Call-graph Builder (C8): resolves
// call sites extracted by internal/extract into calls relationships
// between chunks, applying the built-in filtering that extraction
// deliberately leaves undone (internal/extract/calls.go), grounded on
// internal/graph/extractor.go's isBuiltin lookup-set idiom.
package callgraph

import (
	"fmt"
	"sort"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/kraklabs/codeintel/internal/extract"
	"github.com/kraklabs/codeintel/internal/langregistry"
	"github.com/kraklabs/codeintel/internal/model"
)

// builtins lists call targets that are never resolvable against an
// indexed chunk, so attempting resolution for them is pointless. Not
// exhaustive — it covers the common cross-language offenders.
var builtins = map[string]bool{
	"log":       true,
	"print":     true,
	"println":   true,
	"printf":    true,
	"sprintf":   true,
	"len":       true,
	"append":    true,
	"make":      true,
	"panic":     true,
	"recover":   true,
	"require":   true,
	"isinstance": true,
	"super":     true,
}

func isBuiltinCall(cs model.CallSite) bool {
	if cs.Receiver == "console" || cs.Receiver == "Math" || cs.Receiver == "Object" || cs.Receiver == "JSON" {
		return true
	}
	return builtins[cs.CalleeName]
}

// symbolIndex maps a symbol name to every chunk that declares it in
// SymbolNames, built once per repo/branch build.
type symbolIndex map[string][]*model.Chunk

func buildSymbolIndex(chunks []*model.Chunk) symbolIndex {
	idx := make(symbolIndex)
	for _, c := range chunks {
		for _, sym := range c.SymbolNames {
			idx[sym] = append(idx[sym], c)
		}
	}
	return idx
}

// Build extracts call sites from every chunk in a supported language
// and resolves them into calls relationships, per the 3-tier
// priority order below.
func Build(chunks []*model.Chunk, registry *langregistry.Registry) ([]*model.Relationship, error) {
	index := buildSymbolIndex(chunks)

	seen := make(map[string]bool)
	var out []*model.Relationship

	for _, chunk := range chunks {
		lang, ok := registry.LookupByName(chunk.Language)
		if !ok || lang.Grammar == nil {
			continue
		}

		calls, err := extractCallSites(chunk, lang)
		if err != nil {
			continue // per-chunk failures are skipped, never abort the build
		}

		for _, cs := range calls {
			if cs.IsDynamic || cs.CalleeName == "" || isBuiltinCall(cs) {
				continue
			}

			target := resolve(chunk, cs, index)
			if target == nil || target.ID == chunk.ID {
				continue
			}

			key := chunk.ID + "\x00" + target.ID + "\x00" + cs.CalleeName
			if seen[key] {
				continue
			}
			seen[key] = true

			meta := map[string]any{"callee_name": cs.CalleeName, "line": cs.Line}
			if cs.Receiver != "" {
				meta["receiver"] = cs.Receiver
			}
			out = append(out, &model.Relationship{
				SourceChunkID: chunk.ID,
				TargetChunkID: target.ID,
				Type:          model.RelationshipCalls,
				Metadata:      meta,
			})
		}
	}

	return out, nil
}

func extractCallSites(chunk *model.Chunk, lang *langregistry.Language) ([]model.CallSite, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang.Grammar)

	source := []byte(chunk.Content)
	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse chunk %s", chunk.ID)
	}
	defer tree.Close()
	return extract.CallSites(tree.RootNode(), lang, source), nil
}

// resolve applies the 3-tier priority order: a this/self/cls receiver
// resolves to a same-file chunk only, then a named receiver resolves
// to a chunk declaring both receiver and callee, then a plain call
// resolves same-file first, else by pickTie over every candidate.
func resolve(source *model.Chunk, cs model.CallSite, index symbolIndex) *model.Chunk {
	// Tier 1: this/self receiver resolves within the same file only.
	if cs.IsMethod && isSelfReceiver(cs.Receiver) {
		for _, c := range index[cs.CalleeName] {
			if c.FilePath == source.FilePath {
				return c
			}
		}
		return nil
	}

	// Tier 2: capitalized or bare-identifier receiver — a chunk whose
	// SymbolNames contains both the receiver and the callee (a static
	// method defined alongside its owning type in one chunk).
	if cs.IsMethod && cs.Receiver != "" {
		candidates := index[cs.CalleeName]
		var matches []*model.Chunk
		for _, c := range candidates {
			if containsSymbol(c.SymbolNames, cs.Receiver) {
				matches = append(matches, c)
			}
		}
		if m := pickTie(source, matches); m != nil {
			return m
		}
	}

	// Tier 3: plain function call — same-file first, else any chunk.
	return resolveSameFile(source, cs.CalleeName, index)
}

func isSelfReceiver(receiver string) bool {
	return receiver == "this" || receiver == "self" || receiver == "cls"
}

func containsSymbol(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

func resolveSameFile(source *model.Chunk, calleeName string, index symbolIndex) *model.Chunk {
	candidates := index[calleeName]
	return pickTie(source, candidates)
}

// pickTie breaks a tie between candidates: a chunk in the same file as
// source wins; otherwise the candidate with the smallest chunk id.
func pickTie(source *model.Chunk, candidates []*model.Chunk) *model.Chunk {
	if len(candidates) == 0 {
		return nil
	}
	for _, c := range candidates {
		if c.FilePath == source.FilePath {
			return c
		}
	}
	sorted := append([]*model.Chunk(nil), candidates...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return sorted[0]
}
