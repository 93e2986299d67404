// Package chunker splits a source file into semantically coherent
// chunks at function/class/interface boundaries, handles
// recognized config files as a single typed chunk, and falls
// back to fixed-size line windows when a file can't be parsed or
// yields no semantic units.
package chunker

import (
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/kraklabs/codeintel/internal/langregistry"
	"github.com/kraklabs/codeintel/internal/model"
)

// Options configures chunking thresholds, bindable from CLI env vars.
type Options struct {
	NestedThreshold  int // default 50
	FallbackMaxLines int // default 500
	FallbackOverlap  int // default 50
}

// DefaultOptions returns the documented default thresholds.
func DefaultOptions() Options {
	return Options{
		NestedThreshold:  50,
		FallbackMaxLines: 500,
		FallbackOverlap:  50,
	}
}

// RawChunk is a chunk before chunk-id assignment and storage-specific
// metadata (repo/branch) are attached.
type RawChunk struct {
	ChunkType   model.ChunkType
	SymbolName  string
	SymbolNames []string
	Imports     []string
	LineStart   int
	LineEnd     int
	Content     string
}

// Chunker walks a language's AST and produces ordered, boundary
// respecting chunks.
type Chunker struct {
	registry *langregistry.Registry
	opts     Options
}

func New(registry *langregistry.Registry, opts Options) *Chunker {
	return &Chunker{registry: registry, opts: opts}
}

// Chunk splits file content by extension. Config files are handled by
// the caller before reaching this method (the orchestrator's file
// processor routes them to configchunker); this method covers the
// AST, module and fallback cases.
func (c *Chunker) Chunk(ext string, content string) []RawChunk {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	lang, ok := c.registry.Lookup(ext)
	if !ok || lang.Grammar == nil {
		return c.fallback(content)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang.Grammar)

	source := []byte(content)
	tree := parser.Parse(source, nil)
	if tree == nil {
		return c.fallback(content)
	}
	defer tree.Close()

	root := tree.RootNode()
	units := walkUnits(root, lang, source, false, 1)
	if len(units) == 0 {
		return c.moduleChunk(content)
	}

	lines := strings.Split(content, "\n")
	totalLines := len(lines)

	var chunks []RawChunk
	var covered [][2]int

	for _, u := range units {
		chunks = append(chunks, c.emitUnit(u, source, lines)...)
		covered = append(covered, [2]int{u.startLine, u.endLine})
	}

	sort.Slice(covered, func(i, j int) bool { return covered[i][0] < covered[j][0] })
	for _, gap := range uncoveredRanges(covered, totalLines) {
		gapLines := lines[gap[0]-1 : gap[1]]
		gapContent := strings.Join(gapLines, "\n")
		if strings.TrimSpace(gapContent) == "" {
			continue
		}
		chunks = append(chunks, RawChunk{
			ChunkType: model.ChunkOther,
			LineStart: gap[0],
			LineEnd:   gap[1],
			Content:   gapContent,
		})
	}

	sort.Slice(chunks, func(i, j int) bool { return chunks[i].LineStart < chunks[j].LineStart })
	return chunks
}

func (c *Chunker) moduleChunk(content string) []RawChunk {
	lines := strings.Split(content, "\n")
	return []RawChunk{{
		ChunkType: model.ChunkModule,
		LineStart: 1,
		LineEnd:   len(lines),
		Content:   content,
	}}
}

// emitUnit turns one outer semantic unit into its own chunk plus any
// additional chunks for nested units that meet NestedThreshold.
func (c *Chunker) emitUnit(u *astUnit, source []byte, lines []string) []RawChunk {
	var out []RawChunk

	// Nested units at any depth that individually meet the threshold
	// are emitted as additional standalone chunks; they stay inlined
	// in the parent's own content either way: both are emitted when the
	// inner unit crosses the threshold.
	var walkNested func(n *astUnit)
	walkNested = func(n *astUnit) {
		for _, child := range n.nested {
			if child.lineCount() >= c.opts.NestedThreshold {
				out = append(out, c.toRawChunk(child, source, nil))
			}
			walkNested(child)
		}
	}
	walkNested(u)

	symbolNames := []string{}
	if u.name != "" {
		symbolNames = append(symbolNames, u.name)
	}
	if u.kind == model.ChunkClass || u.kind == model.ChunkInterface {
		for _, child := range u.nested {
			if child.kind == model.ChunkMethod && child.name != "" {
				symbolNames = append(symbolNames, child.name)
			}
		}
	}

	out = append(out, c.toRawChunk(u, source, symbolNames))
	return out
}

func (c *Chunker) toRawChunk(u *astUnit, source []byte, symbolNames []string) RawChunk {
	content := u.leadingComments + nodeText(u.node, source)
	if symbolNames == nil && u.name != "" {
		symbolNames = []string{u.name}
	}
	return RawChunk{
		ChunkType:   u.kind,
		SymbolName:  u.name,
		SymbolNames: symbolNames,
		LineStart:   u.startLine,
		LineEnd:     u.endLine,
		Content:     content,
	}
}

// uncoveredRanges finds every maximal line range not covered by any
// semantic unit; all-blank ranges are included and skipped by the
// caller.
func uncoveredRanges(covered [][2]int, totalLines int) [][2]int {
	var gaps [][2]int
	pos := 1
	for _, r := range covered {
		if pos < r[0] {
			gaps = append(gaps, [2]int{pos, r[0] - 1})
		}
		if r[1]+1 > pos {
			pos = r[1] + 1
		}
	}
	if pos <= totalLines {
		gaps = append(gaps, [2]int{pos, totalLines})
	}
	return gaps
}

func nodeText(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return string(source[n.StartByte():n.EndByte()])
}
