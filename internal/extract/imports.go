// Package extract pulls import specifiers, exported symbol names, and
// call sites out of a parsed file, independent of the
// chunk boundaries chunker.Chunk draws. Extraction is deliberately
// faithful rather than policy-laden: filtering out built-ins or
// resolving a call to a definition is the caller's job (graph
// builders), not this package's.
package extract

import (
	"regexp"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/kraklabs/codeintel/internal/langregistry"
)

// importPattern extracts the raw specifier from one import-kind
// node's source text, per language family. Node text is matched
// rather than walking named fields, since tree-sitter's field names
// for import targets are not uniform enough across the pack's ten
// grammars to address generically.
var importPattern = map[string]*regexp.Regexp{
	"python":     regexp.MustCompile(`^\s*(?:from\s+(\S+)\s+import|import\s+(\S+))`),
	"javascript": regexp.MustCompile(`['"` + "`" + `]([^'"` + "`" + `]+)['"` + "`" + `]`),
	"typescript": regexp.MustCompile(`['"` + "`" + `]([^'"` + "`" + `]+)['"` + "`" + `]`),
	"tsx":        regexp.MustCompile(`['"` + "`" + `]([^'"` + "`" + `]+)['"` + "`" + `]`),
	"go":         regexp.MustCompile(`"([^"]+)"`),
	"rust":       regexp.MustCompile(`^\s*use\s+([a-zA-Z0-9_:]+)`),
	"java":       regexp.MustCompile(`^\s*import\s+(?:static\s+)?([a-zA-Z0-9_.]+)`),
	"c":          regexp.MustCompile(`#include\s*[<"]([^>"]+)[>"]`),
	"cpp":        regexp.MustCompile(`#include\s*[<"]([^>"]+)[>"]`),
	"ruby":       regexp.MustCompile(`require(?:_relative)?\s*['"]([^'"]+)['"]`),
	"php":        regexp.MustCompile(`use\s+([a-zA-Z0-9_\\]+)`),
}

// Imports walks the tree collecting one raw specifier per import-kind
// node. A JS/TS call_expression only counts when it is a require(...)
// or dynamic import(...) call — plain function calls share the
// call_expression kind and must not be misread as imports.
func Imports(root *sitter.Node, lang *langregistry.Language, source []byte) []string {
	pattern, ok := importPattern[lang.Name]
	if !ok {
		return nil
	}

	var out []string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if lang.ImportKinds[n.Kind()] {
			text := string(source[n.StartByte():n.EndByte()])
			if n.Kind() == "call_expression" && !isRequireOrDynamicImport(text) {
				// fall through to children; not every call is an import
			} else if m := pattern.FindStringSubmatch(text); m != nil {
				spec := firstNonEmpty(m[1:])
				if spec != "" {
					out = append(out, spec)
				}
			}
		}
		childCount := int(n.ChildCount())
		for i := 0; i < childCount; i++ {
			walk(n.Child(uint(i)))
		}
	}
	walk(root)
	return out
}

func isRequireOrDynamicImport(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasPrefix(trimmed, "require(") || strings.HasPrefix(trimmed, "import(")
}

func firstNonEmpty(groups []string) string {
	for _, g := range groups {
		if g != "" {
			return g
		}
	}
	return ""
}
