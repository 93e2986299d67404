package extract

import (
	"regexp"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/kraklabs/codeintel/internal/langregistry"
)

var jsExportName = regexp.MustCompile(`export\s+(?:default\s+)?(?:async\s+)?(?:function\*?|class|const|let|var|interface|type)\s+([A-Za-z_$][A-Za-z0-9_$]*)`)

// Exports returns the symbol names a file makes available to other
// files. JS/TS/TSX read export_statement text; Go treats a top-level
// (depth-1) declaration's capitalized identifier as exported, per
// Go's own visibility rule rather than a syntactic export keyword;
// languages with neither an export keyword nor a capitalization
// convention (Python, Ruby, PHP, C/C++) report every top-level
// semantic unit's name, matching the conservative original default of
// "importable until proven otherwise".
func Exports(root *sitter.Node, lang *langregistry.Language, source []byte) []string {
	switch lang.Name {
	case "javascript", "typescript", "tsx":
		return jsExports(root, lang, source)
	case "go":
		return goExports(root, lang, source)
	default:
		return topLevelNames(root, lang, source, 1)
	}
}

func jsExports(root *sitter.Node, lang *langregistry.Language, source []byte) []string {
	var out []string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if lang.ExportKinds[n.Kind()] {
			text := string(source[n.StartByte():n.EndByte()])
			if m := jsExportName.FindStringSubmatch(text); m != nil {
				out = append(out, m[1])
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

func goExports(root *sitter.Node, lang *langregistry.Language, source []byte) []string {
	names := topLevelNames(root, lang, source, 1)
	var out []string
	for _, n := range names {
		if n != "" && isUpper(n[0]) {
			out = append(out, n)
		}
	}
	return out
}

func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }

// topLevelNames collects the declared name of every function/class/
// interface node at depth (the root is depth 0, so 1 = the file's
// direct children).
func topLevelNames(root *sitter.Node, lang *langregistry.Language, source []byte, depth int) []string {
	var out []string
	var walk func(n *sitter.Node, d int)
	walk = func(n *sitter.Node, d int) {
		if n == nil {
			return
		}
		kind := n.Kind()
		if d == depth && (lang.FunctionKinds[kind] || lang.ClassKinds[kind] || lang.InterfaceKinds[kind]) {
			if name := getNodeName(n, lang, source); name != "" {
				out = append(out, name)
			}
			return
		}
		childCount := int(n.ChildCount())
		for i := 0; i < childCount; i++ {
			walk(n.Child(uint(i)), d+1)
		}
	}
	walk(root, 0)
	return out
}
