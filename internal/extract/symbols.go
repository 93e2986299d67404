package extract

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/kraklabs/codeintel/internal/langregistry"
)

// Symbols returns every declared function/class/method/interface name
// anywhere in the file, depth-unbound (unlike Exports' depth-1 default
// reading), for the file-level symbol index.
func Symbols(root *sitter.Node, lang *langregistry.Language, source []byte) []string {
	var out []string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		kind := n.Kind()
		if lang.FunctionKinds[kind] || lang.ClassKinds[kind] || lang.InterfaceKinds[kind] || lang.MethodKinds[kind] {
			if name := getNodeName(n, lang, source); name != "" {
				out = append(out, name)
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
