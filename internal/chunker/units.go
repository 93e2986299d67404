package chunker

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/kraklabs/codeintel/internal/langregistry"
	"github.com/kraklabs/codeintel/internal/model"
)

// astUnit is one discovered semantic boundary: a function, class,
// method, or interface node, together with whatever nested semantic
// units its own subtree contains.
type astUnit struct {
	node            *sitter.Node
	kind            model.ChunkType
	name            string
	startLine       int
	endLine         int
	leadingComments string
	nested          []*astUnit
}

func (u *astUnit) lineCount() int {
	return u.endLine - u.startLine + 1
}

// walkUnits performs a top-down scan: an outer semantic unit is
// picked before recursing into its own
// children, so outer and nested units never collide at the same
// level. Every semantic unit's own body is in turn scanned one level
// deeper for nested units — methods inside classes, and functions
// nested inside functions alike, generalized symmetrically across
// both nesting shapes rather than only the method-in-class case).
func walkUnits(node *sitter.Node, lang *langregistry.Language, source []byte, parentIsClass bool, depth int) []*astUnit {
	if node == nil {
		return nil
	}

	kind := node.Kind()
	// A method kind with no class-like parent is emitted as a function.
	isFunction := lang.FunctionKinds[kind] || (lang.MethodKinds[kind] && !parentIsClass)
	isClass := lang.ClassKinds[kind]
	isMethod := lang.IsMethod(kind, parentIsClass)
	isInterface := lang.InterfaceKinds[kind]

	if isFunction || isClass || isMethod || isInterface {
		return []*astUnit{buildUnit(node, lang, source, isClass, isMethod, isInterface, depth)}
	}

	var units []*astUnit
	childCount := int(node.ChildCount())
	for i := 0; i < childCount; i++ {
		child := node.Child(uint(i))
		units = append(units, walkUnits(child, lang, source, parentIsClass, depth)...)
	}
	return units
}

func buildUnit(node *sitter.Node, lang *langregistry.Language, source []byte, isClass, isMethod, isInterface bool, depth int) *astUnit {
	var chunkType model.ChunkType
	switch {
	case isClass:
		chunkType = model.ChunkClass
	case isInterface:
		chunkType = model.ChunkInterface
	case isMethod:
		chunkType = model.ChunkMethod
	default:
		chunkType = model.ChunkFunction
	}

	var nested []*astUnit
	childCount := int(node.ChildCount())
	for i := 0; i < childCount; i++ {
		child := node.Child(uint(i))
		nested = append(nested, walkUnits(child, lang, source, isClass, depth+1)...)
	}

	startLine := int(node.StartPosition().Row) + 1
	endLine := int(node.EndPosition().Row) + 1

	return &astUnit{
		node:            node,
		kind:            chunkType,
		name:            getNodeName(node, lang, source),
		startLine:       startLine,
		endLine:         endLine,
		leadingComments: getLeadingComments(node, lang, source),
		nested:          nested,
	}
}

// getNodeName resolves the declared identifier of a semantic-unit
// node. Most grammars expose it as a named field ("name"); C and C++
// bury it inside a function_declarator wrapper, so NameField
// "declarator" triggers an unwrap-then-recurse lookup instead,
// grounded on original_source/ast_chunker.py's get_node_name.
func getNodeName(node *sitter.Node, lang *langregistry.Language, source []byte) string {
	if lang.NameField == "" {
		return ""
	}
	if lang.NameField == "declarator" {
		return declaratorName(node, source)
	}
	field := node.ChildByFieldName(lang.NameField)
	if field == nil {
		return ""
	}
	return nodeText(field, source)
}

// declaratorName unwraps C/C++ function_declarator / pointer_declarator
// wrappers to reach the innermost identifier-bearing declarator.
func declaratorName(node *sitter.Node, source []byte) string {
	declarator := node.ChildByFieldName("declarator")
	for declarator != nil {
		if declarator.Kind() == "identifier" || declarator.Kind() == "field_identifier" {
			return nodeText(declarator, source)
		}
		inner := declarator.ChildByFieldName("declarator")
		if inner == nil {
			return nodeText(declarator, source)
		}
		declarator = inner
	}
	return ""
}

// getLeadingComments walks backward over preceding named siblings,
// collecting a contiguous run of comment/docstring nodes immediately
// above the unit (tolerating a single blank line between them),
// grounded on original_source/ast_chunker.py's get_leading_comments.
func getLeadingComments(node *sitter.Node, lang *langregistry.Language, source []byte) string {
	var parts []string
	sibling := node.PrevNamedSibling()
	lastStartLine := int(node.StartPosition().Row)
	for sibling != nil {
		kind := sibling.Kind()
		if !lang.CommentKinds[kind] && !lang.DocstringKinds[kind] {
			break
		}
		siblingEndLine := int(sibling.EndPosition().Row)
		if lastStartLine-siblingEndLine > 2 {
			break
		}
		parts = append(parts, nodeText(sibling, source))
		lastStartLine = int(sibling.StartPosition().Row)
		sibling = sibling.PrevNamedSibling()
	}
	if len(parts) == 0 {
		return ""
	}
	// parts were collected nearest-first; restore source order.
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "\n") + "\n"
}
