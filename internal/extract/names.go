package extract

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/kraklabs/codeintel/internal/langregistry"
)

// getNodeName mirrors chunker's name-field lookup convention (the two
// packages stay decoupled rather than sharing an internal helper
// across an import edge that would otherwise only exist for this).
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
	return string(source[field.StartByte():field.EndByte()])
}

func declaratorName(node *sitter.Node, source []byte) string {
	declarator := node.ChildByFieldName("declarator")
	for declarator != nil {
		if declarator.Kind() == "identifier" || declarator.Kind() == "field_identifier" {
			return string(source[declarator.StartByte():declarator.EndByte()])
		}
		inner := declarator.ChildByFieldName("declarator")
		if inner == nil {
			return string(source[declarator.StartByte():declarator.EndByte()])
		}
		declarator = inner
	}
	return ""
}
