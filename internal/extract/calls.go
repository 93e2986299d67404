package extract

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/kraklabs/codeintel/internal/langregistry"
	"github.com/kraklabs/codeintel/internal/model"
)

// callConfig names the call-expression kind and the member-access
// kind (with its object/property field names) for one language
// family, grounded on original_source/test_call_graph.py's expected
// CallSite shape (callee_name, receiver, is_method_call).
type callConfig struct {
	callKind        string
	calleeField     string
	memberKind      string
	memberObjField  string
	memberPropField string
}

var callConfigs = map[string]callConfig{
	"javascript": {"call_expression", "function", "member_expression", "object", "property"},
	"typescript": {"call_expression", "function", "member_expression", "object", "property"},
	"tsx":        {"call_expression", "function", "member_expression", "object", "property"},
	"go":         {"call_expression", "function", "selector_expression", "operand", "field"},
	"python":     {"call", "function", "attribute", "object", "attribute"},
}

// CallSites walks the tree collecting every call expression as a
// faithful, unfiltered model.CallSite — built-in filtering (console.*,
// Array.prototype methods, and so on) is the call-graph builder's
// policy, not this extractor's.
func CallSites(root *sitter.Node, lang *langregistry.Language, source []byte) []model.CallSite {
	cfg, ok := callConfigs[lang.Name]
	if !ok {
		return nil
	}

	var out []model.CallSite
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Kind() == cfg.callKind {
			if site, ok := buildCallSite(n, cfg, source); ok {
				out = append(out, site)
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

func buildCallSite(call *sitter.Node, cfg callConfig, source []byte) (model.CallSite, bool) {
	callee := call.ChildByFieldName(cfg.calleeField)
	if callee == nil {
		return model.CallSite{}, false
	}
	line := int(call.StartPosition().Row) + 1

	if callee.Kind() == cfg.memberKind {
		obj := callee.ChildByFieldName(cfg.memberObjField)
		prop := callee.ChildByFieldName(cfg.memberPropField)
		if prop == nil {
			return model.CallSite{}, false
		}
		receiver := ""
		if obj != nil {
			receiver = nodeText(obj, source)
		}
		return model.CallSite{
			CalleeName: nodeText(prop, source),
			Receiver:   receiver,
			IsMethod:   true,
			IsDynamic:  false,
			Line:       line,
		}, true
	}

	return model.CallSite{
		CalleeName: nodeText(callee, source),
		IsMethod:   false,
		IsDynamic:  false,
		Line:       line,
	}, true
}

func nodeText(n *sitter.Node, source []byte) string {
	return string(source[n.StartByte():n.EndByte()])
}
