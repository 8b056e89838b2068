package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/argus-dev/argus/internal/model"
)

// extractReferences walks root emitting a Reference for every
// identifier-like node whose parent is not a binder (§9). fromSymbol
// tracks the nearest enclosing definition name.
func extractReferences(root *sitter.Node, source []byte, file string) []model.Reference {
	var refs []model.Reference
	var walk func(node *sitter.Node, enclosing string)
	walk = func(node *sitter.Node, enclosing string) {
		count := int(node.ChildCount())
		for i := 0; i < count; i++ {
			child := node.Child(i)
			if child == nil {
				continue
			}
			kind := child.Type()
			nextEnclosing := enclosing
			if name := definitionNameIfAny(child, source); name != "" {
				nextEnclosing = name
			}

			if identifierKinds[kind] && !ExcludedParentKinds[node.Type()] {
				refs = append(refs, model.Reference{
					FromFile:   file,
					FromSymbol: enclosing,
					ToName:     child.Content(source),
					Line:       int(child.StartPoint().Row) + 1,
				})
			}

			walk(child, nextEnclosing)
		}
	}
	walk(root, "")
	return refs
}

// definitionNameIfAny returns the identifier naming node if node is
// itself a recognized definition node, so reference extraction can
// track the enclosing symbol the same way definition extraction does.
func definitionNameIfAny(node *sitter.Node, source []byte) string {
	switch node.Type() {
	case "function_item", "function_definition", "function_declaration",
		"method_declaration", "method_definition", "constructor_declaration",
		"struct_item", "enum_item", "trait_item", "impl_item",
		"class_definition", "class_declaration", "object_declaration",
		"interface_declaration", "enum_declaration", "trait_declaration",
		"struct_specifier", "enum_specifier", "class_specifier",
		"method", "class", "module", "namespace_definition",
		"struct_declaration", "protocol_declaration":
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			return nameNode.Content(source)
		}
		switch node.Type() {
		case "function_definition":
			return cFunctionName(node, source)
		case "impl_item":
			return implTypeName(node, source)
		default:
			return ""
		}
	default:
		return ""
	}
}
