package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/argus-dev/argus/internal/model"
)

// Definition is one definition node found by ExtractDefinitions, kept
// at the AST level so both the Parser (which reduces it to a Symbol)
// and the Chunker (which needs the raw node for its content slice) can
// reuse the same traversal.
type Definition struct {
	Node       *sitter.Node
	Name       string
	Kind       model.SymbolKind
	Scope      string     // enclosing container's name, or "" at top level
	ScopeKind  model.SymbolKind // enclosing container's kind, meaningful iff Scope != ""
}

// ExtractDefinitions walks root recognising each node kind in r,
// returning every definition in the order encountered.
func ExtractDefinitions(root *sitter.Node, source []byte, r Rules) []Definition {
	w := &definitionWalker{rules: r, source: source}
	w.walk(root, "", "")
	return w.defs
}

type definitionWalker struct {
	rules  Rules
	source []byte
	defs   []Definition
}

func (w *definitionWalker) walk(node *sitter.Node, scope string, scopeKind model.SymbolKind) {
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		kind := child.Type()

		if symKind, ok := w.rules.Container[kind]; ok {
			name := fieldName(child, w.rules.NameField, w.source)
			if name == "" && kind == "impl_item" {
				// Rust impl_item has no "name" field: the owner is the
				// Self type under field "type".
				name = implTypeName(child, w.source)
			}
			if name != "" {
				w.defs = append(w.defs, Definition{Node: child, Name: name, Kind: symKind, Scope: scope, ScopeKind: scopeKind})
			}
			w.walk(child, name, symKind)
			continue
		}

		if symKind, ok := w.rules.TypeLike[kind]; ok {
			name := fieldName(child, w.rules.NameField, w.source)
			if name != "" {
				w.defs = append(w.defs, Definition{Node: child, Name: name, Kind: symKind, Scope: scope, ScopeKind: scopeKind})
			}
			w.walk(child, scope, scopeKind)
			continue
		}

		if w.rules.AlwaysMethod[kind] {
			name := fieldName(child, w.rules.NameField, w.source)
			if name != "" {
				w.defs = append(w.defs, Definition{Node: child, Name: name, Kind: model.KindMethod, Scope: scope, ScopeKind: scopeKind})
			}
			w.walk(child, scope, scopeKind)
			continue
		}

		if symKind, ok := w.rules.Function[kind]; ok {
			name := fieldName(child, w.rules.NameField, w.source)
			if name == "" && kind == "function_definition" {
				// C/C++: no direct "name" field; the identifier lives
				// inside a nested function_declarator.
				name = cFunctionName(child, w.source)
			}
			if name != "" {
				effKind := symKind
				if scope != "" {
					effKind = model.KindMethod
				}
				w.defs = append(w.defs, Definition{Node: child, Name: name, Kind: effKind, Scope: scope, ScopeKind: scopeKind})
			}
			w.walk(child, scope, scopeKind)
			continue
		}

		if kind == "type_spec" {
			if symKind, ok := goTypeSpecKind(child); ok {
				name := fieldName(child, w.rules.NameField, w.source)
				if name != "" {
					w.defs = append(w.defs, Definition{Node: child, Name: name, Kind: symKind, Scope: scope, ScopeKind: scopeKind})
				}
			}
			w.walk(child, scope, scopeKind)
			continue
		}

		w.walk(child, scope, scopeKind)
	}
}

func fieldName(node *sitter.Node, field string, source []byte) string {
	if field == "" {
		field = "name"
	}
	nameNode := node.ChildByFieldName(field)
	if nameNode == nil {
		return ""
	}
	return nameNode.Content(source)
}

// goTypeSpecKind classifies a Go type_spec node by its underlying type
// node: struct_type -> Struct, interface_type -> Interface.
func goTypeSpecKind(node *sitter.Node) (model.SymbolKind, bool) {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return "", false
	}
	switch typeNode.Type() {
	case "struct_type":
		return model.KindStruct, true
	case "interface_type":
		return model.KindInterface, true
	default:
		return "", false
	}
}

// implTypeName recovers a Rust impl_item's owner name from its "type"
// field (the Self type), since impl_item carries no "name" field
// itself. The type field may hold a type_identifier directly, or one
// nested inside a generic_type (e.g. impl<T> Wrapper<T>); the first
// type_identifier found in that subtree is the owner.
func implTypeName(node *sitter.Node, source []byte) string {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return ""
	}
	if found := firstTypeIdentifier(typeNode); found != nil {
		return found.Content(source)
	}
	return ""
}

func firstTypeIdentifier(node *sitter.Node) *sitter.Node {
	if node.Type() == "type_identifier" {
		return node
	}
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if found := firstTypeIdentifier(child); found != nil {
			return found
		}
	}
	return nil
}

// cFunctionName descends through C/C++ declarator wrappers (pointer,
// parenthesized, etc.) to find the identifier naming a function
// definition.
func cFunctionName(node *sitter.Node, source []byte) string {
	declarator := node.ChildByFieldName("declarator")
	for declarator != nil {
		switch declarator.Type() {
		case "identifier", "field_identifier":
			return declarator.Content(source)
		case "function_declarator", "pointer_declarator", "reference_declarator":
			inner := declarator.ChildByFieldName("declarator")
			if inner == nil {
				return ""
			}
			declarator = inner
		case "qualified_identifier":
			if name := declarator.ChildByFieldName("name"); name != nil {
				return name.Content(source)
			}
			return declarator.Content(source)
		default:
			return ""
		}
	}
	return ""
}
