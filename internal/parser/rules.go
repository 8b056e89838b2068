package parser

import "github.com/argus-dev/argus/internal/model"

// Rules is the per-language node-kind table driving definition
// extraction (and reused by the Chunker). Each language is an
// independent entry; the cross-language differences in node kinds are
// real and are not papered over, only the traversal shape is shared.
type Rules struct {
	// Function maps a function/method-like node kind to the Symbol kind
	// it has when found outside any container scope.
	Function map[string]model.SymbolKind
	// AlwaysMethod holds node kinds that are Method regardless of scope
	// (Go's method_declaration already carries its receiver).
	AlwaysMethod map[string]bool
	// TypeLike maps a type-like node kind directly to its Symbol kind.
	TypeLike map[string]model.SymbolKind
	// Container maps a node kind that yields Method scope to the Symbol
	// kind the container itself is recorded as.
	Container map[string]model.SymbolKind
	// NameField is the tree-sitter field name holding the definition's
	// identifier.
	NameField string
}

// ExcludedParentKinds are binder node kinds; an identifier whose parent
// is one of these is a definition site, not a use site (§9).
var ExcludedParentKinds = map[string]bool{
	"function_item":        true,
	"function_definition":  true,
	"function_declaration": true,
	"struct_item":          true,
	"enum_item":             true,
	"trait_item":            true,
	"class_definition":      true,
	"class_declaration":     true,
	"method_definition":     true,
	"variable_declarator":   true,
	"type_spec":             true,
}

var identifierKinds = map[string]bool{
	"identifier":                    true,
	"type_identifier":               true,
	"field_identifier":              true,
	"property_identifier":           true,
	"simple_identifier":             true,
	"shorthand_property_identifier": true,
	"constant":                      true,
}

// LangRules returns the built-in node-kind table for every supported
// language, keyed by lang.Language string value.
func LangRules() map[string]Rules {
	return map[string]Rules{
		"Rust": {
			Function: map[string]model.SymbolKind{"function_item": model.KindFunction},
			TypeLike: map[string]model.SymbolKind{
				"struct_item": model.KindStruct,
				"enum_item":   model.KindEnum,
				"trait_item":  model.KindTrait,
			},
			Container: map[string]model.SymbolKind{"impl_item": model.KindImpl},
			NameField: "name",
		},
		"Python": {
			Function:  map[string]model.SymbolKind{"function_definition": model.KindFunction},
			Container: map[string]model.SymbolKind{"class_definition": model.KindClass},
			NameField: "name",
		},
		"TypeScript": {
			Function: map[string]model.SymbolKind{
				"function_declaration": model.KindFunction,
				"method_definition":    model.KindMethod,
			},
			Container: map[string]model.SymbolKind{"class_declaration": model.KindClass},
			NameField: "name",
		},
		"JavaScript": {
			Function: map[string]model.SymbolKind{
				"function_declaration": model.KindFunction,
				"method_definition":    model.KindMethod,
			},
			Container: map[string]model.SymbolKind{"class_declaration": model.KindClass},
			NameField: "name",
		},
		"Go": {
			Function:     map[string]model.SymbolKind{"function_declaration": model.KindFunction},
			AlwaysMethod: map[string]bool{"method_declaration": true},
			NameField:    "name",
			// type_spec is handled specially because its Symbol kind
			// depends on its child type node.
		},
		"Java": {
			Function: map[string]model.SymbolKind{
				"method_declaration":      model.KindMethod,
				"constructor_declaration": model.KindMethod,
			},
			TypeLike: map[string]model.SymbolKind{
				"interface_declaration": model.KindInterface,
				"enum_declaration":      model.KindEnum,
			},
			Container: map[string]model.SymbolKind{"class_declaration": model.KindClass},
			NameField: "name",
		},
		"C": {
			Function: map[string]model.SymbolKind{"function_definition": model.KindFunction},
			TypeLike: map[string]model.SymbolKind{
				"struct_specifier": model.KindStruct,
				"enum_specifier":   model.KindEnum,
			},
			NameField: "name",
		},
		"Cpp": {
			Function: map[string]model.SymbolKind{"function_definition": model.KindFunction},
			TypeLike: map[string]model.SymbolKind{
				"struct_specifier": model.KindStruct,
				"enum_specifier":   model.KindEnum,
			},
			Container: map[string]model.SymbolKind{"class_specifier": model.KindClass},
			NameField: "name",
		},
		"Ruby": {
			Function: map[string]model.SymbolKind{"method": model.KindFunction},
			Container: map[string]model.SymbolKind{
				"class":  model.KindClass,
				"module": model.KindModule,
			},
			NameField: "name",
		},
		"Php": {
			Function: map[string]model.SymbolKind{
				"function_definition": model.KindFunction,
				"method_declaration":  model.KindMethod,
			},
			TypeLike: map[string]model.SymbolKind{
				"interface_declaration": model.KindInterface,
				"trait_declaration":     model.KindTrait,
			},
			Container: map[string]model.SymbolKind{
				"class_declaration":    model.KindClass,
				"namespace_definition": model.KindModule,
			},
			NameField: "name",
		},
		"Kotlin": {
			Function: map[string]model.SymbolKind{"function_declaration": model.KindFunction},
			TypeLike: map[string]model.SymbolKind{"interface_declaration": model.KindInterface},
			Container: map[string]model.SymbolKind{
				"class_declaration":  model.KindClass,
				"object_declaration": model.KindClass,
			},
			NameField: "name",
		},
		"Swift": {
			Function: map[string]model.SymbolKind{"function_declaration": model.KindFunction},
			TypeLike: map[string]model.SymbolKind{
				"struct_declaration":   model.KindStruct,
				"enum_declaration":     model.KindEnum,
				"protocol_declaration": model.KindInterface,
			},
			Container: map[string]model.SymbolKind{"class_declaration": model.KindClass},
			NameField: "name",
		},
	}
}
