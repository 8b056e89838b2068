// Package lang maps file extensions to the languages argus understands
// and to their tree-sitter grammars.
package lang

import (
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/swift"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language is one of the source languages argus can parse.
type Language string

const (
	Rust       Language = "Rust"
	Python     Language = "Python"
	TypeScript Language = "TypeScript"
	JavaScript Language = "JavaScript"
	Go         Language = "Go"
	Java       Language = "Java"
	C          Language = "C"
	Cpp        Language = "Cpp"
	Ruby       Language = "Ruby"
	Php        Language = "Php"
	Kotlin     Language = "Kotlin"
	Swift      Language = "Swift"
	Unknown    Language = "Unknown"
)

var extToLang = map[string]Language{
	".rs":    Rust,
	".py":    Python,
	".ts":    TypeScript,
	".tsx":   TypeScript,
	".js":    JavaScript,
	".jsx":   JavaScript,
	".go":    Go,
	".java":  Java,
	".c":     C,
	".h":     C,
	".cpp":   Cpp,
	".cc":    Cpp,
	".cxx":   Cpp,
	".hpp":   Cpp,
	".hxx":   Cpp,
	".hh":    Cpp,
	".rb":    Ruby,
	".php":   Php,
	".kt":    Kotlin,
	".kts":   Kotlin,
	".swift": Swift,
}

// FromExtension maps a file extension (as returned by filepath.Ext, case
// insensitive) to its Language, or Unknown if unrecognized.
func FromExtension(ext string) Language {
	if l, ok := extToLang[strings.ToLower(ext)]; ok {
		return l
	}
	return Unknown
}

// FromPath maps a file path to its Language by extension.
func FromPath(path string) Language {
	// .tsx/.jsx both end in a two-extension-like suffix handled by the
	// single Ext() component already (filepath.Ext returns ".tsx").
	return FromExtension(filepath.Ext(path))
}

var (
	grammarsOnce sync.Once
	grammars     map[Language]*sitter.Language
)

// Grammar returns the tree-sitter grammar for l, or nil if none is
// registered (Unknown, or a language without AST support).
func Grammar(l Language) *sitter.Language {
	grammarsOnce.Do(func() {
		grammars = map[Language]*sitter.Language{
			Rust:       rust.GetLanguage(),
			Python:     python.GetLanguage(),
			TypeScript: typescript.GetLanguage(),
			JavaScript: javascript.GetLanguage(),
			Go:         golang.GetLanguage(),
			Java:       java.GetLanguage(),
			C:          c.GetLanguage(),
			Cpp:        cpp.GetLanguage(),
			Ruby:       ruby.GetLanguage(),
			Php:        php.GetLanguage(),
			Kotlin:     kotlin.GetLanguage(),
			Swift:      swift.GetLanguage(),
		}
	})
	return grammars[l]
}

// TSXGrammar is used instead of Grammar(TypeScript) for files with a
// .tsx extension, which need JSX-aware parsing.
func TSXGrammar() *sitter.Language {
	return tsx.GetLanguage()
}

// IsTSX reports whether path should be parsed with the TSX grammar
// rather than the plain TypeScript grammar.
func IsTSX(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".tsx")
}
