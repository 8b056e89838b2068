// Package parser applies each language's tree-sitter grammar to a
// SourceFile and emits the definitions (Symbol) and uses (Reference)
// found in it. Parsing is error-tolerant: a file tree-sitter could not
// fully make sense of still yields symbols and references for the
// salvageable portion.
package parser

import (
	"context"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/argus-dev/argus/internal/lang"
	"github.com/argus-dev/argus/internal/model"
)

// Parser extracts Symbols and References from SourceFiles.
type Parser struct {
	rules map[string]Rules
}

// New creates a Parser with the built-in cross-language node-kind table.
func New() *Parser {
	return &Parser{rules: LangRules()}
}

// Result is the output of parsing one SourceFile.
type Result struct {
	Symbols    []model.Symbol
	References []model.Reference
}

// Parse builds the AST for file and extracts definitions and
// references. If no grammar is registered for file.Language, it
// returns an empty Result rather than an error.
func (p *Parser) Parse(file model.SourceFile) Result {
	root, ok := p.tree(file)
	if !ok {
		return Result{}
	}

	r, ok := p.rules[string(file.Language)]
	if !ok {
		return Result{}
	}

	defs := ExtractDefinitions(root, file.Content, r)

	symbols := make([]model.Symbol, 0, len(defs))
	for _, d := range defs {
		sig := deriveSignature(d.Node.Content(file.Content))
		symbols = append(symbols, model.Symbol{
			Name:      d.Name,
			Kind:      d.Kind,
			File:      file.Path,
			Line:      int(d.Node.StartPoint().Row) + 1,
			Signature: sig,
			TokenCost: tokenCost(sig),
		})
	}

	refs := extractReferences(root, file.Content, file.Path)

	return Result{Symbols: symbols, References: refs}
}

// tree parses file and returns its root node, or ok=false if no
// grammar is registered or parsing failed entirely.
func (p *Parser) tree(file model.SourceFile) (*sitter.Node, bool) {
	return ParseTree(file)
}

// ParseTree builds the AST for file, exported for reuse by the Chunker
// (which needs the same root node to slice chunk content from).
func ParseTree(file model.SourceFile) (*sitter.Node, bool) {
	grammar := grammarFor(file)
	if grammar == nil {
		return nil, false
	}
	tree, err := sitter.ParseCtx(context.Background(), file.Content, grammar)
	if err != nil || tree == nil {
		return nil, false
	}
	root := tree.RootNode()
	return root, root != nil
}

// Rule returns the node-kind table for language, reused by the
// Chunker so both components dispatch on exactly the same table.
func Rule(language lang.Language) (Rules, bool) {
	r, ok := LangRules()[string(language)]
	return r, ok
}

func grammarFor(file model.SourceFile) *sitter.Language {
	if file.Language == lang.TypeScript && lang.IsTSX(file.Path) {
		return lang.TSXGrammar()
	}
	return lang.Grammar(file.Language)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// DeriveSignature implements §4.2: take the node's full text, truncate
// at the first `{` or, absent one, the first `:`; collapse whitespace.
// Exported so the Chunker can put the same signature in a chunk header.
func DeriveSignature(text string) string {
	return deriveSignature(text)
}

func deriveSignature(text string) string {
	cut := len(text)
	if i := strings.IndexByte(text, '{'); i >= 0 {
		cut = i
	} else if i := strings.IndexByte(text, ':'); i >= 0 {
		cut = i
	}
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text[:cut], " "))
}

func tokenCost(signature string) int {
	n := (len(signature) + 3) / 4
	if n < 1 {
		n = 1
	}
	return n
}
