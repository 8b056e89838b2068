// Package chunker walks the same AST the Parser builds and emits one
// CodeChunk per top-level or nested definition, ready for embedding.
package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/argus-dev/argus/internal/model"
	"github.com/argus-dev/argus/internal/parser"
)

// Chunker emits CodeChunks from SourceFiles.
type Chunker struct{}

// New creates a Chunker.
func New() *Chunker {
	return &Chunker{}
}

// Chunk builds the chunks for a single file. An impl block is not a
// chunk of its own; the methods inside it are. If no grammar is
// registered for file.Language, it returns no chunks rather than an
// error.
func (c *Chunker) Chunk(file model.SourceFile) []model.CodeChunk {
	root, ok := parser.ParseTree(file)
	if !ok {
		return nil
	}
	rules, ok := parser.Rule(file.Language)
	if !ok {
		return nil
	}

	defs := parser.ExtractDefinitions(root, file.Content, rules)

	chunks := make([]model.CodeChunk, 0, len(defs))
	for _, d := range defs {
		if d.Kind == model.KindImpl {
			continue
		}
		content := d.Node.Content(file.Content)
		startLine := int(d.Node.StartPoint().Row) + 1
		endLine := int(d.Node.EndPoint().Row) + 1
		entityType := entityTypeOf(d.Kind)

		header := buildHeader(file, d, entityType, content)

		sum := sha256.Sum256([]byte(content))
		chunks = append(chunks, model.CodeChunk{
			FilePath:      file.Path,
			StartLine:     startLine,
			EndLine:       endLine,
			EntityName:    d.Name,
			EntityType:    entityType,
			Language:      file.Language,
			Content:       content,
			ContextHeader: header,
			ContentHash:   hex.EncodeToString(sum[:]),
		})
	}
	return chunks
}

// entityTypeOf maps a Parser Symbol kind to a Chunker entity type.
// Interface is not a distinct entity_type; interface-shaped
// definitions (Go's interface type_spec, Java/PHP/Kotlin interface
// declarations, Swift protocols) are recorded as "class" bodies, the
// closest fit among the eight entity types.
func entityTypeOf(kind model.SymbolKind) model.EntityType {
	switch kind {
	case model.KindFunction:
		return model.EntityFunction
	case model.KindMethod:
		return model.EntityMethod
	case model.KindStruct:
		return model.EntityStruct
	case model.KindEnum:
		return model.EntityEnum
	case model.KindTrait:
		return model.EntityTrait
	case model.KindImpl:
		return model.EntityImpl
	case model.KindModule:
		return model.EntityModule
	case model.KindClass, model.KindInterface:
		return model.EntityClass
	default:
		return model.EntityFunction
	}
}

func buildHeader(file model.SourceFile, d parser.Definition, entityType model.EntityType, content string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# File: %s\n", file.Path)
	fmt.Fprintf(&b, "# Type: %s\n", entityType)
	fmt.Fprintf(&b, "# Name: %s\n", d.Name)
	if d.Scope != "" {
		fmt.Fprintf(&b, "# Scope: %s %s\n", scopeLabel(d.ScopeKind), d.Scope)
	}
	fmt.Fprintf(&b, "# Signature: %s\n", parser.DeriveSignature(content))
	return b.String()
}

// scopeLabel names the enclosing container kind the way §8's scenario
// 1 expects it to read ("impl <Name>", "class <Name>").
func scopeLabel(kind model.SymbolKind) string {
	switch kind {
	case model.KindImpl:
		return "impl"
	case model.KindModule:
		return "module"
	default:
		return "class"
	}
}
