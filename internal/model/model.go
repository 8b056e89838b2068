// Package model holds the domain types shared by the Walker, Parser,
// Chunker, Symbol Graph, Budgeter, Embedder, Store and Hybrid Search.
package model

import "github.com/argus-dev/argus/internal/lang"

// SourceFile is a single surviving file handed from the Walker to the
// Parser and Chunker. Never mutated after creation.
type SourceFile struct {
	Path     string // repo-relative
	Language lang.Language
	Content  []byte
}

// SymbolKind classifies a Symbol.
type SymbolKind string

const (
	KindFunction  SymbolKind = "Function"
	KindMethod    SymbolKind = "Method"
	KindStruct    SymbolKind = "Struct"
	KindEnum      SymbolKind = "Enum"
	KindTrait     SymbolKind = "Trait"
	KindImpl      SymbolKind = "Impl"
	KindClass     SymbolKind = "Class"
	KindInterface SymbolKind = "Interface"
	KindModule    SymbolKind = "Module"
)

// Symbol is a single definition extracted by the Parser.
type Symbol struct {
	Name      string
	Kind      SymbolKind
	File      string
	Line      int // 1-based
	Signature string
	TokenCost int
}

// Reference is a use-site identifier occurrence extracted by the Parser.
type Reference struct {
	FromFile   string
	FromSymbol string // enclosing definition name, may be empty
	ToName     string
	Line       int
}

// SymbolNode is a Symbol annotated with a PageRank score.
type SymbolNode struct {
	Symbol
	Rank float64
}

// EntityType classifies a CodeChunk.
type EntityType string

const (
	EntityFunction EntityType = "function"
	EntityMethod   EntityType = "method"
	EntityClass    EntityType = "class"
	EntityStruct   EntityType = "struct"
	EntityEnum     EntityType = "enum"
	EntityTrait    EntityType = "trait"
	EntityImpl     EntityType = "impl"
	EntityModule   EntityType = "module"
)

// CodeChunk is a semantic source slice emitted by the Chunker.
type CodeChunk struct {
	FilePath      string
	StartLine     int
	EndLine       int
	EntityName    string
	EntityType    EntityType
	Language      lang.Language
	Content       string
	ContextHeader string
	ContentHash   string
}

// FileRecord is the Store's bookkeeping row for one file.
type FileRecord struct {
	Path        string
	ContentHash string
	IndexedAt   int64 // unix seconds
}

// IndexStats is a derived summary of a Store's contents.
type IndexStats struct {
	TotalChunks    int
	TotalFiles     int
	IndexSizeBytes int64
}

// SearchSource identifies which retrieval path produced a SearchHit.
type SearchSource string

const (
	SourceVector  SearchSource = "vector"
	SourceKeyword SearchSource = "keyword"
)

// SearchHit is one candidate returned by a Store-level search, prior to
// fusion.
type SearchHit struct {
	Chunk  CodeChunk
	Score  float64
	Source SearchSource
}

// SearchResult is a fused, user-facing hit from Hybrid Search.
type SearchResult struct {
	FilePath  string
	LineStart int
	LineEnd   int
	Snippet   string
	Score     float64
	Language  lang.Language
}
