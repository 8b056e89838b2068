// Package toolserver exposes the indexing and repo-map subsystems to
// agent/IDE consumers over the Model Context Protocol, per §6. It never
// writes to stdout itself — all server-side logging goes through the
// injected *slog.Logger to the rotating file handler, because stdout is
// reserved for the MCP transport's JSON-RPC framing.
package toolserver

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/argus-dev/argus/internal/budget"
	argerrors "github.com/argus-dev/argus/internal/errors"
	"github.com/argus-dev/argus/internal/graph"
	"github.com/argus-dev/argus/internal/hybrid"
	"github.com/argus-dev/argus/internal/lang"
	"github.com/argus-dev/argus/internal/model"
	"github.com/argus-dev/argus/internal/parser"
	"github.com/argus-dev/argus/internal/walker"
	"github.com/argus-dev/argus/pkg/version"
)

// Store is the subset of internal/store.Store the tool server needs to
// decide whether an auto-index is necessary.
type Store interface {
	Stats() (model.IndexStats, error)
}

// Server bridges MCP tool calls to a Hybrid Search instance and the
// Walker/Parser/Graph/Budgeter map pipeline.
type Server struct {
	mcp    *mcp.Server
	search *hybrid.Search
	store  Store
	root   string
	logger *slog.Logger
}

// New builds a Server rooted at root, wrapping search and store.
func New(search *hybrid.Search, store Store, root string, logger *slog.Logger) *Server {
	s := &Server{search: search, store: store, root: root, logger: logger}
	s.mcp = mcp.NewServer(&mcp.Implementation{Name: "argus", Version: version.Version}, nil)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_codebase",
		Description: "Hybrid keyword+semantic search over the indexed repository. Auto-indexes the repository on first call if the store is empty.",
	}, s.searchCodebase)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_repo_map",
		Description: "Returns a token-budgeted map of the repository's most important symbols, ranked by a reference-graph PageRank.",
	}, s.getRepoMap)
}

// Serve runs the server over the given transport ("stdio" is the only
// one implemented).
func (s *Server) Serve(ctx context.Context, transport string) error {
	switch transport {
	case "stdio", "":
		return s.mcp.Run(ctx, &mcp.StdioTransport{})
	default:
		return fmt.Errorf("unknown server.transport %q (supported: stdio)", transport)
	}
}

// resolvePath enforces the path-safety rule: a caller-supplied path is
// resolved against s.root and rejected if its canonical form escapes
// that root.
func (s *Server) resolvePath(path string) (string, error) {
	if path == "" {
		return s.root, nil
	}
	rootAbs, err := filepath.Abs(s.root)
	if err != nil {
		return "", argerrors.IO("cannot resolve repository root", err)
	}
	candidate := filepath.Join(rootAbs, path)
	rel, err := filepath.Rel(rootAbs, candidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", argerrors.Config(fmt.Sprintf("path %q escapes the repository root", path), nil)
	}
	return candidate, nil
}

// SearchCodebaseInput is the input schema for the search_codebase tool.
type SearchCodebaseInput struct {
	Query string `json:"query" jsonschema:"the search query"`
	Path  string `json:"path,omitempty" jsonschema:"repo-relative path to scope the search to (currently informational)"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 10"`
}

// SearchResultOutput is one hit in a search_codebase response.
type SearchResultOutput struct {
	FilePath  string  `json:"filePath"`
	StartLine int     `json:"startLine"`
	EndLine   int     `json:"endLine"`
	Content   string  `json:"content"`
	Score     float64 `json:"score"`
	Language  string  `json:"language"`
}

// SearchCodebaseOutput is the output schema for the search_codebase tool.
type SearchCodebaseOutput struct {
	Results []SearchResultOutput `json:"results"`
	Total   int                  `json:"total"`
	Indexed bool                 `json:"indexed"`
}

func (s *Server) searchCodebase(ctx context.Context, _ *mcp.CallToolRequest, in SearchCodebaseInput) (*mcp.CallToolResult, SearchCodebaseOutput, error) {
	if _, err := s.resolvePath(in.Path); err != nil {
		return nil, SearchCodebaseOutput{}, err
	}

	limit := in.Limit
	if limit <= 0 {
		limit = 10
	}

	indexed := false
	stats, err := s.store.Stats()
	if err != nil {
		return nil, SearchCodebaseOutput{}, err
	}
	if stats.TotalChunks == 0 {
		s.logger.Info("auto-indexing empty store before search")
		if _, err := s.search.IndexRepo(ctx, s.root); err != nil {
			return nil, SearchCodebaseOutput{}, err
		}
		indexed = true
	}

	results, err := s.search.Search(ctx, in.Query, limit)
	if err != nil {
		return nil, SearchCodebaseOutput{}, err
	}

	out := SearchCodebaseOutput{Results: make([]SearchResultOutput, len(results)), Total: len(results), Indexed: indexed}
	for i, r := range results {
		out.Results[i] = SearchResultOutput{
			FilePath:  r.FilePath,
			StartLine: r.LineStart,
			EndLine:   r.LineEnd,
			Content:   r.Snippet,
			Score:     r.Score,
			Language:  string(r.Language),
		}
	}
	return nil, out, nil
}

// GetRepoMapInput is the input schema for the get_repo_map tool.
type GetRepoMapInput struct {
	Path      string `json:"path,omitempty" jsonschema:"repo-relative subdirectory to map; defaults to the repository root"`
	MaxTokens int    `json:"maxTokens,omitempty" jsonschema:"token budget for the map, default 2000"`
}

// RepoMapStats summarizes the symbols behind a repo map.
type RepoMapStats struct {
	TotalFiles   int      `json:"totalFiles"`
	TotalSymbols int      `json:"totalSymbols"`
	Languages    []string `json:"languages"`
}

// GetRepoMapOutput is the output schema for the get_repo_map tool.
type GetRepoMapOutput struct {
	Map   string       `json:"map"`
	Stats RepoMapStats `json:"stats"`
}

func (s *Server) getRepoMap(ctx context.Context, _ *mcp.CallToolRequest, in GetRepoMapInput) (*mcp.CallToolResult, GetRepoMapOutput, error) {
	target, err := s.resolvePath(in.Path)
	if err != nil {
		return nil, GetRepoMapOutput{}, err
	}

	maxTokens := in.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}

	w, err := walker.New()
	if err != nil {
		return nil, GetRepoMapOutput{}, err
	}
	files, err := w.Walk(target)
	if err != nil {
		return nil, GetRepoMapOutput{}, err
	}

	p := parser.New()
	var symbols []model.Symbol
	var refs []model.Reference
	languageSet := make(map[lang.Language]bool)
	for _, f := range files {
		languageSet[f.Language] = true
		res := p.Parse(f)
		symbols = append(symbols, res.Symbols...)
		refs = append(refs, res.References...)
	}

	g := graph.New(symbols, refs)
	ranked := g.RankedSymbols()
	selected := budget.Select(ranked, maxTokens)

	languages := make([]string, 0, len(languageSet))
	for l := range languageSet {
		languages = append(languages, string(l))
	}

	out := GetRepoMapOutput{
		Map: budget.Markdown(selected),
		Stats: RepoMapStats{
			TotalFiles:   len(files),
			TotalSymbols: len(symbols),
			Languages:    languages,
		},
	}
	return nil, out, nil
}
