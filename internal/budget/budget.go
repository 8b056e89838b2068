// Package budget selects the highest-ranked symbols from a Symbol Graph
// that fit a caller-supplied token budget, and formats the selection as
// a tree, JSON, or markdown repository map.
package budget

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/argus-dev/argus/internal/model"
)

// Select runs the greedy budgeting pass over rank-descending nodes: it
// keeps a running sum of max(token_cost, 1) and appends the next node
// only while the sum would still fit maxTokens. It stops on the first
// node that would overflow rather than skipping ahead to a smaller one,
// so the selection stays top-rank-dense.
func Select(ranked []model.SymbolNode, maxTokens int) []model.SymbolNode {
	if maxTokens <= 0 {
		return nil
	}

	var out []model.SymbolNode
	sum := 0
	for _, n := range ranked {
		cost := n.TokenCost
		if cost < 1 {
			cost = 1
		}
		if sum+cost > maxTokens {
			break
		}
		sum += cost
		out = append(out, n)
	}
	return out
}

// labelFor renders the short kind label used in Tree output.
func labelFor(kind model.SymbolKind) string {
	switch kind {
	case model.KindFunction:
		return "fn"
	case model.KindMethod:
		return "method"
	case model.KindStruct:
		return "struct"
	case model.KindEnum:
		return "enum"
	case model.KindTrait:
		return "trait"
	case model.KindImpl:
		return "impl"
	case model.KindClass:
		return "class"
	case model.KindInterface:
		return "interface"
	case model.KindModule:
		return "mod"
	default:
		return strings.ToLower(string(kind))
	}
}

// truncateSignature cuts s to at most n bytes, backing off to the
// nearest UTF-8 rune boundary so a multi-byte character is never split.
func truncateSignature(s string, n int) string {
	if len(s) <= n {
		return s
	}
	end := n
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}
	return s[:end]
}

// byFileThenLine returns the distinct files of nodes in lexicographic
// order. Together with nodesForFile, which orders one file's nodes by
// line, it gives the file-then-line grouping Tree and Markdown use.
func byFileThenLine(nodes []model.SymbolNode) []string {
	seen := make(map[string]bool)
	var files []string
	for _, n := range nodes {
		if !seen[n.File] {
			seen[n.File] = true
			files = append(files, n.File)
		}
	}
	sort.Strings(files)
	return files
}

func nodesForFile(nodes []model.SymbolNode, file string) []model.SymbolNode {
	var out []model.SymbolNode
	for _, n := range nodes {
		if n.File == file {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out
}

// Tree renders nodes as an ASCII box-drawing file/symbol hierarchy.
func Tree(nodes []model.SymbolNode) string {
	var b strings.Builder
	files := byFileThenLine(nodes)
	for fi, file := range files {
		lastFile := fi == len(files)-1
		filePrefix := "├── "
		if lastFile {
			filePrefix = "└── "
		}
		fmt.Fprintf(&b, "%s%s\n", filePrefix, file)

		childPrefix := "│   "
		if lastFile {
			childPrefix = "    "
		}

		syms := nodesForFile(nodes, file)
		for si, n := range syms {
			lastSym := si == len(syms)-1
			leaf := "├── "
			if lastSym {
				leaf = "└── "
			}
			sig := truncateSignature(n.Signature, 80)
			fmt.Fprintf(&b, "%s%s%s %s\n", childPrefix, leaf, labelFor(n.Kind), sig)
		}
	}
	return b.String()
}

// jsonSymbol is the camelCase wire shape for the JSON format.
type jsonSymbol struct {
	Name      string  `json:"name"`
	Kind      string  `json:"kind"`
	File      string  `json:"file"`
	Line      int     `json:"line"`
	Signature string  `json:"signature"`
	Rank      float64 `json:"rank"`
	TokenCost int     `json:"tokenCost"`
}

// JSON renders nodes as a camelCase JSON array.
func JSON(nodes []model.SymbolNode) (string, error) {
	out := make([]jsonSymbol, len(nodes))
	for i, n := range nodes {
		out[i] = jsonSymbol{
			Name:      n.Name,
			Kind:      string(n.Kind),
			File:      n.File,
			Line:      n.Line,
			Signature: n.Signature,
			Rank:      n.Rank,
			TokenCost: n.TokenCost,
		}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Markdown renders nodes as a "# Repository Map" document, one `##`
// heading per file and one bullet per symbol. Empty input renders
// nothing at all, rather than a heading with no content under it.
func Markdown(nodes []model.SymbolNode) string {
	if len(nodes) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("# Repository Map\n\n")
	for _, file := range byFileThenLine(nodes) {
		fmt.Fprintf(&b, "## `%s`\n\n", file)
		for _, n := range nodesForFile(nodes, file) {
			fmt.Fprintf(&b, "- **%s** `%s`\n", labelFor(n.Kind), n.Signature)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
