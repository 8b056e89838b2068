// Package graph builds a directed symbol graph from Parser output and
// ranks it with PageRank.
package graph

import (
	"sort"

	"github.com/argus-dev/argus/internal/model"
)

const (
	damping    = 0.85
	iterations = 20
)

// Graph is a directed graph of Symbols connected by References.
type Graph struct {
	symbols   []model.Symbol
	index     map[string]int // symbol name -> index into symbols/ranks
	out       [][]int        // out[i] = indices of i's out-neighbors
	outDegree []int
}

// New builds a Graph from definitions and references. Duplicate symbol
// names are first-wins: later definitions with an already-seen name
// are dropped as graph nodes (they still exist upstream, just not as a
// distinct node here). Self-edges are discarded. A reference whose
// to_name resolves to no known symbol is dropped. This is a multigraph:
// repeated references between the same pair of symbols each contribute
// their own edge, so out_degree and PageRank reflect reference counts,
// not just reference pairs.
func New(symbols []model.Symbol, refs []model.Reference) *Graph {
	g := &Graph{index: make(map[string]int, len(symbols))}

	for _, s := range symbols {
		if _, exists := g.index[s.Name]; exists {
			continue
		}
		g.index[s.Name] = len(g.symbols)
		g.symbols = append(g.symbols, s)
	}

	n := len(g.symbols)
	g.out = make([][]int, n)
	g.outDegree = make([]int, n)

	for _, r := range refs {
		if r.FromSymbol == "" {
			continue
		}
		from, ok := g.index[r.FromSymbol]
		if !ok {
			continue
		}
		to, ok := g.index[r.ToName]
		if !ok {
			continue
		}
		if from == to {
			continue
		}
		g.out[from] = append(g.out[from], to)
		g.outDegree[from]++
	}

	return g
}

// Len returns the number of symbol nodes in the graph.
func (g *Graph) Len() int { return len(g.symbols) }

// PageRank runs the fixed 20-iteration, damping-0.85 PageRank variant
// and returns one rank per node, in the same order as g.symbols.
func (g *Graph) PageRank() []float64 {
	n := len(g.symbols)
	if n == 0 {
		return nil
	}

	ranks := make([]float64, n)
	base := 1.0 / float64(n)
	for i := range ranks {
		ranks[i] = base
	}

	constant := (1 - damping) / float64(n)

	for iter := 0; iter < iterations; iter++ {
		// Dangling nodes have no out-edges; their damped rank is spread
		// evenly over all nodes so the ranks keep summing to 1.
		dangling := 0.0
		for i := 0; i < n; i++ {
			if g.outDegree[i] == 0 {
				dangling += ranks[i]
			}
		}
		next := make([]float64, n)
		for i := range next {
			next[i] = constant + damping*dangling/float64(n)
		}
		for i := 0; i < n; i++ {
			deg := g.outDegree[i]
			if deg == 0 {
				continue // no out-edges; handled by the dangling share above
			}
			share := damping * ranks[i] / float64(deg)
			for _, to := range g.out[i] {
				next[to] += share
			}
		}
		ranks = next
	}

	return ranks
}

// RankedSymbols returns every node as a SymbolNode, sorted by
// descending rank.
func (g *Graph) RankedSymbols() []model.SymbolNode {
	ranks := g.PageRank()
	nodes := make([]model.SymbolNode, len(g.symbols))
	for i, s := range g.symbols {
		nodes[i] = model.SymbolNode{Symbol: s, Rank: valueOr(ranks, i)}
	}
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Rank > nodes[j].Rank })
	return nodes
}

// RankedSymbolsForFiles returns nodes sorted by rank × (2 if the node's
// file is in focusSet, else 1).
func (g *Graph) RankedSymbolsForFiles(focusSet map[string]bool) []model.SymbolNode {
	ranks := g.PageRank()
	nodes := make([]model.SymbolNode, len(g.symbols))
	biased := make([]float64, len(g.symbols))
	for i, s := range g.symbols {
		r := valueOr(ranks, i)
		nodes[i] = model.SymbolNode{Symbol: s, Rank: r}
		mult := 1.0
		if focusSet[s.File] {
			mult = 2.0
		}
		biased[i] = r * mult
	}
	idx := make([]int, len(nodes))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return biased[idx[a]] > biased[idx[b]] })

	out := make([]model.SymbolNode, len(nodes))
	for i, j := range idx {
		out[i] = nodes[j]
	}
	return out
}

func valueOr(v []float64, i int) float64 {
	if i < len(v) {
		return v[i]
	}
	return 0
}
