package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/argus-dev/argus/internal/budget"
	"github.com/argus-dev/argus/internal/graph"
	"github.com/argus-dev/argus/internal/model"
	"github.com/argus-dev/argus/internal/parser"
	"github.com/argus-dev/argus/internal/walker"
)

func newMapCmd() *cobra.Command {
	var maxTokens int
	var format string

	cmd := &cobra.Command{
		Use:   "map [path]",
		Short: "Print a token-budgeted map of the repository's most important symbols",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return runMap(cmd, path, maxTokens, format)
		},
	}

	cmd.Flags().IntVar(&maxTokens, "max-tokens", 2000, "token budget for the map")
	cmd.Flags().StringVar(&format, "format", "tree", "output format: tree, json, markdown")

	return cmd
}

func runMap(cmd *cobra.Command, path string, maxTokens int, format string) error {
	root, err := projectRoot(path)
	if err != nil {
		return err
	}

	w, err := walker.New()
	if err != nil {
		return err
	}
	files, err := w.Walk(root)
	if err != nil {
		return err
	}

	p := parser.New()
	var symbols []model.Symbol
	var refs []model.Reference
	for _, f := range files {
		res := p.Parse(f)
		symbols = append(symbols, res.Symbols...)
		refs = append(refs, res.References...)
	}

	g := graph.New(symbols, refs)
	selected := budget.Select(g.RankedSymbols(), maxTokens)

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		s, err := budget.JSON(selected)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, s)
	case "markdown":
		fmt.Fprintln(out, budget.Markdown(selected))
	default:
		fmt.Fprintln(out, budget.Tree(selected))
	}
	return nil
}
