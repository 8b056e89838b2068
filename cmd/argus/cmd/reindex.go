package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/argus-dev/argus/internal/progress"
)

func newReindexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reindex [path]",
		Short: "Incrementally update the index for files that changed",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return runReindex(cmd, path)
		},
	}
	return cmd
}

func runReindex(cmd *cobra.Command, path string) error {
	root, err := projectRoot(path)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	release, err := acquireWriteLock(root)
	if err != nil {
		return err
	}
	defer release()

	search, st, err := buildSearch(root, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	renderer := progress.New(progress.Config{Output: cmd.OutOrStdout()})
	wireProgress(search, renderer)
	if err := renderer.Start(cmd.Context()); err != nil {
		return err
	}

	start := time.Now()
	stats, err := search.ReindexRepo(cmd.Context(), root)
	_ = renderer.Stop()
	if err != nil {
		return err
	}
	renderer.Complete(progress.CompletionStats{Files: stats.TotalFiles, Chunks: stats.TotalChunks, Duration: time.Since(start)})
	return nil
}
