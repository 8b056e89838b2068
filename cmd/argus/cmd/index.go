package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/argus-dev/argus/internal/hybrid"
	"github.com/argus-dev/argus/internal/progress"
	"github.com/argus-dev/argus/internal/watcher"
)

func newIndexCmd() *cobra.Command {
	var watch bool
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "index [path]",
		Short: "Build a full index of the repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return runIndex(cmd, path, watch, debounce)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "keep running and reindex automatically when files change")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "debounce window for --watch")

	return cmd
}

func runIndex(cmd *cobra.Command, path string, watch bool, debounce time.Duration) error {
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
	stats, err := search.IndexRepo(cmd.Context(), root)
	_ = renderer.Stop()
	if err != nil {
		return err
	}
	renderer.Complete(progress.CompletionStats{Files: stats.TotalFiles, Chunks: stats.TotalChunks, Duration: time.Since(start)})

	if !watch {
		return nil
	}

	return runWatch(cmd.Context(), root, search, debounce)
}

// wireProgress adapts a Hybrid Search instance's coarse progress
// callback onto a progress.Renderer.
func wireProgress(search *hybrid.Search, renderer progress.Renderer) {
	search.SetProgress(func(stage string, current, total int, file string) {
		renderer.Update(progress.Event{Stage: stageFor(stage), Current: current, Total: total, CurrentFile: file})
	})
}

func stageFor(name string) progress.Stage {
	switch name {
	case "scanning":
		return progress.StageScanning
	case "chunking":
		return progress.StageChunking
	case "embedding":
		return progress.StageEmbedding
	case "indexing":
		return progress.StageIndexing
	default:
		return progress.StageScanning
	}
}

// runWatch blocks watching root for changes, triggering a reindex on
// each debounced burst, until interrupted.
func runWatch(ctx context.Context, root string, search *hybrid.Search, debounce time.Duration) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New(root, debounce, func(ctx context.Context) error {
		_, err := search.ReindexRepo(ctx, root)
		return err
	}, rootLogger)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	return w.Run(ctx)
}
