// Package progress renders live feedback during `argus index`/`reindex`:
// a bubbletea progress bar on an interactive terminal, plain line-based
// output on CI/pipes. Trimmed from the teacher's internal/ui down to the
// stages Hybrid Search actually reports.
package progress

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// Stage is a step in the index/reindex pipeline.
type Stage int

const (
	StageScanning Stage = iota
	StageChunking
	StageEmbedding
	StageIndexing
	StageComplete
)

func (s Stage) String() string {
	switch s {
	case StageScanning:
		return "Scanning"
	case StageChunking:
		return "Chunking"
	case StageEmbedding:
		return "Embedding"
	case StageIndexing:
		return "Indexing"
	case StageComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// Icon is the short stage label used by the plain renderer.
func (s Stage) Icon() string {
	switch s {
	case StageScanning:
		return "SCAN"
	case StageChunking:
		return "CHUNK"
	case StageEmbedding:
		return "EMBED"
	case StageIndexing:
		return "INDEX"
	case StageComplete:
		return "DONE"
	default:
		return "???"
	}
}

// Event is a single progress update emitted by the indexing pipeline.
type Event struct {
	Stage       Stage
	Current     int
	Total       int
	CurrentFile string
}

// CompletionStats summarizes a finished index/reindex run.
type CompletionStats struct {
	Files    int
	Chunks   int
	Duration time.Duration
	Errors   int
}

// Renderer displays progress during an index/reindex run.
type Renderer interface {
	Start(ctx context.Context) error
	Update(event Event)
	AddError(file string, err error)
	Complete(stats CompletionStats)
	Stop() error
}

// Config configures a Renderer.
type Config struct {
	Output     io.Writer
	ForcePlain bool
	NoColor    bool
}

// New picks a TUI renderer for interactive terminals and a plain renderer
// for CI, pipes, or when cfg.ForcePlain is set. It never fails: a TUI
// construction error falls back to plain output instead of returning an
// error to the caller.
func New(cfg Config) Renderer {
	if cfg.ForcePlain || !isTTY(cfg.Output) || detectCI() {
		return newPlainRenderer(cfg)
	}
	tui, err := newTUIRenderer(cfg)
	if err != nil {
		return newPlainRenderer(cfg)
	}
	return tui
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func detectCI() bool {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		if _, ok := os.LookupEnv(v); ok {
			return true
		}
	}
	return false
}
