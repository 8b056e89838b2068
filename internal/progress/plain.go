package progress

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// plainRenderer prints one line per progress update; used on non-TTY
// output (CI logs, piped output) where a redrawing progress bar would
// just produce garbage.
type plainRenderer struct {
	mu  sync.Mutex
	out io.Writer
}

func newPlainRenderer(cfg Config) *plainRenderer {
	return &plainRenderer{out: cfg.Output}
}

func (r *plainRenderer) Start(ctx context.Context) error { return nil }

func (r *plainRenderer) Update(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.Total > 0 {
		fmt.Fprintf(r.out, "[%s] %d/%d %s\n", event.Stage.Icon(), event.Current, event.Total, event.CurrentFile)
		return
	}
	fmt.Fprintf(r.out, "[%s] %s\n", event.Stage.Icon(), event.CurrentFile)
}

func (r *plainRenderer) AddError(file string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if file != "" {
		fmt.Fprintf(r.out, "ERROR: %s: %v\n", file, err)
		return
	}
	fmt.Fprintf(r.out, "ERROR: %v\n", err)
}

func (r *plainRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "Complete: %d files, %d chunks indexed in %s", stats.Files, stats.Chunks, stats.Duration.Round(time.Millisecond*100))
	if stats.Errors > 0 {
		fmt.Fprintf(r.out, " (%d errors)", stats.Errors)
	}
	fmt.Fprintln(r.out)
}

func (r *plainRenderer) Stop() error { return nil }

var _ Renderer = (*plainRenderer)(nil)
