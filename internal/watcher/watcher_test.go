package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewWatchesRootAndSubdirectories(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "pkg")
	require.NoError(t, os.Mkdir(sub, 0o755))

	w, err := New(root, 50*time.Millisecond, func(context.Context) error { return nil }, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.fsw.Close() })

	assert.NotEmpty(t, w.fsw.WatchList())
}

func TestNewSkipsIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git", "objects"), 0o755))

	w, err := New(root, 50*time.Millisecond, func(context.Context) error { return nil }, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.fsw.Close() })

	for _, p := range w.fsw.WatchList() {
		assert.NotContains(t, p, string(filepath.Separator)+".git"+string(filepath.Separator)+"objects")
	}
}

func TestRunDebouncesBurstIntoSingleOnChange(t *testing.T) {
	root := t.TempDir()

	var calls int32
	w, err := New(root, 30*time.Millisecond, func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "f.txt"), []byte("x"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRunStopsOnContextCancel(t *testing.T) {
	root := t.TempDir()
	w, err := New(root, time.Second, func(context.Context) error { return nil }, discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	cancel()
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestShouldIgnoreHiddenFiles(t *testing.T) {
	assert.True(t, shouldIgnore(fsnotify.Event{Name: "/tmp/repo/.hidden"}))
	assert.False(t, shouldIgnore(fsnotify.Event{Name: "/tmp/repo/main.go"}))
}
