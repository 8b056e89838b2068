package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/argus-dev/argus/internal/chunker"
	"github.com/argus-dev/argus/internal/config"
	"github.com/argus-dev/argus/internal/embed"
	argerrors "github.com/argus-dev/argus/internal/errors"
	"github.com/argus-dev/argus/internal/hybrid"
	"github.com/argus-dev/argus/internal/store"
	"github.com/argus-dev/argus/internal/walker"
)

// storeDir returns <root>/.argus, creating it if necessary.
func storeDir(root string) (string, error) {
	dir := filepath.Join(root, ".argus")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", argerrors.IO(fmt.Sprintf("cannot create %s", dir), err)
	}
	return dir, nil
}

// storePath returns the path of the SQLite index file under root.
func storePath(root string) string {
	return filepath.Join(root, ".argus", "index.db")
}

// lockPath returns the path of the advisory lock file guarding the
// store's single-writer invariant, per SPEC_FULL.md's file-lock
// supplement.
func lockPath(root string) string {
	return filepath.Join(root, ".argus", "index.db.lock")
}

// projectRoot resolves the repository root to operate on: the explicit
// path argument if given, otherwise the current directory walked up to
// the nearest .git or .argus.toml.
func projectRoot(arg string) (string, error) {
	if arg != "" {
		return filepath.Abs(arg)
	}
	return config.FindProjectRoot(".")
}

// loadConfig loads the layered configuration for root, honoring an
// explicit --config override.
func loadConfig(root string) (*config.Config, error) {
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, argerrors.IO(fmt.Sprintf("cannot read %s", configPath), err)
		}
		return config.LoadFromString(string(data))
	}
	return config.Load(root)
}

// acquireWriteLock takes an exclusive advisory lock on root's index
// file for the duration of a Store-mutating CLI invocation, returning a
// release function. It fails fast with a clear message instead of
// letting two writers race on the same SQLite file.
func acquireWriteLock(root string) (func(), error) {
	dir, err := storeDir(root)
	if err != nil {
		return nil, err
	}
	fl := flock.New(filepath.Join(dir, filepath.Base(lockPath(root))))

	locked, err := fl.TryLock()
	if err != nil {
		return nil, argerrors.IO("cannot acquire index lock", err)
	}
	if !locked {
		return nil, argerrors.Config(
			"another argus process is indexing this repository (lock held on .argus/index.db.lock)",
			nil,
		).WithSuggestion("wait for the other index/reindex run to finish, or stop the running MCP server")
	}
	return func() { _ = fl.Unlock() }, nil
}

// buildSearch wires the Walker, Chunker, Embedder, and Store into a
// ready-to-use Hybrid Search instance.
func buildSearch(root string, cfg *config.Config) (*hybrid.Search, *store.Store, error) {
	s, err := store.Open(storePath(root))
	if err != nil {
		return nil, nil, err
	}

	if err := s.SetDimensions(cfg.Embedding.Dimensions); err != nil {
		_ = s.Close()
		return nil, nil, err
	}

	w, err := walker.New()
	if err != nil {
		_ = s.Close()
		return nil, nil, err
	}

	e, err := embed.New(cfg.Embedding)
	if err != nil {
		_ = s.Close()
		return nil, nil, err
	}

	return hybrid.New(s, e, w, chunker.New()), s, nil
}
