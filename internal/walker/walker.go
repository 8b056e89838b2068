// Package walker enumerates the source files argus will parse, chunk,
// and index.
package walker

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/argus-dev/argus/internal/gitignore"
	"github.com/argus-dev/argus/internal/lang"
	"github.com/argus-dev/argus/internal/model"
)

const (
	// MaxFileSize is the largest file the Walker will hand downstream.
	MaxFileSize = 1 << 20 // 1 MiB
	// binarySniffLen is how much of a file's head is checked for a zero
	// byte when deciding whether it is binary.
	binarySniffLen = 8 << 10 // 8 KiB

	gitignoreCacheSize = 1024
)

// Walker discovers indexable SourceFiles under a repository root.
type Walker struct {
	gitignoreCache *lru.Cache[string, *gitignore.Matcher]
	mu             sync.Mutex
}

// New creates a Walker with a bounded gitignore-matcher cache.
func New() (*Walker, error) {
	cache, err := lru.New[string, *gitignore.Matcher](gitignoreCacheSize)
	if err != nil {
		return nil, err
	}
	return &Walker{gitignoreCache: cache}, nil
}

// Walk enumerates every surviving file under root and returns its
// SourceFiles. Per-file errors (unreadable, non-UTF-8 content, stat
// failure) are silently dropped; Walk itself only fails if root cannot
// be walked at all.
func (w *Walker) Walk(root string) ([]model.SourceFile, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []model.SourceFile

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entry: skip, never abort
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil {
			return nil
		}

		if w.ignored(absRoot, filepath.Dir(path), rel, path) {
			return nil
		}

		l := lang.FromPath(path)
		if l == lang.Unknown {
			return nil
		}

		info, statErr := d.Info()
		if statErr != nil || info.Size() > MaxFileSize {
			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}
		if looksBinary(content) || !utf8.Valid(content) {
			return nil
		}

		files = append(files, model.SourceFile{
			Path:     filepath.ToSlash(rel),
			Language: l,
			Content:  content,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ignored reports whether path is excluded by any .gitignore between
// root and the file's containing directory.
func (w *Walker) ignored(root, dir, rel, path string) bool {
	isDir := false
	for d := dir; ; d = filepath.Dir(d) {
		m := w.matcherFor(root, d)
		if m != nil && m.Match(rel, isDir) {
			return true
		}
		if d == root || d == filepath.Dir(d) {
			break
		}
	}
	return false
}

// matcherFor returns the cached Matcher built from dir/.gitignore, or
// nil if dir has no .gitignore. Its patterns are based at dir's path
// relative to root, the form ignored matches against.
func (w *Walker) matcherFor(root, dir string) *gitignore.Matcher {
	w.mu.Lock()
	defer w.mu.Unlock()

	key := root + "\x00" + dir
	if m, ok := w.gitignoreCache.Get(key); ok {
		return m
	}

	gitignorePath := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(gitignorePath); err != nil {
		w.gitignoreCache.Add(key, nil)
		return nil
	}

	base, err := filepath.Rel(root, dir)
	if err != nil || base == "." {
		base = ""
	}
	m := gitignore.New()
	if err := m.AddFromFile(gitignorePath, filepath.ToSlash(base)); err != nil {
		w.gitignoreCache.Add(key, nil)
		return nil
	}
	w.gitignoreCache.Add(key, m)
	return m
}

func looksBinary(content []byte) bool {
	n := len(content)
	if n > binarySniffLen {
		n = binarySniffLen
	}
	return bytes.IndexByte(content[:n], 0) >= 0
}
