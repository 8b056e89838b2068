package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-dev/argus/internal/lang"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWalk_ClassifiesByExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main\n")
	writeFile(t, dir, "script.py", "def f(): pass\n")
	writeFile(t, dir, "README.md", "# hi\n")

	w, err := New()
	require.NoError(t, err)
	files, err := w.Walk(dir)
	require.NoError(t, err)

	byPath := map[string]lang.Language{}
	for _, f := range files {
		byPath[f.Path] = f.Language
	}
	assert.Equal(t, lang.Go, byPath["main.go"])
	assert.Equal(t, lang.Python, byPath["script.py"])
	_, hasMarkdown := byPath["README.md"]
	assert.False(t, hasMarkdown)
}

func TestWalk_HonorsNestedGitignore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "vendor/\n")
	writeFile(t, dir, "vendor/dep.go", "package dep\n")
	writeFile(t, dir, "sub/.gitignore", "generated.go\n")
	writeFile(t, dir, "sub/generated.go", "package sub\n")
	writeFile(t, dir, "sub/keep.go", "package sub\n")

	w, err := New()
	require.NoError(t, err)
	files, err := w.Walk(dir)
	require.NoError(t, err)

	paths := map[string]bool{}
	for _, f := range files {
		paths[f.Path] = true
	}
	assert.False(t, paths[filepath.ToSlash("vendor/dep.go")])
	assert.False(t, paths[filepath.ToSlash("sub/generated.go")])
	assert.True(t, paths[filepath.ToSlash("sub/keep.go")])
}

func TestWalk_SkipsOversizedFiles(t *testing.T) {
	dir := t.TempDir()
	big := make([]byte, MaxFileSize+1)
	for i := range big {
		big[i] = 'a'
	}
	writeFile(t, dir, "big.go", string(big))
	writeFile(t, dir, "small.go", "package main\n")

	w, err := New()
	require.NoError(t, err)
	files, err := w.Walk(dir)
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, "small.go", files[0].Path)
}

func TestWalk_SkipsBinaryFiles(t *testing.T) {
	dir := t.TempDir()
	binContent := append([]byte("package main\n"), 0x00, 0x01)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "weird.go"), binContent, 0o644))
	writeFile(t, dir, "clean.go", "package main\n")

	w, err := New()
	require.NoError(t, err)
	files, err := w.Walk(dir)
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, "clean.go", files[0].Path)
}

func TestWalk_SkipsDotGitDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".git/config.go", "package config\n")
	writeFile(t, dir, "main.go", "package main\n")

	w, err := New()
	require.NoError(t, err)
	files, err := w.Walk(dir)
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, "main.go", files[0].Path)
}

func TestWalk_EmptyRepoReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	w, err := New()
	require.NoError(t, err)
	files, err := w.Walk(dir)
	require.NoError(t, err)
	assert.Empty(t, files)
}
