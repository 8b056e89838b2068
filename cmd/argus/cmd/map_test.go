package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGoFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestRunMapTreeFormatListsSymbols(t *testing.T) {
	root := t.TempDir()
	writeGoFile(t, root, "main.go", "package main\n\nfunc Greet() string {\n\treturn \"hi\"\n}\n")

	cmd := newMapCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{root})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Greet")
}

func TestRunMapJSONFormatProducesValidJSON(t *testing.T) {
	root := t.TempDir()
	writeGoFile(t, root, "main.go", "package main\n\nfunc Greet() string {\n\treturn \"hi\"\n}\n")

	cmd := newMapCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--format", "json", root})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "{")
	assert.True(t, json.Valid(buf.Bytes()))
}

func TestRunMapOnEmptyDirectoryProducesNoSymbols(t *testing.T) {
	cmd := newMapCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{t.TempDir()})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "\n", buf.String())
}
