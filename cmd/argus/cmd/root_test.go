package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRootCmdRegistersSubcommands(t *testing.T) {
	cmd := NewRootCmd()
	names := make(map[string]bool)
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"map", "search", "index", "reindex", "doctor", "serve"} {
		assert.True(t, names[want], "expected %q subcommand to be registered", want)
	}
}

func TestNewRootCmdHasDebugAndConfigFlags(t *testing.T) {
	cmd := NewRootCmd()
	assert.NotNil(t, cmd.PersistentFlags().Lookup("debug"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestNewRootCmdHasProfilingFlags(t *testing.T) {
	cmd := NewRootCmd()
	assert.NotNil(t, cmd.PersistentFlags().Lookup("profile-cpu"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("profile-mem"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("profile-trace"))
}

func TestRootHelpDoesNotPanic(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	assert.NotPanics(t, func() { _ = cmd.Execute() })
	assert.Contains(t, buf.String(), "argus")
}
