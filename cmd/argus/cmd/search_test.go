package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Search itself talks to a real embedding provider and the Store, both
// already covered by internal/hybrid and internal/store's own tests;
// here we only check the command's flag wiring and arg handling.

func TestNewSearchCmdRegistersLimitAndJSONFlags(t *testing.T) {
	cmd := newSearchCmd()
	assert.NotNil(t, cmd.Flags().Lookup("limit"))
	assert.NotNil(t, cmd.Flags().Lookup("json"))
}

func TestNewSearchCmdRequiresAtLeastOneArg(t *testing.T) {
	cmd := newSearchCmd()
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.Args(cmd, []string{}))
}
