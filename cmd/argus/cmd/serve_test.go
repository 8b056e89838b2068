package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewServeCmdRegistersTransportFlag(t *testing.T) {
	cmd := newServeCmd()
	assert.NotNil(t, cmd.Flags().Lookup("transport"))
}

func TestNewServeCmdAcceptsAtMostOnePathArg(t *testing.T) {
	cmd := newServeCmd()
	assert.NoError(t, cmd.Args(cmd, []string{}))
	assert.Error(t, cmd.Args(cmd, []string{"a", "b"}))
}
