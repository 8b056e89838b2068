package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewReindexCmdAcceptsOptionalPathArg(t *testing.T) {
	cmd := newReindexCmd()
	assert.NoError(t, cmd.Args(cmd, []string{}))
	assert.NoError(t, cmd.Args(cmd, []string{"/some/path"}))
	assert.Error(t, cmd.Args(cmd, []string{"a", "b"}))
}
