// Command argus is a local code-intelligence engine: it builds a
// reference-ranked repo map, hybrid keyword+semantic search, and an MCP
// tool server over a codebase.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/argus-dev/argus/cmd/argus/cmd"
	argerrors "github.com/argus-dev/argus/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "argus:", err)
		var ae *argerrors.ArgusError
		if errors.As(err, &ae) && ae.Suggestion != "" {
			fmt.Fprintln(os.Stderr, "hint:", ae.Suggestion)
		}
		os.Exit(1)
	}
}
