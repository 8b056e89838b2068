package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/argus-dev/argus/internal/config"
	"github.com/argus-dev/argus/internal/preflight"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor [path]",
		Short: "Check API-key presence, write access, and disk space before indexing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return runDoctor(cmd, path)
		},
	}
}

func runDoctor(cmd *cobra.Command, path string) error {
	root, err := projectRoot(path)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		cfg = config.New()
	}

	results := preflight.Run(root, cfg)
	out := cmd.OutOrStdout()
	for _, r := range results {
		fmt.Fprintf(out, "[%s] %s: %s\n", r.Status, r.Name, r.Message)
	}

	if preflight.AnyCritical(results) {
		return fmt.Errorf("system check failed")
	}
	return nil
}
