package cmd

import (
	"github.com/spf13/cobra"

	"github.com/argus-dev/argus/internal/toolserver"
)

func newServeCmd() *cobra.Command {
	var transport string

	cmd := &cobra.Command{
		Use:   "serve [path]",
		Short: "Run the MCP tool server (search_codebase, get_repo_map)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return runServe(cmd, path, transport)
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "", "MCP transport (defaults to server.transport from config)")
	return cmd
}

func runServe(cmd *cobra.Command, path, transport string) error {
	root, err := projectRoot(path)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if transport == "" {
		transport = cfg.Server.Transport
	}

	release, err := acquireWriteLock(root)
	if err != nil {
		return err
	}
	defer release()

	search, st, err := buildSearch(root, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	server := toolserver.New(search, st, root, rootLogger)
	return server.Serve(cmd.Context(), transport)
}
