package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/finewiki/finewiki-mcp/internal/logging"
	"github.com/finewiki/finewiki-mcp/internal/mcp"
	"github.com/finewiki/finewiki-mcp/internal/query"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Long: `Start the MCP server. The server speaks JSON-RPC over stdio, so all
logging goes to the log file; nothing is written to stdout or stderr.

The index must already exist. Run 'finewiki-mcp index' first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// Stdio carries the protocol stream exclusively; logs must
			// never leak into it.
			cleanup, err := logging.SetupServeMode(cfg.Server.LogLevel)
			if err != nil {
				return fmt.Errorf("failed to setup server logging: %w", err)
			}
			defer cleanup()

			resolver, err := query.NewResolver(cfg.Paths.IndexDir)
			if err != nil {
				slog.Error("cannot open index", slog.String("error", err.Error()))
				return err
			}
			defer resolver.Close()

			srv, err := mcp.NewServer(resolver, cfg.Paths.CorpusDir, cfg.Paths.IndexDir)
			if err != nil {
				return err
			}
			return srv.Serve(cmd.Context())
		},
	}
}
