package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skosovsky/opsy/config"
	"github.com/skosovsky/opsy/mcp"
	"github.com/skosovsky/opsy/operations"
)

func serveCmd(root *rootOptions) *cobra.Command {
	var transport, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Long:  "Serve the " + operations.ToolName + " tool over stdio (newline-delimited JSON-RPC) or HTTP (POST /mcp).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if transport != "" {
				cfg.Server.Transport = transport
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			d := a.dispatcher()
			logger := a.logger.With("component", "mcp")
			srv, err := mcp.New(cfg.Server.Name, cfg.Server.Version, d,
				mcp.WithTool(operations.ToolName, operations.ToolDescription(d.Names())),
				mcp.WithLogger(logger),
				mcp.WithMiddleware(mcp.LoggingMiddleware(logger), mcp.RecoveryMiddleware(logger)),
			)
			if err != nil {
				return err
			}

			switch cfg.Server.Transport {
			case config.TransportHTTP:
				return srv.ListenAndServe(cmd.Context(), cfg.Server.Addr, mcp.WithAuthToken(cfg.Server.AuthToken))
			case config.TransportStdio:
				return srv.ServeStdio(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
			}
			return fmt.Errorf("unknown transport %q", cfg.Server.Transport)
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "", "transport: stdio or http (overrides config)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address for the http transport (overrides config)")
	return cmd
}
