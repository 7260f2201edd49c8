package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skosovsky/opsy/config"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "opsy",
		Short:        "Devopness operations for agents",
		Long:         "Opsy exposes the Devopness API as named operations behind one MCP tool, and runs them from the command line.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to the YAML config file")

	cmd.AddCommand(
		serveCmd(opts),
		opsCmd(opts),
		describeCmd(opts),
		schemaCmd(opts),
		callCmd(opts),
		auditCmd(opts),
		versionCmd(),
	)
	return cmd
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "opsy %s\n", version)
		},
	}
}
