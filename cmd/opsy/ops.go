package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skosovsky/opsy"
	"github.com/skosovsky/opsy/operations"
)

// loadRegistry builds the registry without touching the network, for commands
// that only describe operations.
func loadRegistry(root *rootOptions, cmd *cobra.Command) (*app, error) {
	cfg, err := root.load()
	if err != nil {
		return nil, err
	}
	return newApp(cmd.Context(), cfg, cmd.ErrOrStderr())
}

func opsCmd(root *rootOptions) *cobra.Command {
	var tag string

	cmd := &cobra.Command{
		Use:   "ops",
		Short: "List the available operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadRegistry(root, cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			return writeOperations(cmd.OutOrStdout(), a.registry.Operations(), tag)
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "only list operations with this tag")
	return cmd
}

func writeOperations(w io.Writer, ops []*opsy.Operation[operations.API], tag string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, op := range ops {
		tags := op.Tags()
		if tag != "" && !slices.Contains(tags, tag) {
			continue
		}
		summary, _, _ := strings.Cut(op.Description(), "\n")
		flag := ""
		if op.IsDangerous() {
			flag = "[dangerous]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", op.Name(), flag, summary)
	}
	return tw.Flush()
}

func describeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "describe [operation]",
		Short: "Describe an operation's arguments",
		Long:  "Print the same help text agents get from " + opsy.HelpOperation + ". Without an operation, list them all.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadRegistry(root, cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			target := opsy.HelpOperation
			if len(args) == 1 {
				target = args[0]
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.registry.Describe(target))
			return nil
		},
	}
}

func schemaCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <operation>",
		Short: "Print the JSON Schema of an operation's arguments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadRegistry(root, cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			op, err := a.registry.Lookup(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(opsy.JSONSchema(op.Schema()))
		},
	}
}
