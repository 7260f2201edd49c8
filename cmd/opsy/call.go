package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"
	"golang.org/x/term"

	"github.com/skosovsky/opsy"
	"github.com/skosovsky/opsy/config"
)

func callCmd(root *rootOptions) *cobra.Command {
	var (
		argsText string
		argsFile string
		yes      bool
	)

	cmd := &cobra.Command{
		Use:   "call <operation>",
		Short: "Run one operation",
		Long: `Run one operation with a JSON argument bag. Comments and trailing commas are
allowed (JSONC). Destructive operations ask for confirmation on a terminal and
require --yes otherwise.`,
		Example: `  opsy call list_projects
  opsy call list_servers --args '{"environment_id": 42}'
  opsy call __help__ --args '{"operation": "create_server"}'
  opsy call delete_server --args-file delete.jsonc --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			in := cmd.InOrStdin()
			if err := promptPassword(cmd, in, cfg); err != nil {
				return err
			}
			bag, err := readArgs(in, argsText, argsFile)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			name := args[0]
			if op, err := a.registry.Lookup(name); err == nil && op.IsDangerous() && !yes {
				if err := confirm(cmd, in, name); err != nil {
					return err
				}
			}

			res, err := a.registry.Execute(cmd.Context(), name, bag, a.client)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&argsText, "args", "a", "", "operation arguments as a JSON(C) object")
	cmd.Flags().StringVarP(&argsFile, "args-file", "f", "", "read arguments from a JSON(C) file, - for stdin")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "run destructive operations without confirmation")
	cmd.MarkFlagsMutuallyExclusive("args", "args-file")
	return cmd
}

// readArgs decodes the argument bag. Numbers stay json.Number so integers keep
// their exact value.
func readArgs(stdin io.Reader, text, file string) (opsy.Args, error) {
	var data []byte
	switch {
	case file == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read arguments: %w", err)
		}
		data = b
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read arguments: %w", err)
		}
		data = b
	default:
		data = []byte(text)
	}
	data = bytes.TrimSpace(jsonc.ToJSON(data))
	if len(data) == 0 {
		return nil, nil
	}

	var bag opsy.Args
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&bag); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	return bag, nil
}

func promptPassword(cmd *cobra.Command, in io.Reader, cfg *config.Config) error {
	if cfg.Auth.Email == "" || cfg.Auth.Password != "" || !isTerminal(in) {
		return nil
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Devopness password for %s: ", cfg.Auth.Email)
	password, err := term.ReadPassword(int(in.(*os.File).Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	cfg.Auth.Password = string(password)
	return nil
}

var errNotConfirmed = errors.New("operation not confirmed")

func confirm(cmd *cobra.Command, in io.Reader, operation string) error {
	if !isTerminal(in) {
		return fmt.Errorf("%s is a destructive operation; pass --yes to run it without a terminal", operation)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s is a destructive operation. Continue? [y/N] ", operation)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	}
	return errNotConfirmed
}

func printResult(w io.Writer, res any) error {
	if s, ok := res.(string); ok {
		_, err := fmt.Fprintln(w, s)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
