// Opsy serves the Devopness operations to agents over MCP and runs them from the
// command line.
//
// Usage:
//
//	opsy serve                      # MCP server on stdio (default) or HTTP
//	opsy ops                        # list operations
//	opsy describe create_server     # describe an operation's arguments
//	opsy schema create_server       # JSON Schema of an operation
//	opsy call list_servers --args '{"environment_id": 42}'
//	opsy audit --limit 20           # recent journaled calls
//	opsy version
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
