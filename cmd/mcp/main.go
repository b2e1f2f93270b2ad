// File: cmd/mcp/main.go
// This is the main entrypoint for the standalone tool server. It is
// equivalent to `linkedin-mcp serve` and accepts the same flags.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/xkilldash9x/linkedin-mcp/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := cmd.NewRootCommand()
	root.SetArgs(append([]string{"serve"}, os.Args[1:]...))

	if err := root.ExecuteContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Failed to run tool server:", err)
		os.Exit(1)
	}
}
