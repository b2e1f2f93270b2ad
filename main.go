// ./main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/xkilldash9x/linkedin-mcp/cmd"
)

// main lets `go install github.com/xkilldash9x/linkedin-mcp@latest` produce
// the CLI. cmd/linkedin-mcp adds the panic log on top of this.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
