// File: cmd/serve.go
package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/linkedin-mcp/internal/observability"
	"github.com/xkilldash9x/linkedin-mcp/internal/service"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the LinkedIn tool server until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withComponents(cmd, func(ctx context.Context, c *service.Components) error {
				observability.GetLogger().Info("Starting tool server",
					zap.String("version", Version),
					zap.String("listen_addr", c.Config.Server().ListenAddr),
				)
				return c.NewServer().Run(ctx)
			})
		},
	}
}
