// File: cmd/bridge.go
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/linkedin-mcp/internal/service"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newBridgeCmd() *cobra.Command {
	bridgeCmd := &cobra.Command{
		Use:   "bridge",
		Short: "Inspect the browser bridge",
	}

	bridgeCmd.AddCommand(&cobra.Command{
		Use:   "health",
		Short: "Check whether the bridge answers its health probe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withComponents(cmd, func(ctx context.Context, c *service.Components) error {
				adapter := c.NewBridgeAdapter()
				defer adapter.Close(ctx)

				url := c.Config.Bridge().URL
				if !adapter.IsAvailable(ctx) {
					return fmt.Errorf("bridge at %s is unavailable", url)
				}
				cmd.Printf("Bridge at %s is available\n", url)
				return nil
			})
		},
	})

	bridgeCmd.AddCommand(&cobra.Command{
		Use:   "sessions",
		Short: "List the sessions the bridge currently holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withComponents(cmd, func(ctx context.Context, c *service.Components) error {
				adapter := c.NewBridgeAdapter()
				defer adapter.Close(ctx)
				return writeJSON(cmd, adapter.ListSessions(ctx))
			})
		},
	})
	return bridgeCmd
}

// writeJSON prints v as indented JSON on the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
