// File: cmd/scrape.go
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/linkedin-mcp/internal/mcp"
	"github.com/xkilldash9x/linkedin-mcp/internal/service"
)

func newScrapeCmd() *cobra.Command {
	scrapeCmd := &cobra.Command{
		Use:   "scrape",
		Short: "Extract a single LinkedIn record and print it as JSON",
	}

	scrapeCmd.AddCommand(newScrapeSubCmd("person <username>", "Extract a member profile",
		func(ctx context.Context, t *mcp.Tools, id string) (any, error) { return t.PersonProfile(ctx, id) }))
	scrapeCmd.AddCommand(newScrapeSubCmd("company <name>", "Extract a company page",
		func(ctx context.Context, t *mcp.Tools, id string) (any, error) { return t.CompanyProfile(ctx, id) }))
	scrapeCmd.AddCommand(newScrapeSubCmd("job <job-id>", "Extract a job posting",
		func(ctx context.Context, t *mcp.Tools, id string) (any, error) { return t.JobDetails(ctx, id) }))
	return scrapeCmd
}

type scrapeFunc func(ctx context.Context, t *mcp.Tools, id string) (any, error)

func newScrapeSubCmd(use, short string, fn scrapeFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withComponents(cmd, func(ctx context.Context, c *service.Components) error {
				record, err := fn(ctx, c.Tools, args[0])
				if err != nil {
					return fmt.Errorf("extraction failed: %w", err)
				}
				return writeJSON(cmd, record)
			})
		},
	}
}
