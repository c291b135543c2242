package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// projectCommand creates the "project" command.
func (c *CLI) projectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "project <id>",
		Short: "Show metadata for a source project",
		Long:  `Show metadata for a source project such as github.com/facebook/react, including scorecard results and star counts.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.newClient()
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := cmd.Context()

			raw, err := c.fetchWithSpinner(ctx, "Fetching project metadata", func() (json.RawMessage, error) {
				return client.GetProject(ctx, args[0])
			})
			if err != nil {
				return err
			}
			return printJSON(raw)
		},
	}
}

// projectVersionsCommand creates the "project-versions" command.
func (c *CLI) projectVersionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "project-versions <id>",
		Short: "Show package versions built from a source project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.newClient()
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := cmd.Context()

			raw, err := c.fetchWithSpinner(ctx, "Fetching project package versions", func() (json.RawMessage, error) {
				return client.GetProjectPackageVersions(ctx, args[0])
			})
			if err != nil {
				return err
			}
			return printJSON(raw)
		},
	}
}

// advisoryCommand creates the "advisory" command.
func (c *CLI) advisoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "advisory <id>",
		Short: "Show a security advisory by OSV identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.newClient()
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := cmd.Context()

			raw, err := c.fetchWithSpinner(ctx, "Fetching advisory", func() (json.RawMessage, error) {
				return client.GetAdvisory(ctx, args[0])
			})
			if err != nil {
				return err
			}
			return printJSON(raw)
		},
	}
}
