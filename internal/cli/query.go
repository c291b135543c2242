package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eclipseo/godepsdev/pkg/depsdev"
)

// queryCommand creates the "query" command for hash and version key lookups.
func (c *CLI) queryCommand() *cobra.Command {
	var q depsdev.VersionQuery

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query package versions by content hash or version key",
		Example: `  godepsdev query --hash-type SHA256 --hash uEWXC...
  godepsdev query --system npm --name react --version 18.2.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if q.HashValue == "" && q.Name == "" {
				return fmt.Errorf("provide --hash-type/--hash or --system/--name/--version")
			}

			client, err := c.newClient()
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := cmd.Context()

			raw, err := c.fetchWithSpinner(ctx, "Querying package versions", func() (json.RawMessage, error) {
				return client.QueryPackageVersions(ctx, q)
			})
			if err != nil {
				return err
			}
			return printJSON(raw)
		},
	}

	cmd.Flags().StringVar(&q.HashType, "hash-type", "", "content hash algorithm (MD5, SHA1, SHA256, SHA512)")
	cmd.Flags().StringVar(&q.HashValue, "hash", "", "base64-encoded content hash")
	cmd.Flags().StringVar(&q.System, "system", "", "package management system")
	cmd.Flags().StringVar(&q.Name, "name", "", "package name")
	cmd.Flags().StringVar(&q.Version, "version", "", "package version")
	return cmd
}

// purlCommand creates the "purl" command.
func (c *CLI) purlCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "purl <purl>",
		Short: "Look up a package or version by purl",
		Long:  `Look up a package or package version by package URL, for example pkg:npm/react or pkg:npm/react@18.2.0.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.newClient()
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := cmd.Context()

			raw, err := c.fetchWithSpinner(ctx, "Looking up purl", func() (json.RawMessage, error) {
				return client.GetPurlLookup(ctx, args[0])
			})
			if err != nil {
				return err
			}
			return printJSON(raw)
		},
	}
}

// containersCommand creates the "containers" command.
func (c *CLI) containersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "containers <chain-id>",
		Short: "Find container images by OCI chain ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.newClient()
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := cmd.Context()

			raw, err := c.fetchWithSpinner(ctx, "Querying container images", func() (json.RawMessage, error) {
				return client.QueryContainerImages(ctx, args[0])
			})
			if err != nil {
				return err
			}
			return printJSON(raw)
		},
	}
}
