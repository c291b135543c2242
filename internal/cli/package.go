package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eclipseo/godepsdev/pkg/depsdev"
)

// packageVersion is the subset of a package's version entry the CLI needs
// for display and interactive selection.
type packageVersion struct {
	VersionKey  depsdev.VersionKey `json:"versionKey"`
	PublishedAt string             `json:"publishedAt"`
	IsDefault   bool               `json:"isDefault"`
}

type packageInfo struct {
	PackageKey struct {
		System string `json:"system"`
		Name   string `json:"name"`
	} `json:"packageKey"`
	Versions []packageVersion `json:"versions"`
}

// packageCommand creates the "package" command.
func (c *CLI) packageCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "package <system> <name>",
		Short: "Show known versions of a package",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.newClient()
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := cmd.Context()

			raw, err := c.fetchWithSpinner(ctx, "Fetching package metadata", func() (json.RawMessage, error) {
				return client.GetPackage(ctx, args[0], args[1])
			})
			if err != nil {
				return err
			}

			if !interactive {
				return printJSON(raw)
			}

			var info packageInfo
			if err := json.Unmarshal(raw, &info); err != nil {
				return fmt.Errorf("decode package: %w", err)
			}
			if len(info.Versions) == 0 {
				printInfo("No versions known for %s/%s", args[0], args[1])
				return nil
			}

			selected, ok, err := pickVersion(info.Versions)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}

			versionRaw, err := c.fetchWithSpinner(ctx, "Fetching version metadata", func() (json.RawMessage, error) {
				return client.GetVersion(ctx, args[0], args[1], selected)
			})
			if err != nil {
				return err
			}
			return printJSON(versionRaw)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick a version interactively")
	return cmd
}

// versionCommand creates the "version" command.
func (c *CLI) versionCommand() *cobra.Command {
	return c.versionQueryCommand(
		"version", "Show metadata for a package version", "Fetching version metadata",
		func(ctx context.Context, client *depsdev.Client, system, name, version string) (json.RawMessage, error) {
			return client.GetVersion(ctx, system, name, version)
		})
}

// requirementsCommand creates the "requirements" command.
func (c *CLI) requirementsCommand() *cobra.Command {
	return c.versionQueryCommand(
		"requirements", "Show declared requirements of a package version", "Fetching requirements",
		func(ctx context.Context, client *depsdev.Client, system, name, version string) (json.RawMessage, error) {
			return client.GetRequirements(ctx, system, name, version)
		})
}

// dependentsCommand creates the "dependents" command.
func (c *CLI) dependentsCommand() *cobra.Command {
	return c.versionQueryCommand(
		"dependents", "Show dependent counts for a package version", "Fetching dependents",
		func(ctx context.Context, client *depsdev.Client, system, name, version string) (json.RawMessage, error) {
			return client.GetDependents(ctx, system, name, version)
		})
}

// capabilitiesCommand creates the "capabilities" command.
func (c *CLI) capabilitiesCommand() *cobra.Command {
	return c.versionQueryCommand(
		"capabilities", "Show capability analysis for a package version", "Fetching capabilities",
		func(ctx context.Context, client *depsdev.Client, system, name, version string) (json.RawMessage, error) {
			return client.GetCapabilities(ctx, system, name, version)
		})
}

// versionQueryCommand builds a command taking <system> <name> <version> that
// prints the raw API response.
func (c *CLI) versionQueryCommand(use, short, spinnerMsg string,
	fetch func(ctx context.Context, client *depsdev.Client, system, name, version string) (json.RawMessage, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <system> <name> <version>",
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.newClient()
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := cmd.Context()

			raw, err := c.fetchWithSpinner(ctx, spinnerMsg, func() (json.RawMessage, error) {
				return fetch(ctx, client, args[0], args[1], args[2])
			})
			if err != nil {
				return err
			}
			return printJSON(raw)
		},
	}
}

// fetchWithSpinner runs fetch behind a spinner and logs elapsed time at
// debug level.
func (c *CLI) fetchWithSpinner(ctx context.Context, msg string, fetch func() (json.RawMessage, error)) (json.RawMessage, error) {
	p := newProgress(c.Logger)
	sp := newSpinnerWithContext(ctx, msg)
	sp.Start()
	raw, err := fetch()
	sp.Stop()
	if err != nil {
		return nil, err
	}
	p.done(msg)
	return raw, nil
}
