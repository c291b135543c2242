package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eclipseo/godepsdev/pkg/depgraph"
)

// depsCommand creates the "deps" command showing a resolved dependency graph.
func (c *CLI) depsCommand() *cobra.Command {
	var (
		asDOT    bool
		svgPath  string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "deps <system> <name> <version>",
		Short: "Show the resolved dependency graph of a package version",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.newClient()
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := cmd.Context()

			raw, err := c.fetchWithSpinner(ctx, "Resolving dependencies", func() (json.RawMessage, error) {
				return client.GetDependencies(ctx, args[0], args[1], args[2])
			})
			if err != nil {
				return err
			}

			if !asDOT && svgPath == "" {
				return printJSON(raw)
			}

			graph, err := depgraph.Decode(raw)
			if err != nil {
				return err
			}
			if graph.Error != "" {
				printWarning("Graph is incomplete: %s", graph.Error)
			}
			dot := depgraph.ToDOT(graph, depgraph.Options{Detailed: detailed})

			if asDOT {
				fmt.Print(dot)
			}
			if svgPath != "" {
				svg, err := depgraph.RenderSVG(ctx, dot)
				if err != nil {
					return fmt.Errorf("render SVG: %w", err)
				}
				if err := writeFile(svgPath, svg); err != nil {
					return err
				}
				printStats(len(graph.Nodes), len(graph.Edges))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asDOT, "dot", false, "print the graph in Graphviz DOT format")
	cmd.Flags().StringVar(&svgPath, "svg", "", "render the graph to an SVG file")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include systems and resolution errors in node labels")
	return cmd
}
