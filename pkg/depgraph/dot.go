package depgraph

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
)

// Options configures DOT rendering.
type Options struct {
	// Detailed includes the system and resolution errors in node labels.
	// When false, only name@version is shown.
	Detailed bool
}

// ToDOT converts a dependency graph to Graphviz DOT format.
// The resulting DOT string can be rendered with [RenderSVG].
//
// The SELF node is drawn bold, indirect dependencies grey, and nodes that
// carry resolution errors get a red outline.
func ToDOT(g *Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for i, n := range g.Nodes {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed))
		fmt.Fprintf(&buf, "  n%d [%s];\n", i, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		if e.Requirement != "" {
			fmt.Fprintf(&buf, "  n%d -> n%d [label=%q, fontsize=10];\n", e.FromNode, e.ToNode, e.Requirement)
		} else {
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", e.FromNode, e.ToNode)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n Node, detailed bool) string {
	label := n.VersionKey.Name + "@" + n.VersionKey.Version
	if !detailed {
		return label
	}

	parts := []string{label, "system: " + n.VersionKey.System}
	if n.Bundled {
		parts = append(parts, "bundled")
	}
	parts = append(parts, n.Errors...)
	return strings.Join(parts, "\n")
}

func fmtAttrs(n Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch n.Relation {
	case "SELF":
		attrs = append(attrs, "penwidth=2", "fontsize=16")
	case "INDIRECT":
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	if len(n.Errors) > 0 {
		attrs = append(attrs, "color=red")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
