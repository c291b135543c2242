// Package depgraph models the resolved dependency graph returned by the
// GetDependencies endpoint and renders it as Graphviz DOT or SVG.
package depgraph

import (
	"encoding/json"
	"fmt"
)

// VersionKey identifies a package version within a graph node.
type VersionKey struct {
	System  string `json:"system"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (k VersionKey) String() string {
	return fmt.Sprintf("%s/%s@%s", k.System, k.Name, k.Version)
}

// Node is a resolved package version in the graph. The first node is the
// root the graph was requested for and carries relation SELF.
type Node struct {
	VersionKey VersionKey `json:"versionKey"`
	Bundled    bool       `json:"bundled"`
	Relation   string     `json:"relation"` // SELF, DIRECT or INDIRECT
	Errors     []string   `json:"errors"`
}

// Edge connects two nodes by index into [Graph.Nodes].
type Edge struct {
	FromNode    int    `json:"fromNode"`
	ToNode      int    `json:"toNode"`
	Requirement string `json:"requirement"`
}

// Graph is a resolved dependency graph. Error, when set, describes a
// resolution problem that made the graph incomplete.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
	Error string `json:"error"`
}

// Decode parses the raw JSON payload of a dependencies response.
func Decode(raw json.RawMessage) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("decode dependency graph: %w", err)
	}
	for _, e := range g.Edges {
		if e.FromNode < 0 || e.FromNode >= len(g.Nodes) || e.ToNode < 0 || e.ToNode >= len(g.Nodes) {
			return nil, fmt.Errorf("decode dependency graph: edge %d -> %d out of range", e.FromNode, e.ToNode)
		}
	}
	return &g, nil
}

// Root returns the SELF node the graph was resolved for.
func (g *Graph) Root() (Node, bool) {
	for _, n := range g.Nodes {
		if n.Relation == "SELF" {
			return n, true
		}
	}
	return Node{}, false
}

// Direct returns the root's direct dependencies.
func (g *Graph) Direct() []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.Relation == "DIRECT" {
			out = append(out, n)
		}
	}
	return out
}
