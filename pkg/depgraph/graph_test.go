package depgraph

import (
	"strings"
	"testing"
)

const samplePayload = `{
	"nodes": [
		{"versionKey": {"system": "NPM", "name": "react", "version": "18.2.0"}, "relation": "SELF", "errors": []},
		{"versionKey": {"system": "NPM", "name": "loose-envify", "version": "1.4.0"}, "relation": "DIRECT", "errors": []},
		{"versionKey": {"system": "NPM", "name": "js-tokens", "version": "4.0.0"}, "relation": "INDIRECT", "errors": ["no lockfile"]}
	],
	"edges": [
		{"fromNode": 0, "toNode": 1, "requirement": "^1.1.0"},
		{"fromNode": 1, "toNode": 2, "requirement": "^3.0.0 || ^4.0.0"}
	],
	"error": ""
}`

func TestDecode(t *testing.T) {
	g, err := Decode([]byte(samplePayload))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(g.Nodes) != 3 || len(g.Edges) != 2 {
		t.Fatalf("got %d nodes, %d edges", len(g.Nodes), len(g.Edges))
	}

	root, ok := g.Root()
	if !ok {
		t.Fatal("expected a SELF node")
	}
	if got := root.VersionKey.String(); got != "NPM/react@18.2.0" {
		t.Errorf("root = %s", got)
	}

	direct := g.Direct()
	if len(direct) != 1 || direct[0].VersionKey.Name != "loose-envify" {
		t.Errorf("direct = %+v", direct)
	}
}

func TestDecode_Invalid(t *testing.T) {
	if _, err := Decode([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
	if _, err := Decode([]byte(`{"nodes": [], "edges": [{"fromNode": 0, "toNode": 3}]}`)); err == nil {
		t.Error("expected error for out-of-range edge")
	}
}

func TestToDOT(t *testing.T) {
	g, err := Decode([]byte(samplePayload))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	dot := ToDOT(g, Options{})
	for _, want := range []string{
		"digraph dependencies {",
		`label="react@18.2.0"`,
		`label="js-tokens@4.0.0"`,
		`n0 -> n1 [label="^1.1.0"`,
		"fillcolor=lightgrey",
		"color=red",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOT_Detailed(t *testing.T) {
	g, err := Decode([]byte(samplePayload))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	dot := ToDOT(g, Options{Detailed: true})
	for _, want := range []string{"system: NPM", "no lockfile"} {
		if !strings.Contains(dot, want) {
			t.Errorf("detailed DOT missing %q", want)
		}
	}
}
