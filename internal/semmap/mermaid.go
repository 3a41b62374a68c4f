package semmap

import (
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

// MermaidRenderer writes a dependency graph as a Mermaid flowchart.
type MermaidRenderer struct {
	// Direction is the flowchart direction, "TD" when empty.
	Direction string
	// Fenced wraps the diagram in a ```mermaid code block.
	Fenced bool
}

const violationStyle = "stroke:#d33,stroke-width:2px"

// Render writes one subgraph per layer, orphan nodes outside any subgraph,
// then the edges. Violating edges carry a label and a red link style.
func (m MermaidRenderer) Render(w io.Writer, g *Graph) error {
	direction := m.Direction
	if direction == "" {
		direction = "TD"
	}

	var b strings.Builder
	if m.Fenced {
		b.WriteString("```mermaid\n")
	}
	fmt.Fprintf(&b, "graph %s\n", direction)

	byLayer := make(map[int][]int)
	var layers, orphans []int
	for i, node := range g.Nodes {
		if node.Orphan {
			orphans = append(orphans, i)
			continue
		}
		if _, ok := byLayer[node.Layer]; !ok {
			layers = append(layers, node.Layer)
		}
		byLayer[node.Layer] = append(byLayer[node.Layer], i)
	}
	sort.Ints(layers)

	for _, number := range layers {
		members := byLayer[number]
		name := g.Nodes[members[0]].LayerName
		title := fmt.Sprintf("Layer %d", number)
		if name != "" {
			title += " — " + name
		}
		fmt.Fprintf(&b, "  subgraph L%d[\"%s\"]\n", number, mermaidEscape(title))
		for _, i := range members {
			fmt.Fprintf(&b, "    n%d[\"%s\"]\n", i, mermaidEscape(nodeLabel(g.Nodes[i])))
		}
		b.WriteString("  end\n")
	}
	for _, i := range orphans {
		fmt.Fprintf(&b, "  n%d[\"%s\"]\n", i, mermaidEscape(nodeLabel(g.Nodes[i])))
	}

	var violating []int
	for k, e := range g.Edges {
		arrow := "-->"
		if e.Kind == ImportModuleDeclaration {
			arrow = "-.->"
		}
		if g.IsViolation(e) {
			violating = append(violating, k)
			fmt.Fprintf(&b, "  n%d %s|violation| n%d\n", e.From, arrow, e.To)
			continue
		}
		fmt.Fprintf(&b, "  n%d %s n%d\n", e.From, arrow, e.To)
	}
	for _, k := range violating {
		fmt.Fprintf(&b, "  linkStyle %d %s\n", k, violationStyle)
	}
	if m.Fenced {
		b.WriteString("```\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func nodeLabel(node Node) string {
	base := path.Base(node.Path)
	if node.Orphan {
		return base + "<br/>unmapped"
	}
	label := fmt.Sprintf("%s<br/>L%d", base, node.Layer)
	if node.LayerName != "" {
		label += " " + node.LayerName
	}
	return label
}

func mermaidEscape(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}

// graphJSON is the wire shape of a rendered graph. Edges refer to node paths
// rather than indexes so the output reads on its own.
type graphJSON struct {
	Nodes      []Node        `json:"nodes"`
	Edges      []edgeJSON    `json:"edges"`
	External   []ExternalRef `json:"external,omitempty"`
	Violations []Violation   `json:"violations"`
	Warnings   []string      `json:"warnings,omitempty"`
}

type edgeJSON struct {
	From      string     `json:"from"`
	To        string     `json:"to"`
	Kind      ImportKind `json:"kind"`
	Violation bool       `json:"violation,omitempty"`
}

// RenderGraphJSON writes g as an indented JSON object.
func RenderGraphJSON(w io.Writer, g *Graph) error {
	out := graphJSON{
		Nodes:      g.Nodes,
		Edges:      make([]edgeJSON, 0, len(g.Edges)),
		External:   g.External,
		Violations: g.Violations(),
	}
	if out.Nodes == nil {
		out.Nodes = []Node{}
	}
	if out.Violations == nil {
		out.Violations = []Violation{}
	}
	for _, e := range g.Edges {
		out.Edges = append(out.Edges, edgeJSON{
			From:      g.Nodes[e.From].Path,
			To:        g.Nodes[e.To].Path,
			Kind:      e.Kind,
			Violation: g.IsViolation(e),
		})
	}
	for _, warn := range g.Warnings {
		out.Warnings = append(out.Warnings, warn.String())
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
