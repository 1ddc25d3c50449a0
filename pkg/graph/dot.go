package graph

import (
	"bytes"
	"fmt"
	"strings"
)

// DOTOptions configures DOT text export.
type DOTOptions struct {
	// Detailed includes path and metrics in node labels.
	// When false, only the node name is shown.
	Detailed bool
}

// nodeShapes maps node types to Graphviz shapes so entity kinds are
// distinguishable in any DOT viewer.
var nodeShapes = map[NodeType]string{
	NodeFile:      "box",
	NodeFunction:  "ellipse",
	NodeClass:     "box3d",
	NodeMethod:    "oval",
	NodeModule:    "folder",
	NodeInterface: "component",
}

// ToDOT converts a Graph to Graphviz DOT format. Only the textual DOT
// representation is produced; rasterizing it is a caller concern.
//
// Edge penwidth scales with merged edge weight so repeatedly-added edges
// read as stronger connections.
func ToDOT(g Graph, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(dotAttrs(n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		attrs := []string{fmt.Sprintf("label=%q", string(e.Type))}
		if e.Weight > 1 {
			attrs = append(attrs, fmt.Sprintf("penwidth=%.1f", edgePenwidth(e.Weight)))
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func dotAttrs(n Node, detailed bool) []string {
	label := n.Name
	if detailed {
		parts := []string{n.Name}
		if n.Path != "" {
			parts = append(parts, n.Path)
		}
		parts = append(parts, fmt.Sprintf("complexity: %.0f", n.Metrics.Complexity))
		label = strings.Join(parts, "\n")
	}

	attrs := []string{fmt.Sprintf("label=%q", label)}
	if shape, ok := nodeShapes[n.Type]; ok {
		attrs = append(attrs, fmt.Sprintf("shape=%s", shape))
	}
	if len(n.Vulnerabilities) > 0 {
		attrs = append(attrs, "fillcolor=mistyrose")
	}
	return attrs
}

// edgePenwidth maps a merged weight to a stroke width, capped so heavy
// edges stay readable.
func edgePenwidth(weight float64) float64 {
	w := 1 + weight/2
	if w > 5 {
		w = 5
	}
	return w
}
