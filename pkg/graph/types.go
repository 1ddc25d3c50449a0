// Package graph defines the dependency-graph data model for the CodeAtlas
// engine: immutable value types (Node, Edge, Graph) shared by the analyzer,
// the layout algorithms, and the clustering engine, plus a mutable Builder
// that accumulates nodes and edges and produces Graph snapshots.
//
// # Immutability Contract
//
// A Graph produced by [Builder.Build] is a snapshot. Downstream components
// never mutate it in place - they return new Graph values. This allows a
// caller to re-run a different layout on the same unmodified graph, and makes
// a built Graph safe to share across concurrent readers.
package graph

import (
	"time"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// NodeType classifies the code entity a node represents.
type NodeType string

// Node types.
const (
	NodeFile      NodeType = "file"
	NodeFunction  NodeType = "function"
	NodeClass     NodeType = "class"
	NodeMethod    NodeType = "method"
	NodeModule    NodeType = "module"
	NodeInterface NodeType = "interface"
)

// EdgeType classifies the relationship an edge represents.
type EdgeType string

// Edge types.
const (
	EdgeImports    EdgeType = "imports"
	EdgeCalls      EdgeType = "calls"
	EdgeExtends    EdgeType = "extends"
	EdgeImplements EdgeType = "implements"
	EdgeContains   EdgeType = "contains"
	EdgeReferences EdgeType = "references"
)

// DefaultEdgeWeight is applied when an edge is added without a weight.
const DefaultEdgeWeight = 1.0

// =============================================================================
// Value Types
// =============================================================================

// Metrics holds per-node code metrics. The zero value is the default for
// nodes created without explicit metrics.
type Metrics struct {
	Complexity      float64 `json:"complexity"`
	ChangeFrequency float64 `json:"changeFrequency"`
	ImpactScore     float64 `json:"impactScore"`
	TestCoverage    float64 `json:"testCoverage"`
}

// Vulnerability describes a known security finding attached to a node.
// The engine carries these through untouched; scanners populate them.
type Vulnerability struct {
	ID          string `json:"id"`
	Severity    string `json:"severity"`
	Description string `json:"description,omitempty"`
}

// Position is a 2D canvas coordinate assigned by a layout algorithm.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a vertex in the dependency graph. ID is the unique key; all other
// fields are descriptive. Position is nil until a layout assigns one.
type Node struct {
	ID              string          `json:"id"`
	Type            NodeType        `json:"type"`
	Name            string          `json:"name"`
	Path            string          `json:"path,omitempty"`
	Metrics         Metrics         `json:"metrics"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities,omitempty"`
	Position        *Position       `json:"position,omitempty"`
}

// Edge is a directed, typed connection between two node IDs. Two edges with
// identical (Source, Target, Type) are the same logical edge; the Builder
// merges duplicates by summing weights.
//
// An edge may reference a node ID not present in the graph. Such dangling
// edges are stored as-is and ignored by algorithms that only traverse via
// known node IDs.
type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Type   EdgeType `json:"type"`
	Weight float64  `json:"weight"`
}

// Metadata summarizes a built graph.
type Metadata struct {
	TotalNodes  int       `json:"totalNodes"`
	TotalEdges  int       `json:"totalEdges"`
	MaxDepth    int       `json:"maxDepth"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Graph is an immutable snapshot of nodes and edges in insertion order.
// Node IDs are unique within a Graph.
type Graph struct {
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Metadata Metadata `json:"metadata"`
}

// =============================================================================
// Constructors
// =============================================================================

// NewNode returns a Node with defaults applied: zero metrics and no
// vulnerabilities. Name defaults to the ID when empty.
func NewNode(id string, typ NodeType, name, path string) Node {
	if name == "" {
		name = id
	}
	return Node{ID: id, Type: typ, Name: name, Path: path}
}

// NewEdge returns an Edge with the default weight of 1.
func NewEdge(source, target string, typ EdgeType) Edge {
	return Edge{Source: source, Target: target, Type: typ, Weight: DefaultEdgeWeight}
}

// =============================================================================
// Graph Accessors
// =============================================================================

// Node returns the node with the given ID and true, or a zero Node and false.
// Lookup is linear; callers that probe repeatedly should build an index once,
// as the analyzer does.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// HasNode reports whether a node with the given ID exists in the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.Node(id)
	return ok
}

// Clone returns a deep copy of the graph. Layout algorithms clone their input
// and assign positions on the copy, preserving the snapshot contract.
func (g *Graph) Clone() Graph {
	out := Graph{
		Nodes:    make([]Node, len(g.Nodes)),
		Edges:    make([]Edge, len(g.Edges)),
		Metadata: g.Metadata,
	}
	copy(out.Edges, g.Edges)
	for i, n := range g.Nodes {
		if n.Position != nil {
			pos := *n.Position
			n.Position = &pos
		}
		if n.Vulnerabilities != nil {
			vulns := make([]Vulnerability, len(n.Vulnerabilities))
			copy(vulns, n.Vulnerabilities)
			n.Vulnerabilities = vulns
		}
		out.Nodes[i] = n
	}
	return out
}

// Outgoing returns an adjacency map from node ID to the targets of its
// outgoing edges, in edge insertion order. Edges whose source is not a known
// node are skipped.
func (g *Graph) Outgoing() map[string][]string {
	known := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		known[n.ID] = true
	}
	adj := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		if known[e.Source] {
			adj[e.Source] = append(adj[e.Source], e.Target)
		}
	}
	return adj
}
