// Package analysis provides read-only algorithms over a [graph.Graph]
// snapshot: cycle detection, strongly-connected-component discovery,
// importance scoring, bounded reachability, and impact-severity
// classification.
//
// An [Analyzer] wraps exactly one immutable Graph for its lifetime and never
// mutates it. Results are computed on demand; callers may cache them. Because
// the underlying snapshot is immutable, one Analyzer is safe to share across
// concurrent readers.
package analysis

import (
	"github.com/codeatlas/codeatlas/pkg/graph"
)

// Analyzer wraps one immutable Graph and answers structural queries about it.
type Analyzer struct {
	g        graph.Graph
	known    map[string]bool
	outgoing map[string][]string
}

// New creates an Analyzer for the given graph snapshot. The adjacency index
// is built once here; edges referencing unknown node IDs are excluded from
// traversal (dangling edges are tolerated, not followed).
func New(g graph.Graph) *Analyzer {
	a := &Analyzer{
		g:        g,
		known:    make(map[string]bool, len(g.Nodes)),
		outgoing: make(map[string][]string, len(g.Nodes)),
	}
	for _, n := range g.Nodes {
		a.known[n.ID] = true
	}
	for _, e := range g.Edges {
		if a.known[e.Source] && a.known[e.Target] {
			a.outgoing[e.Source] = append(a.outgoing[e.Source], e.Target)
		}
	}
	return a
}

// Graph returns the wrapped snapshot.
func (a *Analyzer) Graph() graph.Graph { return a.g }

// Statistics summarizes a graph for quick reporting.
type Statistics struct {
	NodeCount int  `json:"nodeCount"`
	EdgeCount int  `json:"edgeCount"`
	HasCycles bool `json:"hasCycles"`
}

// Statistics returns node/edge counts and whether the graph contains at
// least one cycle.
func (a *Analyzer) Statistics() Statistics {
	return Statistics{
		NodeCount: len(a.g.Nodes),
		EdgeCount: len(a.g.Edges),
		HasCycles: len(a.FindCircularDependencies()) > 0,
	}
}
