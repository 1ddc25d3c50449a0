package graph

import "time"

// Builder is a mutable accumulator that deduplicates and merges nodes and
// edges, then produces an immutable [Graph] snapshot via [Builder.Build].
//
// Nodes are indexed by ID for O(1) upsert; adding a node with an existing ID
// replaces the previous node value entirely (no field-level merge) while
// keeping its original insertion position. Edges are indexed by
// (source, target, type); adding a duplicate increments the existing edge's
// weight by the new edge's weight rather than appending a second edge.
//
// Builder is a single-owner accumulator and is not safe for concurrent use.
// Graphs returned by Build are defensive copies: later mutation of the
// builder does not affect snapshots already returned.
type Builder struct {
	nodes   map[string]Node
	order   []string // node IDs in first-insertion order
	edges   []Edge
	edgeIdx map[edgeKey]int // (source, target, type) -> index into edges
}

type edgeKey struct {
	source string
	target string
	typ    EdgeType
}

// NewBuilder creates an empty graph builder.
func NewBuilder() *Builder {
	return &Builder{
		nodes:   make(map[string]Node),
		edgeIdx: make(map[edgeKey]int),
	}
}

// AddNode upserts a node by ID. An existing node with the same ID is replaced
// entirely; a new ID is appended to the insertion order. Nodes with an empty
// ID are ignored.
func (b *Builder) AddNode(n Node) {
	if n.ID == "" {
		return
	}
	if _, exists := b.nodes[n.ID]; !exists {
		b.order = append(b.order, n.ID)
	}
	b.nodes[n.ID] = n
}

// AddEdge upserts an edge by (source, target, type). A duplicate increments
// the stored edge's weight by the new edge's weight. A zero weight is treated
// as the default weight of 1. Endpoints are not validated - dangling edges
// are stored as-is.
func (b *Builder) AddEdge(e Edge) {
	if e.Weight == 0 {
		e.Weight = DefaultEdgeWeight
	}
	key := edgeKey{e.Source, e.Target, e.Type}
	if i, exists := b.edgeIdx[key]; exists {
		b.edges[i].Weight += e.Weight
		return
	}
	b.edgeIdx[key] = len(b.edges)
	b.edges = append(b.edges, e)
}

// HasNode reports whether a node with the given ID has been added.
func (b *Builder) HasNode(id string) bool {
	_, ok := b.nodes[id]
	return ok
}

// NodeCount returns the number of distinct nodes added so far.
func (b *Builder) NodeCount() int { return len(b.nodes) }

// EdgeCount returns the number of distinct logical edges added so far.
func (b *Builder) EdgeCount() int { return len(b.edges) }

// Neighbors returns the target IDs of all edges whose source is id, in edge
// insertion order. Only outgoing edges are considered.
func (b *Builder) Neighbors(id string) []string {
	var out []string
	for _, e := range b.edges {
		if e.Source == id {
			out = append(out, e.Target)
		}
	}
	return out
}

// Build materializes the accumulated nodes and edges into an immutable Graph
// snapshot. Nodes and edges appear in insertion order, metadata counts are
// computed, and GeneratedAt is set to the current time. Building an empty
// builder yields a Graph with empty (non-nil) lists.
func (b *Builder) Build() Graph {
	g := Graph{
		Nodes: make([]Node, 0, len(b.order)),
		Edges: make([]Edge, len(b.edges)),
		Metadata: Metadata{
			TotalNodes:  len(b.nodes),
			TotalEdges:  len(b.edges),
			GeneratedAt: time.Now(),
		},
	}
	for _, id := range b.order {
		g.Nodes = append(g.Nodes, b.nodes[id])
	}
	copy(g.Edges, b.edges)
	// Deep-copy so builder reuse cannot reach into the snapshot.
	return g.Clone()
}
