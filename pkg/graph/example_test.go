package graph_test

import (
	"fmt"

	"github.com/codeatlas/codeatlas/pkg/graph"
)

func ExampleBuilder() {
	b := graph.NewBuilder()
	b.AddNode(graph.NewNode("auth", graph.NodeModule, "auth", "src/auth"))
	b.AddNode(graph.NewNode("db", graph.NodeModule, "db", "src/db"))
	b.AddEdge(graph.NewEdge("auth", "db", graph.EdgeImports))

	g := b.Build()
	fmt.Println(len(g.Nodes), "nodes,", len(g.Edges), "edges")
	// Output: 2 nodes, 1 edges
}

func ExampleBuilder_mergedEdges() {
	b := graph.NewBuilder()
	b.AddNode(graph.NewNode("a", graph.NodeFile, "a", "a.go"))
	b.AddNode(graph.NewNode("b", graph.NodeFile, "b", "b.go"))

	// Adding the same edge twice accumulates weight instead of duplicating.
	b.AddEdge(graph.NewEdge("a", "b", graph.EdgeCalls))
	b.AddEdge(graph.NewEdge("a", "b", graph.EdgeCalls))

	g := b.Build()
	fmt.Println(len(g.Edges), "edge, weight", g.Edges[0].Weight)
	// Output: 1 edge, weight 2
}

func ExampleToDOT() {
	b := graph.NewBuilder()
	b.AddNode(graph.NewNode("main", graph.NodeFunction, "main", "main.go"))
	g := b.Build()

	dot := graph.ToDOT(g, graph.DOTOptions{})
	fmt.Println(dot[:11])
	// Output: digraph G {
}
