package graph

import (
	"bytes"
	"strings"
	"testing"
)

func buildSample() Graph {
	b := NewBuilder()
	a := NewNode("a", NodeFile, "index", "/src/index.ts")
	a.Metrics.Complexity = 3
	b.AddNode(a)
	b.AddNode(NewNode("b", NodeClass, "Parser", "/src/parser.ts"))
	b.AddEdge(NewEdge("a", "b", EdgeImports))
	return b.Build()
}

func TestMarshalGraph_RoundTrip(t *testing.T) {
	g := buildSample()

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph() error = %v", err)
	}

	got, err := UnmarshalGraph(data)
	if err != nil {
		t.Fatalf("UnmarshalGraph() error = %v", err)
	}

	if len(got.Nodes) != 2 || len(got.Edges) != 1 {
		t.Fatalf("round trip = %d nodes / %d edges, want 2/1", len(got.Nodes), len(got.Edges))
	}
	if got.Nodes[0].ID != "a" || got.Nodes[0].Metrics.Complexity != 3 {
		t.Errorf("Nodes[0] = %+v, want id=a complexity=3", got.Nodes[0])
	}
	if got.Edges[0].Weight != 1 {
		t.Errorf("Weight = %v, want 1", got.Edges[0].Weight)
	}
}

func TestReadGraph_RecomputesCounts(t *testing.T) {
	// Hand-written JSON with stale metadata counts.
	in := `{"nodes":[{"id":"a","type":"file","name":"a"}],"edges":[],"metadata":{"totalNodes":99}}`

	g, err := ReadGraph(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadGraph() error = %v", err)
	}
	if g.Metadata.TotalNodes != 1 {
		t.Errorf("TotalNodes = %d, want 1", g.Metadata.TotalNodes)
	}
}

func TestReadGraph_Malformed(t *testing.T) {
	if _, err := ReadGraph(strings.NewReader("{not json")); err == nil {
		t.Error("ReadGraph() error = nil, want decode error")
	}
}

func TestWriteGraph_Deterministic(t *testing.T) {
	g := buildSample()

	var first, second bytes.Buffer
	if err := WriteGraph(g, &first); err != nil {
		t.Fatalf("WriteGraph() error = %v", err)
	}
	if err := WriteGraph(g, &second); err != nil {
		t.Fatalf("WriteGraph() error = %v", err)
	}
	if first.String() != second.String() {
		t.Error("WriteGraph() output differs between runs for the same snapshot")
	}
}

func TestClone_IsDeep(t *testing.T) {
	g := buildSample()
	g.Nodes[0].Position = &Position{X: 1, Y: 2}

	cp := g.Clone()
	cp.Nodes[0].Position.X = 99
	cp.Nodes[1].Name = "changed"

	if g.Nodes[0].Position.X != 1 {
		t.Errorf("original Position.X = %v, want 1", g.Nodes[0].Position.X)
	}
	if g.Nodes[1].Name != "Parser" {
		t.Errorf("original Name = %q, want %q", g.Nodes[1].Name, "Parser")
	}
}

func TestOutgoing_SkipsDanglingSources(t *testing.T) {
	b := NewBuilder()
	b.AddNode(NewNode("a", NodeFile, "", ""))
	b.AddEdge(NewEdge("a", "b", EdgeImports))
	b.AddEdge(NewEdge("ghost", "a", EdgeImports))
	g := b.Build()

	adj := g.Outgoing()

	if len(adj["a"]) != 1 || adj["a"][0] != "b" {
		t.Errorf("adj[a] = %v, want [b]", adj["a"])
	}
	if _, ok := adj["ghost"]; ok {
		t.Error("adj contains edges from unknown source node")
	}
}

func TestToDOT(t *testing.T) {
	g := buildSample()

	dot := ToDOT(g, DOTOptions{})

	for _, want := range []string{"digraph G {", `"a" -> "b"`, "shape=box3d"} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q in:\n%s", want, dot)
		}
	}
}

func TestToDOT_WeightedEdge(t *testing.T) {
	b := NewBuilder()
	b.AddNode(NewNode("a", NodeFile, "", ""))
	b.AddNode(NewNode("b", NodeFile, "", ""))
	b.AddEdge(NewEdge("a", "b", EdgeCalls))
	b.AddEdge(NewEdge("a", "b", EdgeCalls))

	dot := ToDOT(b.Build(), DOTOptions{})

	if !strings.Contains(dot, "penwidth=2.0") {
		t.Errorf("ToDOT() missing penwidth for merged edge:\n%s", dot)
	}
}
