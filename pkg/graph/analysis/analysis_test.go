package analysis

import (
	"testing"

	"github.com/codeatlas/codeatlas/pkg/graph"
)

func buildGraph(nodes []string, edges [][2]string) graph.Graph {
	b := graph.NewBuilder()
	for _, id := range nodes {
		b.AddNode(graph.NewNode(id, graph.NodeFile, "", ""))
	}
	for _, e := range edges {
		b.AddEdge(graph.NewEdge(e[0], e[1], graph.EdgeImports))
	}
	return b.Build()
}

func TestFindCircularDependencies_Triangle(t *testing.T) {
	g := buildGraph([]string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}})
	a := New(g)

	cycles := a.FindCircularDependencies()

	if len(cycles) == 0 {
		t.Fatal("FindCircularDependencies() = [], want at least one cycle")
	}
	if len(cycles[0]) != 3 {
		t.Errorf("cycle length = %d, want 3", len(cycles[0]))
	}
}

func TestFindCircularDependencies_Acyclic(t *testing.T) {
	g := buildGraph([]string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})
	a := New(g)

	if cycles := a.FindCircularDependencies(); len(cycles) != 0 {
		t.Errorf("FindCircularDependencies() = %v, want []", cycles)
	}
}

func TestFindCircularDependencies_SelfLoop(t *testing.T) {
	g := buildGraph([]string{"a"}, [][2]string{{"a", "a"}})
	a := New(g)

	cycles := a.FindCircularDependencies()

	if len(cycles) != 1 || len(cycles[0]) != 1 {
		t.Errorf("FindCircularDependencies() = %v, want one single-node cycle", cycles)
	}
}

func TestFindCircularDependencies_IgnoresDanglingEdges(t *testing.T) {
	b := graph.NewBuilder()
	b.AddNode(graph.NewNode("a", graph.NodeFile, "", ""))
	b.AddEdge(graph.NewEdge("a", "ghost", graph.EdgeImports))
	b.AddEdge(graph.NewEdge("ghost", "a", graph.EdgeImports))
	a := New(b.Build())

	if cycles := a.FindCircularDependencies(); len(cycles) != 0 {
		t.Errorf("FindCircularDependencies() = %v, want [] (dangling edges are not traversed)", cycles)
	}
}

func TestStatistics(t *testing.T) {
	g := buildGraph([]string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}})
	a := New(g)

	got := a.Statistics()

	want := Statistics{NodeCount: 4, EdgeCount: 3, HasCycles: true}
	if got != want {
		t.Errorf("Statistics() = %+v, want %+v", got, want)
	}
}

func TestStatistics_Acyclic(t *testing.T) {
	g := buildGraph([]string{"a", "b"}, [][2]string{{"a", "b"}})
	a := New(g)

	if got := a.Statistics(); got.HasCycles {
		t.Errorf("HasCycles = true, want false")
	}
}

func TestFindStronglyConnectedComponents(t *testing.T) {
	// Triangle a→b→c→a plus a tail c→d.
	g := buildGraph([]string{"a", "b", "c", "d"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}, {"c", "d"}})
	a := New(g)

	sccs := a.FindStronglyConnectedComponents()

	if len(sccs) != 1 {
		t.Fatalf("len(sccs) = %d, want 1 (size-1 components without self-loops are filtered)", len(sccs))
	}
	if len(sccs[0]) != 3 {
		t.Errorf("component size = %d, want 3", len(sccs[0]))
	}
}

func TestFindStronglyConnectedComponents_SelfLoopCounts(t *testing.T) {
	g := buildGraph([]string{"a", "b"}, [][2]string{{"a", "a"}, {"a", "b"}})
	a := New(g)

	sccs := a.FindStronglyConnectedComponents()

	if len(sccs) != 1 || len(sccs[0]) != 1 || sccs[0][0] != "a" {
		t.Errorf("sccs = %v, want [[a]]", sccs)
	}
}

func TestFindStronglyConnectedComponents_Acyclic(t *testing.T) {
	g := buildGraph([]string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})
	a := New(g)

	if sccs := a.FindStronglyConnectedComponents(); len(sccs) != 0 {
		t.Errorf("sccs = %v, want []", sccs)
	}
}

func TestCalculateImportanceScores_Complete(t *testing.T) {
	// d is isolated and must still appear with score 0.
	g := buildGraph([]string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"b", "c"}})
	a := New(g)

	scores := a.CalculateImportanceScores()

	if len(scores) != 4 {
		t.Fatalf("len(scores) = %d, want 4 (one per node)", len(scores))
	}
	for id, s := range scores {
		if s < 0 {
			t.Errorf("score[%s] = %v, want >= 0", id, s)
		}
	}
	if scores["d"] != 0 {
		t.Errorf("score[d] = %v, want 0 for isolated node", scores["d"])
	}
	if scores["b"] <= scores["a"] {
		t.Errorf("score[b] = %v <= score[a] = %v, want depended-upon node to rank higher", scores["b"], scores["a"])
	}
}

func TestFindReachable(t *testing.T) {
	g := buildGraph([]string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})
	a := New(g)

	got := a.FindReachable("a", 2)

	want := map[string]int{"a": 0, "b": 1, "c": 2}
	if len(got) != len(want) {
		t.Fatalf("FindReachable() = %v, want %v", got, want)
	}
	for id, d := range want {
		if got[id] != d {
			t.Errorf("depth[%s] = %d, want %d", id, got[id], d)
		}
	}
}

func TestFindReachable_BoundedByMaxDepth(t *testing.T) {
	g := buildGraph([]string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})
	a := New(g)

	got := a.FindReachable("a", 1)

	if _, ok := got["c"]; ok {
		t.Errorf("FindReachable(a, 1) includes c at depth 2: %v", got)
	}
	if got["b"] != 1 {
		t.Errorf("depth[b] = %d, want 1", got["b"])
	}
}

func TestFindReachable_MinimumDepthWins(t *testing.T) {
	// Two routes to c: a→c (depth 1) and a→b→c (depth 2).
	g := buildGraph([]string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"a", "c"}, {"b", "c"}})
	a := New(g)

	if got := a.FindReachable("a", 5); got["c"] != 1 {
		t.Errorf("depth[c] = %d, want 1 (BFS records first reach)", got["c"])
	}
}

func TestFindReachable_UnknownStart(t *testing.T) {
	g := buildGraph([]string{"a"}, nil)
	a := New(g)

	if got := a.FindReachable("missing", 3); len(got) != 0 {
		t.Errorf("FindReachable(missing) = %v, want empty", got)
	}
}
