package layout

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/codeatlas/codeatlas/pkg/graph"
)

func buildChain(n int) graph.Graph {
	b := graph.NewBuilder()
	for i := 0; i < n; i++ {
		b.AddNode(graph.NewNode(fmt.Sprintf("n%d", i), graph.NodeFile, "", ""))
	}
	for i := 0; i+1 < n; i++ {
		b.AddEdge(graph.NewEdge(fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", i+1), graph.EdgeImports))
	}
	return b.Build()
}

var allLayouts = map[Type]func(graph.Graph, Options) graph.Graph{
	TypeForce:        Force,
	TypeHierarchical: Hierarchical,
	TypeRadial:       Radial,
	TypeOrganic:      Organic,
}

func TestLayouts_EmptyGraph(t *testing.T) {
	for typ, fn := range allLayouts {
		t.Run(string(typ), func(t *testing.T) {
			got := fn(graph.Graph{}, Options{})
			if len(got.Nodes) != 0 {
				t.Errorf("len(Nodes) = %d, want 0", len(got.Nodes))
			}
		})
	}
}

func TestLayouts_SingleNode(t *testing.T) {
	for typ, fn := range allLayouts {
		t.Run(string(typ), func(t *testing.T) {
			got := fn(buildChain(1), Options{Iterations: 10})
			if len(got.Nodes) != 1 {
				t.Fatalf("len(Nodes) = %d, want 1", len(got.Nodes))
			}
			if got.Nodes[0].Position == nil {
				t.Fatal("Position = nil, want a defined position")
			}
		})
	}
}

func TestLayouts_EveryNodePositioned(t *testing.T) {
	g := buildChain(12)
	for typ, fn := range allLayouts {
		t.Run(string(typ), func(t *testing.T) {
			got := fn(g, Options{Iterations: 20})
			for _, n := range got.Nodes {
				if n.Position == nil {
					t.Errorf("node %s has no position", n.ID)
				}
			}
		})
	}
}

func TestLayouts_InputNotMutated(t *testing.T) {
	g := buildChain(5)
	for typ, fn := range allLayouts {
		t.Run(string(typ), func(t *testing.T) {
			_ = fn(g, Options{Iterations: 10})
			for _, n := range g.Nodes {
				if n.Position != nil {
					t.Fatalf("input graph node %s gained a position", n.ID)
				}
			}
		})
	}
}

func TestForce_StaysWithinBounds(t *testing.T) {
	g := buildChain(8)
	got := Force(g, Options{Width: 100, Height: 100, Iterations: 50})

	for _, n := range got.Nodes {
		if n.Position.X < 0 || n.Position.X > 100 || n.Position.Y < 0 || n.Position.Y > 100 {
			t.Errorf("node %s at (%v, %v), want within [0, 100]", n.ID, n.Position.X, n.Position.Y)
		}
	}
}

func TestForce_Reproducible(t *testing.T) {
	g := buildChain(10)
	opts := func() Options {
		return Options{Iterations: 30, Rand: rand.New(rand.NewPCG(7, 7))}
	}

	first := Force(g, opts())
	second := Force(g, opts())

	for i := range first.Nodes {
		a, b := first.Nodes[i].Position, second.Nodes[i].Position
		if a.X != b.X || a.Y != b.Y {
			t.Fatalf("node %s differs between seeded runs: (%v,%v) vs (%v,%v)",
				first.Nodes[i].ID, a.X, a.Y, b.X, b.Y)
		}
	}
}

func TestForce_PinnedNodeHoldsPosition(t *testing.T) {
	g := buildChain(4)
	g.Nodes[0].Position = &graph.Position{X: 77, Y: 88}

	got := Force(g, Options{Iterations: 40, Pinned: []string{"n0"}})

	if p := got.Nodes[0].Position; p.X != 77 || p.Y != 88 {
		t.Errorf("pinned node moved to (%v, %v), want (77, 88)", p.X, p.Y)
	}
}

func TestForce_Performance100Nodes(t *testing.T) {
	// 100 nodes, each linked to its next 3 neighbors mod 100.
	b := graph.NewBuilder()
	for i := 0; i < 100; i++ {
		b.AddNode(graph.NewNode(fmt.Sprintf("n%d", i), graph.NodeFile, "", ""))
	}
	for i := 0; i < 100; i++ {
		for j := 1; j <= 3; j++ {
			b.AddEdge(graph.NewEdge(fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", (i+j)%100), graph.EdgeCalls))
		}
	}
	g := b.Build()

	start := time.Now()
	got := Force(g, Options{Iterations: 50})
	elapsed := time.Since(start)

	if elapsed > 5*time.Second {
		t.Errorf("Force(100 nodes, 50 iterations) took %v, want < 5s", elapsed)
	}
	if len(got.Nodes) != 100 {
		t.Errorf("len(Nodes) = %d, want 100", len(got.Nodes))
	}
}

func TestApply_UnknownTypeFallsBackToForce(t *testing.T) {
	g := buildChain(6)

	got := Apply(g, Type("unknown"), Options{Iterations: 20})

	for _, n := range got.Nodes {
		if n.Position == nil {
			t.Errorf("node %s has no position after fallback", n.ID)
		}
	}
}

func TestApply_RoutesAllTypes(t *testing.T) {
	g := buildChain(4)
	for typ := range allLayouts {
		got := Apply(g, typ, Options{Iterations: 10})
		if got.Nodes[0].Position == nil {
			t.Errorf("Apply(%s) left nodes unpositioned", typ)
		}
	}
}

func TestParseType(t *testing.T) {
	if typ, ok := ParseType("radial"); !ok || typ != TypeRadial {
		t.Errorf("ParseType(radial) = %v, %v", typ, ok)
	}
	if _, ok := ParseType("bogus"); ok {
		t.Error("ParseType(bogus) ok = true, want false")
	}
}
