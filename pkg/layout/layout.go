// Package layout computes 2D node positions for dependency graphs.
//
// Four algorithms are provided as pure functions over a [graph.Graph]
// snapshot: [Force] (force-directed with decaying temperature),
// [Hierarchical] (Sugiyama-style layering with barycenter crossing
// reduction), [Radial] (BFS rings around a root), and [Organic]
// (Fruchterman-Reingold). Each returns a new Graph with a position assigned
// to every node; the input is never mutated, so a caller can re-run a
// different layout on the same snapshot.
//
// The [Apply] dispatcher routes a [Type] to its algorithm and falls back to
// force-directed for unrecognized types (warning, not error).
//
// All computation is single-threaded and CPU-bound. There are no suspension
// points; bounded iteration counts are the termination guarantee.
package layout

import (
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/codeatlas/codeatlas/pkg/graph"
)

// Type identifies a layout algorithm. The set is closed: each variant is
// dispatched through one strategy function so the algorithms stay
// independently testable.
type Type string

// Layout types.
const (
	TypeForce        Type = "force"
	TypeHierarchical Type = "hierarchical"
	TypeRadial       Type = "radial"
	TypeOrganic      Type = "organic"
)

// ParseType returns the layout type for a string and whether it is known.
func ParseType(s string) (Type, bool) {
	switch Type(s) {
	case TypeForce, TypeHierarchical, TypeRadial, TypeOrganic:
		return Type(s), true
	}
	return "", false
}

// Default option values.
const (
	DefaultWidth        = 1200.0
	DefaultHeight       = 800.0
	DefaultPadding      = 50.0
	DefaultNodeSpacing  = 60.0
	DefaultLayerSpacing = 120.0
	DefaultIterations   = 300

	// DefaultSeed seeds the PRNG when none is injected, so repeated runs
	// with default options produce identical positions.
	DefaultSeed = uint64(42)
)

// Options configures all layout algorithms. The zero value is usable: every
// field falls back to its default.
type Options struct {
	Width   float64 // canvas width, default 1200
	Height  float64 // canvas height, default 800
	Padding float64 // clamp margin, default 50

	NodeSpacing  float64 // minimum spacing between sibling nodes, default 60
	LayerSpacing float64 // vertical distance between layers / ring step, default 120

	Iterations int // simulation iterations for force/organic, default 300

	CenterX float64 // gravity center, default Width/2
	CenterY float64 // gravity center, default Height/2

	// RootID selects the radial layout's root. When empty, a node with no
	// incoming edges is chosen, else the first node.
	RootID string

	// UnreachedRing places nodes unreachable from the radial root on a
	// dedicated outermost ring instead of the root's ring.
	UnreachedRing bool

	// Pinned lists node IDs that hold their pre-set position through the
	// force simulation.
	Pinned []string

	// Rand is the PRNG for random initial placement. When nil, a PCG
	// source seeded with DefaultSeed is used so runs are reproducible.
	Rand *rand.Rand

	// Logger receives the unknown-type warning from Apply. Defaults to
	// log.Default().
	Logger *log.Logger
}

// withDefaults returns a copy of o with zero fields replaced by defaults.
func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Padding <= 0 {
		o.Padding = DefaultPadding
	}
	// Padding must leave a usable canvas.
	if 2*o.Padding >= o.Width {
		o.Padding = o.Width / 4
	}
	if 2*o.Padding >= o.Height {
		o.Padding = o.Height / 4
	}
	if o.NodeSpacing <= 0 {
		o.NodeSpacing = DefaultNodeSpacing
	}
	if o.LayerSpacing <= 0 {
		o.LayerSpacing = DefaultLayerSpacing
	}
	if o.Iterations <= 0 {
		o.Iterations = DefaultIterations
	}
	if o.CenterX == 0 {
		o.CenterX = o.Width / 2
	}
	if o.CenterY == 0 {
		o.CenterY = o.Height / 2
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(DefaultSeed, DefaultSeed))
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// Apply routes the graph to the layout algorithm for typ. An unrecognized
// type logs a warning and falls back to force-directed layout rather than
// failing, so callers always get a positioned graph back.
func Apply(g graph.Graph, typ Type, opts Options) graph.Graph {
	switch typ {
	case TypeForce:
		return Force(g, opts)
	case TypeHierarchical:
		return Hierarchical(g, opts)
	case TypeRadial:
		return Radial(g, opts)
	case TypeOrganic:
		return Organic(g, opts)
	default:
		o := opts.withDefaults()
		o.Logger.Warn("unknown layout type, falling back to force", "type", string(typ))
		return Force(g, opts)
	}
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampToCanvas bounds a position to the padded canvas.
func clampToCanvas(x, y float64, o Options) (float64, float64) {
	return clamp(x, o.Padding, o.Width-o.Padding), clamp(y, o.Padding, o.Height-o.Padding)
}

// edgeEndpoints resolves an edge to node indices. The second result is false
// for dangling edges, which the simulations skip.
func edgeEndpoints(e graph.Edge, index map[string]int) (int, int, bool) {
	si, ok := index[e.Source]
	if !ok {
		return 0, 0, false
	}
	ti, ok := index[e.Target]
	if !ok {
		return 0, 0, false
	}
	return si, ti, true
}

// nodeIndex maps node IDs to their slice positions.
func nodeIndex(g graph.Graph) map[string]int {
	idx := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		idx[n.ID] = i
	}
	return idx
}
