package layout

import (
	"math"

	"github.com/codeatlas/codeatlas/pkg/graph"
)

// Force simulation constants. Tuned for the default 1200x800 canvas; the
// linearly decaying alpha makes exact magnitudes forgiving.
const (
	forceRepulsion    = 6000.0 // inverse-square repulsion strength
	forceSpring       = 0.05   // spring stiffness toward ideal edge length
	forceSpringLength = 120.0  // ideal length for a weight-1 edge
	forceGravity      = 0.03   // pull toward canvas center
	forceDamping      = 0.85   // velocity retained per iteration
	forceMinDistance  = 0.01   // guard against division by zero
)

// Force computes a force-directed layout: all-pairs inverse-square
// repulsion, per-edge spring attraction toward an ideal length inversely
// proportional to edge weight, and weak gravity toward the canvas center,
// all scaled by a temperature alpha that decays linearly to zero over the
// iteration budget.
//
// Nodes without a pre-set position start at a random spot near the canvas
// center (seeded PRNG, see [Options.Rand]). Nodes listed in [Options.Pinned]
// keep their position. Every resulting position is clamped to the padded
// canvas.
func Force(g graph.Graph, opts Options) graph.Graph {
	o := opts.withDefaults()
	out := g.Clone()
	n := len(out.Nodes)
	if n == 0 {
		return out
	}

	idx := nodeIndex(out)
	pinned := make(map[int]bool, len(o.Pinned))
	for _, id := range o.Pinned {
		if i, ok := idx[id]; ok && out.Nodes[i].Position != nil {
			pinned[i] = true
		}
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	vx := make([]float64, n)
	vy := make([]float64, n)
	for i, node := range out.Nodes {
		if node.Position != nil {
			xs[i], ys[i] = node.Position.X, node.Position.Y
			continue
		}
		// Random scatter near the center so symmetric graphs do not
		// collapse onto a single point.
		xs[i] = o.CenterX + (o.Rand.Float64()-0.5)*o.Width/4
		ys[i] = o.CenterY + (o.Rand.Float64()-0.5)*o.Height/4
	}

	for iter := 0; iter < o.Iterations; iter++ {
		alpha := 1 - float64(iter)/float64(o.Iterations)

		fx := make([]float64, n)
		fy := make([]float64, n)

		// All-pairs repulsion.
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx := xs[i] - xs[j]
				dy := ys[i] - ys[j]
				distSq := dx*dx + dy*dy
				if distSq < forceMinDistance {
					// Coincident nodes: push apart along a random axis.
					dx = o.Rand.Float64() - 0.5
					dy = o.Rand.Float64() - 0.5
					distSq = dx*dx + dy*dy
				}
				dist := math.Sqrt(distSq)
				f := forceRepulsion / distSq * alpha
				fx[i] += dx / dist * f
				fy[i] += dy / dist * f
				fx[j] -= dx / dist * f
				fy[j] -= dy / dist * f
			}
		}

		// Spring attraction along edges. Heavier edges want shorter springs.
		for _, e := range out.Edges {
			si, ti, ok := edgeEndpoints(e, idx)
			if !ok || si == ti {
				continue
			}
			weight := e.Weight
			if weight <= 0 {
				weight = graph.DefaultEdgeWeight
			}
			ideal := forceSpringLength / weight
			dx := xs[ti] - xs[si]
			dy := ys[ti] - ys[si]
			dist := math.Max(math.Hypot(dx, dy), forceMinDistance)
			f := forceSpring * (dist - ideal) * alpha
			fx[si] += dx / dist * f
			fy[si] += dy / dist * f
			fx[ti] -= dx / dist * f
			fy[ti] -= dy / dist * f
		}

		// Weak gravity toward the center keeps disconnected pieces on canvas.
		for i := 0; i < n; i++ {
			fx[i] += (o.CenterX - xs[i]) * forceGravity * alpha
			fy[i] += (o.CenterY - ys[i]) * forceGravity * alpha
		}

		// Damped velocity integration.
		for i := 0; i < n; i++ {
			if pinned[i] {
				vx[i], vy[i] = 0, 0
				continue
			}
			vx[i] = (vx[i] + fx[i]) * forceDamping
			vy[i] = (vy[i] + fy[i]) * forceDamping
			xs[i], ys[i] = clampToCanvas(xs[i]+vx[i], ys[i]+vy[i], o)
		}
	}

	for i := range out.Nodes {
		x, y := clampToCanvas(xs[i], ys[i], o)
		out.Nodes[i].Position = &graph.Position{X: x, Y: y}
	}
	return out
}
