package layout

import (
	"math"

	"github.com/codeatlas/codeatlas/pkg/graph"
)

// Organic computes a Fruchterman-Reingold layout. With ideal distance
// k = sqrt(area / nodeCount), every node pair repels with k²/d and every
// edge attracts with d²/k. Each iteration's net displacement per node is
// capped by a temperature that cools linearly over the iteration budget, and
// positions are clamped to the padded canvas.
func Organic(g graph.Graph, opts Options) graph.Graph {
	o := opts.withDefaults()
	out := g.Clone()
	n := len(out.Nodes)
	if n == 0 {
		return out
	}

	idx := nodeIndex(out)
	area := (o.Width - 2*o.Padding) * (o.Height - 2*o.Padding)
	k := math.Sqrt(area / float64(n))

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, node := range out.Nodes {
		if node.Position != nil {
			xs[i], ys[i] = node.Position.X, node.Position.Y
			continue
		}
		xs[i] = o.Padding + o.Rand.Float64()*(o.Width-2*o.Padding)
		ys[i] = o.Padding + o.Rand.Float64()*(o.Height-2*o.Padding)
	}

	initialTemp := o.Width / 10
	for iter := 0; iter < o.Iterations; iter++ {
		temp := initialTemp * (1 - float64(iter)/float64(o.Iterations))

		dx := make([]float64, n)
		dy := make([]float64, n)

		// Repulsive forces: k²/d between all pairs.
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				deltaX := xs[i] - xs[j]
				deltaY := ys[i] - ys[j]
				dist := math.Max(math.Hypot(deltaX, deltaY), forceMinDistance)
				f := k * k / dist
				dx[i] += deltaX / dist * f
				dy[i] += deltaY / dist * f
				dx[j] -= deltaX / dist * f
				dy[j] -= deltaY / dist * f
			}
		}

		// Attractive forces: d²/k along edges.
		for _, e := range out.Edges {
			si, ti, ok := edgeEndpoints(e, idx)
			if !ok || si == ti {
				continue
			}
			deltaX := xs[si] - xs[ti]
			deltaY := ys[si] - ys[ti]
			dist := math.Max(math.Hypot(deltaX, deltaY), forceMinDistance)
			f := dist * dist / k
			dx[si] -= deltaX / dist * f
			dy[si] -= deltaY / dist * f
			dx[ti] += deltaX / dist * f
			dy[ti] += deltaY / dist * f
		}

		// Displacement capped by temperature, then clamped to canvas.
		for i := 0; i < n; i++ {
			disp := math.Hypot(dx[i], dy[i])
			if disp < forceMinDistance {
				continue
			}
			limited := math.Min(disp, temp)
			xs[i], ys[i] = clampToCanvas(xs[i]+dx[i]/disp*limited, ys[i]+dy[i]/disp*limited, o)
		}
	}

	for i := range out.Nodes {
		out.Nodes[i].Position = &graph.Position{X: xs[i], Y: ys[i]}
	}
	return out
}
