package layout

import (
	"math"

	"github.com/codeatlas/codeatlas/pkg/graph"
)

// Radial places nodes on concentric rings around a root. BFS from the root
// assigns hop-distance levels; nodes at level L sit on a ring of radius
// L * radiusStep (the layer spacing, shrunk if needed to fit the canvas),
// evenly spaced by angle starting at the top (-90 degrees).
//
// The root is [Options.RootID] when it names a known node, else the first
// node with no incoming edges, else the first node. Nodes unreachable from
// the root are placed at level 0 alongside the root - a documented
// simplification. Set [Options.UnreachedRing] to place them on a dedicated
// outermost ring instead.
func Radial(g graph.Graph, opts Options) graph.Graph {
	o := opts.withDefaults()
	out := g.Clone()
	if len(out.Nodes) == 0 {
		return out
	}

	idx := nodeIndex(out)
	root := pickRoot(out, idx, o.RootID)

	// BFS hop levels from the root.
	adj := out.Outgoing()
	levels := map[string]int{root: 0}
	queue := []string{root}
	maxLevel := 0
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, next := range adj[curr] {
			if _, ok := idx[next]; !ok {
				continue
			}
			if _, seen := levels[next]; seen {
				continue
			}
			levels[next] = levels[curr] + 1
			if levels[next] > maxLevel {
				maxLevel = levels[next]
			}
			queue = append(queue, next)
		}
	}

	unreachedLevel := 0
	if o.UnreachedRing {
		unreachedLevel = maxLevel + 1
	}
	byLevel := make(map[int][]string)
	for _, n := range out.Nodes {
		level, ok := levels[n.ID]
		if !ok {
			level = unreachedLevel
		}
		byLevel[level] = append(byLevel[level], n.ID)
	}

	ringCount := maxLevel
	if o.UnreachedRing && len(byLevel[unreachedLevel]) > 0 {
		ringCount = unreachedLevel
	}
	step := radiusStep(o, ringCount)

	for level, ids := range byLevel {
		radius := float64(level) * step
		for i, id := range ids {
			angle := -math.Pi / 2
			if len(ids) > 1 {
				angle += 2 * math.Pi * float64(i) / float64(len(ids))
			}
			x := o.CenterX + radius*math.Cos(angle)
			y := o.CenterY + radius*math.Sin(angle)
			x, y = clampToCanvas(x, y, o)
			out.Nodes[idx[id]].Position = &graph.Position{X: x, Y: y}
		}
	}
	return out
}

// pickRoot chooses the BFS root: the explicit ID when known, else a node
// with zero in-degree, else the first node.
func pickRoot(g graph.Graph, idx map[string]int, explicit string) string {
	if _, ok := idx[explicit]; ok && explicit != "" {
		return explicit
	}
	hasIncoming := make(map[string]bool, len(g.Nodes))
	for _, e := range g.Edges {
		if _, ok := idx[e.Source]; ok {
			hasIncoming[e.Target] = true
		}
	}
	for _, n := range g.Nodes {
		if !hasIncoming[n.ID] {
			return n.ID
		}
	}
	return g.Nodes[0].ID
}

// radiusStep shrinks the configured layer spacing when the outermost ring
// would leave the padded canvas.
func radiusStep(o Options, rings int) float64 {
	step := o.LayerSpacing
	if rings < 1 {
		return step
	}
	maxRadius := math.Min(o.Width, o.Height)/2 - o.Padding
	if float64(rings)*step > maxRadius && maxRadius > 0 {
		step = maxRadius / float64(rings)
	}
	return step
}
