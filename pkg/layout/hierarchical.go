package layout

import (
	"sort"

	"github.com/codeatlas/codeatlas/pkg/graph"
)

// barycenterPasses is the number of forward refinement sweeps used to reduce
// edge crossings within layers.
const barycenterPasses = 4

// Hierarchical computes a Sugiyama-style layered layout:
//
//  1. Layer assignment: each node's layer is the longest path length from
//     any source, computed with Kahn's algorithm on in-degree. Nodes that
//     never reach zero in-degree because they sit on a cycle keep their
//     default layer 0.
//  2. In-layer ordering: iterative barycenter heuristic - several forward
//     passes position each node at the average layer-relative index of its
//     predecessors.
//  3. Coordinates: y = padding + layer * LayerSpacing, x evenly spaced
//     across the layer's width.
func Hierarchical(g graph.Graph, opts Options) graph.Graph {
	o := opts.withDefaults()
	out := g.Clone()
	if len(out.Nodes) == 0 {
		return out
	}

	idx := nodeIndex(out)
	layers := assignLayers(out, idx)
	order := orderLayers(out, idx, layers)

	for layer, ids := range order {
		y := o.Padding + float64(layer)*o.LayerSpacing
		y = clamp(y, o.Padding, o.Height-o.Padding)
		inner := o.Width - 2*o.Padding
		for i, id := range ids {
			x := o.Padding + inner*(float64(i)+1)/(float64(len(ids))+1)
			out.Nodes[idx[id]].Position = &graph.Position{X: x, Y: y}
		}
	}
	return out
}

// assignLayers computes longest-path layers via Kahn's algorithm. Every node
// appears in the result; cycle members stay at layer 0.
func assignLayers(g graph.Graph, idx map[string]int) map[string]int {
	adj := g.Outgoing()
	inDegree := make(map[string]int, len(g.Nodes))
	layers := make(map[string]int, len(g.Nodes))

	for _, n := range g.Nodes {
		inDegree[n.ID] = 0
		layers[n.ID] = 0
	}
	for _, targets := range adj {
		for _, t := range targets {
			if _, ok := idx[t]; ok {
				inDegree[t]++
			}
		}
	}

	var queue []string
	for _, n := range g.Nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, child := range adj[curr] {
			if _, ok := idx[child]; !ok {
				continue
			}
			if l := layers[curr] + 1; l > layers[child] {
				layers[child] = l
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	return layers
}

// orderLayers groups nodes by layer and runs barycenter refinement passes.
// The initial order within a layer is graph insertion order, which keeps the
// result deterministic.
func orderLayers(g graph.Graph, idx map[string]int, layers map[string]int) map[int][]string {
	order := make(map[int][]string)
	maxLayer := 0
	for _, n := range g.Nodes {
		l := layers[n.ID]
		order[l] = append(order[l], n.ID)
		if l > maxLayer {
			maxLayer = l
		}
	}

	// Predecessors restricted to known nodes.
	preds := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		if _, ok := idx[e.Source]; !ok {
			continue
		}
		if _, ok := idx[e.Target]; !ok {
			continue
		}
		preds[e.Target] = append(preds[e.Target], e.Source)
	}

	for pass := 0; pass < barycenterPasses; pass++ {
		for layer := 1; layer <= maxLayer; layer++ {
			above := order[layer-1]
			pos := make(map[string]float64, len(above))
			for i, id := range above {
				pos[id] = float64(i)
			}

			ids := order[layer]
			weights := make(map[string]float64, len(ids))
			for i, id := range ids {
				sum, count := 0.0, 0
				for _, p := range preds[id] {
					if v, ok := pos[p]; ok {
						sum += v
						count++
					}
				}
				if count > 0 {
					weights[id] = sum / float64(count)
				} else {
					// No predecessors in the layer above: keep position.
					weights[id] = float64(i)
				}
			}
			sort.SliceStable(ids, func(a, b int) bool {
				return weights[ids[a]] < weights[ids[b]]
			})
		}
	}
	return order
}
