package analysis

// Node colors for the cycle-detecting DFS.
const (
	white = iota // unvisited
	gray         // on the current DFS path
	black        // fully explored
)

// FindCircularDependencies detects cycles using depth-first traversal with
// white/gray/black node coloring. An edge to a gray node is a back-edge; the
// reported cycle is the current DFS path from that gray ancestor down to the
// node holding the back-edge.
//
// Returns an empty slice for acyclic graphs. A graph with cycles yields at
// least one entry, but not necessarily every elementary cycle - each
// back-edge found during one traversal contributes one cycle.
func (a *Analyzer) FindCircularDependencies() [][]string {
	color := make(map[string]int, len(a.g.Nodes))
	var path []string
	var cycles [][]string

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		path = append(path, id)

		for _, child := range a.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				// Back-edge: slice the path from the ancestor to here.
				for i, p := range path {
					if p == child {
						cycle := make([]string, len(path)-i)
						copy(cycle, path[i:])
						cycles = append(cycles, cycle)
						break
					}
				}
			}
		}

		path = path[:len(path)-1]
		color[id] = black
	}

	for _, n := range a.g.Nodes {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	return cycles
}
