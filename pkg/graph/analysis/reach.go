package analysis

// FindReachable performs a breadth-first traversal from startID along
// outgoing edges, recording the minimum depth at which each node is first
// reached, bounded by maxDepth. startID itself is recorded at depth 0.
//
// An unknown startID or a negative maxDepth yields an empty map.
func (a *Analyzer) FindReachable(startID string, maxDepth int) map[string]int {
	depths := make(map[string]int)
	if !a.known[startID] || maxDepth < 0 {
		return depths
	}

	depths[startID] = 0
	queue := []string{startID}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		if depths[curr] == maxDepth {
			continue
		}
		for _, next := range a.outgoing[curr] {
			if _, seen := depths[next]; seen {
				continue
			}
			depths[next] = depths[curr] + 1
			queue = append(queue, next)
		}
	}
	return depths
}
