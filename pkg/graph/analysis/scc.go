package analysis

// FindStronglyConnectedComponents returns the strongly connected components
// of the graph using Tarjan's algorithm (index/lowlink bookkeeping with an
// explicit component stack).
//
// Only components that actually participate in a cycle are reported:
// single-node components without a self-loop are filtered out, so an acyclic
// graph yields an empty result.
func (a *Analyzer) FindStronglyConnectedComponents() [][]string {
	t := &tarjanState{
		analyzer: a,
		indices:  make(map[string]int, len(a.g.Nodes)),
		lowLink:  make(map[string]int, len(a.g.Nodes)),
		onStack:  make(map[string]bool, len(a.g.Nodes)),
	}

	for _, n := range a.g.Nodes {
		if _, visited := t.indices[n.ID]; !visited {
			t.strongConnect(n.ID)
		}
	}

	var cyclic [][]string
	for _, comp := range t.components {
		if len(comp) > 1 || a.hasSelfLoop(comp[0]) {
			cyclic = append(cyclic, comp)
		}
	}
	return cyclic
}

type tarjanState struct {
	analyzer   *Analyzer
	index      int
	stack      []string
	indices    map[string]int
	lowLink    map[string]int
	onStack    map[string]bool
	components [][]string
}

func (t *tarjanState) strongConnect(id string) {
	t.indices[id] = t.index
	t.lowLink[id] = t.index
	t.index++
	t.stack = append(t.stack, id)
	t.onStack[id] = true

	for _, succ := range t.analyzer.outgoing[id] {
		if _, visited := t.indices[succ]; !visited {
			t.strongConnect(succ)
			if t.lowLink[succ] < t.lowLink[id] {
				t.lowLink[id] = t.lowLink[succ]
			}
		} else if t.onStack[succ] {
			if t.indices[succ] < t.lowLink[id] {
				t.lowLink[id] = t.indices[succ]
			}
		}
	}

	// Root of a component: pop the stack down to this node.
	if t.lowLink[id] == t.indices[id] {
		var comp []string
		for {
			n := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			t.onStack[n] = false
			comp = append(comp, n)
			if n == id {
				break
			}
		}
		t.components = append(t.components, comp)
	}
}

func (a *Analyzer) hasSelfLoop(id string) bool {
	for _, target := range a.outgoing[id] {
		if target == id {
			return true
		}
	}
	return false
}
