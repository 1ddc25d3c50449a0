package analysis

// CalculateImportanceScores returns a non-negative score for every node in
// the graph - the map size always equals the node count, isolated nodes
// included.
//
// Scoring is weighted degree centrality: incoming edge weight counts double
// (being depended upon matters more than depending), and the result is
// normalized by the maximum so scores fall in [0, 1]. Isolated nodes score 0.
func (a *Analyzer) CalculateImportanceScores() map[string]float64 {
	scores := make(map[string]float64, len(a.g.Nodes))
	for _, n := range a.g.Nodes {
		scores[n.ID] = 0
	}

	for _, e := range a.g.Edges {
		if !a.known[e.Source] || !a.known[e.Target] {
			continue
		}
		scores[e.Source] += e.Weight
		scores[e.Target] += 2 * e.Weight
	}

	var max float64
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	if max > 0 {
		for id := range scores {
			scores[id] /= max
		}
	}
	return scores
}
