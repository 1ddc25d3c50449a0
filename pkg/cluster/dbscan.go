package cluster

import (
	"gonum.org/v1/gonum/floats"
)

// noise marks points assigned to no cluster.
const noise = -1

// dbscan performs density-based clustering with region growing. A point
// whose epsilon-neighborhood holds at least minPoints members (itself
// included) seeds a cluster; the neighborhood is expanded breadth-first,
// and each expanded point that is itself a core point contributes its own
// neighborhood. Points reachable from no core point are labeled noise.
//
// Bookkeeping is canonical: a point is marked visited when dequeued, not
// when enqueued, so border points shared between seeds are not lost.
//
// Returns one index per point; noise points get -1.
func dbscan(points [][]float64, epsilon float64, minPoints int) []int {
	n := len(points)
	assign := make([]int, n)
	for i := range assign {
		assign[i] = noise
	}
	if n == 0 || epsilon <= 0 {
		return assign
	}
	if minPoints < 1 {
		minPoints = 1
	}

	visited := make([]bool, n)
	next := 0

	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		visited[i] = true

		neighborhood := regionQuery(points, i, epsilon)
		if len(neighborhood) < minPoints {
			continue // not a core point; may still join a later cluster
		}

		cluster := next
		next++
		assign[i] = cluster

		queue := neighborhood
		for len(queue) > 0 {
			p := queue[0]
			queue = queue[1:]

			if !visited[p] {
				visited[p] = true
				// Core point: its neighborhood extends the cluster.
				if reach := regionQuery(points, p, epsilon); len(reach) >= minPoints {
					queue = append(queue, reach...)
				}
			}
			if assign[p] == noise {
				assign[p] = cluster
			}
		}
	}
	return assign
}

// regionQuery returns the indices of all points within epsilon of point i,
// including i itself.
func regionQuery(points [][]float64, i int, epsilon float64) []int {
	var hits []int
	for j, p := range points {
		if floats.Distance(points[i], p, 2) <= epsilon {
			hits = append(hits, j)
		}
	}
	return hits
}
