package cluster

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// agglomerative performs bottom-up hierarchical clustering: every point
// starts as its own cluster, and the pair of clusters with the smallest
// centroid distance is merged repeatedly until target clusters remain.
//
// Returns one cluster index per point, renumbered densely from 0.
func agglomerative(points [][]float64, target int) []int {
	n := len(points)
	assign := make([]int, n)
	if n == 0 {
		return assign
	}
	if target < 1 {
		target = 1
	}

	// Active clusters as member index lists with cached centroids.
	members := make([][]int, n)
	centroids := make([][]float64, n)
	for i := range points {
		members[i] = []int{i}
		centroids[i] = append([]float64(nil), points[i]...)
	}
	active := n

	for active > target {
		// Find the closest pair of active clusters.
		bestA, bestB := -1, -1
		bestDist := math.Inf(1)
		for a := 0; a < n; a++ {
			if members[a] == nil {
				continue
			}
			for b := a + 1; b < n; b++ {
				if members[b] == nil {
					continue
				}
				if d := floats.Distance(centroids[a], centroids[b], 2); d < bestDist {
					bestA, bestB, bestDist = a, b, d
				}
			}
		}
		if bestA < 0 {
			break
		}

		// Merge b into a; the centroid is the member-weighted mean.
		na, nb := float64(len(members[bestA])), float64(len(members[bestB]))
		for d := range centroids[bestA] {
			centroids[bestA][d] = (centroids[bestA][d]*na + centroids[bestB][d]*nb) / (na + nb)
		}
		members[bestA] = append(members[bestA], members[bestB]...)
		members[bestB] = nil
		centroids[bestB] = nil
		active--
	}

	next := 0
	for a := 0; a < n; a++ {
		if members[a] == nil {
			continue
		}
		for _, i := range members[a] {
			assign[i] = next
		}
		next++
	}
	return assign
}
