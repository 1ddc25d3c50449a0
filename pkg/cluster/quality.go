package cluster

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// centroidOf returns the mean of the given vectors. Returns nil for an
// empty input.
func centroidOf(vectors [][]float64) []float64 {
	if len(vectors) == 0 {
		return nil
	}
	c := make([]float64, len(vectors[0]))
	for _, v := range vectors {
		floats.Add(c, v)
	}
	floats.Scale(1/float64(len(vectors)), c)
	return c
}

// cohesionOf scores how tight a cluster is: 1 / (1 + mean distance to the
// centroid). A single-member cluster scores 1.
func cohesionOf(vectors [][]float64, centroid []float64) float64 {
	if len(vectors) == 0 || centroid == nil {
		return 0
	}
	sum := 0.0
	for _, v := range vectors {
		sum += floats.Distance(v, centroid, 2)
	}
	return 1 / (1 + sum/float64(len(vectors)))
}

// silhouetteScore measures cluster separation in [-1, 1]. For every
// clustered point, a is the mean distance to same-cluster members and b the
// minimum mean distance to any other cluster's members; the point
// contributes (b-a)/max(a,b). The score is the average over all points, and
// 0 when at most one cluster exists.
//
// assign holds the cluster index per point; negative indices (noise) are
// excluded entirely.
func silhouetteScore(points [][]float64, assign []int) float64 {
	byCluster := make(map[int][]int)
	for i, c := range assign {
		if c >= 0 {
			byCluster[c] = append(byCluster[c], i)
		}
	}
	if len(byCluster) <= 1 {
		return 0
	}

	total, counted := 0.0, 0
	for c, ids := range byCluster {
		for _, i := range ids {
			a := meanDistance(points, i, ids)

			b := math.Inf(1)
			for other, otherIDs := range byCluster {
				if other == c {
					continue
				}
				if d := meanDistance(points, i, otherIDs); d < b {
					b = d
				}
			}

			if max := math.Max(a, b); max > 0 {
				total += (b - a) / max
			}
			counted++
		}
	}
	if counted == 0 {
		return 0
	}
	return total / float64(counted)
}

// meanDistance is the mean distance from point i to the listed points,
// excluding i itself. Returns 0 when no other points remain.
func meanDistance(points [][]float64, i int, ids []int) float64 {
	sum, count := 0.0, 0
	for _, j := range ids {
		if j == i {
			continue
		}
		sum += floats.Distance(points[i], points[j], 2)
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
