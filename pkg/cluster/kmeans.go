package cluster

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// kmeansMaxIterations caps Lloyd iterations; assignments usually stabilize
// long before this.
const kmeansMaxIterations = 100

// kmeans runs standard Lloyd iterations: assign each point to its nearest
// centroid by Euclidean distance, recompute centroids as member means,
// repeat until assignments stop changing or the iteration cap is hit.
// Initial centroids are a random sample of distinct points (shuffled by rng).
//
// Returns one cluster index per point, in [0, k).
func kmeans(points [][]float64, k int, rng *rand.Rand) []int {
	n := len(points)
	assign := make([]int, n)
	if n == 0 || k <= 1 {
		return assign
	}
	if k > n {
		k = n
	}

	// Random initial centroids from a shuffled sample.
	perm := rng.Perm(n)
	centroids := make([][]float64, k)
	for i := 0; i < k; i++ {
		centroids[i] = append([]float64(nil), points[perm[i]]...)
	}

	for iter := 0; iter < kmeansMaxIterations; iter++ {
		changed := false
		for i, p := range points {
			best, bestDist := 0, math.Inf(1)
			for c, centroid := range centroids {
				if d := floats.Distance(p, centroid, 2); d < bestDist {
					best, bestDist = c, d
				}
			}
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}

		// Recompute centroid means. Empty clusters keep their previous
		// centroid rather than collapsing to the origin.
		sums := make([][]float64, k)
		counts := make([]int, k)
		for i := range sums {
			sums[i] = make([]float64, len(points[0]))
		}
		for i, p := range points {
			floats.Add(sums[assign[i]], p)
			counts[assign[i]]++
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			floats.Scale(1/float64(counts[c]), sums[c])
			centroids[c] = sums[c]
		}
	}
	return assign
}

// deriveK returns the cluster count for n points when none is requested:
// max(2, ceil(sqrt(n/2))).
func deriveK(n int) int {
	k := int(math.Ceil(math.Sqrt(float64(n) / 2)))
	if k < 2 {
		k = 2
	}
	return k
}
