// Package cluster groups code entities into semantic clusters by embedding
// similarity.
//
// The [Engine] obtains one vector per entity - from an external embedding
// [Provider] when configured, falling back to a deterministic local
// embedding - then clusters with one of three algorithms (k-means, DBSCAN,
// agglomerative), scores the result (cohesion per cluster, silhouette
// overall), and labels each cluster via an optional AI [Labeler] or a
// keyword synthesis fallback.
//
// # Collaborators
//
// Provider and Labeler are capability interfaces with fallback behavior, not
// nullable fields checked ad hoc: a missing or failing collaborator degrades
// to the deterministic local path and never aborts a clustering run. Their
// calls are the only I/O in the package; everything else is synchronous and
// CPU-bound.
package cluster

import (
	"context"
	"strings"
	"time"
)

// Algorithm selects the clustering strategy.
type Algorithm string

// Clustering algorithms.
const (
	AlgorithmKMeans        Algorithm = "kmeans"
	AlgorithmDBSCAN        Algorithm = "dbscan"
	AlgorithmHierarchical  Algorithm = "hierarchical"
)

// ParseAlgorithm returns the algorithm for a string and whether it is known.
func ParseAlgorithm(s string) (Algorithm, bool) {
	switch Algorithm(s) {
	case AlgorithmKMeans, AlgorithmDBSCAN, AlgorithmHierarchical:
		return Algorithm(s), true
	}
	return "", false
}

// Entity is a unit of code to cluster: an identifier, its source content
// (used for embedding), its kind, and the file it lives in.
type Entity struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Type    string `json:"type"`
	Path    string `json:"path"`
}

// Options configures a clustering run. The zero value selects k-means with
// derived parameters.
type Options struct {
	Algorithm      Algorithm `json:"algorithm"`
	NumClusters    int       `json:"numClusters,omitempty"` // 0 derives max(2, ceil(sqrt(n/2)))
	MinClusterSize int       `json:"minClusterSize"`        // clusters below this dissolve into Unclustered; also DBSCAN minPoints
	Epsilon        float64   `json:"epsilon"`               // DBSCAN neighborhood radius
	ExcludeTests   bool      `json:"excludeTests"`          // drop entities in test files before clustering
	UseEmbeddings  bool      `json:"useEmbeddings"`         // query the Provider; false forces the local fallback
}

// Cluster is one group in a clustering result.
type Cluster struct {
	ID           string    `json:"id"`
	Label        string    `json:"label"`
	Description  string    `json:"description"`
	Members      []Entity  `json:"members"`
	Centroid     []float64 `json:"-"`
	Cohesion     float64   `json:"cohesion"`
	DominantType string    `json:"dominantType"`
	Keywords     []string  `json:"keywords"`
	Color        string    `json:"color"`
	GridRow      int       `json:"gridRow"`
	GridCol      int       `json:"gridCol"`
}

// Metadata describes how a result was produced.
type Metadata struct {
	Algorithm   Algorithm     `json:"algorithm"`
	EntityCount int           `json:"entityCount"`
	Embedding   string        `json:"embedding"` // "provider" or "local"
	Duration    time.Duration `json:"duration"`
	GeneratedAt time.Time     `json:"generatedAt"`
}

// Result is the outcome of a clustering run.
type Result struct {
	Clusters        []Cluster `json:"clusters"`
	Unclustered     []Entity  `json:"unclustered"`
	SilhouetteScore float64   `json:"silhouetteScore"`
	Metadata        Metadata  `json:"metadata"`
}

// Provider supplies embedding vectors for entity content. Implementations
// are expected to be safe for concurrent use; the engine fans out per-entity
// calls with a bounded limit. A nil vector or an error triggers the local
// fallback embedding for that entity.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Labeler produces a short label and one-sentence description for a cluster.
// Replies follow the "LABEL: <text> DESCRIPTION: <text>" contract; anything
// unparsable degrades to the keyword-based fallback label.
type Labeler interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// testPathMarkers identify test files by path convention.
var testPathMarkers = []string{".test.", ".spec.", "__tests__", "/test/"}

// isTestPath reports whether a path matches the test-file heuristics.
func isTestPath(path string) bool {
	for _, marker := range testPathMarkers {
		if strings.Contains(path, marker) {
			return true
		}
	}
	return false
}
