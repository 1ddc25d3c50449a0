// Package cache provides byte-oriented caching for expensive pipeline
// stages: analysis results, computed layouts, cluster assignments, and
// embedding vectors.
//
// # Architecture
//
// The package separates WHERE bytes live from HOW keys are built:
//
//   - [Cache] is the storage interface, with file-based ([NewFileCache]),
//     Redis-backed ([NewRedisCache]) and disabled ([NewNullCache])
//     implementations.
//   - [Keyer] builds deterministic cache keys from graph hashes and stage
//     options, so any option change invalidates naturally.
//
// Keys hash their inputs, so arbitrary graph content never leaks into file
// names or Redis key syntax.
package cache

import (
	"context"
	"time"
)

// Cache stores raw bytes under string keys with optional expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the cached bytes and whether the key was present.
	// A miss is (nil, false, nil), not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Cache TTLs per stage. Analysis and layout results are pure functions of
// the graph hash and options, so the TTLs mostly bound disk usage.
const (
	TTLAnalysis = 24 * time.Hour
	TTLLayout   = 24 * time.Hour
	TTLCluster  = 24 * time.Hour
)

// LayoutKeyOpts are the layout inputs that affect cached positions.
type LayoutKeyOpts struct {
	Algorithm string
	Width     float64
	Height    float64
	Seed      uint64
}

// ClusterKeyOpts are the clustering inputs that affect cached assignments.
type ClusterKeyOpts struct {
	Algorithm      string
	NumClusters    int
	MinClusterSize int
	Epsilon        float64
	UseEmbeddings  bool
}

// Keyer builds cache keys for pipeline stages.
type Keyer interface {
	// AnalysisKey keys cycle, importance and statistics results for a graph.
	AnalysisKey(graphHash string) string

	// LayoutKey keys computed node positions.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ClusterKey keys clustering results.
	ClusterKey(graphHash string, opts ClusterKeyOpts) string

	// EmbeddingKey keys a single embedding vector by model and input text.
	EmbeddingKey(model, text string) string
}

// DefaultKeyer is the standard key scheme: a stage prefix followed by a
// SHA-256 hash of the inputs.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// AnalysisKey generates a key for graph analysis results.
func (k *DefaultKeyer) AnalysisKey(graphHash string) string {
	return hashKey("analysis", graphHash)
}

// LayoutKey generates a key for layout positions.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ClusterKey generates a key for clustering results.
func (k *DefaultKeyer) ClusterKey(graphHash string, opts ClusterKeyOpts) string {
	return hashKey("cluster", graphHash, opts)
}

// EmbeddingKey generates a key for one embedding vector.
func (k *DefaultKeyer) EmbeddingKey(model, text string) string {
	return hashKey("embedding", model, Hash([]byte(text)))
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
