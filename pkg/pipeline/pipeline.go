// Package pipeline provides the core engine pipeline for CodeAtlas.
//
// This package implements the analyze → layout → cluster pipeline that can
// be used by CLI, API, and worker components. By centralizing this logic,
// we ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Analyze: Detect cycles, compute importance scores and statistics
//  2. Layout: Compute visual positions for the graph
//  3. Cluster: Group code entities into semantic clusters (optional)
//
// Each stage can be run independently or as part of the complete pipeline.
// Every stage result is cached by graph hash and stage options.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(backend, nil, logger)
//	opts := pipeline.Options{
//	    Layout:   "force",
//	    Clusters: true,
//	}
//	result, err := runner.Execute(ctx, g, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	laidOut := result.Graph
//
// Run individual stages:
//
//	// Analysis only
//	report, err := runner.Analyze(ctx, g, opts)
//
//	// Layout with an existing graph
//	laidOut, err := runner.Layout(ctx, g, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/codeatlas/codeatlas/pkg/cache"
	"github.com/codeatlas/codeatlas/pkg/cluster"
	"github.com/codeatlas/codeatlas/pkg/graph"
	"github.com/codeatlas/codeatlas/pkg/graph/analysis"
	"github.com/codeatlas/codeatlas/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Worker
// =============================================================================

const (
	// DefaultLayout is the default layout algorithm.
	DefaultLayout = string(layout.TypeForce)

	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = layout.DefaultWidth

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = layout.DefaultHeight

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = layout.DefaultSeed
)

// DefaultClusterAlgorithm is the default clustering algorithm.
const DefaultClusterAlgorithm = string(cluster.AlgorithmKMeans)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the engine pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Analysis options
	SkipAnalysis bool `json:"skip_analysis,omitempty"`

	// Layout options
	Layout string  `json:"layout,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	RootID string  `json:"root_id,omitempty"` // Radial layout center node
	Seed   uint64  `json:"seed,omitempty"`

	// Clustering options
	Clusters         bool    `json:"clusters,omitempty"` // Run the clustering stage
	ClusterAlgorithm string  `json:"cluster_algorithm,omitempty"`
	NumClusters      int     `json:"num_clusters,omitempty"`
	MinClusterSize   int     `json:"min_cluster_size,omitempty"`
	Epsilon          float64 `json:"epsilon,omitempty"`
	ExcludeTests     bool    `json:"exclude_tests,omitempty"`
	UseEmbeddings    bool    `json:"use_embeddings,omitempty"`

	// Refresh bypasses all stage caches.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this pipeline execution in logs and responses.
	RunID string

	// Graph is the input graph with layout positions assigned.
	Graph graph.Graph

	// GraphHash is the content hash of the input graph.
	GraphHash string

	// Report holds the analysis results, nil when analysis was skipped.
	Report *Report

	// ClusterResult holds the clustering results, nil when clustering
	// was not requested.
	ClusterResult *cluster.Result

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Report holds the serializable analysis results for a graph.
type Report struct {
	Cycles     [][]string          `json:"cycles"`
	Components [][]string          `json:"components"`
	Importance map[string]float64  `json:"importance"`
	Statistics analysis.Statistics `json:"statistics"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	AnalyzeTime time.Duration
	LayoutTime  time.Duration
	ClusterTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	AnalysisHit bool // Whether analysis results came from cache
	LayoutHit   bool // Whether layout positions came from cache
	ClusterHit  bool // Whether clustering results came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks option values and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForCluster(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLayout validates and sets defaults for layout computation.
// Unknown layout names are accepted here; the layout dispatcher falls back
// to force-directed with a warning, matching interactive use.
func (o *Options) ValidateForLayout() error {
	if o.Layout == "" {
		o.Layout = DefaultLayout
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Width < 0 || o.Height < 0 {
		return fmt.Errorf("canvas dimensions must be positive, got %gx%g", o.Width, o.Height)
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	o.setLoggerDefault()
	return nil
}

// ValidateForCluster validates and sets defaults for the clustering stage.
func (o *Options) ValidateForCluster() error {
	if o.ClusterAlgorithm == "" {
		o.ClusterAlgorithm = DefaultClusterAlgorithm
	}
	if _, ok := cluster.ParseAlgorithm(o.ClusterAlgorithm); !ok {
		return fmt.Errorf("invalid cluster algorithm: %q (must be one of: kmeans, dbscan, hierarchical)", o.ClusterAlgorithm)
	}
	if o.NumClusters < 0 {
		return fmt.Errorf("num_clusters must be non-negative, got %d", o.NumClusters)
	}
	if o.Epsilon < 0 {
		return fmt.Errorf("epsilon must be non-negative, got %g", o.Epsilon)
	}
	o.setLoggerDefault()
	return nil
}

func (o *Options) setLoggerDefault() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Algorithm: o.Layout,
		Width:     o.Width,
		Height:    o.Height,
		Seed:      o.Seed,
	}
}

// ClusterKeyOpts returns cache key options for the clustering stage.
func (o *Options) ClusterKeyOpts() cache.ClusterKeyOpts {
	return cache.ClusterKeyOpts{
		Algorithm:      o.ClusterAlgorithm,
		NumClusters:    o.NumClusters,
		MinClusterSize: o.MinClusterSize,
		Epsilon:        o.Epsilon,
		UseEmbeddings:  o.UseEmbeddings,
	}
}

// ClusterOptions converts pipeline options to clustering engine options.
func (o *Options) ClusterOptions() cluster.Options {
	alg, _ := cluster.ParseAlgorithm(o.ClusterAlgorithm)
	return cluster.Options{
		Algorithm:      alg,
		NumClusters:    o.NumClusters,
		MinClusterSize: o.MinClusterSize,
		Epsilon:        o.Epsilon,
		ExcludeTests:   o.ExcludeTests,
		UseEmbeddings:  o.UseEmbeddings,
	}
}
