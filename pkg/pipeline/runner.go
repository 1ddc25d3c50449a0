package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/codeatlas/codeatlas/pkg/cache"
	"github.com/codeatlas/codeatlas/pkg/cluster"
	"github.com/codeatlas/codeatlas/pkg/graph"
	"github.com/codeatlas/codeatlas/pkg/graph/analysis"
	"github.com/codeatlas/codeatlas/pkg/layout"
	"github.com/codeatlas/codeatlas/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, clusterer and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache     cache.Cache
	Keyer     cache.Keyer
	Logger    *log.Logger
	Clusterer *cluster.Engine
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// The clustering engine defaults to one without external collaborators;
// assign Clusterer to use embedding providers or AI labeling.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:     c,
		Keyer:     keyer,
		Logger:    logger,
		Clusterer: cluster.NewEngine(cluster.WithLogger(logger)),
	}
}

// Execute runs the complete analyze → layout → cluster pipeline with caching.
func (r *Runner) Execute(ctx context.Context, g graph.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		RunID:     uuid.NewString(),
		GraphHash: r.graphHash(g),
	}
	result.Stats.NodeCount = len(g.Nodes)
	result.Stats.EdgeCount = len(g.Edges)

	logger := r.Logger.With("run", result.RunID)

	// Stage 1: Analyze
	if !opts.SkipAnalysis {
		analyzeStart := time.Now()
		report, hit, err := r.AnalyzeWithCacheInfo(ctx, g, result.GraphHash, opts)
		if err != nil {
			return nil, fmt.Errorf("analyze: %w", err)
		}
		result.Report = report
		result.Stats.AnalyzeTime = time.Since(analyzeStart)
		result.CacheInfo.AnalysisHit = hit

		logger.Info("analyzed graph",
			"nodes", result.Stats.NodeCount,
			"edges", result.Stats.EdgeCount,
			"cycles", len(report.Cycles),
			"duration", result.Stats.AnalyzeTime)
	}

	// Stage 2: Layout
	layoutStart := time.Now()
	laidOut, layoutHit, err := r.LayoutWithCacheInfo(ctx, g, result.GraphHash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Graph = laidOut
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	logger.Info("computed layout",
		"algorithm", opts.Layout,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Cluster
	if opts.Clusters {
		clusterStart := time.Now()
		cr, clusterHit, err := r.ClusterWithCacheInfo(ctx, g, result.GraphHash, opts)
		if err != nil {
			return nil, fmt.Errorf("cluster: %w", err)
		}
		result.ClusterResult = cr
		result.Stats.ClusterTime = time.Since(clusterStart)
		result.CacheInfo.ClusterHit = clusterHit

		logger.Info("clustered entities",
			"algorithm", opts.ClusterAlgorithm,
			"clusters", len(cr.Clusters),
			"duration", result.Stats.ClusterTime)
	}

	return result, nil
}

// AnalyzeWithCacheInfo runs graph analysis with caching and returns cache hit info.
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, g graph.Graph, graphHash string, opts Options) (*Report, bool, error) {
	cacheKey := r.Keyer.AnalysisKey(graphHash)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var report Report
			if json.Unmarshal(data, &report) == nil {
				observability.Cache().OnCacheHit(ctx, "analysis")
				return &report, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "analysis")
	}

	observability.Engine().OnAnalyzeStart(ctx, len(g.Nodes), len(g.Edges))
	start := time.Now()

	a := analysis.New(g)
	report := &Report{
		Cycles:     a.FindCircularDependencies(),
		Components: a.FindStronglyConnectedComponents(),
		Importance: a.CalculateImportanceScores(),
		Statistics: a.Statistics(),
	}

	observability.Engine().OnAnalyzeComplete(ctx, len(report.Cycles), time.Since(start), nil)

	if data, err := json.Marshal(report); err == nil {
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLAnalysis) == nil {
			observability.Cache().OnCacheSet(ctx, "analysis", len(data))
		}
	}
	return report, false, nil
}

// Analyze is a convenience wrapper that discards the cache hit info.
func (r *Runner) Analyze(ctx context.Context, g graph.Graph, opts Options) (*Report, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	report, _, err := r.AnalyzeWithCacheInfo(ctx, g, r.graphHash(g), opts)
	return report, err
}

// LayoutWithCacheInfo computes node positions with caching and returns
// cache hit info. Cached entries store only the position map; on a hit the
// positions are applied to a fresh copy of the input graph.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g graph.Graph, graphHash string, opts Options) (graph.Graph, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Graph{}, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.LayoutKey(graphHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var positions map[string]graph.Position
			if json.Unmarshal(data, &positions) == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return applyPositions(g, positions), true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	typ, ok := layout.ParseType(opts.Layout)
	if !ok {
		// Unknown algorithms fall through to the dispatcher, which warns
		// and uses force-directed.
		typ = layout.Type(opts.Layout)
	}

	observability.Engine().OnLayoutStart(ctx, opts.Layout, len(g.Nodes))
	start := time.Now()

	laidOut := layout.Apply(g, typ, layout.Options{
		Width:  opts.Width,
		Height: opts.Height,
		RootID: opts.RootID,
		Rand:   rand.New(rand.NewPCG(opts.Seed, opts.Seed)),
		Logger: opts.Logger,
	})

	observability.Engine().OnLayoutComplete(ctx, opts.Layout, time.Since(start), nil)

	positions := make(map[string]graph.Position, len(laidOut.Nodes))
	for _, n := range laidOut.Nodes {
		if n.Position != nil {
			positions[n.ID] = *n.Position
		}
	}
	if data, err := json.Marshal(positions); err == nil {
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout) == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return laidOut, false, nil
}

// Layout is a convenience wrapper that discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, g graph.Graph, opts Options) (graph.Graph, error) {
	laidOut, _, err := r.LayoutWithCacheInfo(ctx, g, r.graphHash(g), opts)
	return laidOut, err
}

// ClusterWithCacheInfo clusters the graph's nodes with caching and returns
// cache hit info.
func (r *Runner) ClusterWithCacheInfo(ctx context.Context, g graph.Graph, graphHash string, opts Options) (*cluster.Result, bool, error) {
	if err := opts.ValidateForCluster(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.ClusterKey(graphHash, opts.ClusterKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached cluster.Result
			if json.Unmarshal(data, &cached) == nil {
				observability.Cache().OnCacheHit(ctx, "cluster")
				return &cached, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "cluster")
	}

	entities := Entities(g)

	observability.Engine().OnClusterStart(ctx, opts.ClusterAlgorithm, len(entities))
	start := time.Now()

	cr, err := r.Clusterer.ClusterEntities(ctx, entities, opts.ClusterOptions())
	observability.Engine().OnClusterComplete(ctx, opts.ClusterAlgorithm, len(cr.Clusters), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(cr); err == nil {
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLCluster) == nil {
			observability.Cache().OnCacheSet(ctx, "cluster", len(data))
		}
	}
	return &cr, false, nil
}

// Cluster is a convenience wrapper that discards the cache hit info.
func (r *Runner) Cluster(ctx context.Context, g graph.Graph, opts Options) (*cluster.Result, error) {
	cr, _, err := r.ClusterWithCacheInfo(ctx, g, r.graphHash(g), opts)
	return cr, err
}

// Entities converts graph nodes to clustering entities. The embedded text
// is the node's name and path, which is what local embeddings and external
// providers both key on.
func Entities(g graph.Graph) []cluster.Entity {
	entities := make([]cluster.Entity, len(g.Nodes))
	for i, n := range g.Nodes {
		entities[i] = cluster.Entity{
			ID:      n.ID,
			Content: n.Name + " " + n.Path,
			Type:    string(n.Type),
			Path:    n.Path,
		}
	}
	return entities
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// GraphHash returns the content hash of g used in every stage cache key.
// Callers driving the XWithCacheInfo methods directly pass this hash in.
func (r *Runner) GraphHash(g graph.Graph) string {
	return r.graphHash(g)
}

// graphHash computes the content hash used in every stage cache key.
// Only nodes and edges participate; metadata carries a build timestamp
// that would defeat caching across rebuilds of identical content.
func (r *Runner) graphHash(g graph.Graph) string {
	data, err := json.Marshal(struct {
		Nodes []graph.Node `json:"nodes"`
		Edges []graph.Edge `json:"edges"`
	}{g.Nodes, g.Edges})
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// applyPositions copies g and assigns cached positions to its nodes.
func applyPositions(g graph.Graph, positions map[string]graph.Position) graph.Graph {
	out := g.Clone()
	for i := range out.Nodes {
		if pos, ok := positions[out.Nodes[i].ID]; ok {
			p := pos
			out.Nodes[i].Position = &p
		}
	}
	return out
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
