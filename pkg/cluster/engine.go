package cluster

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Embedding call limits.
const (
	embedTimeout = 30 * time.Second
	embedFanout  = 8 // concurrent provider calls
)

// defaultSeed seeds k-means centroid sampling when no PRNG is injected.
const defaultSeed = uint64(42)

// palette provides deterministic cluster colors, assigned by index mod 8.
var palette = [8]string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2",
	"#59a14f", "#edc948", "#b07aa1", "#9c755f",
}

// Engine clusters code entities. Create one with [NewEngine]; the zero
// value is not usable. An Engine is safe for concurrent ClusterEntities
// calls - each run works on its own state, including its own PRNG derived
// from the shared seed source under a mutex.
type Engine struct {
	provider Provider
	labeler  Labeler
	logger   *log.Logger

	mu   sync.Mutex
	seed *rand.Rand // per-run seed source; guarded by mu
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithProvider installs an external embedding provider.
func WithProvider(p Provider) EngineOption {
	return func(e *Engine) { e.provider = p }
}

// WithLabeler installs an AI cluster labeler.
func WithLabeler(l Labeler) EngineOption {
	return func(e *Engine) { e.labeler = l }
}

// WithLogger sets the engine logger. Defaults to log.Default().
func WithLogger(l *log.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithRand injects the seed source for k-means centroid sampling, so tests
// can pin exact assignments. Defaults to a PCG source with a fixed seed.
// The source only ever draws per-run seeds; each run gets its own PRNG.
func WithRand(r *rand.Rand) EngineOption {
	return func(e *Engine) { e.seed = r }
}

// NewEngine creates a clustering engine. Without options it has no external
// collaborators: embeddings come from the deterministic local fallback and
// labels from keyword synthesis.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	if e.seed == nil {
		e.seed = rand.New(rand.NewPCG(defaultSeed, defaultSeed))
	}
	return e
}

// newRunRand derives a fresh PRNG for one run. The shared seed source is
// only touched under the mutex, so concurrent runs never share PRNG state.
func (e *Engine) newRunRand() *rand.Rand {
	e.mu.Lock()
	s1, s2 := e.seed.Uint64(), e.seed.Uint64()
	e.mu.Unlock()
	return rand.New(rand.NewPCG(s1, s2))
}

// ClusterEntities groups entities into semantic clusters.
//
// Collaborator failures never surface as errors: embedding failures fall
// back to the local embedding and labeling failures to keyword labels. The
// only returned errors are context cancellation. Fewer entities than the
// requested cluster count degrades to a single cluster holding everything;
// an empty entity list yields an empty result with silhouette 0.
func (e *Engine) ClusterEntities(ctx context.Context, entities []Entity, opts Options) (Result, error) {
	start := time.Now()
	if opts.Algorithm == "" {
		opts.Algorithm = AlgorithmKMeans
	}

	kept := entities
	if opts.ExcludeTests {
		kept = nil
		for _, ent := range entities {
			if !isTestPath(ent.Path) {
				kept = append(kept, ent)
			}
		}
	}

	result := Result{
		Clusters:    []Cluster{},
		Unclustered: []Entity{},
		Metadata: Metadata{
			Algorithm:   opts.Algorithm,
			EntityCount: len(kept),
			Embedding:   "local",
			GeneratedAt: start,
		},
	}
	if len(kept) == 0 {
		result.Metadata.Duration = time.Since(start)
		return result, nil
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	vectors, mode := e.embedAll(ctx, kept, opts.UseEmbeddings)
	result.Metadata.Embedding = mode

	assign := e.assign(kept, vectors, opts)
	clusters, unclustered := e.collect(kept, vectors, assign, opts)
	result.SilhouetteScore = silhouetteScore(vectors, assign)

	e.labelClusters(ctx, clusters)

	result.Clusters = clusters
	result.Unclustered = unclustered
	result.Metadata.Duration = time.Since(start)

	e.logger.Debug("clustering complete",
		"algorithm", opts.Algorithm,
		"entities", len(kept),
		"clusters", len(clusters),
		"unclustered", len(unclustered),
		"silhouette", fmt.Sprintf("%.3f", result.SilhouetteScore),
		"duration", result.Metadata.Duration)
	return result, nil
}

// embedAll returns one vector per entity and the embedding mode used. The
// provider is queried with a bounded fan-out and per-call timeout; failures
// fall back to the local embedding per entity. Mixed dimensionality (some
// provider vectors, some local fallbacks of a different width) would break
// every distance computation, so in that case the whole run reverts to
// local embeddings.
func (e *Engine) embedAll(ctx context.Context, entities []Entity, useProvider bool) ([][]float64, string) {
	vectors := make([][]float64, len(entities))

	if !useProvider || e.provider == nil {
		for i, ent := range entities {
			vectors[i] = localEmbedding(ent.Content)
		}
		return vectors, "local"
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(embedFanout)
	fromProvider := make([]bool, len(entities))
	for i := range entities {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(groupCtx, embedTimeout)
			defer cancel()

			vec, err := e.provider.Embed(callCtx, entities[i].Content)
			if err != nil || len(vec) == 0 {
				if err != nil {
					e.logger.Debug("embedding failed, using local fallback",
						"entity", entities[i].ID, "err", err)
				}
				vectors[i] = localEmbedding(entities[i].Content)
				return nil
			}
			vectors[i] = vec
			fromProvider[i] = true
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	anyProvider := false
	for _, ok := range fromProvider {
		if ok {
			anyProvider = true
			break
		}
	}
	if !anyProvider {
		return vectors, "local"
	}
	for _, v := range vectors[1:] {
		if len(v) != len(vectors[0]) {
			e.logger.Warn("mixed embedding dimensions, reverting to local embeddings")
			for i, ent := range entities {
				vectors[i] = localEmbedding(ent.Content)
			}
			return vectors, "local"
		}
	}
	return vectors, "provider"
}

// assign runs the selected algorithm and returns a cluster index per
// entity, with -1 for noise.
func (e *Engine) assign(entities []Entity, vectors [][]float64, opts Options) []int {
	n := len(entities)

	switch opts.Algorithm {
	case AlgorithmDBSCAN:
		epsilon := opts.Epsilon
		if epsilon <= 0 {
			epsilon = 0.5
		}
		minPoints := opts.MinClusterSize
		if minPoints < 2 {
			minPoints = 2
		}
		return dbscan(vectors, epsilon, minPoints)

	case AlgorithmHierarchical:
		target := opts.NumClusters
		if target <= 0 {
			target = deriveK(n)
		}
		if target > n {
			target = 1 // fewer entities than clusters: one cluster of everything
		}
		return agglomerative(vectors, target)

	default: // k-means
		k := opts.NumClusters
		if k <= 0 {
			k = deriveK(n)
		}
		if n < k {
			return make([]int, n) // single cluster holding everything
		}
		return kmeans(vectors, k, e.newRunRand())
	}
}

// collect materializes clusters from the assignment array, in first-member
// order so output is deterministic. Noise points and members of dissolved
// undersized clusters land in unclustered.
func (e *Engine) collect(entities []Entity, vectors [][]float64, assign []int, opts Options) ([]Cluster, []Entity) {
	order := []int{}
	membersByCluster := map[int][]int{}
	for i, c := range assign {
		if c < 0 {
			continue
		}
		if _, seen := membersByCluster[c]; !seen {
			order = append(order, c)
		}
		membersByCluster[c] = append(membersByCluster[c], i)
	}

	unclustered := []Entity{}
	for i, c := range assign {
		if c < 0 {
			unclustered = append(unclustered, entities[i])
		}
	}

	// Dissolve undersized clusters, unless the run already degraded to a
	// single cluster (the fewer-entities-than-k contract wins).
	minSize := opts.MinClusterSize
	if len(order) > 1 && minSize > 1 {
		keep := order[:0]
		for _, c := range order {
			if len(membersByCluster[c]) < minSize {
				for _, i := range membersByCluster[c] {
					unclustered = append(unclustered, entities[i])
					assign[i] = noise
				}
				delete(membersByCluster, c)
				continue
			}
			keep = append(keep, c)
		}
		order = keep
	}

	cols := int(math.Ceil(math.Sqrt(float64(len(order)))))
	if cols < 1 {
		cols = 1
	}

	clusters := make([]Cluster, 0, len(order))
	for idx, c := range order {
		ids := membersByCluster[c]
		members := make([]Entity, len(ids))
		vecs := make([][]float64, len(ids))
		texts := make([]string, len(ids))
		for j, i := range ids {
			members[j] = entities[i]
			vecs[j] = vectors[i]
			texts[j] = entities[i].Content
		}

		centroid := centroidOf(vecs)
		clusters = append(clusters, Cluster{
			ID:           fmt.Sprintf("cluster-%d", idx),
			Members:      members,
			Centroid:     centroid,
			Cohesion:     cohesionOf(vecs, centroid),
			DominantType: dominantType(members),
			Keywords:     topKeywords(texts),
			Color:        palette[idx%len(palette)],
			GridRow:      idx / cols,
			GridCol:      idx % cols,
		})
	}
	return clusters, unclustered
}

// dominantType returns the majority entity type; ties break toward the
// earliest member.
func dominantType(members []Entity) string {
	counts := map[string]int{}
	best, bestCount := "", 0
	for _, m := range members {
		counts[m.Type]++
		if counts[m.Type] > bestCount {
			best, bestCount = m.Type, counts[m.Type]
		}
	}
	return best
}
