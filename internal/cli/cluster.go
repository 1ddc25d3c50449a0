package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codeatlas/codeatlas/pkg/config"
	"github.com/codeatlas/codeatlas/pkg/graph"
	"github.com/codeatlas/codeatlas/pkg/pipeline"
)

// clusterCommand creates the cluster command for grouping related entities.
func (c *CLI) clusterCommand() *cobra.Command {
	var (
		output     string
		configPath string
		noCache    bool
	)
	opts := pipeline.Options{
		ClusterAlgorithm: pipeline.DefaultClusterAlgorithm,
	}

	cmd := &cobra.Command{
		Use:   "cluster [graph.json]",
		Short: "Group related code entities into labeled clusters",
		Long: `Group related code entities into labeled clusters.

The cluster command takes a graph.json file, embeds every entity as a vector,
and groups similar entities. Each cluster gets a label, a description, keywords,
a color, and a cohesion score. The output is a clusters.json file.

Available algorithms: kmeans (default), dbscan, hierarchical.

Embeddings default to a local deterministic model. Configure an embedding
service or the OpenAI API in ` + config.DefaultConfigFile + ` (or via
CODEATLAS_EMBEDDING_* environment variables) for semantic grouping and
AI-generated labels.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCluster(cmd.Context(), cmd, args[0], opts, output, configPath, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.clusters.json)")
	cmd.Flags().StringVar(&configPath, "config", config.DefaultConfigFile, "config file for cache and embedding settings")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")

	// Clustering flags
	cmd.Flags().StringVarP(&opts.ClusterAlgorithm, "algorithm", "a", opts.ClusterAlgorithm, "clustering algorithm: kmeans (default), dbscan, hierarchical")
	cmd.Flags().IntVarP(&opts.NumClusters, "clusters", "k", opts.NumClusters, "target cluster count (0 derives from entity count)")
	cmd.Flags().IntVar(&opts.MinClusterSize, "min-size", opts.MinClusterSize, "dissolve clusters smaller than this")
	cmd.Flags().Float64Var(&opts.Epsilon, "epsilon", opts.Epsilon, "dbscan neighborhood radius")
	cmd.Flags().BoolVar(&opts.ExcludeTests, "exclude-tests", opts.ExcludeTests, "skip test files")
	cmd.Flags().BoolVar(&opts.UseEmbeddings, "embeddings", opts.UseEmbeddings, "use the configured embedding provider")

	return cmd
}

// runCluster loads the graph, runs the clustering stage, and writes the result.
func (c *CLI) runCluster(ctx context.Context, cmd *cobra.Command, input string, opts pipeline.Options, output, configPath string, noCache bool) error {
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	cfg, err := config.LoadFile(configPath, nil)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyClusterConfig(cmd, &opts, cfg)
	if noCache {
		cfg.Cache.Backend = "none"
	}

	runner, err := c.newRunnerFromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Clustering with %s...", opts.ClusterAlgorithm))
	spinner.Start()

	result, cacheHit, err := runner.ClusterWithCacheInfo(ctx, g, runner.GraphHash(g), opts)
	if err != nil {
		spinner.StopWithError("Clustering failed")
		return fmt.Errorf("cluster entities: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".clusters.json"
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Clustering complete")
	printFile(outputPath)
	printStats(len(g.Nodes), len(g.Edges), cacheHit)
	printKeyValue("Clusters", fmt.Sprintf("%d", len(result.Clusters)))
	printKeyValue("Silhouette", fmt.Sprintf("%.2f", result.SilhouetteScore))
	for _, cl := range result.Clusters {
		printDetail("%s (%d members): %s", cl.Label, len(cl.Members), cl.Description)
	}
	if len(result.Unclustered) > 0 {
		printInfo("%d entities left unclustered", len(result.Unclustered))
	}

	return nil
}

// applyClusterConfig fills clustering options from configuration for every
// flag the user did not set explicitly. Flags beat config, config beats
// built-in defaults.
func applyClusterConfig(cmd *cobra.Command, opts *pipeline.Options, cfg *config.Config) {
	opts.Clusters = true

	f := cmd.Flags()
	if !f.Changed("algorithm") && cfg.Cluster.Algorithm != "" {
		opts.ClusterAlgorithm = cfg.Cluster.Algorithm
	}
	if !f.Changed("clusters") {
		opts.NumClusters = cfg.Cluster.NumClusters
	}
	if !f.Changed("min-size") {
		opts.MinClusterSize = cfg.Cluster.MinClusterSize
	}
	if !f.Changed("epsilon") {
		opts.Epsilon = cfg.Cluster.Epsilon
	}
	if !f.Changed("exclude-tests") {
		opts.ExcludeTests = cfg.Cluster.ExcludeTests
	}
	if !f.Changed("embeddings") {
		opts.UseEmbeddings = cfg.Embedding.Provider != "" && cfg.Embedding.Provider != "local"
	}
}
