// Package cli implements the codeatlas command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/codeatlas/codeatlas/pkg/buildinfo"
	"github.com/codeatlas/codeatlas/pkg/cache"
	"github.com/codeatlas/codeatlas/pkg/cluster"
	"github.com/codeatlas/codeatlas/pkg/config"
	"github.com/codeatlas/codeatlas/pkg/integrations/embedding"
	"github.com/codeatlas/codeatlas/pkg/integrations/openai"
	"github.com/codeatlas/codeatlas/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "codeatlas"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "codeatlas",
		Short:        "Codeatlas maps codebases as interactive knowledge graphs",
		Long:         `Codeatlas analyzes code entity graphs, computes spatial layouts, and groups related entities into labeled clusters, turning a codebase into a navigable map.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.clusterCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	backend, err := newFileBackend(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(backend, nil, c.Logger), nil
}

// newRunnerFromConfig creates a runner wired from the full configuration,
// including the cache backend and embedding provider selection.
func (c *CLI) newRunnerFromConfig(ctx context.Context, cfg *config.Config) (*pipeline.Runner, error) {
	backend, err := newBackend(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}

	runner := pipeline.NewRunner(backend, nil, c.Logger)

	opts := []cluster.EngineOption{cluster.WithLogger(c.Logger)}
	switch cfg.Embedding.Provider {
	case "service":
		client := embedding.NewClient(cfg.Embedding.ServiceURL, cfg.Embedding.Model)
		cached := embedding.NewCachedProvider(client, backend, runner.Keyer, client.Model(), 0)
		opts = append(opts, cluster.WithProvider(cached))
	case "openai":
		provider := openai.NewProvider(cfg.Embedding.OpenAIKey, cfg.Embedding.Model)
		cached := embedding.NewCachedProvider(provider, backend, runner.Keyer, provider.Model(), 0)
		opts = append(opts,
			cluster.WithProvider(cached),
			cluster.WithLabeler(openai.NewLabeler(cfg.Embedding.OpenAIKey, "")),
		)
	}
	runner.Clusterer = cluster.NewEngine(opts...)

	return runner, nil
}

// newBackend selects a cache backend from configuration.
func newBackend(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, cfg.RedisURL)
	default:
		dir := cfg.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)
	}
}

func newFileBackend(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/codeatlas/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
