// Package config loads layered configuration for CodeAtlas.
//
// Sources are merged in priority order: flags > environment variables >
// config file (codeatlas.toml) > built-in defaults. Environment variables
// use the CODEATLAS_ prefix with underscores as separators, e.g.
// CODEATLAS_SERVER_PORT=9090 sets server.port.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DefaultConfigFile is the config file looked up in the working directory.
const DefaultConfigFile = "codeatlas.toml"

// Config holds all configuration for the application.
type Config struct {
	Verbosity string          `koanf:"verbosity"`
	Cache     CacheConfig     `koanf:"cache"`
	Layout    LayoutConfig    `koanf:"layout"`
	Cluster   ClusterConfig   `koanf:"cluster"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Server    ServerConfig    `koanf:"server"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	// Backend is "file", "redis", or "none".
	Backend string `koanf:"backend"`
	// Dir is the file backend's directory. Empty selects a directory
	// under the user cache dir.
	Dir string `koanf:"dir"`
	// RedisURL configures the redis backend (redis://host:port/db).
	RedisURL string `koanf:"redis_url"`
}

// LayoutConfig carries layout stage defaults.
type LayoutConfig struct {
	Algorithm string  `koanf:"algorithm"`
	Width     float64 `koanf:"width"`
	Height    float64 `koanf:"height"`
	Seed      uint64  `koanf:"seed"`
}

// ClusterConfig carries clustering stage defaults.
type ClusterConfig struct {
	Algorithm      string  `koanf:"algorithm"`
	NumClusters    int     `koanf:"num_clusters"`
	MinClusterSize int     `koanf:"min_cluster_size"`
	Epsilon        float64 `koanf:"epsilon"`
	ExcludeTests   bool    `koanf:"exclude_tests"`
}

// EmbeddingConfig selects the embedding provider for clustering.
type EmbeddingConfig struct {
	// Provider is "local", "service", or "openai".
	Provider string `koanf:"provider"`
	// ServiceURL is the base URL of a self-hosted embedding service.
	ServiceURL string `koanf:"service_url"`
	// Model names the embedding model, used for cache keys.
	Model string `koanf:"model"`
	// OpenAIKey authenticates against the OpenAI API. Prefer setting it
	// via CODEATLAS_EMBEDDING_OPENAI_KEY over the config file.
	OpenAIKey string `koanf:"openai_key"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `koanf:"port"`
}

// Load loads configuration from defaults, config file, environment
// variables, and flags. Priority: Flags > Env > Config File > Defaults.
// Pass nil to skip flag merging.
func Load(f *pflag.FlagSet) (*Config, error) {
	return LoadFile(DefaultConfigFile, f)
}

// LoadFile is Load with an explicit config file path. A missing file is
// not an error; the remaining layers still apply.
func LoadFile(path string, f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := map[string]interface{}{
		"verbosity": "",
		"cache": map[string]interface{}{
			"backend":   "file",
			"dir":       "",
			"redis_url": "",
		},
		"layout": map[string]interface{}{
			"algorithm": "force",
			"width":     1200.0,
			"height":    800.0,
			"seed":      uint64(42),
		},
		"cluster": map[string]interface{}{
			"algorithm":        "kmeans",
			"num_clusters":     0,
			"min_cluster_size": 0,
			"epsilon":          0.5,
			"exclude_tests":    false,
		},
		"embedding": map[string]interface{}{
			"provider":    "local",
			"service_url": "",
			"model":       "",
			"openai_key":  "",
		},
		"server": map[string]interface{}{
			"port": 8080,
		},
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional)
	// We ignore errors here as the file might not exist
	_ = k.Load(file.Provider(path), toml.Parser())

	// 3. Environment Variables
	// Prefix: CODEATLAS_ (e.g., CODEATLAS_SERVER_PORT=9090)
	if err := k.Load(env.Provider("CODEATLAS_", ".", envToKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// envToKey maps CODEATLAS_CLUSTER_NUM_CLUSTERS to cluster.num_clusters.
// The first underscore separates the section; the rest stay underscores so
// multi-word keys survive the mapping.
func envToKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, "CODEATLAS_"))
	if section, rest, found := strings.Cut(s, "_"); found {
		return section + "." + rest
	}
	return s
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
