package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"), nil)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Cache.Backend != "file" {
		t.Errorf("cache backend = %q, want file", cfg.Cache.Backend)
	}
	if cfg.Layout.Algorithm != "force" || cfg.Layout.Width != 1200 || cfg.Layout.Height != 800 {
		t.Errorf("layout defaults = %+v", cfg.Layout)
	}
	if cfg.Layout.Seed != 42 {
		t.Errorf("seed = %d, want 42", cfg.Layout.Seed)
	}
	if cfg.Cluster.Algorithm != "kmeans" || cfg.Cluster.Epsilon != 0.5 {
		t.Errorf("cluster defaults = %+v", cfg.Cluster)
	}
	if cfg.Embedding.Provider != "local" {
		t.Errorf("embedding provider = %q, want local", cfg.Embedding.Provider)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server port = %d, want 8080", cfg.Server.Port)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codeatlas.toml")
	content := []byte("[layout]\nalgorithm = \"radial\"\nwidth = 1600.0\n\n[server]\nport = 9000\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path, nil)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Layout.Algorithm != "radial" {
		t.Errorf("layout algorithm = %q, want radial", cfg.Layout.Algorithm)
	}
	if cfg.Layout.Width != 1600 {
		t.Errorf("layout width = %g, want 1600", cfg.Layout.Width)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("server port = %d, want 9000", cfg.Server.Port)
	}
	// Untouched keys keep their defaults.
	if cfg.Layout.Height != 800 {
		t.Errorf("layout height = %g, want default 800", cfg.Layout.Height)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codeatlas.toml")
	if err := os.WriteFile(path, []byte("[server]\nport = 9000\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CODEATLAS_SERVER_PORT", "9090")
	t.Setenv("CODEATLAS_CLUSTER_NUM_CLUSTERS", "7")

	cfg, err := LoadFile(path, nil)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server port = %d, want env override 9090", cfg.Server.Port)
	}
	if cfg.Cluster.NumClusters != 7 {
		t.Errorf("num clusters = %d, want env override 7", cfg.Cluster.NumClusters)
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("CODEATLAS_SERVER_PORT", "9090")

	f := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.Int("server.port", 8080, "")
	if err := f.Parse([]string{"--server.port=7000"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"), f)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("server port = %d, want flag override 7000", cfg.Server.Port)
	}
}
