package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestFileCacheRoundTrip(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	if _, found, err := c.Get(ctx, "missing"); err != nil || found {
		t.Fatalf("Get(missing) = found=%v err=%v, want miss", found, err)
	}

	if err := c.Set(ctx, "k", []byte("positions"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, found, err := c.Get(ctx, "k")
	if err != nil || !found {
		t.Fatalf("Get after Set = found=%v err=%v", found, err)
	}
	if string(data) != "positions" {
		t.Errorf("Get = %q, want %q", data, "positions")
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := c.Get(ctx, "k"); found {
		t.Error("Get after Delete found the entry")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key: %v, want nil", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, found, err := c.Get(ctx, "k"); err != nil || found {
		t.Errorf("Get after expiry = found=%v err=%v, want miss", found, err)
	}
}

func TestNullCache(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, found, err := c.Get(ctx, "k"); err != nil || found {
		t.Errorf("NullCache Get = found=%v err=%v, want miss", found, err)
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if a, b := k.AnalysisKey("h1"), k.AnalysisKey("h2"); a == b {
		t.Error("different graph hashes should produce different analysis keys")
	}

	lk1 := k.LayoutKey("h1", LayoutKeyOpts{Algorithm: "force", Width: 1200})
	lk2 := k.LayoutKey("h1", LayoutKeyOpts{Algorithm: "radial", Width: 1200})
	if lk1 == lk2 {
		t.Error("different LayoutKeyOpts should produce different keys")
	}
	if lk1 != k.LayoutKey("h1", LayoutKeyOpts{Algorithm: "force", Width: 1200}) {
		t.Error("identical inputs should produce identical keys")
	}

	ck1 := k.ClusterKey("h1", ClusterKeyOpts{Algorithm: "kmeans", NumClusters: 4})
	ck2 := k.ClusterKey("h1", ClusterKeyOpts{Algorithm: "kmeans", NumClusters: 5})
	if ck1 == ck2 {
		t.Error("different ClusterKeyOpts should produce different keys")
	}

	ek1 := k.EmbeddingKey("small", "func main()")
	ek2 := k.EmbeddingKey("large", "func main()")
	if ek1 == ek2 {
		t.Error("different models should produce different embedding keys")
	}
	if !strings.HasPrefix(ek1, "embedding:") {
		t.Errorf("embedding key %q missing stage prefix", ek1)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "project:atlas:")

	key := scoped.AnalysisKey("h1")
	if !strings.HasPrefix(key, "project:atlas:") {
		t.Errorf("scoped key %q missing prefix", key)
	}
	if strings.TrimPrefix(key, "project:atlas:") != inner.AnalysisKey("h1") {
		t.Error("scoped key does not wrap the inner key")
	}
}
