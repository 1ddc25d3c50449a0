package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codeatlas/codeatlas/pkg/cache"
	"github.com/codeatlas/codeatlas/pkg/integrations"
)

func TestClient_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Texts) != 1 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(embedResponse{
			Model:   "bge-small",
			Vectors: [][]float64{{0.1, 0.2, 0.3}},
			Dim:     3,
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "bge-small")
	vec, err := c.Embed(context.Background(), "func main()")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	want := []float64{0.1, 0.2, 0.3}
	if len(vec) != len(want) {
		t.Fatalf("Embed returned %v, want %v", vec, want)
	}
	for i := range want {
		if vec[i] != want[i] {
			t.Errorf("vec[%d] = %v, want %v", i, vec[i], want[i])
		}
	}
}

func TestClient_EmbedEmptyText(t *testing.T) {
	c := NewClient("http://unused", "m")
	if _, err := c.Embed(context.Background(), ""); err == nil {
		t.Error("Embed(\"\") should fail without calling the service")
	}
}

func TestClient_BatchEmbedCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Vectors: [][]float64{{1}}})
	}))
	defer server.Close()

	c := NewClient(server.URL, "m")
	if _, err := c.BatchEmbed(context.Background(), []string{"a", "b"}); err == nil {
		t.Error("BatchEmbed should fail when vector count does not match text count")
	}
}

func TestClient_EmbedNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(server.URL, "m")
	_, err := c.Embed(context.Background(), "text")
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("Embed = %v, want ErrNotFound", err)
	}
}

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(healthResponse{Status: "ok", Model: "bge-small"})
	}))
	defer server.Close()

	c := NewClient(server.URL, "bge-small")
	if err := c.Health(context.Background()); err != nil {
		t.Errorf("Health: %v", err)
	}
}

// countingProvider counts how often the inner provider is called.
type countingProvider struct {
	calls int
	vec   []float64
	err   error
}

func (p *countingProvider) Embed(context.Context, string) ([]float64, error) {
	p.calls++
	return p.vec, p.err
}

func TestCachedProviderHitSkipsInner(t *testing.T) {
	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer backend.Close()

	inner := &countingProvider{vec: []float64{1, 2, 3}}
	p := NewCachedProvider(inner, backend, nil, "bge-small", time.Hour)
	ctx := context.Background()

	for range 3 {
		vec, err := p.Embed(ctx, "func main()")
		if err != nil {
			t.Fatalf("Embed: %v", err)
		}
		if len(vec) != 3 || vec[0] != 1 {
			t.Fatalf("Embed returned %v", vec)
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner provider called %d times, want 1", inner.calls)
	}
}

func TestCachedProviderModelNamespacing(t *testing.T) {
	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer backend.Close()
	ctx := context.Background()

	small := &countingProvider{vec: []float64{1}}
	large := &countingProvider{vec: []float64{2}}
	ps := NewCachedProvider(small, backend, nil, "small", time.Hour)
	pl := NewCachedProvider(large, backend, nil, "large", time.Hour)

	if _, err := ps.Embed(ctx, "x"); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	vec, err := pl.Embed(ctx, "x")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if vec[0] != 2 {
		t.Errorf("large model served small model's cached vector: %v", vec)
	}
	if large.calls != 1 {
		t.Errorf("large provider called %d times, want 1", large.calls)
	}
}

func TestCachedProviderPropagatesInnerError(t *testing.T) {
	inner := &countingProvider{err: errors.New("service down")}
	p := NewCachedProvider(inner, cache.NewNullCache(), nil, "m", time.Hour)

	if _, err := p.Embed(context.Background(), "x"); err == nil {
		t.Error("Embed should propagate inner provider errors")
	}
}
