package embedding

import (
	"context"
	"encoding/json"
	"time"

	"github.com/codeatlas/codeatlas/pkg/cache"
	"github.com/codeatlas/codeatlas/pkg/cluster"
	"github.com/codeatlas/codeatlas/pkg/observability"
)

// DefaultTTL is how long cached embedding vectors stay valid. Vectors only
// change when the model changes, so a long TTL is safe; the model name is
// part of the key.
const DefaultTTL = 7 * 24 * time.Hour

// CachedProvider decorates an embedding provider with a byte cache, so a
// text is only embedded once per model.
type CachedProvider struct {
	inner cluster.Provider
	cache cache.Cache
	keyer cache.Keyer
	model string
	ttl   time.Duration
}

// NewCachedProvider wraps inner with the given cache backend. The model
// name namespaces keys so switching models never serves stale vectors.
// A nil keyer uses the default key scheme; a zero ttl uses [DefaultTTL].
func NewCachedProvider(inner cluster.Provider, backend cache.Cache, keyer cache.Keyer, model string, ttl time.Duration) *CachedProvider {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedProvider{
		inner: inner,
		cache: backend,
		keyer: keyer,
		model: model,
		ttl:   ttl,
	}
}

// Embed returns the cached vector for text if present, otherwise calls the
// inner provider and stores the result. Cache read and write failures are
// ignored; the inner provider's answer always wins.
func (p *CachedProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	key := p.keyer.EmbeddingKey(p.model, text)

	if data, found, err := p.cache.Get(ctx, key); err == nil && found {
		var vec []float64
		if json.Unmarshal(data, &vec) == nil && len(vec) > 0 {
			observability.Cache().OnCacheHit(ctx, "embedding")
			return vec, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "embedding")

	vec, err := p.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(vec); err == nil {
		if p.cache.Set(ctx, key, data, p.ttl) == nil {
			observability.Cache().OnCacheSet(ctx, "embedding", len(data))
		}
	}
	return vec, nil
}

// Ensure CachedProvider satisfies the clustering provider contract.
var _ cluster.Provider = (*CachedProvider)(nil)
