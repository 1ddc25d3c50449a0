package cache

// ScopedKeyer wraps a Keyer with a prefix so independent runs or projects
// can share one cache backend without key collisions.
//
// Example usage:
//
//	// Project-specific keys when serving multiple repositories
//	projectKeyer := NewScopedKeyer(NewDefaultKeyer(), "project:atlas:")
//
//	// Unscoped keys for a single-project CLI run
//	defaultKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// AnalysisKey generates a prefixed key for analysis results.
func (k *ScopedKeyer) AnalysisKey(graphHash string) string {
	return k.prefix + k.inner.AnalysisKey(graphHash)
}

// LayoutKey generates a prefixed key for layout positions.
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

// ClusterKey generates a prefixed key for clustering results.
func (k *ScopedKeyer) ClusterKey(graphHash string, opts ClusterKeyOpts) string {
	return k.prefix + k.inner.ClusterKey(graphHash, opts)
}

// EmbeddingKey generates a prefixed key for embedding vectors.
func (k *ScopedKeyer) EmbeddingKey(model, text string) string {
	return k.prefix + k.inner.EmbeddingKey(model, text)
}
