// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about engine execution, cache operations, and API calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEngineHooks(&myEngineHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Engine().OnLayoutStart(ctx, algorithm, nodeCount)
//	// ... compute layout ...
//	observability.Engine().OnLayoutComplete(ctx, algorithm, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from the graph engine stages.
type EngineHooks interface {
	// Analysis events
	OnAnalyzeStart(ctx context.Context, nodeCount, edgeCount int)
	OnAnalyzeComplete(ctx context.Context, cycleCount int, duration time.Duration, err error)

	// Layout events
	OnLayoutStart(ctx context.Context, algorithm string, nodeCount int)
	OnLayoutComplete(ctx context.Context, algorithm string, duration time.Duration, err error)

	// Clustering events
	OnClusterStart(ctx context.Context, algorithm string, entityCount int)
	OnClusterComplete(ctx context.Context, algorithm string, clusterCount int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnAnalyzeStart(context.Context, int, int)                          {}
func (NoopEngineHooks) OnAnalyzeComplete(context.Context, int, time.Duration, error)      {}
func (NoopEngineHooks) OnLayoutStart(context.Context, string, int)                        {}
func (NoopEngineHooks) OnLayoutComplete(context.Context, string, time.Duration, error)    {}
func (NoopEngineHooks) OnClusterStart(context.Context, string, int)                       {}
func (NoopEngineHooks) OnClusterComplete(context.Context, string, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	engineHooks EngineHooks = NoopEngineHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetEngineHooks registers custom engine hooks.
// This should be called once at application startup before any engine operations.
func SetEngineHooks(h EngineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		engineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return engineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	engineHooks = NoopEngineHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
