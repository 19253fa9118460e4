// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about propagation sessions and HTTP API traffic.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries. Package
// observability/metrics provides a Prometheus implementation of both hook
// interfaces.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPropagationHooks(&myHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Propagation().OnSessionStart("limited", token, budget)
//	// ... traverse ...
//	observability.Propagation().OnSessionComplete("limited", infected, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Propagation Hooks
// =============================================================================

// PropagationHooks receives events from the propagation engine.
//
// Engine calls are synchronous and single-threaded, so hooks run inline on
// the traversal path and should return quickly. A budget of -1 means
// unlimited.
type PropagationHooks interface {
	// Session events
	OnSessionStart(policy string, token uint64, budget int)
	OnSessionComplete(policy string, infected int, duration time.Duration)

	// OnInfect records a node receiving the new version.
	OnInfect(policy string, node int)

	// OnReject records a candidate failing the atomic admission check.
	OnReject(policy string, node, need, remaining int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records an HTTP response. The path is the matched route
	// pattern (for example "/nodes/{id}"), or "unmatched".
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)

	// OnError records a request that failed with an error.
	OnError(ctx context.Context, method, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPropagationHooks is a no-op implementation of PropagationHooks.
type NoopPropagationHooks struct{}

func (NoopPropagationHooks) OnSessionStart(string, uint64, int)           {}
func (NoopPropagationHooks) OnSessionComplete(string, int, time.Duration) {}
func (NoopPropagationHooks) OnInfect(string, int)                         {}
func (NoopPropagationHooks) OnReject(string, int, int, int)               {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	propagationHooks PropagationHooks = NoopPropagationHooks{}
	httpHooks        HTTPHooks        = NoopHTTPHooks{}
	hooksMu          sync.RWMutex
)

// SetPropagationHooks registers custom propagation hooks.
// This should be called once at application startup before any propagation.
func SetPropagationHooks(h PropagationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		propagationHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before serving requests.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Propagation returns the registered propagation hooks.
func Propagation() PropagationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return propagationHooks
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
	propagationHooks = NoopPropagationHooks{}
	httpHooks = NoopHTTPHooks{}
}
