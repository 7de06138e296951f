// Package router resolves request paths in three tiers: exact match, then
// base-path match, then a boundary-respecting prefix scan. Each registered
// path carries a Chain (chain.go) composing its handler with middlewares
// and observers.
package router

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
)

// ErrNilHandler is returned by Register when the chain is nil.
type ErrNilHandler struct{ Path string }

func (e ErrNilHandler) Error() string { return "router: nil handler for path " + e.Path }

// Router resolves normalized request paths to a registered Chain. The
// route table is mutex-guarded.
type Router struct {
	mu       sync.RWMutex
	routes   map[string]*Chain
	notFound http.Handler
	logger   *slog.Logger
}

// New builds an empty Router. notFound is invoked whenever no path
// matches; if nil, a minimal 404 handler is used.
func New(logger *slog.Logger, notFound http.Handler) *Router {
	if notFound == nil {
		notFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
	}
	return &Router{
		routes:   make(map[string]*Chain),
		notFound: notFound,
		logger:   logger,
	}
}

// Register associates a normalized path with a Chain. Re-registering an
// existing path overwrites it with a logged warning; a nil chain returns
// ErrNilHandler.
func (rt *Router) Register(path string, chain *Chain) error {
	if chain == nil {
		return ErrNilHandler{Path: path}
	}
	normalized := NormalizePath(path)

	rt.mu.Lock()
	defer rt.mu.Unlock()

	if _, exists := rt.routes[normalized]; exists {
		rt.logger.Warn("router: overwriting existing route registration", "path", normalized)
	}
	rt.routes[normalized] = chain
	return nil
}

// RegisterAll registers every entry in chains.
func (rt *Router) RegisterAll(chains Chains) {
	for path, chain := range chains {
		_ = rt.Register(path, chain)
	}
}

// NormalizePath ensures a leading slash, strips a trailing slash (except
// for root), and drops any query string.
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		path = path[:idx]
	}
	if path == "" {
		return "/"
	}
	if path[0] != '/' {
		path = "/" + path
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

// basePath returns the first two path segments of a normalized path, e.g.
// "/api/v1" for "/api/v1/users/search".
func basePath(path string) string {
	if path == "/" {
		return "/"
	}
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	n := 2
	if len(segments) < n {
		n = len(segments)
	}
	return "/" + strings.Join(segments[:n], "/")
}

// isBoundaryPrefix reports whether prefix is a prefix of path that ends at
// a "/" boundary or at the end of path.
func isBoundaryPrefix(prefix, path string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	if len(path) == len(prefix) {
		return true
	}
	return path[len(prefix)] == '/'
}

// resolve implements the exact -> base-path -> prefix-scan lookup. Callers
// must hold at least a read lock.
func (rt *Router) resolve(path string) *Chain {
	if chain, ok := rt.routes[path]; ok {
		return chain
	}

	base := basePath(path)
	if chain, ok := rt.routes[base]; ok && isBoundaryPrefix(base, path) {
		return chain
	}

	for registered, chain := range rt.routes {
		if isBoundaryPrefix(registered, path) {
			return chain
		}
	}

	return nil
}

// ServeHTTP implements http.Handler, dispatching to the resolved Chain's
// composed handler, or the not-found handler when no route matches.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	normalized := NormalizePath(r.URL.Path)

	rt.mu.RLock()
	chain := rt.resolve(normalized)
	rt.mu.RUnlock()

	if chain == nil {
		rt.notFound.ServeHTTP(w, r)
		return
	}
	chain.Handler().ServeHTTP(w, r)
}
