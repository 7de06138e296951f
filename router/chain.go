package router

import (
	"net/http"
)

// Chain composes a single route's base handler with zero or more
// middlewares and post-dispatch observers, so a route's
// content-type/auth/logging wrapping stays declarative at registration
// time rather than scattered through the handler body. A Chain also
// carries its registered method set so callers can answer
// unsupported-method requests without re-deriving it.
type Chain struct {
	handler     http.Handler
	methods     []string
	middlewares []func(http.Handler) http.Handler
	observers   []http.Handler
}

// Chains maps a registered path to its Chain.
type Chains map[string]*Chain

// NewChain wraps h as the base handler for methods. Panics on a nil
// handler: registering one is a construction error, not a runtime
// condition to tolerate.
func NewChain(h http.Handler, methods ...string) *Chain {
	if h == nil {
		panic("router: chain handler cannot be nil")
	}
	return &Chain{handler: h, methods: methods}
}

// Methods returns the HTTP methods this route answers.
func (c *Chain) Methods() []string {
	return c.methods
}

// WithMiddleware prepends middlewares so the first argument becomes the
// outermost wrapper and therefore runs first, the same left-to-right
// reading order as github.com/justinas/alice.
func (c *Chain) WithMiddleware(middlewares ...func(http.Handler) http.Handler) *Chain {
	for _, mw := range middlewares {
		c.middlewares = append([]func(http.Handler) http.Handler{mw}, c.middlewares...)
	}
	return c
}

// WithObservers appends handlers run after the main chain completes, for
// side effects like access logging that must not influence the response
// body. Observers never see an error if the main handler already wrote
// headers; callers should not attempt to write from one.
func (c *Chain) WithObservers(observers ...http.Handler) *Chain {
	c.observers = append(c.observers, observers...)
	return c
}

// Handler returns the fully wrapped handler: middlewares applied innermost
// to outermost, then observers fired in registration order after it runs.
func (c *Chain) Handler() http.Handler {
	handler := c.handler
	for _, mw := range c.middlewares {
		handler = mw(handler)
	}
	if len(c.observers) == 0 {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		handler.ServeHTTP(w, req)
		for _, obs := range c.observers {
			obs.ServeHTTP(w, req)
		}
	})
}
