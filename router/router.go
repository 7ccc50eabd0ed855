// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"rivaas.dev/smartrouter/router/pattern"
	"rivaas.dev/smartrouter/router/route"
)

// noopLogger is a singleton no-op logger used when no logger is configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NoopLogger returns the singleton no-op logger.
func NoopLogger() *slog.Logger {
	return noopLogger
}

// Router maps a method and path to an ordered chain of handlers.
//
// Routes are registered first; the first dispatch (or Warmup) freezes the
// route set and commits a matching strategy: one compiled expression per
// method when the route set allows it, a prefix tree otherwise. The
// Router is safe for concurrent use.
//
// Example:
//
//	r := router.MustNew()
//	r.Use(accessLog)
//	r.GET("/users/:id", func(c *router.Context, next router.Next) (*router.Response, error) {
//	    return router.Text(http.StatusOK, c.Param("id")), nil
//	})
//	http.ListenAndServe(":8080", r)
type Router struct {
	parser   *pattern.Parser
	cache    *pattern.Cache
	registry *route.Registry
	coord    coordinator
	forced   Strategy

	logger       *slog.Logger
	observer     Observer
	diagnostics  DiagnosticHandler
	notFound     HandlerFunc
	errorHandler ErrorHandler

	enableH2C      bool
	serverTimeouts *serverTimeouts
}

// serverTimeouts holds HTTP server timeout configuration.
type serverTimeouts struct {
	readHeader time.Duration
	read       time.Duration
	write      time.Duration
	idle       time.Duration
}

// New creates a router. Returns an error if the configuration is invalid.
//
// For a version that panics instead of returning an error, use MustNew.
func New(opts ...Option) (*Router, error) {
	r := &Router{
		registry: route.NewRegistry(),
		logger:   noopLogger,
		notFound: DefaultNotFound,
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("router configuration validation failed: %w", err)
	}

	if r.cache == nil {
		r.cache = pattern.NewCache()
	}
	r.parser = pattern.NewParser(r.cache)
	if r.notFound == nil {
		r.notFound = DefaultNotFound
	}
	return r, nil
}

// MustNew creates a new Router instance and panics if configuration is invalid.
func MustNew(opts ...Option) *Router {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("router.MustNew: %v", err))
	}
	return r
}

func (r *Router) validate() error {
	switch r.forced {
	case StrategyUndecided, StrategyFast, StrategyFallback:
	default:
		return fmt.Errorf("%w: %d", ErrInvalidStrategy, r.forced)
	}
	if t := r.serverTimeouts; t != nil && (t.readHeader < 0 || t.read < 0 || t.write < 0 || t.idle < 0) {
		return ErrServerTimeoutInvalid
	}
	return nil
}

// Add registers h for method and path. Method route.MethodAll matches
// every method. It fails with *pattern.InvalidPatternError for a malformed
// path and *route.RegistryFinalizedError once dispatch has started.
func (r *Router) Add(method, path string, h HandlerFunc) error {
	if h == nil {
		return fmt.Errorf("%w: %s %s", ErrNilHandler, method, path)
	}
	patterns, err := r.parser.Parse(path)
	if err != nil {
		return err
	}
	return r.insert(strings.ToUpper(method), patterns, &binding{fn: h})
}

func (r *Router) insert(method string, patterns []pattern.Pattern, b *binding) error {
	if _, err := r.registry.Insert(method, patterns, b); err != nil {
		return err
	}

	raw := patterns[0].Raw()
	r.logger.Debug("route registered", "method", method, "pattern", raw, "expansions", len(patterns))
	r.emit(DiagRouteRegistered, "route registered", map[string]any{
		"method":  method,
		"pattern": raw,
	})
	if len(patterns) > 1 {
		shapes := make([]string, 0, len(patterns))
		for _, p := range patterns {
			shapes = append(shapes, p.String())
		}
		r.emit(DiagOptionalExpanded, "optional parameters expanded", map[string]any{
			"pattern": raw,
			"routes":  shapes,
		})
	}
	if r.observer != nil {
		r.observer.OnRouteRegistered(method, raw)
	}
	return nil
}

func (r *Router) mustAdd(method, path string, h HandlerFunc) {
	if err := r.Add(method, path, h); err != nil {
		panic(fmt.Sprintf("router: %v", err))
	}
}

// GET registers a GET route. It panics on an invalid pattern or after
// dispatch has started; use Add to handle those errors.
func (r *Router) GET(path string, h HandlerFunc) { r.mustAdd(http.MethodGet, path, h) }

// POST registers a POST route.
func (r *Router) POST(path string, h HandlerFunc) { r.mustAdd(http.MethodPost, path, h) }

// PUT registers a PUT route.
func (r *Router) PUT(path string, h HandlerFunc) { r.mustAdd(http.MethodPut, path, h) }

// PATCH registers a PATCH route.
func (r *Router) PATCH(path string, h HandlerFunc) { r.mustAdd(http.MethodPatch, path, h) }

// DELETE registers a DELETE route.
func (r *Router) DELETE(path string, h HandlerFunc) { r.mustAdd(http.MethodDelete, path, h) }

// HEAD registers a HEAD route.
func (r *Router) HEAD(path string, h HandlerFunc) { r.mustAdd(http.MethodHead, path, h) }

// OPTIONS registers an OPTIONS route.
func (r *Router) OPTIONS(path string, h HandlerFunc) { r.mustAdd(http.MethodOptions, path, h) }

// ALL registers a route for every method.
func (r *Router) ALL(path string, h HandlerFunc) { r.mustAdd(route.MethodAll, path, h) }

// Use registers middleware for every method and path. Middleware runs in
// registration order ahead of the most specific route.
func (r *Router) Use(middleware ...HandlerFunc) {
	for _, m := range middleware {
		r.mustAdd(route.MethodAll, "/*", m)
	}
}

// Match returns the ordered routes that run for method and path. The
// first call commits the matching strategy.
func (r *Router) Match(method, path string) []route.Match {
	return r.commit().Match(strings.ToUpper(method), normalizePath(path))
}

// Routes returns every registered route in registration order. Patterns
// with optional parameters appear once per expansion.
func (r *Router) Routes() []route.Info {
	entries := r.registry.Entries()
	infos := make([]route.Info, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, e.Info())
	}
	return infos
}

// ConstraintCache returns the cache holding compiled parameter constraints.
func (r *Router) ConstraintCache() *pattern.Cache {
	return r.cache
}

// Dispatch runs the handler chain for method and path without an HTTP
// request. The returned error is a handler error left unhandled because
// no error handler is configured, or *DoubleContinuationError.
func (r *Router) Dispatch(ctx context.Context, method, path string) (*Response, error) {
	return r.dispatch(ctx, nil, method, path)
}

func (r *Router) dispatch(ctx context.Context, req *http.Request, method, path string) (*Response, error) {
	start := time.Now()
	if ctx == nil {
		ctx = context.Background()
	}
	method = strings.ToUpper(method)
	path = normalizePath(path)

	matches := r.commit().Match(method, path)
	matched := time.Since(start)

	c := acquireContext()
	defer releaseContext(c)

	c.router = r
	c.ctx = ctx
	c.request = req
	c.method = method
	c.requestPath = path
	c.path = path
	c.matches = matches

	resp, err := c.run(0)
	if err == nil && c.state != StateFinalized && c.state != StateErrored {
		resp, err = c.runNotFound()
	}

	if r.observer != nil {
		info := DispatchInfo{
			Method:        method,
			Route:         routeLabel(matches),
			Strategy:      r.Strategy(),
			Matches:       len(matches),
			NotFound:      c.notFound,
			Err:           err,
			MatchDuration: matched,
			Duration:      time.Since(start),
		}
		if resp != nil && err == nil {
			info.Status = resp.Status
		}
		r.observer.OnDispatch(info)
	}
	return resp, err
}

// routeLabel names the most specific matched route.
func routeLabel(matches []route.Match) string {
	if n := len(matches); n > 0 && !matches[n-1].Entry.CatchAll() {
		return matches[n-1].Entry.Pattern.Raw()
	}
	return NotFoundRoute
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if path[0] != '/' {
		return "/" + path
	}
	return path
}
