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
	"log/slog"
	"time"

	"rivaas.dev/smartrouter/router/pattern"
)

// Option defines functional options for router configuration.
type Option func(*Router)

// WithLogger sets the logger used for registration and strategy events.
// A nil logger disables logging.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	r := router.MustNew(router.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger == nil {
			logger = NoopLogger()
		}
		r.logger = logger
	}
}

// WithNotFound sets the handler run when no route produced a response.
// Its continuation ends the chain.
func WithNotFound(h HandlerFunc) Option {
	return func(r *Router) {
		r.notFound = h
	}
}

// WithErrorHandler sets the handler that turns handler errors into the
// final response. Without one, errors are returned to the caller of
// Dispatch and answered with 500 by ServeHTTP.
func WithErrorHandler(h ErrorHandler) Option {
	return func(r *Router) {
		r.errorHandler = h
	}
}

// WithObserver sets the lifecycle observer, e.g. a metrics recorder.
func WithObserver(o Observer) Option {
	return func(r *Router) {
		r.observer = o
	}
}

// WithStrategy pins the matching strategy instead of choosing it from the
// route set. StrategyFallback skips the fast path entirely; StrategyFast
// makes Warmup report a fast path rejection. StrategyUndecided restores
// automatic selection.
func WithStrategy(s Strategy) Option {
	return func(r *Router) {
		r.forced = s
	}
}

// WithConstraintCache shares a constraint cache between routers.
// By default every router owns its cache.
func WithConstraintCache(cache *pattern.Cache) Option {
	return func(r *Router) {
		r.cache = cache
	}
}

// WithDiagnostics sets a diagnostic handler for the router.
//
// Example with logging:
//
//	handler := router.DiagnosticHandlerFunc(func(e router.DiagnosticEvent) {
//	    slog.Info(e.Message, "kind", e.Kind, "fields", e.Fields)
//	})
//	r := router.MustNew(router.WithDiagnostics(handler))
func WithDiagnostics(handler DiagnosticHandler) Option {
	return func(r *Router) {
		r.diagnostics = handler
	}
}

// WithH2C enables HTTP/2 Cleartext support on servers built by NewServer.
//
// Only use in development or behind a trusted load balancer.
func WithH2C(enable bool) Option {
	return func(r *Router) {
		r.enableH2C = enable
	}
}

// WithServerTimeouts configures timeouts of servers built by NewServer.
//
// Defaults (if not set):
//
//	ReadHeaderTimeout: 5s
//	ReadTimeout:       15s
//	WriteTimeout:      30s
//	IdleTimeout:       60s
func WithServerTimeouts(readHeader, read, write, idle time.Duration) Option {
	return func(r *Router) {
		r.serverTimeouts = &serverTimeouts{
			readHeader: readHeader,
			read:       read,
			write:      write,
			idle:       idle,
		}
	}
}

func defaultServerTimeouts() *serverTimeouts {
	return &serverTimeouts{
		readHeader: 5 * time.Second,
		read:       15 * time.Second,
		write:      30 * time.Second,
		idle:       60 * time.Second,
	}
}
