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

package tracing

import (
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"rivaas.dev/smartrouter/router"
)

const attrPrefixHeader = "http.request.header."

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	excludePaths     map[string]bool
	excludePrefixes  []string
	recordHeaders    []string
	recordHeadersLow []string
}

// WithExcludePaths skips tracing for exact request paths.
func WithExcludePaths(paths ...string) MiddlewareOption {
	return func(cfg *middlewareConfig) {
		for _, p := range paths {
			cfg.excludePaths[p] = true
		}
	}
}

// WithExcludePrefixes skips tracing for request paths with any of the
// prefixes.
func WithExcludePrefixes(prefixes ...string) MiddlewareOption {
	return func(cfg *middlewareConfig) {
		cfg.excludePrefixes = append(cfg.excludePrefixes, prefixes...)
	}
}

// WithHeaders records the named request headers as span attributes.
// Credentials are never recorded.
func WithHeaders(headers ...string) MiddlewareOption {
	return func(cfg *middlewareConfig) {
		for _, h := range headers {
			low := strings.ToLower(h)
			if low == "authorization" || low == "cookie" || low == "proxy-authorization" {
				continue
			}
			cfg.recordHeaders = append(cfg.recordHeaders, h)
			cfg.recordHeadersLow = append(cfg.recordHeadersLow, low)
		}
	}
}

func (cfg *middlewareConfig) excluded(path string) bool {
	if cfg.excludePaths[path] {
		return true
	}
	for _, prefix := range cfg.excludePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Middleware returns a handler that wraps the rest of the chain in a
// server span. It belongs on a catch-all route, usually via Router.Use.
func Middleware(t *Tracer, opts ...MiddlewareOption) router.HandlerFunc {
	if t == nil {
		panic("tracing.Middleware: nil tracer")
	}
	cfg := &middlewareConfig{excludePaths: make(map[string]bool)}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context, next router.Next) (*router.Response, error) {
		if !t.Enabled() || cfg.excluded(c.RequestPath()) || !t.sampled() {
			return next.Run()
		}

		parent := c.Context()
		ctx := parent
		req := c.Request()
		if req != nil {
			ctx = t.propagator.Extract(ctx, propagation.HeaderCarrier(req.Header))
		}

		routeLabel := c.MatchedRoute()
		ctx, span := t.tracer.Start(ctx, c.Method()+" "+routeLabel, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		attrs := make([]attribute.KeyValue, 0, 4+len(cfg.recordHeaders))
		attrs = append(attrs,
			attribute.String("http.request.method", c.Method()),
			attribute.String("url.path", c.RequestPath()),
			attribute.String("http.route", routeLabel),
			attribute.Int("smartrouter.matches", c.Matched()),
		)
		if req != nil {
			for i, h := range cfg.recordHeaders {
				if v := req.Header.Get(h); v != "" {
					attrs = append(attrs, attribute.String(attrPrefixHeader+cfg.recordHeadersLow[i], v))
				}
			}
		}
		span.SetAttributes(attrs...)

		c.SetContext(ctx)
		resp, err := next.Run()
		c.SetContext(parent)

		finish(span, c, resp, err)
		return resp, err
	}
}

// finish records the outcome of the chain on span.
func finish(span trace.Span, c *router.Context, resp *router.Response, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	// A later error handler result is authoritative over resp.
	if final := c.Response(); final != nil {
		resp = final
	}
	if resp == nil {
		return
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.Status))
	if resp.Status >= http.StatusInternalServerError {
		msg := http.StatusText(resp.Status)
		if cause := c.Err(); cause != nil {
			msg = fmt.Sprintf("%s: %v", msg, cause)
		}
		span.SetStatus(codes.Error, msg)
	}
}

// TraceID returns the trace ID of the span active in c, or "" when the
// request is not traced.
func TraceID(c *router.Context) string {
	sc := trace.SpanContextFromContext(c.Context())
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
