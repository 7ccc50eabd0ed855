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

// Package tracing creates an OpenTelemetry span for every dispatch.
//
// A Tracer owns (or borrows) a tracer provider; Middleware turns it into a
// router handler that is registered on a catch-all route so it wraps every
// chain:
//
//	tracer := tracing.MustNew(
//	    tracing.WithServiceName("smartrouterd"),
//	    tracing.WithStdout(os.Stderr),
//	)
//	defer tracer.Shutdown(context.Background())
//
//	r := router.MustNew()
//	r.Use(tracing.Middleware(tracer, tracing.WithExcludePaths("/healthz")))
//
// Spans are named "METHOD pattern" after the most specific matched route,
// so span names stay low-cardinality. The request context carries the span
// for the rest of the chain; handlers reach it through
// trace.SpanFromContext(c.Context()).
//
// WithOTLP("http://collector:4318") exports spans over OTLP/HTTP instead.
//
// Incoming W3C trace context and baggage headers are honored. The global
// tracer provider is only replaced when WithGlobalTracerProvider is given.
package tracing
