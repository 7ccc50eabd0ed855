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

// Package router maps HTTP methods and paths to ordered handler chains.
//
// A request runs every route whose pattern matches it: catch-all routes
// (patterns with a wildcard, typically middleware) in registration order,
// followed by the single most specific exact route. Each handler decides
// whether the chain continues by calling its continuation.
//
// # Patterns
//
//	/users                 static
//	/users/:id             one segment, bound to "id"
//	/items/:id{[0-9]+}     constrained by a regular expression
//	/posts/:page?          optional; registers /posts and /posts/:page
//	/files/*/raw           exactly one unnamed segment
//	/static/*              zero or more trailing segments
//
// Static segments beat constrained parameters, which beat plain
// parameters. A constrained parameter that rejects a segment lets the
// request fall through to the next viable route.
//
// # Matching Strategies
//
// The route set is frozen by the first dispatch or by Warmup. The router
// then compiles one regular expression per method (StrategyFast). When
// the route set cannot be represented that way, for example two
// differently constrained parameters at the same position, it walks a
// prefix tree instead (StrategyFallback). Both produce the same results;
// the choice is made once and never revisited.
//
// # Handler Chains
//
//	r := router.MustNew()
//	r.Use(func(c *router.Context, next router.Next) (*router.Response, error) {
//	    start := time.Now()
//	    resp, err := next.Run()
//	    c.Logger().Info("request", "path", c.Path(), "took", time.Since(start))
//	    return resp, err
//	})
//	r.GET("/users/:id", func(c *router.Context, _ router.Next) (*router.Response, error) {
//	    return router.Text(http.StatusOK, "user "+c.Param("id")), nil
//	})
//
// The first response produced by a handler is authoritative; responses
// returned by outer handlers after it are ignored. Errors go to the error
// handler set with WithErrorHandler, or are returned to the caller. A
// chain that produces no response ends in the not-found handler.
//
// # Mounting
//
// Mount copies a subrouter's routes under a prefix. The subrouter's
// handlers see paths with the prefix removed, so a subrouter works the
// same wherever it is mounted.
package router
