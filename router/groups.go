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
	"net/http"

	"rivaas.dev/smartrouter/router/route"
)

// Group registers routes under a common path prefix with shared
// middleware. Group middleware is registered for every method at
// prefix/*, so it runs for every path under the prefix, matched or not.
//
// Example:
//
//	api := r.Group("/api/v1", auth)
//	users := api.Group("/users", rateLimit)
//	users.GET("/:id", getUser) // Final path: /api/v1/users/:id
type Group struct {
	router *Router
	prefix string
}

// Group creates a route group. It panics if prefix is not a valid pattern.
func (r *Router) Group(prefix string, middleware ...HandlerFunc) *Group {
	g := &Group{router: r, prefix: joinPath("", prefix)}
	g.Use(middleware...)
	return g
}

// Group creates a nested group under the current group's prefix.
func (g *Group) Group(prefix string, middleware ...HandlerFunc) *Group {
	ng := &Group{router: g.router, prefix: joinPath(g.prefix, prefix)}
	ng.Use(middleware...)
	return ng
}

// Prefix returns the group's path prefix.
func (g *Group) Prefix() string {
	return g.prefix
}

// Use adds middleware for every path under the group prefix.
func (g *Group) Use(middleware ...HandlerFunc) {
	for _, m := range middleware {
		g.router.mustAdd(route.MethodAll, joinPath(g.prefix, "/*"), m)
	}
}

// Add registers a route under the group prefix.
func (g *Group) Add(method, path string, h HandlerFunc) error {
	return g.router.Add(method, joinPath(g.prefix, path), h)
}

// GET adds a GET route to the group with the group's prefix.
func (g *Group) GET(path string, h HandlerFunc) {
	g.router.mustAdd(http.MethodGet, joinPath(g.prefix, path), h)
}

// POST adds a POST route to the group with the group's prefix.
func (g *Group) POST(path string, h HandlerFunc) {
	g.router.mustAdd(http.MethodPost, joinPath(g.prefix, path), h)
}

// PUT adds a PUT route to the group with the group's prefix.
func (g *Group) PUT(path string, h HandlerFunc) {
	g.router.mustAdd(http.MethodPut, joinPath(g.prefix, path), h)
}

// PATCH adds a PATCH route to the group with the group's prefix.
func (g *Group) PATCH(path string, h HandlerFunc) {
	g.router.mustAdd(http.MethodPatch, joinPath(g.prefix, path), h)
}

// DELETE adds a DELETE route to the group with the group's prefix.
func (g *Group) DELETE(path string, h HandlerFunc) {
	g.router.mustAdd(http.MethodDelete, joinPath(g.prefix, path), h)
}

// ALL adds a route for every method to the group with the group's prefix.
func (g *Group) ALL(path string, h HandlerFunc) {
	g.router.mustAdd(route.MethodAll, joinPath(g.prefix, path), h)
}

// joinPath appends path to prefix, treating "/" and "" as empty.
func joinPath(prefix, path string) string {
	if prefix == "/" {
		prefix = ""
	}
	switch {
	case path == "" || path == "/":
		if prefix == "" {
			return "/"
		}
		return prefix
	case prefix == "":
		return path
	default:
		return prefix + path
	}
}
