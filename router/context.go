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
	"log/slog"
	"net/http"

	"rivaas.dev/smartrouter/router/route"
)

// State is the dispatch state of a Context.
type State uint8

const (
	// StatePending means no handler has run yet.
	StatePending State = iota
	// StateRunning means handlers are running and no response is final.
	StateRunning
	// StateFinalized means a handler produced the authoritative response.
	StateFinalized
	// StateErrored means the error handler produced the response.
	StateErrored
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateFinalized:
		return "finalized"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Context is the per-request dispatch state handed to every handler.
// A Context belongs to one request and must not be retained after the
// handler returns; contexts are pooled.
type Context struct {
	router  *Router
	ctx     context.Context
	request *http.Request

	method      string
	requestPath string
	path        string // as observed by the current frame

	matches []route.Match
	params  route.Params // of the current frame
	entry   *route.Entry // of the current frame

	cursor   int // highest frame index entered
	notFound bool
	state    State
	response *Response
	err      error

	values map[string]any
}

// Context returns the request context.
func (c *Context) Context() context.Context {
	return c.ctx
}

// SetContext replaces the request context for the rest of the chain.
func (c *Context) SetContext(ctx context.Context) {
	c.ctx = ctx
	if c.request != nil {
		c.request = c.request.WithContext(ctx)
	}
}

// Request returns the HTTP request, or nil when dispatched without one.
func (c *Context) Request() *http.Request {
	return c.request
}

// Method returns the request method.
func (c *Context) Method() string {
	return c.method
}

// Path returns the path observed by the running handler. Handlers of a
// mounted router see the path with the mount prefix removed.
func (c *Context) Path() string {
	return c.path
}

// RequestPath returns the full request path.
func (c *Context) RequestPath() string {
	return c.requestPath
}

// Param returns the decoded value of a path parameter bound by the
// running handler's route, or "".
func (c *Context) Param(key string) string {
	return c.params.ByName(key)
}

// Params returns the parameters bound by the running handler's route.
func (c *Context) Params() route.Params {
	return c.params
}

// Route returns the pattern of the running handler's route.
func (c *Context) Route() string {
	if c.entry == nil {
		return ""
	}
	return c.entry.Pattern.Raw()
}

// MatchedRoute returns the pattern of the most specific matched route,
// or NotFoundRoute when only catch-all routes matched.
func (c *Context) MatchedRoute() string {
	return routeLabel(c.matches)
}

// Matched returns the number of routes that matched the request.
func (c *Context) Matched() int {
	return len(c.matches)
}

// State returns the dispatch state.
func (c *Context) State() State {
	return c.state
}

// Response returns the authoritative response so far, or nil.
func (c *Context) Response() *Response {
	return c.response
}

// Err returns the error handled by the error handler, or nil.
func (c *Context) Err() error {
	return c.err
}

// Set stores a request-scoped value.
func (c *Context) Set(key string, v any) {
	if c.values == nil {
		c.values = make(map[string]any)
	}
	c.values[key] = v
}

// Get returns a request-scoped value.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// GetString returns a request-scoped string value or "".
func (c *Context) GetString(key string) string {
	v, _ := c.values[key].(string)
	return v
}

// Logger returns the router's logger.
func (c *Context) Logger() *slog.Logger {
	if c.router == nil {
		return NoopLogger()
	}
	return c.router.logger
}

// reset clears the context for reuse.
func (c *Context) reset() {
	c.router = nil
	c.ctx = nil
	c.request = nil
	c.method = ""
	c.requestPath = ""
	c.path = ""
	c.matches = nil
	c.params = nil
	c.entry = nil
	c.cursor = -1
	c.notFound = false
	c.state = StatePending
	c.response = nil
	c.err = nil
	clear(c.values)
}
