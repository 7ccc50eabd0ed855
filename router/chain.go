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
	"errors"
	"net/http"
	"strings"
)

// HandlerFunc handles one step of a dispatch chain. Calling next.Run hands
// control to the next matched route and returns its response; returning
// without calling it ends the chain.
type HandlerFunc func(c *Context, next Next) (*Response, error)

// ErrorHandler turns a handler error into the final response.
type ErrorHandler func(c *Context, err error) *Response

// binding is the handler value stored in route entries.
type binding struct {
	fn HandlerFunc

	// strip is the number of leading path segments hidden from the
	// handler by enclosing mounts.
	strip int
}

// Next is the continuation handed to a handler. It may be run once.
// The zero Next ends the chain.
type Next struct {
	c     *Context
	index int
}

// Run executes the rest of the chain. A second call from the same handler
// returns *DoubleContinuationError.
func (n Next) Run() (*Response, error) {
	c := n.c
	if c == nil {
		return nil, nil
	}
	if c.cursor > n.index {
		err := &DoubleContinuationError{Method: c.method, Path: c.requestPath}
		if n.index < len(c.matches) {
			err.Route = c.matches[n.index].Entry.Pattern.Raw()
		}
		return nil, err
	}
	return c.run(n.index + 1)
}

// run invokes frame i, or the not-found handler past the last match.
// The frame's parameters and path are visible to the handler and to the
// error handler, and are restored once the frame settles.
func (c *Context) run(i int) (*Response, error) {
	c.cursor = i
	if c.state == StatePending {
		c.state = StateRunning
	}
	if i >= len(c.matches) {
		return c.runNotFound()
	}

	m := &c.matches[i]
	b, _ := m.Entry.Handler.(*binding)

	prevParams, prevEntry, prevPath := c.params, c.entry, c.path
	c.params, c.entry = m.Params, &m.Entry
	c.path = stripSegments(c.requestPath, b.strip)

	resp, err := b.fn(c, Next{c: c, index: i})
	resp, err = c.settle(resp, err)

	c.params, c.entry, c.path = prevParams, prevEntry, prevPath
	return resp, err
}

func (c *Context) runNotFound() (*Response, error) {
	if c.notFound {
		return c.response, nil
	}
	c.notFound = true

	prevParams, prevEntry, prevPath := c.params, c.entry, c.path
	c.params, c.entry, c.path = nil, nil, c.requestPath

	resp, err := c.router.notFound(c, Next{})
	if resp == nil && err == nil {
		resp, err = DefaultNotFound(c, Next{})
	}

	resp, err = c.settle(resp, err)

	c.params, c.entry, c.path = prevParams, prevEntry, prevPath
	return resp, err
}

// settle applies a frame's result. A response becomes authoritative only
// while none is; the error path always overrides.
func (c *Context) settle(resp *Response, err error) (*Response, error) {
	if err != nil {
		if errors.Is(err, ErrDoubleContinuation) || c.router.errorHandler == nil {
			return nil, err
		}
		out := c.router.errorHandler(c, err)
		if out == nil {
			out = Text(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}
		c.response, c.state, c.err = out, StateErrored, err
		return out, nil
	}

	if resp != nil && c.state != StateFinalized && c.state != StateErrored {
		c.response, c.state = resp, StateFinalized
	}
	return c.response, nil
}

// stripSegments removes the first k segments of path.
func stripSegments(path string, k int) string {
	p := path
	for range k {
		i := strings.IndexByte(p[min(1, len(p)):], '/')
		if i < 0 {
			return "/"
		}
		p = p[i+1:]
	}
	if p == "" {
		return "/"
	}
	return p
}
