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
	"fmt"

	"rivaas.dev/smartrouter/router/pattern"
	"rivaas.dev/smartrouter/router/route"
)

// mountCfg holds configuration for a mounted subrouter.
type mountCfg struct {
	extraMiddleware []HandlerFunc
}

// MountOption configures how a subrouter is mounted.
type MountOption func(*mountCfg)

// WithMiddleware adds middleware that runs for every path under the mount
// prefix, ahead of the subrouter's routes.
func WithMiddleware(m ...HandlerFunc) MountOption {
	return func(cfg *mountCfg) {
		cfg.extraMiddleware = append(cfg.extraMiddleware, m...)
	}
}

// Mount registers every route of sub under base, in sub's registration
// order. Handlers from sub observe the path with base removed, so a
// subrouter does not depend on where it is mounted:
//
//	admin := router.MustNew()
//	admin.GET("/users", listUsers) // c.Path() == "/users"
//	r.Mount("/admin", admin)       // serves GET /admin/users
//
// base may bind parameters but must not contain wildcards, optional
// parameters or constraints that match '/'. Routes added to sub after
// Mount are not copied.
func (r *Router) Mount(base string, sub *Router, opts ...MountOption) error {
	basePattern, err := r.mountBase(base)
	if err != nil {
		return err
	}

	cfg := &mountCfg{}
	for _, opt := range opts {
		opt(cfg)
	}

	for _, m := range cfg.extraMiddleware {
		if err := r.Add(route.MethodAll, joinPath(basePattern.String(), "/*"), m); err != nil {
			return err
		}
	}

	for _, mr := range route.PrepareMount(basePattern, sub.registry.Entries()) {
		inner, ok := mr.Handler.(*binding)
		if !ok {
			return fmt.Errorf("%w: %T", ErrInvalidHandler, mr.Handler)
		}
		b := &binding{fn: inner.fn, strip: inner.strip + mr.Strip}
		if err := r.insert(mr.Method, mr.Patterns, b); err != nil {
			return err
		}
	}

	r.logger.Debug("router mounted", "base", base, "routes", sub.registry.Len())
	return nil
}

func (r *Router) mountBase(base string) (pattern.Pattern, error) {
	patterns, err := r.parser.Parse(base)
	if err != nil {
		return pattern.Pattern{}, fmt.Errorf("%w: %w", ErrInvalidMountBase, err)
	}
	if len(patterns) != 1 {
		return pattern.Pattern{}, fmt.Errorf("%w %q: optional parameters", ErrInvalidMountBase, base)
	}
	p := patterns[0]
	if p.CatchAll() {
		return pattern.Pattern{}, fmt.Errorf("%w %q: wildcards", ErrInvalidMountBase, base)
	}
	for _, s := range p.Segments {
		if s.Spans() {
			return pattern.Pattern{}, fmt.Errorf("%w %q: parameter %s spans segments", ErrInvalidMountBase, base, s.Text)
		}
	}
	return p, nil
}
