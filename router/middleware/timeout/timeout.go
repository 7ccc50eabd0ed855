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

package timeout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"rivaas.dev/smartrouter/router"
)

// Error reports a dispatch that outlived its deadline. It declares
// status 408 and wraps context.DeadlineExceeded.
type Error struct {
	Timeout time.Duration
	Path    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("request %s exceeded timeout of %s", e.Path, e.Timeout)
}

// Unwrap returns context.DeadlineExceeded.
func (e *Error) Unwrap() error {
	return context.DeadlineExceeded
}

// HTTPStatus returns 408 Request Timeout.
func (e *Error) HTTPStatus() int {
	return http.StatusRequestTimeout
}

// Option defines functional options for timeout middleware configuration.
type Option func(*config)

// config holds the configuration for the timeout middleware.
type config struct {
	// duration is the deadline applied to the dispatch context
	duration time.Duration

	// logger reports timeouts; nil disables logging
	logger *slog.Logger

	// skipPaths are exact paths without a deadline
	skipPaths map[string]bool

	// skipPrefixes are path prefixes without a deadline
	skipPrefixes []string

	// skipFunc decides per dispatch whether to skip the deadline
	skipFunc func(c *router.Context) bool
}

// defaultConfig returns the default configuration for timeout middleware.
func defaultConfig() *config {
	return &config{
		duration:  30 * time.Second,
		logger:    slog.Default(),
		skipPaths: make(map[string]bool),
	}
}

func shouldSkip(cfg *config, c *router.Context) bool {
	path := c.RequestPath()
	if cfg.skipPaths[path] {
		return true
	}
	for _, prefix := range cfg.skipPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return cfg.skipFunc != nil && cfg.skipFunc(c)
}

// New returns a middleware that bounds the dispatch context by a deadline
// (30s by default).
//
// Skip certain paths:
//
//	r.Use(timeout.New(
//	    timeout.WithSkipPaths("/stream", "/events"),
//	    timeout.WithSkipPrefix("/admin"),
//	))
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context, next router.Next) (*router.Response, error) {
		if shouldSkip(cfg, c) {
			return next.Run()
		}

		parent := c.Context()
		ctx, cancel := context.WithTimeout(parent, cfg.duration)
		defer cancel()
		c.SetContext(ctx)

		resp, err := next.Run()
		c.SetContext(parent)

		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return resp, err
		}
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return resp, err
		}

		if cfg.logger != nil {
			cfg.logger.WarnContext(parent, "request timeout",
				"method", c.Method(),
				"path", c.RequestPath(),
				"timeout", cfg.duration.String(),
			)
		}
		return nil, &Error{Timeout: cfg.duration, Path: c.RequestPath()}
	}
}
