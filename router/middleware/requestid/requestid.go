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

package requestid

import (
	"context"

	"github.com/google/uuid"

	"rivaas.dev/smartrouter/router"
	"rivaas.dev/smartrouter/router/middleware"
)

// Option defines functional options for requestid middleware configuration.
type Option func(*config)

// config holds the configuration for the requestid middleware.
type config struct {
	// headerName is the header carrying the request ID in both directions
	headerName string

	// generator creates new request IDs
	generator func() string

	// allowClientID accepts IDs supplied by clients
	allowClientID bool
}

// defaultConfig returns the default configuration for requestid middleware.
func defaultConfig() *config {
	return &config{
		headerName:    "X-Request-ID",
		generator:     generateUUIDv7,
		allowClientID: true,
	}
}

// generateUUIDv7 returns a time-ordered UUID, falling back to a random
// one if the clock source fails.
func generateUUIDv7() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// New returns a middleware that assigns a request ID to each dispatch.
//
// The middleware will:
//  1. Reuse the ID from the configured request header if allowed
//  2. Otherwise generate a new one (UUID v7 by default)
//  3. Store it on the request context and the router.Context
//  4. Set it on the response header
//
// Basic usage:
//
//	r := router.MustNew()
//	r.Use(requestid.New())
//
// Custom header name:
//
//	r.Use(requestid.New(requestid.WithHeader("X-Correlation-ID")))
//
// Accessing the request ID in handlers:
//
//	r.GET("/users/:id", func(c *router.Context, _ router.Next) (*router.Response, error) {
//	    c.Logger().Info("lookup", "request_id", requestid.Get(c))
//	    ...
//	})
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context, next router.Next) (*router.Response, error) {
		var requestID string
		if cfg.allowClientID && c.Request() != nil {
			requestID = c.Request().Header.Get(cfg.headerName)
		}
		if requestID == "" {
			requestID = cfg.generator()
		}

		c.Set(string(middleware.RequestIDKey), requestID)
		c.SetContext(context.WithValue(c.Context(), middleware.RequestIDKey, requestID))

		resp, err := next.Run()
		if resp != nil {
			resp.SetHeader(cfg.headerName, requestID)
		}
		return resp, err
	}
}

// Get retrieves the request ID of the dispatch, or "".
func Get(c *router.Context) string {
	return c.GetString(string(middleware.RequestIDKey))
}

// FromContext retrieves the request ID from a context derived from the
// dispatch context, or "".
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(middleware.RequestIDKey).(string)
	return id
}
