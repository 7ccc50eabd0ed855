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

// Package basicauth provides HTTP Basic Authentication middleware.
package basicauth

import (
	"context"
	"crypto/subtle"
	"net/http"

	"rivaas.dev/smartrouter/router"
	"rivaas.dev/smartrouter/router/middleware"
)

// Option defines functional options for basicauth middleware configuration.
type Option func(*config)

type config struct {
	// users maps usernames to passwords
	users map[string]string

	// realm is the authentication realm shown to the user
	realm string

	// validator replaces the users map when set
	validator func(username, password string) bool

	// unauthorized builds the rejection response
	unauthorized func(c *router.Context) *router.Response

	// skipPaths are request paths that bypass authentication
	skipPaths map[string]bool
}

func defaultConfig() *config {
	return &config{
		users:        make(map[string]string),
		realm:        "Restricted",
		unauthorized: defaultUnauthorized,
		skipPaths:    make(map[string]bool),
	}
}

func defaultUnauthorized(_ *router.Context) *router.Response {
	resp, err := router.JSON(http.StatusUnauthorized, map[string]string{
		"error": "Unauthorized",
		"code":  "UNAUTHORIZED",
	})
	if err != nil {
		return router.Text(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	return resp
}

// New returns a middleware that requires HTTP Basic credentials. A
// rejected request ends the chain with 401 and a WWW-Authenticate header;
// an accepted one continues with the username available via GetUsername.
//
// Example:
//
//	admin := r.Group("/admin", basicauth.New(
//	    basicauth.WithUsers(map[string]string{"admin": os.Getenv("ADMIN_PASSWORD")}),
//	    basicauth.WithRealm("Admin"),
//	))
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	authenticateHeader := `Basic realm="` + cfg.realm + `"`

	return func(c *router.Context, next router.Next) (*router.Response, error) {
		if cfg.skipPaths[c.RequestPath()] {
			return next.Run()
		}

		username, ok := authenticate(cfg, c.Request())
		if !ok {
			return cfg.unauthorized(c).SetHeader("WWW-Authenticate", authenticateHeader), nil
		}

		c.Set(string(middleware.AuthUsernameKey), username)
		c.SetContext(context.WithValue(c.Context(), middleware.AuthUsernameKey, username))
		return next.Run()
	}
}

func authenticate(cfg *config, req *http.Request) (string, bool) {
	if req == nil {
		return "", false
	}
	username, password, ok := req.BasicAuth()
	if !ok {
		return "", false
	}
	if cfg.validator != nil {
		return username, cfg.validator(username, password)
	}
	expected, exists := cfg.users[username]
	if !exists {
		return "", false
	}
	return username, subtle.ConstantTimeCompare([]byte(password), []byte(expected)) == 1
}

// GetUsername returns the authenticated username, or "".
func GetUsername(c *router.Context) string {
	return c.GetString(string(middleware.AuthUsernameKey))
}

// WithUsers adds username/password pairs.
func WithUsers(users map[string]string) Option {
	return func(cfg *config) {
		for u, p := range users {
			cfg.users[u] = p
		}
	}
}

// WithRealm sets the realm announced in WWW-Authenticate.
// Default: "Restricted"
func WithRealm(realm string) Option {
	return func(cfg *config) {
		cfg.realm = realm
	}
}

// WithValidator checks credentials with fn instead of the users map.
func WithValidator(fn func(username, password string) bool) Option {
	return func(cfg *config) {
		cfg.validator = fn
	}
}

// WithUnauthorizedHandler replaces the 401 response body.
func WithUnauthorizedHandler(fn func(c *router.Context) *router.Response) Option {
	return func(cfg *config) {
		cfg.unauthorized = fn
	}
}

// WithSkipPaths lets exact request paths through without credentials.
func WithSkipPaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.skipPaths[p] = true
		}
	}
}
