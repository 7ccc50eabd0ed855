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

// Package accesslog provides structured access logging for dispatches,
// with path exclusion, deterministic sampling and slow-request detection.
package accesslog

import (
	"crypto/sha256"
	"encoding/binary"
	"net/http"
	"strings"
	"time"

	"rivaas.dev/smartrouter/router"
	"rivaas.dev/smartrouter/router/middleware"
)

// New creates an access log middleware.
//
// The logger must be provided via WithLogger; without one the middleware
// only passes control on. Failed and slow dispatches are always logged;
// sampling applies to the rest.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	r := router.MustNew()
//	r.Use(accesslog.New(
//		accesslog.WithLogger(logger),
//		accesslog.WithExcludePaths("/health", "/metrics"),
//		accesslog.WithSlowThreshold(500 * time.Millisecond),
//	))
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context, next router.Next) (*router.Response, error) {
		path := c.RequestPath()
		if cfg.logger == nil || excluded(cfg, path) {
			return next.Run()
		}

		start := time.Now()
		resp, err := next.Run()
		duration := time.Since(start)

		status := http.StatusInternalServerError
		var size int
		if err == nil && resp != nil {
			status = resp.Status
			if status == 0 {
				status = http.StatusOK
			}
			size = len(resp.Body)
		}

		isError := status >= http.StatusBadRequest
		isSlow := cfg.slowThreshold > 0 && duration >= cfg.slowThreshold
		if !isError && !isSlow {
			if cfg.logErrorsOnly {
				return resp, err
			}
			if cfg.sampleRate < 1.0 && !sampleByHash(c.GetString(string(middleware.RequestIDKey)), cfg.sampleRate) {
				return resp, err
			}
		}

		fields := []any{
			"method", c.Method(),
			"path", path,
			"route", c.MatchedRoute(),
			"status", status,
			"duration_ms", duration.Milliseconds(),
			"bytes_sent", size,
		}
		if id := c.GetString(string(middleware.RequestIDKey)); id != "" {
			fields = append(fields, "request_id", id)
		}
		if req := c.Request(); req != nil {
			fields = append(fields,
				"user_agent", req.UserAgent(),
				"remote_addr", req.RemoteAddr,
				"host", req.Host,
				"proto", req.Proto,
			)
		}
		if err != nil {
			fields = append(fields, "error", err.Error())
		}
		if isSlow {
			fields = append(fields, "slow", true)
		}

		ctx := c.Context()
		switch {
		case status >= http.StatusInternalServerError:
			cfg.logger.ErrorContext(ctx, "access", fields...)
		case isError, isSlow:
			cfg.logger.WarnContext(ctx, "access", fields...)
		default:
			cfg.logger.InfoContext(ctx, "access", fields...)
		}
		return resp, err
	}
}

func excluded(cfg *config, path string) bool {
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

// sampleByHash makes a deterministic sampling decision from an ID, so the
// same request ID gets the same decision on every replica.
func sampleByHash(id string, rate float64) bool {
	switch {
	case id == "" || rate >= 1:
		return true
	case rate <= 0:
		return false
	}
	h := sha256.Sum256([]byte(id))
	threshold := uint64(rate * float64(^uint64(0)))
	return binary.BigEndian.Uint64(h[:8]) <= threshold
}
