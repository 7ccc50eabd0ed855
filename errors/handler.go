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

package errors

import (
	"log/slog"
	"net/http"

	"rivaas.dev/smartrouter/router"
)

// Handler returns a router.ErrorHandler that logs err and answers with
// f's response. Server errors are logged at Error, client errors at Warn.
// A nil logger uses the router's logger.
//
// Example:
//
//	r := router.MustNew(
//	    router.WithErrorHandler(errors.Handler(errors.NewRFC9457(""), logger)),
//	)
func Handler(f Formatter, logger *slog.Logger) router.ErrorHandler {
	return func(c *router.Context, err error) *router.Response {
		resp := f.Format(c, err)

		l := logger
		if l == nil {
			l = c.Logger()
		}
		level := slog.LevelWarn
		if resp == nil || resp.Status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		l.Log(c.Context(), level, "handler error",
			"method", c.Method(),
			"path", c.RequestPath(),
			"route", c.Route(),
			"error", err,
		)
		return resp
	}
}
