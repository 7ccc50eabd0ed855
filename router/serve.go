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

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// ServeHTTP implements http.Handler. The escaped request path is matched
// so percent-encoded slashes stay inside one segment; parameters decode
// on read. Errors left unhandled by the chain are logged and answered
// with the status from an HTTPStatus() int method in the error chain, or
// 500.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	resp, err := r.dispatch(req.Context(), req, req.Method, req.URL.EscapedPath())
	if err != nil {
		r.logger.ErrorContext(req.Context(), "unhandled dispatch error",
			"method", req.Method,
			"path", req.URL.Path,
			"error", err,
		)
		status := errorStatus(err)
		http.Error(w, http.StatusText(status), status)
		return
	}
	if resp == nil {
		resp = Text(http.StatusNotFound, http.StatusText(http.StatusNotFound))
	}
	if err := resp.WriteTo(w); err != nil {
		r.logger.DebugContext(req.Context(), "response write failed", "error", err)
	}
}

func errorStatus(err error) int {
	var se interface{ HTTPStatus() int }
	if errors.As(err, &se) {
		if status := se.HTTPStatus(); status >= 400 && status <= 599 {
			return status
		}
	}
	return http.StatusInternalServerError
}

// NewServer returns an http.Server serving the router on addr with the
// configured timeouts, wrapped for HTTP/2 cleartext when WithH2C is set.
//
// Example:
//
//	srv := r.NewServer(":8080")
//	go srv.ListenAndServe()
//	defer srv.Shutdown(ctx)
func (r *Router) NewServer(addr string) *http.Server {
	h := http.Handler(r)
	if r.enableH2C {
		h = h2c.NewHandler(h, &http2.Server{})
		r.logger.Warn("h2c enabled; use only in dev or behind a trusted load balancer")
	}

	timeouts := r.serverTimeouts
	if timeouts == nil {
		timeouts = defaultServerTimeouts()
	}

	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: timeouts.readHeader,
		ReadTimeout:       timeouts.read,
		WriteTimeout:      timeouts.write,
		IdleTimeout:       timeouts.idle,
	}
}
