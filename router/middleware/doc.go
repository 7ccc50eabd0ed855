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

/*
Package middleware holds shared types for the handler-chain middleware in
its sub-packages.

# Available Middlewares

  - accesslog: structured access logging with sampling and filtering
  - requestid: request ID generation for log and trace correlation
  - recovery: turns handler panics into errors for the error handler
  - timeout: per-request context deadlines
  - basicauth: HTTP Basic Authentication

Middleware is a router.HandlerFunc registered for every path, usually
with Router.Use or on a group:

	r := router.MustNew(router.WithErrorHandler(errors.Handler(errors.NewRFC9457(""), logger)))
	r.Use(
	    recovery.New(),
	    requestid.New(),
	    accesslog.New(accesslog.WithLogger(logger)),
	)

Catch-all routes run in registration order ahead of the matched endpoint,
so register recovery first to cover everything after it.
*/
package middleware
