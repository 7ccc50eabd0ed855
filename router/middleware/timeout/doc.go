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

// Package timeout provides middleware that puts a deadline on the
// dispatch context.
//
// Handlers keep running until they return; they are expected to watch
// c.Context().Done() and pass the context to I/O. When the deadline has
// passed by the time the rest of the chain returns, the middleware
// returns *Error, which the router hands to its error handler and which
// overrides any response produced late.
//
//	r := router.MustNew(router.WithErrorHandler(errors.Handler(errors.NewSimple(), nil)))
//	r.Use(timeout.New(timeout.WithDuration(5 * time.Second)))
//
//	r.GET("/report", func(c *router.Context, _ router.Next) (*router.Response, error) {
//	    rows, err := db.QueryContext(c.Context(), query)
//	    ...
//	})
package timeout
