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

// Package recovery provides middleware that turns handler panics into
// errors, so they reach the router's error handler like any other failure.
package recovery

import (
	"fmt"
	"runtime/debug"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rivaas.dev/smartrouter/router"
)

// PanicError is the error returned for a recovered panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic recovered: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// Option defines functional options for recovery middleware configuration.
type Option func(*config)

// config holds the configuration for the recovery middleware.
type config struct {
	// stackTrace enables capturing stack traces on panic
	stackTrace bool

	// stackSize caps the captured stack trace in bytes
	stackSize int

	// logger reports recovered panics
	logger func(c *router.Context, err any, stack []byte)

	// handler produces a response instead of returning a PanicError
	handler func(c *router.Context, err any) *router.Response
}

// defaultConfig returns the default configuration for recovery middleware.
func defaultConfig() *config {
	return &config{
		stackTrace: true,
		stackSize:  4 << 10, // 4KB
		logger:     defaultLogger,
	}
}

// defaultLogger logs the panic on the router's logger.
func defaultLogger(c *router.Context, err any, stack []byte) {
	c.Logger().ErrorContext(c.Context(), "panic recovered",
		"method", c.Method(),
		"path", c.RequestPath(),
		"panic", fmt.Sprint(err),
		"stack", string(stack),
	)
}

// New returns a middleware that recovers from panics in the rest of the
// chain. The panic is logged and returned as *PanicError, which the
// router hands to its error handler. A span on the dispatch context is
// marked as failed.
//
// Register it first so it covers every later handler:
//
//	r := router.MustNew()
//	r.Use(recovery.New())
//
// With a custom response:
//
//	r.Use(recovery.New(
//	    recovery.WithHandler(func(c *router.Context, err any) *router.Response {
//	        return router.Text(http.StatusInternalServerError, "try again later")
//	    }),
//	))
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context, next router.Next) (resp *router.Response, err error) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			markSpan(c, rec)

			var stack []byte
			if cfg.stackTrace {
				stack = debug.Stack()
				if cfg.stackSize > 0 && len(stack) > cfg.stackSize {
					stack = stack[:cfg.stackSize]
				}
			}
			if cfg.logger != nil {
				cfg.logger(c, rec, stack)
			}

			if cfg.handler != nil {
				resp, err = cfg.handler(c, rec), nil
				return
			}
			resp, err = nil, &PanicError{Value: rec, Stack: stack}
		}()

		return next.Run()
	}
}

// markSpan records the panic on the active span, if any.
func markSpan(c *router.Context, rec any) {
	span := trace.SpanFromContext(c.Context())
	if !span.SpanContext().IsValid() {
		return
	}
	span.SetStatus(codes.Error, "panic recovered")
	span.SetAttributes(
		attribute.Bool("exception.escaped", true),
		attribute.String("exception.type", fmt.Sprintf("%T", rec)),
		attribute.String("exception.message", fmt.Sprint(rec)),
	)
	if err, ok := rec.(error); ok {
		span.RecordError(err)
	}
}
