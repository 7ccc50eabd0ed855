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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"rivaas.dev/smartrouter/config"
	problems "rivaas.dev/smartrouter/errors"
	"rivaas.dev/smartrouter/logging"
	"rivaas.dev/smartrouter/metrics"
	"rivaas.dev/smartrouter/router"
	"rivaas.dev/smartrouter/router/middleware/accesslog"
	"rivaas.dev/smartrouter/router/middleware/basicauth"
	"rivaas.dev/smartrouter/router/middleware/recovery"
	"rivaas.dev/smartrouter/router/middleware/requestid"
	"rivaas.dev/smartrouter/router/middleware/timeout"
	"rivaas.dev/smartrouter/tracing"
)

// daemon owns the router and the observability providers built from one
// Settings value.
type daemon struct {
	settings *config.Settings
	logger   *logging.Logger
	metrics  *metrics.Recorder // nil when disabled
	tracer   *tracing.Tracer   // nil when disabled
	router   *router.Router
}

// newDaemon builds every component. Logs go to stdout; stdout exporters
// write to telemetry.
func newDaemon(s *config.Settings, stdout, telemetry io.Writer) (*daemon, error) {
	level, err := logging.ParseLevel(s.Logging.Level)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(
		logging.WithHandlerType(logging.HandlerType(s.Logging.Format)),
		logging.WithOutput(stdout),
		logging.WithLevel(level),
		logging.WithServiceName(s.Logging.Service),
		logging.WithSource(s.Logging.Source),
	)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	d := &daemon{settings: s, logger: logger}

	if s.Metrics.Enabled {
		opts := []metrics.Option{
			metrics.WithServiceName(s.Logging.Service),
			metrics.WithLogger(logger.Logger()),
		}
		switch s.Metrics.Provider {
		case "stdout":
			opts = append(opts, metrics.WithStdout(telemetry))
		case "otlp":
			opts = append(opts, metrics.WithOTLP(s.Metrics.Endpoint))
		}
		if d.metrics, err = metrics.New(opts...); err != nil {
			return nil, err
		}
	}
	if s.Tracing.Enabled {
		opts := []tracing.Option{
			tracing.WithServiceName(s.Logging.Service),
			tracing.WithSampleRate(s.Tracing.SampleRate),
			tracing.WithLogger(logger.Logger()),
		}
		switch s.Tracing.Provider {
		case "stdout":
			opts = append(opts, tracing.WithStdout(telemetry))
		case "otlp":
			opts = append(opts, tracing.WithOTLP(s.Tracing.Endpoint))
		}
		if d.tracer, err = tracing.New(opts...); err != nil {
			d.shutdown(context.Background())
			return nil, err
		}
	}

	if d.router, err = d.buildRouter(); err != nil {
		d.shutdown(context.Background())
		return nil, err
	}
	return d, nil
}

func (d *daemon) buildRouter() (*router.Router, error) {
	s := d.settings
	strategy, err := s.Router.RouterStrategy()
	if err != nil {
		return nil, err
	}

	opts := []router.Option{
		router.WithLogger(d.logger.Logger()),
		router.WithStrategy(strategy),
		router.WithErrorHandler(problems.Handler(problems.NewRFC9457(""), d.logger.Logger())),
		router.WithServerTimeouts(s.Server.ReadHeaderTimeout, s.Server.ReadTimeout, s.Server.WriteTimeout, s.Server.IdleTimeout),
		router.WithH2C(s.Server.H2C),
	}
	if d.metrics != nil {
		opts = append(opts, router.WithObserver(d.metrics))
	}
	r, err := router.New(opts...)
	if err != nil {
		return nil, err
	}

	d.useMiddleware(r)
	if err = addRoutes(r, s.Routes); err != nil {
		return nil, err
	}
	for _, m := range s.Mounts {
		sub, err := router.New(router.WithLogger(d.logger.Logger()))
		if err != nil {
			return nil, err
		}
		if err = addRoutes(sub, m.Routes); err != nil {
			return nil, fmt.Errorf("mount %s: %w", m.Base, err)
		}
		if err = r.Mount(m.Base, sub); err != nil {
			return nil, fmt.Errorf("mount %s: %w", m.Base, err)
		}
	}
	return r, nil
}

// useMiddleware registers the global chain, outermost first.
func (d *daemon) useMiddleware(r *router.Router) {
	mw := d.settings.Middleware
	if mw.Recovery {
		r.Use(recovery.New())
	}
	if mw.RequestID {
		r.Use(requestid.New())
	}
	if d.tracer != nil {
		r.Use(tracing.Middleware(d.tracer, tracing.WithExcludePaths(mw.AccessLog.ExcludePaths...)))
	}
	if mw.AccessLog.Enabled {
		r.Use(accesslog.New(
			accesslog.WithLogger(d.logger.Logger()),
			accesslog.WithExcludePaths(mw.AccessLog.ExcludePaths...),
			accesslog.WithSampleRate(mw.AccessLog.SampleRate),
		))
	}
	if mw.Timeout > 0 {
		r.Use(timeout.New(timeout.WithDuration(mw.Timeout), timeout.WithLogger(d.logger.Logger())))
	}
	if len(mw.BasicAuth.Users) > 0 {
		r.Use(basicauth.New(
			basicauth.WithUsers(mw.BasicAuth.Users),
			basicauth.WithRealm(mw.BasicAuth.Realm),
		))
	}
}

// server returns the HTTP server; the metrics endpoint is served beside
// the router when Prometheus is enabled.
func (d *daemon) server() *http.Server {
	srv := d.router.NewServer(d.settings.Server.Addr)
	if d.metrics == nil {
		return srv
	}
	promHandler, err := d.metrics.Handler()
	if errors.Is(err, metrics.ErrNoPrometheus) {
		return srv
	}
	if err != nil {
		d.logger.Logger().Warn("metrics endpoint disabled", "error", err)
		return srv
	}
	mux := http.NewServeMux()
	mux.Handle(d.settings.Metrics.Path, promHandler)
	mux.Handle("/", srv.Handler)
	srv.Handler = mux
	return srv
}

// shutdown flushes the telemetry providers.
func (d *daemon) shutdown(ctx context.Context) {
	if d.tracer != nil {
		if err := d.tracer.Shutdown(ctx); err != nil {
			d.logger.Logger().Warn("tracing shutdown failed", "error", err)
		}
	}
	if d.metrics != nil {
		if err := d.metrics.Shutdown(ctx); err != nil {
			d.logger.Logger().Warn("metrics shutdown failed", "error", err)
		}
	}
	_ = d.logger.Shutdown(ctx)
}
