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

// Command smartrouterd serves static routes declared in a YAML file
// through the smart router, with logging, metrics and tracing wired in.
//
// Usage:
//
//	smartrouterd -config smartrouterd.yaml
//	smartrouterd -config smartrouterd.yaml -routes   # print the route table and exit
//
// Every setting can be overridden with a SMARTROUTER_ environment
// variable; see package config.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"rivaas.dev/smartrouter/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "smartrouterd:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("smartrouterd", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to the YAML settings file")
	printRoutes := fs.Bool("routes", false, "print the route table and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := []config.Option{config.WithEnv("SMARTROUTER_")}
	if *configPath != "" {
		opts = append([]config.Option{config.WithFile(*configPath)}, opts...)
	}
	settings, err := config.New(opts...).Load(ctx)
	if err != nil {
		return err
	}

	d, err := newDaemon(settings, stdout, stderr)
	if err != nil {
		return err
	}

	if *printRoutes {
		defer d.shutdown(context.Background())
		if err = d.router.Warmup(); err != nil {
			return err
		}
		renderRoutes(stdout, d.router)
		return nil
	}
	return d.serve(ctx)
}

// serve runs the server until ctx is cancelled, then drains it within
// the configured shutdown timeout.
func (d *daemon) serve(ctx context.Context) error {
	if d.settings.Router.Warmup {
		if err := d.router.Warmup(); err != nil {
			return fmt.Errorf("warmup: %w", err)
		}
	}

	srv := d.server()
	errCh := make(chan error, 1)
	go func() {
		d.logger.Logger().Info("smartrouterd listening",
			"addr", srv.Addr,
			"routes", len(d.router.Routes()),
			"strategy", d.router.Strategy().String(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			d.shutdown(context.Background())
			return err
		}
	case <-ctx.Done():
	}

	d.logger.Logger().Info("shutting down", "timeout", d.settings.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), d.settings.Server.ShutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	d.shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	d.logger.Logger().Info("server stopped")
	return nil
}
