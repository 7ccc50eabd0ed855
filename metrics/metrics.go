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

package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Default histogram buckets in seconds.
var (
	// DefaultDurationBuckets cover sub-millisecond to 10 second dispatches.
	DefaultDurationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

	// DefaultMatchBuckets cover route matching, which should stay in the
	// microsecond range.
	DefaultMatchBuckets = []float64{0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.01}
)

// ErrNoPrometheus is returned by Handler when the recorder does not use
// the Prometheus provider.
var ErrNoPrometheus = errors.New("metrics: prometheus provider not configured")

// ErrRecorderClosed is returned by Handler after Shutdown.
var ErrRecorderClosed = errors.New("metrics: recorder shut down")

// Provider represents the available metrics providers.
type Provider string

const (
	// PrometheusProvider exposes metrics through Handler (default).
	PrometheusProvider Provider = "prometheus"
	// StdoutProvider prints metrics periodically (development/testing).
	StdoutProvider Provider = "stdout"
	// OTLPProvider pushes metrics periodically to an OTLP/HTTP collector.
	OTLPProvider Provider = "otlp"
	// CustomProvider uses a MeterProvider supplied by the caller.
	CustomProvider Provider = "custom"
)

// Recorder holds the metric instruments and their provider.
// All methods are safe for concurrent use.
type Recorder struct {
	provider       Provider
	meterProvider  metric.MeterProvider
	sdkProvider    *sdkmetric.MeterProvider // nil for CustomProvider
	registry       *promclient.Registry
	handler        http.Handler
	stdoutWriter   io.Writer
	otlpEndpoint   string
	exportInterval time.Duration
	logger         *slog.Logger
	closed         atomic.Bool

	serviceName     string
	serviceVersion  string
	durationBuckets []float64
	matchBuckets    []float64

	routesRegistered   metric.Int64Counter
	routes             metric.Int64Gauge
	strategyInfo       metric.Int64Gauge
	fastPathRejections metric.Int64Counter
	dispatches         metric.Int64Counter
	dispatchErrors     metric.Int64Counter
	notFound           metric.Int64Counter
	dispatchDuration   metric.Float64Histogram
	matchDuration      metric.Float64Histogram

	serviceAttrs []attribute.KeyValue
}

// New creates a Recorder. It fails if the provider cannot be initialized.
func New(opts ...Option) (*Recorder, error) {
	r := &Recorder{
		provider:        PrometheusProvider,
		exportInterval:  30 * time.Second,
		logger:          slog.New(slog.DiscardHandler),
		serviceName:     "smartrouter",
		serviceVersion:  "dev",
		durationBuckets: DefaultDurationBuckets,
		matchBuckets:    DefaultMatchBuckets,
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := r.initProvider(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	if err := r.initInstruments(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	r.serviceAttrs = []attribute.KeyValue{
		attribute.String("service.name", r.serviceName),
		attribute.String("service.version", r.serviceVersion),
	}
	r.logger.Debug("metrics recorder initialized", "provider", string(r.provider))
	return r, nil
}

// MustNew creates a Recorder and panics on error.
func MustNew(opts ...Option) *Recorder {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("metrics.MustNew: %v", err))
	}
	return r
}

func (r *Recorder) validate() error {
	var errs []error
	if r.serviceName == "" {
		errs = append(errs, errors.New("service name must not be empty"))
	}
	if (r.provider == StdoutProvider || r.provider == OTLPProvider) && r.exportInterval <= 0 {
		errs = append(errs, fmt.Errorf("export interval must be positive, got %s", r.exportInterval))
	}
	if r.provider == CustomProvider && r.meterProvider == nil {
		errs = append(errs, errors.New("custom provider requires a meter provider"))
	}
	for _, b := range [][]float64{r.durationBuckets, r.matchBuckets} {
		for i := 1; i < len(b); i++ {
			if b[i] <= b[i-1] {
				errs = append(errs, fmt.Errorf("histogram buckets must be strictly increasing: %v", b))
				break
			}
		}
	}
	return errors.Join(errs...)
}

func (r *Recorder) initProvider() error {
	switch r.provider {
	case PrometheusProvider:
		r.registry = promclient.NewRegistry()
		exporter, err := prometheus.New(prometheus.WithRegisterer(r.registry))
		if err != nil {
			return fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		r.sdkProvider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
		r.meterProvider = r.sdkProvider
		r.handler = promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})

	case StdoutProvider:
		exporterOpts := []stdoutmetric.Option{}
		if r.stdoutWriter != nil {
			exporterOpts = append(exporterOpts, stdoutmetric.WithWriter(r.stdoutWriter))
		}
		exporter, err := stdoutmetric.New(exporterOpts...)
		if err != nil {
			return fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		r.usePeriodic(exporter)

	case OTLPProvider:
		exporter, err := otlpmetrichttp.New(context.Background(), otlpOptions(r.otlpEndpoint)...)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		r.usePeriodic(exporter)

	case CustomProvider:
		// meterProvider supplied by WithMeterProvider

	default:
		return fmt.Errorf("unsupported metrics provider: %s", r.provider)
	}
	return nil
}

func (r *Recorder) usePeriodic(exporter sdkmetric.Exporter) {
	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(r.exportInterval))
	r.sdkProvider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	r.meterProvider = r.sdkProvider
}

// otlpOptions turns a collector URL into exporter options. The scheme
// selects TLS and any path is dropped.
func otlpOptions(endpoint string) []otlpmetrichttp.Option {
	if endpoint == "" {
		return nil
	}
	host, insecure := strings.CutPrefix(endpoint, "http://")
	host = strings.TrimPrefix(host, "https://")
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(host)}
	if insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	return opts
}

func (r *Recorder) initInstruments() error {
	meter := r.meterProvider.Meter("rivaas.dev/smartrouter/metrics")

	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	var err error

	r.routesRegistered, err = meter.Int64Counter("smartrouter_routes_registered_total",
		metric.WithDescription("Route registrations accepted by the router"))
	add(err)
	r.routes, err = meter.Int64Gauge("smartrouter_routes",
		metric.WithDescription("Routes in the frozen route set"))
	add(err)
	r.strategyInfo, err = meter.Int64Gauge("smartrouter_strategy_info",
		metric.WithDescription("Committed matching strategy"))
	add(err)
	r.fastPathRejections, err = meter.Int64Counter("smartrouter_fast_path_rejections_total",
		metric.WithDescription("Route sets the compiled matcher could not represent"))
	add(err)
	r.dispatches, err = meter.Int64Counter("smartrouter_dispatches_total",
		metric.WithDescription("Completed dispatches"))
	add(err)
	r.dispatchErrors, err = meter.Int64Counter("smartrouter_dispatch_errors_total",
		metric.WithDescription("Dispatches that ended with an unhandled error"))
	add(err)
	r.notFound, err = meter.Int64Counter("smartrouter_not_found_total",
		metric.WithDescription("Dispatches answered by the not-found handler"))
	add(err)
	r.dispatchDuration, err = meter.Float64Histogram("smartrouter_dispatch_duration_seconds",
		metric.WithDescription("Duration of whole dispatches"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(r.durationBuckets...))
	add(err)
	r.matchDuration, err = meter.Float64Histogram("smartrouter_match_duration_seconds",
		metric.WithDescription("Duration of route matching"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(r.matchBuckets...))
	add(err)

	return errors.Join(errs...)
}

// Handler returns the Prometheus scrape handler.
func (r *Recorder) Handler() (http.Handler, error) {
	if r.handler == nil {
		return nil, ErrNoPrometheus
	}
	if r.closed.Load() {
		return nil, ErrRecorderClosed
	}
	return r.handler, nil
}

// Provider returns the configured provider.
func (r *Recorder) Provider() Provider {
	return r.provider
}

// ForceFlush exports pending metrics of push-based providers.
func (r *Recorder) ForceFlush(ctx context.Context) error {
	if r.sdkProvider == nil {
		return nil
	}
	return r.sdkProvider.ForceFlush(ctx)
}

// Shutdown flushes and stops the provider owned by the recorder.
// A caller-supplied provider is left running.
func (r *Recorder) Shutdown(ctx context.Context) error {
	r.closed.Store(true)
	if r.sdkProvider == nil {
		return nil
	}
	if err := r.sdkProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("metrics shutdown: %w", err)
	}
	return nil
}
