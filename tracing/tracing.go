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

package tracing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	// DefaultServiceName is used when WithServiceName is not given.
	DefaultServiceName = "smartrouter"

	// DefaultServiceVersion is used when WithServiceVersion is not given.
	DefaultServiceVersion = "dev"

	instrumentationName = "rivaas.dev/smartrouter/tracing"
)

// Provider represents the available tracing providers.
type Provider string

const (
	// NoopProvider records nothing (default).
	NoopProvider Provider = "noop"
	// StdoutProvider prints finished spans (development/testing).
	StdoutProvider Provider = "stdout"
	// OTLPProvider exports spans to an OTLP/HTTP collector.
	OTLPProvider Provider = "otlp"
	// CustomProvider uses a TracerProvider supplied by the caller.
	CustomProvider Provider = "custom"
)

// Tracer holds the tracer provider and sampling settings shared by all
// middleware built from it. It is immutable after New and safe for
// concurrent use.
type Tracer struct {
	provider       Provider
	tracerProvider trace.TracerProvider
	sdkProvider    *sdktrace.TracerProvider // nil unless owned
	tracer         trace.Tracer
	propagator     propagation.TextMapPropagator
	stdoutWriter   io.Writer
	otlpEndpoint   string
	registerGlobal bool
	logger         *slog.Logger

	serviceName    string
	serviceVersion string

	sampleRate      float64
	threshold       uint64
	samplingCounter atomic.Uint64
}

// Option configures a Tracer.
type Option func(*Tracer)

// WithServiceName sets the service.name resource attribute.
func WithServiceName(name string) Option {
	return func(t *Tracer) {
		t.serviceName = name
	}
}

// WithServiceVersion sets the service.version resource attribute.
func WithServiceVersion(version string) Option {
	return func(t *Tracer) {
		t.serviceVersion = version
	}
}

// WithProvider selects the provider.
func WithProvider(p Provider) Option {
	return func(t *Tracer) {
		t.provider = p
	}
}

// WithStdout prints finished spans to w, or os.Stdout when w is nil.
func WithStdout(w io.Writer) Option {
	return func(t *Tracer) {
		t.provider = StdoutProvider
		t.stdoutWriter = w
	}
}

// WithOTLP exports spans over OTLP/HTTP to endpoint, for example
// "http://localhost:4318". An http:// endpoint disables TLS. An empty
// endpoint leaves the exporter defaults and OTEL_EXPORTER_OTLP_* in effect.
func WithOTLP(endpoint string) Option {
	return func(t *Tracer) {
		t.provider = OTLPProvider
		t.otlpEndpoint = endpoint
	}
}

// WithTracerProvider records into a caller-managed provider. Shutdown
// does not stop it.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(t *Tracer) {
		t.provider = CustomProvider
		t.tracerProvider = tp
	}
}

// WithGlobalTracerProvider also installs the provider and propagator as
// the OpenTelemetry globals.
func WithGlobalTracerProvider() Option {
	return func(t *Tracer) {
		t.registerGlobal = true
	}
}

// WithPropagator overrides the W3C trace context and baggage propagator.
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(t *Tracer) {
		t.propagator = p
	}
}

// WithSampleRate traces the given fraction of requests, 0.0 to 1.0.
func WithSampleRate(rate float64) Option {
	return func(t *Tracer) {
		t.sampleRate = rate
	}
}

// WithLogger sets the logger for internal events.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New creates a Tracer.
func New(opts ...Option) (*Tracer, error) {
	t := &Tracer{
		provider:       NoopProvider,
		logger:         slog.New(slog.DiscardHandler),
		serviceName:    DefaultServiceName,
		serviceVersion: DefaultServiceVersion,
		sampleRate:     1.0,
	}
	for _, opt := range opts {
		opt(t)
	}

	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("invalid tracing configuration: %w", err)
	}
	if err := t.initProvider(); err != nil {
		return nil, err
	}

	if t.propagator == nil {
		t.propagator = propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		)
	}
	t.tracer = t.tracerProvider.Tracer(instrumentationName)
	if t.sampleRate < 1 {
		t.threshold = uint64(t.sampleRate * math.MaxUint64)
	}

	if t.registerGlobal {
		otel.SetTracerProvider(t.tracerProvider)
		otel.SetTextMapPropagator(t.propagator)
	}
	t.logger.Info("tracing initialized", "provider", string(t.provider), "service", t.serviceName)
	return t, nil
}

// MustNew creates a Tracer and panics on error.
func MustNew(opts ...Option) *Tracer {
	t, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("tracing.MustNew: %v", err))
	}
	return t
}

func (t *Tracer) validate() error {
	var errs []error
	if t.serviceName == "" {
		errs = append(errs, errors.New("service name must not be empty"))
	}
	if t.sampleRate < 0 || t.sampleRate > 1 || math.IsNaN(t.sampleRate) {
		errs = append(errs, fmt.Errorf("sample rate must be between 0.0 and 1.0, got %v", t.sampleRate))
	}
	if t.provider == CustomProvider && t.tracerProvider == nil {
		errs = append(errs, errors.New("custom provider requires a tracer provider"))
	}
	return errors.Join(errs...)
}

func (t *Tracer) initProvider() error {
	switch t.provider {
	case NoopProvider:
		t.tracerProvider = noop.NewTracerProvider()

	case StdoutProvider:
		var exporterOpts []stdouttrace.Option
		if t.stdoutWriter != nil {
			exporterOpts = append(exporterOpts, stdouttrace.WithWriter(t.stdoutWriter))
		}
		exporter, err := stdouttrace.New(exporterOpts...)
		if err != nil {
			return fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		t.useExporter(exporter)

	case OTLPProvider:
		exporter, err := otlptracehttp.New(context.Background(), otlpOptions(t.otlpEndpoint)...)
		if err != nil {
			return fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
		}
		t.useExporter(exporter)

	case CustomProvider:
		t.logger.Debug("using caller-managed tracer provider")

	default:
		return fmt.Errorf("unsupported tracing provider: %s", t.provider)
	}
	return nil
}

func (t *Tracer) useExporter(exporter sdktrace.SpanExporter) {
	t.sdkProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", t.serviceName),
			attribute.String("service.version", t.serviceVersion),
		)),
	)
	t.tracerProvider = t.sdkProvider
}

// otlpOptions turns a collector URL into exporter options. The scheme
// selects TLS and any path is dropped.
func otlpOptions(endpoint string) []otlptracehttp.Option {
	if endpoint == "" {
		return nil
	}
	host, insecure := strings.CutPrefix(endpoint, "http://")
	host = strings.TrimPrefix(host, "https://")
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(host)}
	if insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return opts
}

// Enabled reports whether spans are recorded at all.
func (t *Tracer) Enabled() bool {
	return t.provider != NoopProvider && t.sampleRate > 0
}

// ServiceName returns the configured service name.
func (t *Tracer) ServiceName() string {
	return t.serviceName
}

// Provider returns the configured provider.
func (t *Tracer) Provider() Provider {
	return t.provider
}

// Tracer returns the underlying OpenTelemetry tracer.
func (t *Tracer) Tracer() trace.Tracer {
	return t.tracer
}

// ForceFlush exports buffered spans of an owned provider.
func (t *Tracer) ForceFlush(ctx context.Context) error {
	if t.sdkProvider == nil {
		return nil
	}
	return t.sdkProvider.ForceFlush(ctx)
}

// Shutdown flushes and stops an owned provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.sdkProvider == nil {
		return nil
	}
	if err := t.sdkProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("tracing shutdown: %w", err)
	}
	return nil
}

// 2^64 divided by the golden ratio; consecutive counters land evenly
// across the uint64 range.
const samplingMultiplier = 0x9E3779B97F4A7C15

// sampled makes a deterministic head sampling decision from a request
// counter spread by a multiplicative hash.
func (t *Tracer) sampled() bool {
	if t.sampleRate >= 1 {
		return true
	}
	if t.sampleRate <= 0 {
		return false
	}
	return t.samplingCounter.Add(1)*samplingMultiplier <= t.threshold
}
