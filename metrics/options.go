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
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Option configures a Recorder.
type Option func(*Recorder)

// WithProvider selects the metrics provider.
func WithProvider(p Provider) Option {
	return func(r *Recorder) {
		r.provider = p
	}
}

// WithStdout selects the stdout provider writing to w. A nil writer
// means os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(r *Recorder) {
		r.provider = StdoutProvider
		r.stdoutWriter = w
	}
}

// WithOTLP pushes metrics over OTLP/HTTP to endpoint, for example
// "http://localhost:4318". An http:// endpoint disables TLS.
func WithOTLP(endpoint string) Option {
	return func(r *Recorder) {
		r.provider = OTLPProvider
		r.otlpEndpoint = endpoint
	}
}

// WithMeterProvider records into a caller-managed provider. Shutdown
// does not stop it.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(r *Recorder) {
		r.provider = CustomProvider
		r.meterProvider = mp
	}
}

// WithExportInterval sets how often the stdout and OTLP providers export.
func WithExportInterval(d time.Duration) Option {
	return func(r *Recorder) {
		r.exportInterval = d
	}
}

// WithServiceName sets the service.name attribute.
func WithServiceName(name string) Option {
	return func(r *Recorder) {
		r.serviceName = name
	}
}

// WithServiceVersion sets the service.version attribute.
func WithServiceVersion(version string) Option {
	return func(r *Recorder) {
		r.serviceVersion = version
	}
}

// WithDurationBuckets overrides the dispatch duration buckets (seconds).
func WithDurationBuckets(buckets ...float64) Option {
	return func(r *Recorder) {
		r.durationBuckets = buckets
	}
}

// WithMatchBuckets overrides the match duration buckets (seconds).
func WithMatchBuckets(buckets ...float64) Option {
	return func(r *Recorder) {
		r.matchBuckets = buckets
	}
}

// WithLogger sets the logger for internal events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}
