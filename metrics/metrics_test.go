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
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"rivaas.dev/smartrouter/router"
)

func ok(_ *router.Context, _ router.Next) (*router.Response, error) {
	return router.Text(http.StatusOK, "ok"), nil
}

func failing(_ *router.Context, _ router.Next) (*router.Response, error) {
	return nil, errors.New("boom")
}

// exercise drives a small router observed by rec.
func exercise(t *testing.T, rec *Recorder) {
	t.Helper()

	r := router.MustNew(router.WithObserver(rec))
	r.GET("/users/:id", ok)
	r.GET("/fail", failing)

	for _, path := range []string{"/users/1", "/users/2", "/missing"} {
		_, err := r.Dispatch(context.Background(), http.MethodGet, path)
		require.NoError(t, err)
	}
	_, err := r.Dispatch(context.Background(), http.MethodGet, "/fail")
	require.Error(t, err)
}

func scrape(t *testing.T, rec *Recorder) string {
	t.Helper()

	h, err := rec.Handler()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRecorder_Prometheus(t *testing.T) {
	t.Parallel()

	rec := MustNew(WithServiceName("test-svc"))
	t.Cleanup(func() { _ = rec.Shutdown(context.Background()) })
	assert.Equal(t, PrometheusProvider, rec.Provider())

	exercise(t, rec)
	out := scrape(t, rec)

	assert.Contains(t, out, "smartrouter_routes_registered_total")
	assert.Contains(t, out, "smartrouter_dispatches_total")
	assert.Contains(t, out, `route="/users/:id"`)
	assert.Contains(t, out, `status_class="2xx"`)
	assert.Contains(t, out, `status_class="error"`)
	assert.Contains(t, out, `strategy="fast"`)
	assert.Contains(t, out, "smartrouter_not_found_total")
	assert.Contains(t, out, "smartrouter_dispatch_errors_total")
	assert.Contains(t, out, "smartrouter_dispatch_duration_seconds_bucket")
	assert.Contains(t, out, "smartrouter_match_duration_seconds_bucket")
	assert.Contains(t, out, `service_name="test-svc"`)
	assert.NotContains(t, out, `route="/users/1"`, "raw paths must not become labels")
}

func TestRecorder_Prometheus_IsolatedRegistries(t *testing.T) {
	t.Parallel()

	first := MustNew()
	second := MustNew()
	t.Cleanup(func() {
		_ = first.Shutdown(context.Background())
		_ = second.Shutdown(context.Background())
	})

	exercise(t, first)

	assert.Contains(t, scrape(t, first), "smartrouter_dispatches_total")
	assert.NotContains(t, scrape(t, second), "smartrouter_dispatches_total")
}

// collect reads the metrics recorded through a manual reader.
func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()

	data, isSum := m.Data.(metricdata.Sum[int64])
	require.True(t, isSum, "metric %s is %T", m.Name, m.Data)
	var total int64
	for _, dp := range data.DataPoints {
		total += dp.Value
	}
	return total
}

func TestRecorder_CustomProvider(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	rec := MustNew(WithMeterProvider(mp))
	assert.Equal(t, CustomProvider, rec.Provider())

	_, err := rec.Handler()
	require.ErrorIs(t, err, ErrNoPrometheus)

	exercise(t, rec)
	got := collect(t, reader)

	assert.Equal(t, int64(2), sumOf(t, got["smartrouter_routes_registered_total"]))
	assert.Equal(t, int64(4), sumOf(t, got["smartrouter_dispatches_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["smartrouter_not_found_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["smartrouter_dispatch_errors_total"]))
	assert.NotContains(t, got, "smartrouter_fast_path_rejections_total", "counter is only exported once incremented")

	routes, isGauge := got["smartrouter_routes"].Data.(metricdata.Gauge[int64])
	require.True(t, isGauge)
	require.Len(t, routes.DataPoints, 1)
	assert.Equal(t, int64(2), routes.DataPoints[0].Value)

	hist, isHist := got["smartrouter_dispatch_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, isHist)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(4), count)

	// Shutdown leaves a caller-supplied provider running.
	require.NoError(t, rec.Shutdown(context.Background()))
	rec.OnRouteRegistered("get", "/late")
	assert.Equal(t, int64(3), sumOf(t, collect(t, reader)["smartrouter_routes_registered_total"]))
}

func TestRecorder_FastPathRejection(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	rec := MustNew(WithMeterProvider(mp))
	rec.OnStrategyCommitted(router.StrategyFallback, 12, errors.New("ambiguous"))

	got := collect(t, reader)
	assert.Equal(t, int64(1), sumOf(t, got["smartrouter_fast_path_rejections_total"]))

	info, isGauge := got["smartrouter_strategy_info"].Data.(metricdata.Gauge[int64])
	require.True(t, isGauge)
	require.Len(t, info.DataPoints, 1)
	strategy, found := info.DataPoints[0].Attributes.Value("strategy")
	require.True(t, found)
	assert.Equal(t, "fallback", strategy.AsString())
}

func TestRecorder_Stdout(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rec := MustNew(WithStdout(&buf), WithExportInterval(time.Hour))
	assert.Equal(t, StdoutProvider, rec.Provider())

	_, err := rec.Handler()
	require.ErrorIs(t, err, ErrNoPrometheus)

	exercise(t, rec)
	require.NoError(t, rec.ForceFlush(context.Background()))
	require.NoError(t, rec.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), "smartrouter_dispatches_total")
}

func TestRecorder_OTLP(t *testing.T) {
	t.Parallel()

	var exports atomic.Int32
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/v1/metrics" {
			exports.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(collector.Close)

	rec := MustNew(WithOTLP(collector.URL+"/ignored/path"), WithExportInterval(time.Hour))
	assert.Equal(t, OTLPProvider, rec.Provider())

	exercise(t, rec)
	require.NoError(t, rec.ForceFlush(context.Background()))
	require.NoError(t, rec.Shutdown(context.Background()))
	assert.Positive(t, exports.Load())
}

func TestRecorder_HandlerAfterShutdown(t *testing.T) {
	t.Parallel()

	rec := MustNew()
	_, err := rec.Handler()
	require.NoError(t, err)

	require.NoError(t, rec.Shutdown(context.Background()))
	_, err = rec.Handler()
	require.ErrorIs(t, err, ErrRecorderClosed)
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []Option
	}{
		{"empty service name", []Option{WithServiceName("")}},
		{"unsorted buckets", []Option{WithDurationBuckets(1, 0.5)}},
		{"duplicate match buckets", []Option{WithMatchBuckets(0.1, 0.1)}},
		{"zero export interval", []Option{WithStdout(io.Discard), WithExportInterval(0)}},
		{"zero otlp export interval", []Option{WithOTLP("http://localhost:4318"), WithExportInterval(0)}},
		{"custom without provider", []Option{WithProvider(CustomProvider)}},
		{"unknown provider", []Option{WithProvider("statsd")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec, err := New(tt.opts...)
			require.Error(t, err)
			assert.Nil(t, rec)
		})
	}

	assert.Panics(t, func() { MustNew(WithServiceName("")) })
}

func TestStatusClass(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		failed bool
		want   string
	}{
		{200, false, "2xx"},
		{204, false, "2xx"},
		{301, false, "3xx"},
		{404, false, "4xx"},
		{503, false, "5xx"},
		{101, false, "1xx"},
		{0, false, "unknown"},
		{0, true, "error"},
		{200, true, "error"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusClass(tt.status, tt.failed), "status %d failed %v", tt.status, tt.failed)
	}
}
