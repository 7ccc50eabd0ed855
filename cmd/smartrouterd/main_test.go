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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/smartrouter/config"
)

const testSettings = `
logging:
  level: debug
routes:
  - method: GET
    pattern: /healthz
    body: ok
  - method: get
    pattern: /version
    json: {version: "1.2.3"}
    headers:
      Cache-Control: no-store
  - method: POST
    pattern: /items
    status: 201
    body: created
mounts:
  - base: /api/v1
    routes:
      - method: GET
        pattern: "/users/:id{[0-9]+}"
        body: user
      - method: GET
        pattern: /users/me
        body: me
`

func newTestDaemon(t *testing.T, extra string) (*daemon, *bytes.Buffer) {
	t.Helper()

	settings, err := config.New(
		config.WithContent([]byte(testSettings)),
		config.WithContent([]byte(extra)),
	).Load(context.Background())
	require.NoError(t, err)

	var logs bytes.Buffer
	d, err := newDaemon(settings, &logs, io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { d.shutdown(context.Background()) })
	return d, &logs
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, string) {
	t.Helper()

	resp, err := srv.Client().Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestDaemon_Routes(t *testing.T) {
	t.Parallel()

	d, logs := newTestDaemon(t, "{}")
	srv := httptest.NewServer(d.server().Handler)
	t.Cleanup(srv.Close)

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/healthz", http.StatusOK, "ok"},
		{"/version", http.StatusOK, `{"version":"1.2.3"}`},
		{"/api/v1/users/42", http.StatusOK, "user"},
		{"/api/v1/users/me", http.StatusOK, "me"},
		{"/api/v1/users/abc", http.StatusNotFound, "Not Found"},
		{"/missing", http.StatusNotFound, "Not Found"},
	}
	for _, tt := range tests {
		resp, body := get(t, srv, tt.path)
		assert.Equal(t, tt.status, resp.StatusCode, tt.path)
		assert.Equal(t, tt.body, body, tt.path)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"), tt.path)
	}

	resp, _ := get(t, srv, "/version")
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	post, err := srv.Client().Post(srv.URL+"/items", "text/plain", nil)
	require.NoError(t, err)
	post.Body.Close()
	assert.Equal(t, http.StatusCreated, post.StatusCode)

	assert.Contains(t, logs.String(), `"route":"/api/v1/users/:id{[0-9]+}"`)
}

func TestDaemon_Metrics(t *testing.T) {
	t.Parallel()

	d, _ := newTestDaemon(t, "{}")
	srv := httptest.NewServer(d.server().Handler)
	t.Cleanup(srv.Close)

	get(t, srv, "/healthz")
	resp, body := get(t, srv, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "smartrouter_dispatches_total")
	assert.Contains(t, body, `route="/healthz"`)
	assert.Contains(t, body, "smartrouter_strategy_info")
}

func TestDaemon_MetricsDisabled(t *testing.T) {
	t.Parallel()

	d, _ := newTestDaemon(t, "metrics:\n  enabled: false\n")
	assert.Nil(t, d.metrics)

	srv := httptest.NewServer(d.server().Handler)
	t.Cleanup(srv.Close)

	resp, _ := get(t, srv, "/metrics")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDaemon_MetricsEndpointAfterShutdown(t *testing.T) {
	t.Parallel()

	d, logs := newTestDaemon(t, "{}")
	d.shutdown(context.Background())

	srv := d.server()
	assert.Same(t, http.Handler(d.router), srv.Handler)
	assert.Contains(t, logs.String(), "metrics endpoint disabled")
}

func TestDaemon_OTLP(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	paths := map[string]int{}
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		mu.Lock()
		paths[req.URL.Path]++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(collector.Close)

	d, _ := newTestDaemon(t, fmt.Sprintf(
		"metrics:\n  provider: otlp\n  endpoint: %[1]s\ntracing:\n  enabled: true\n  provider: otlp\n  endpoint: %[1]s\n",
		collector.URL))

	srv := httptest.NewServer(d.server().Handler)
	resp, _ := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = get(t, srv, "/metrics")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "no scrape endpoint without prometheus")
	srv.Close()

	d.shutdown(context.Background())

	mu.Lock()
	defer mu.Unlock()
	assert.Positive(t, paths["/v1/metrics"])
	assert.Positive(t, paths["/v1/traces"])
}

func TestDaemon_BasicAuth(t *testing.T) {
	t.Parallel()

	d, _ := newTestDaemon(t, "middleware:\n  basic_auth:\n    users:\n      ada: lovelace\n")
	srv := httptest.NewServer(d.server().Handler)
	t.Cleanup(srv.Close)

	resp, _ := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("WWW-Authenticate"))

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.SetBasicAuth("ada", "lovelace")
	authed, err := srv.Client().Do(req)
	require.NoError(t, err)
	authed.Body.Close()
	assert.Equal(t, http.StatusOK, authed.StatusCode)
}

func TestDaemon_Tracing(t *testing.T) {
	t.Parallel()

	settings, err := config.New(
		config.WithContent([]byte(testSettings)),
		config.WithContent([]byte("tracing:\n  enabled: true\n")),
	).Load(context.Background())
	require.NoError(t, err)

	var logs, spans bytes.Buffer
	d, err := newDaemon(settings, &logs, &spans)
	require.NoError(t, err)
	require.NotNil(t, d.tracer)

	srv := httptest.NewServer(d.server().Handler)
	get(t, srv, "/api/v1/users/7")
	srv.Close()
	d.shutdown(context.Background())

	assert.Contains(t, spans.String(), "GET /api/v1/users/:id{[0-9]+}")

	var entry map[string]any
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		if strings.Contains(line, `"msg":"access"`) {
			require.NoError(t, json.Unmarshal([]byte(line), &entry))
		}
	}
	require.NotNil(t, entry)
	assert.NotEmpty(t, entry["trace_id"])
}

func TestRenderRoutes(t *testing.T) {
	t.Parallel()

	d, _ := newTestDaemon(t, "{}")
	require.NoError(t, d.router.Warmup())

	var buf bytes.Buffer
	renderRoutes(&buf, d.router)
	out := buf.String()

	assert.Contains(t, out, "METHOD")
	assert.Contains(t, out, "/api/v1/users/:id{[0-9]+}")
	assert.Contains(t, out, "catch-all")
	assert.Contains(t, out, "strategy fast")
}

func TestRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "smartrouterd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSettings), 0o600))

	t.Run("routes", func(t *testing.T) {
		t.Parallel()

		var stdout, stderr bytes.Buffer
		err := run(context.Background(), []string{"-config", path, "-routes"}, &stdout, &stderr)
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "/healthz")
	})

	t.Run("bad flag", func(t *testing.T) {
		t.Parallel()

		var stdout, stderr bytes.Buffer
		err := run(context.Background(), []string{"-bogus"}, &stdout, &stderr)
		require.Error(t, err)
		assert.Contains(t, stderr.String(), "bogus")
	})

	t.Run("missing config", func(t *testing.T) {
		t.Parallel()

		err := run(context.Background(), []string{"-config", filepath.Join(dir, "nope.yaml")}, io.Discard, io.Discard)
		require.Error(t, err)
	})

	t.Run("serve until cancelled", func(t *testing.T) {
		t.Parallel()

		cfg := filepath.Join(dir, "serve.yaml")
		require.NoError(t, os.WriteFile(cfg, []byte("server:\n  addr: 127.0.0.1:0\n  shutdown_timeout: 1s\n"), 0o600))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- run(ctx, []string{"-config", cfg}, io.Discard, io.Discard) }()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
	})
}
