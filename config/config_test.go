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

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/smartrouter/router"
)

func environ(kv ...string) Option {
	return WithEnviron(func() []string { return kv })
}

func TestDefault(t *testing.T) {
	t.Parallel()

	s := Default()
	assert.Equal(t, ":8080", s.Server.Addr)
	assert.Equal(t, 5*time.Second, s.Server.ReadHeaderTimeout)
	assert.Equal(t, 10*time.Second, s.Server.ShutdownTimeout)
	assert.Equal(t, "auto", s.Router.Strategy)
	assert.True(t, s.Router.Warmup)
	assert.Equal(t, "json", s.Logging.Format)
	assert.True(t, s.Metrics.Enabled)
	assert.Equal(t, "/metrics", s.Metrics.Path)
	assert.False(t, s.Tracing.Enabled)
	assert.InDelta(t, 1.0, s.Middleware.AccessLog.SampleRate, 0)
	assert.Zero(t, s.Middleware.Timeout)
	assert.Empty(t, s.Routes)
	assert.Empty(t, s.Mounts)

	st, err := s.Router.RouterStrategy()
	require.NoError(t, err)
	assert.Equal(t, router.StrategyUndecided, st)
}

func TestLoad_Layers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "smartrouterd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
  write_timeout: 30s
router:
  strategy: fallback
middleware:
  basic_auth:
    users:
      ada: lovelace
routes:
  - method: GET
    pattern: /healthz
    body: ok
  - method: GET
    pattern: /version
    json:
      version: "1.0"
      tags: [a, b]
    headers:
      Cache-Control: no-store
mounts:
  - base: /api/v1
    routes:
      - {method: GET, pattern: "/users/:id", status: 200, body: user}
`), 0o600))

	s, err := New(
		WithFile(path),
		WithContent([]byte("logging:\n  level: debug\n")),
	).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ":9090", s.Server.Addr)
	assert.Equal(t, 30*time.Second, s.Server.WriteTimeout)
	assert.Equal(t, 15*time.Second, s.Server.ReadTimeout, "untouched defaults survive the merge")
	assert.Equal(t, "fallback", s.Router.Strategy)
	assert.Equal(t, "debug", s.Logging.Level)
	assert.Equal(t, "Restricted", s.Middleware.BasicAuth.Realm)
	assert.Equal(t, map[string]string{"ada": "lovelace"}, s.Middleware.BasicAuth.Users)

	require.Len(t, s.Routes, 2)
	assert.Equal(t, "/healthz", s.Routes[0].Pattern)
	assert.Equal(t, 200, s.Routes[0].StatusOrDefault())
	assert.Equal(t, "no-store", s.Routes[1].Headers["Cache-Control"])
	body, isMap := s.Routes[1].JSON.(map[string]any)
	require.True(t, isMap, "%T", s.Routes[1].JSON)
	assert.Equal(t, "1.0", body["version"])

	require.Len(t, s.Mounts, 1)
	assert.Equal(t, "/api/v1", s.Mounts[0].Base)
	require.Len(t, s.Mounts[0].Routes, 1)
	assert.Equal(t, "user", s.Mounts[0].Routes[0].Body)
}

func TestLoad_Env(t *testing.T) {
	t.Parallel()

	s, err := New(
		WithContent([]byte("server:\n  addr: \":9090\"\n")),
		WithEnv("SMARTROUTER_"),
		environ(
			"SMARTROUTER_SERVER_ADDR=:7070",
			"SMARTROUTER_SERVER_READ_HEADER_TIMEOUT=2s",
			"SMARTROUTER_SERVER_H2C=true",
			"SMARTROUTER_TRACING_ENABLED=1",
			"SMARTROUTER_TRACING_SAMPLE_RATE=0.25",
			"SMARTROUTER_TRACING_PROVIDER=otlp",
			"SMARTROUTER_TRACING_ENDPOINT=http://collector:4318",
			"SMARTROUTER_MIDDLEWARE_ACCESS_LOG_EXCLUDE_PATHS=/healthz, /metrics",
			"SMARTROUTER_UNKNOWN_KEY=ignored",
			"OTHER_SERVER_ADDR=:1",
			"malformed",
		),
	).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ":7070", s.Server.Addr)
	assert.Equal(t, 2*time.Second, s.Server.ReadHeaderTimeout)
	assert.True(t, s.Server.H2C)
	assert.True(t, s.Tracing.Enabled)
	assert.InDelta(t, 0.25, s.Tracing.SampleRate, 1e-9)
	assert.Equal(t, "otlp", s.Tracing.Provider)
	assert.Equal(t, "http://collector:4318", s.Tracing.Endpoint)
	assert.Equal(t, []string{"/healthz", "/metrics"}, s.Middleware.AccessLog.ExcludePaths)
}

func TestLoad_EnvConversionError(t *testing.T) {
	t.Parallel()

	_, err := New(WithEnv("SR_"), environ("SR_SERVER_H2C=maybe")).Load(context.Background())
	require.Error(t, err)

	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "env", cfgErr.Source)
	assert.Equal(t, "server.h2c", cfgErr.Field)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		opts   []Option
		source string
		field  string
	}{
		{"missing file", []Option{WithFile("/nonexistent/smartrouterd.yaml")}, "file[/nonexistent/smartrouterd.yaml]", ""},
		{"bad yaml", []Option{WithContent([]byte("server: [unclosed"))}, "content[0]", ""},
		{"unknown key", []Option{WithContent([]byte("server:\n  port: 80\n"))}, "binding", ""},
		{"bad duration", []Option{WithContent([]byte("server:\n  read_timeout: soon\n"))}, "binding", ""},
		{"bad strategy", []Option{WithContent([]byte("router:\n  strategy: fastest\n"))}, "settings", "router.strategy"},
		{"bad level", []Option{WithContent([]byte("logging:\n  level: loud\n"))}, "settings", "logging.level"},
		{"bad format", []Option{WithContent([]byte("logging:\n  format: xml\n"))}, "settings", "logging.format"},
		{"bad metrics provider", []Option{WithContent([]byte("metrics:\n  provider: statsd\n"))}, "settings", "metrics.provider"},
		{"bad tracing provider", []Option{WithContent([]byte("tracing:\n  enabled: true\n  provider: jaeger\n"))}, "settings", "tracing.provider"},
		{"bad sample rate", []Option{WithContent([]byte("tracing:\n  sample_rate: 2\n"))}, "settings", "tracing.sample_rate"},
		{"negative timeout", []Option{WithContent([]byte("middleware:\n  timeout: -1s\n"))}, "settings", "middleware.timeout"},
		{"route without pattern", []Option{WithContent([]byte("routes:\n  - method: GET\n"))}, "settings", "routes[0].pattern"},
		{"bad status", []Option{WithContent([]byte("routes:\n  - {method: GET, pattern: /, status: 42}\n"))}, "settings", "routes[0].status"},
		{"relative mount", []Option{WithContent([]byte("mounts:\n  - base: api\n"))}, "settings", "mounts[0].base"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, err := New(tt.opts...).Load(context.Background())
			require.Error(t, err)
			assert.Nil(t, s)

			var cfgErr *Error
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.source, cfgErr.Source)
			if tt.field != "" {
				assert.Equal(t, tt.field, cfgErr.Field)
			}
		})
	}
}

func TestLoad_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(WithContent([]byte("{}"))).Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	values := map[string]any{
		"server": map[string]any{"read_timeout": "1s", "read": "x"},
		"a_b":    map[string]any{"c": 1},
	}

	tests := []struct {
		parts []string
		want  []string
		ok    bool
	}{
		{[]string{"server", "read", "timeout"}, []string{"server", "read_timeout"}, true},
		{[]string{"server", "read"}, []string{"server", "read"}, true},
		{[]string{"a", "b", "c"}, []string{"a_b", "c"}, true},
		{[]string{"server"}, nil, false},
		{[]string{"missing"}, nil, false},
	}

	for _, tt := range tests {
		path, _, ok := resolve(values, tt.parts)
		assert.Equal(t, tt.ok, ok, tt.parts)
		assert.Equal(t, tt.want, path, tt.parts)
	}
}

func TestError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := NewFieldError("settings", "server.addr", "validate", cause)
	assert.Equal(t, "config error in settings.server.addr during validate: boom", err.Error())
	require.ErrorIs(t, err, cause)
	assert.Equal(t, "config error in env during convert: boom", NewError("env", "convert", cause).Error())
}
