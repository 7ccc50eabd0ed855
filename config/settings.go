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
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"rivaas.dev/smartrouter/logging"
	"rivaas.dev/smartrouter/router"
)

// DefaultYAML holds the built-in defaults. Every setting appears here, so
// environment overrides can reach it.
const DefaultYAML = `
server:
  addr: ":8080"
  read_header_timeout: 5s
  read_timeout: 15s
  write_timeout: 15s
  idle_timeout: 60s
  shutdown_timeout: 10s
  h2c: false
router:
  strategy: auto
  warmup: true
logging:
  format: json
  level: info
  service: smartrouterd
  source: false
metrics:
  enabled: true
  provider: prometheus
  path: /metrics
  endpoint: ""
tracing:
  enabled: false
  provider: stdout
  endpoint: ""
  sample_rate: 1.0
middleware:
  recovery: true
  request_id: true
  timeout: 0s
  access_log:
    enabled: true
    exclude_paths: []
    sample_rate: 1.0
  basic_auth:
    realm: Restricted
    users: {}
routes: []
mounts: []
`

// Settings is the complete daemon configuration.
type Settings struct {
	Server     ServerSettings     `config:"server"`
	Router     RouterSettings     `config:"router"`
	Logging    LoggingSettings    `config:"logging"`
	Metrics    MetricsSettings    `config:"metrics"`
	Tracing    TracingSettings    `config:"tracing"`
	Middleware MiddlewareSettings `config:"middleware"`
	Routes     []RouteSettings    `config:"routes"`
	Mounts     []MountSettings    `config:"mounts"`
}

// ServerSettings configure the HTTP listener.
type ServerSettings struct {
	Addr              string        `config:"addr"`
	ReadHeaderTimeout time.Duration `config:"read_header_timeout"`
	ReadTimeout       time.Duration `config:"read_timeout"`
	WriteTimeout      time.Duration `config:"write_timeout"`
	IdleTimeout       time.Duration `config:"idle_timeout"`
	ShutdownTimeout   time.Duration `config:"shutdown_timeout"`
	H2C               bool          `config:"h2c"`
}

// RouterSettings configure matching.
type RouterSettings struct {
	// Strategy is auto, fast or fallback.
	Strategy string `config:"strategy"`
	// Warmup commits the strategy before serving.
	Warmup bool `config:"warmup"`
}

// LoggingSettings configure the process logger.
type LoggingSettings struct {
	Format  string `config:"format"` // json, text or console
	Level   string `config:"level"`
	Service string `config:"service"`
	Source  bool   `config:"source"`
}

// MetricsSettings configure the metrics recorder.
type MetricsSettings struct {
	Enabled  bool   `config:"enabled"`
	Provider string `config:"provider"` // prometheus, stdout or otlp
	Path     string `config:"path"`
	// Endpoint is the OTLP/HTTP collector URL for the otlp provider.
	Endpoint string `config:"endpoint"`
}

// TracingSettings configure span export.
type TracingSettings struct {
	Enabled    bool    `config:"enabled"`
	Provider   string  `config:"provider"` // stdout, otlp or noop
	Endpoint   string  `config:"endpoint"` // OTLP/HTTP collector URL
	SampleRate float64 `config:"sample_rate"`
}

// MiddlewareSettings select the global middleware.
type MiddlewareSettings struct {
	Recovery  bool              `config:"recovery"`
	RequestID bool              `config:"request_id"`
	Timeout   time.Duration     `config:"timeout"` // 0 disables
	AccessLog AccessLogSettings `config:"access_log"`
	BasicAuth BasicAuthSettings `config:"basic_auth"`
}

// AccessLogSettings configure request logging.
type AccessLogSettings struct {
	Enabled      bool     `config:"enabled"`
	ExcludePaths []string `config:"exclude_paths"`
	SampleRate   float64  `config:"sample_rate"`
}

// BasicAuthSettings protect every route when Users is not empty.
type BasicAuthSettings struct {
	Realm string            `config:"realm"`
	Users map[string]string `config:"users"`
}

// RouteSettings describe a static responder. JSON, when set, is encoded
// as the body and wins over Body.
type RouteSettings struct {
	Method  string            `config:"method"`
	Pattern string            `config:"pattern"`
	Status  int               `config:"status"`
	Body    string            `config:"body"`
	JSON    any               `config:"json"`
	Headers map[string]string `config:"headers"`
}

// MountSettings group routes under a base path.
type MountSettings struct {
	Base   string          `config:"base"`
	Routes []RouteSettings `config:"routes"`
}

var strategies = map[string]router.Strategy{
	"auto":     router.StrategyUndecided,
	"fast":     router.StrategyFast,
	"fallback": router.StrategyFallback,
}

// RouterStrategy returns the router strategy named by Strategy.
func (s RouterSettings) RouterStrategy() (router.Strategy, error) {
	st, ok := strategies[strings.ToLower(s.Strategy)]
	if !ok {
		return router.StrategyUndecided, fmt.Errorf("unknown strategy %q", s.Strategy)
	}
	return st, nil
}

// Validate reports every invalid setting.
func (s *Settings) Validate() error {
	var errs []error
	field := func(name string, err error) {
		errs = append(errs, NewFieldError("settings", name, "validate", err))
	}

	if s.Server.Addr == "" {
		field("server.addr", errors.New("must not be empty"))
	}
	for name, d := range map[string]time.Duration{
		"server.read_header_timeout": s.Server.ReadHeaderTimeout,
		"server.read_timeout":        s.Server.ReadTimeout,
		"server.write_timeout":       s.Server.WriteTimeout,
		"server.idle_timeout":        s.Server.IdleTimeout,
		"server.shutdown_timeout":    s.Server.ShutdownTimeout,
		"middleware.timeout":         s.Middleware.Timeout,
	} {
		if d < 0 {
			field(name, fmt.Errorf("must not be negative, got %s", d))
		}
	}
	if _, err := s.Router.RouterStrategy(); err != nil {
		field("router.strategy", err)
	}
	switch logging.HandlerType(s.Logging.Format) {
	case logging.JSONHandler, logging.TextHandler, logging.ConsoleHandler:
	default:
		field("logging.format", fmt.Errorf("unknown format %q", s.Logging.Format))
	}
	if _, err := logging.ParseLevel(s.Logging.Level); err != nil {
		field("logging.level", err)
	}
	if s.Metrics.Enabled {
		switch s.Metrics.Provider {
		case "prometheus", "stdout", "otlp":
		default:
			field("metrics.provider", fmt.Errorf("unknown provider %q", s.Metrics.Provider))
		}
		if s.Metrics.Provider == "prometheus" && !strings.HasPrefix(s.Metrics.Path, "/") {
			field("metrics.path", fmt.Errorf("must start with /, got %q", s.Metrics.Path))
		}
	}
	if s.Tracing.Enabled {
		switch s.Tracing.Provider {
		case "stdout", "otlp", "noop":
		default:
			field("tracing.provider", fmt.Errorf("unknown provider %q", s.Tracing.Provider))
		}
	}
	for name, rate := range map[string]float64{
		"tracing.sample_rate":               s.Tracing.SampleRate,
		"middleware.access_log.sample_rate": s.Middleware.AccessLog.SampleRate,
	} {
		if rate < 0 || rate > 1 {
			field(name, fmt.Errorf("must be between 0 and 1, got %v", rate))
		}
	}

	for i, rt := range s.Routes {
		errs = append(errs, rt.validate(fmt.Sprintf("routes[%d]", i))...)
	}
	for i, m := range s.Mounts {
		if !strings.HasPrefix(m.Base, "/") {
			field(fmt.Sprintf("mounts[%d].base", i), fmt.Errorf("must start with /, got %q", m.Base))
		}
		for j, rt := range m.Routes {
			errs = append(errs, rt.validate(fmt.Sprintf("mounts[%d].routes[%d]", i, j))...)
		}
	}
	return errors.Join(errs...)
}

func (rt RouteSettings) validate(prefix string) []error {
	var errs []error
	if rt.Method == "" {
		errs = append(errs, NewFieldError("settings", prefix+".method", "validate", errors.New("must not be empty")))
	}
	if rt.Pattern == "" {
		errs = append(errs, NewFieldError("settings", prefix+".pattern", "validate", errors.New("must not be empty")))
	}
	if rt.Status != 0 && (rt.Status < 100 || rt.Status > 599) {
		errs = append(errs, NewFieldError("settings", prefix+".status", "validate",
			fmt.Errorf("must be a valid HTTP status, got %d", rt.Status)))
	}
	return errs
}

// StatusOrDefault returns Status, or 200 when unset.
func (rt RouteSettings) StatusOrDefault() int {
	if rt.Status == 0 {
		return http.StatusOK
	}
	return rt.Status
}
