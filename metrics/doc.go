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

// Package metrics records router activity with OpenTelemetry instruments.
//
// A Recorder implements router.Observer: attach it with router.WithObserver
// and every registration, strategy commitment and dispatch is counted.
//
//	recorder := metrics.MustNew(metrics.WithServiceName("smartrouterd"))
//	defer recorder.Shutdown(context.Background())
//
//	r := router.MustNew(router.WithObserver(recorder))
//	handler, _ := recorder.Handler() // Prometheus scrape endpoint
//
// # Providers
//
//   - Prometheus (default): metrics are pulled through Handler from a
//     registry owned by the Recorder
//   - Stdout: metrics are printed periodically, for development
//   - OTLP: metrics are pushed periodically to an OTLP/HTTP collector (WithOTLP)
//   - a caller-supplied metric.MeterProvider via WithMeterProvider
//
// The global OpenTelemetry meter provider is never modified, so several
// recorders can coexist in one process.
//
// # Instruments
//
//	smartrouter_routes_registered_total     counter    method
//	smartrouter_routes                      gauge      routes frozen at commit
//	smartrouter_strategy_info               gauge      strategy (value 1)
//	smartrouter_fast_path_rejections_total  counter
//	smartrouter_dispatches_total            counter    method, route, status_class, strategy
//	smartrouter_dispatch_errors_total       counter    method, route
//	smartrouter_not_found_total             counter    method
//	smartrouter_dispatch_duration_seconds   histogram  method, route
//	smartrouter_match_duration_seconds      histogram  strategy
//
// Route labels are patterns, never raw paths, so cardinality is bounded
// by the route set.
package metrics
