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
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"rivaas.dev/smartrouter/router"
)

var _ router.Observer = (*Recorder)(nil)

// OnRouteRegistered counts an accepted registration.
func (r *Recorder) OnRouteRegistered(method, pattern string) {
	r.routesRegistered.Add(context.Background(), 1, metric.WithAttributes(
		append(r.serviceAttrs, attribute.String("method", strings.ToUpper(method)))...,
	))
}

// OnStrategyCommitted records the committed strategy and route count.
func (r *Recorder) OnStrategyCommitted(strategy router.Strategy, routes int, cause error) {
	ctx := context.Background()
	r.routes.Record(ctx, int64(routes), metric.WithAttributes(r.serviceAttrs...))
	r.strategyInfo.Record(ctx, 1, metric.WithAttributes(
		append(r.serviceAttrs, attribute.String("strategy", strategy.String()))...,
	))
	if cause != nil {
		r.fastPathRejections.Add(ctx, 1, metric.WithAttributes(r.serviceAttrs...))
		r.logger.Info("compiled matcher rejected route set", "error", cause)
	}
}

// OnDispatch records one completed dispatch.
func (r *Recorder) OnDispatch(info router.DispatchInfo) {
	ctx := context.Background()
	routeAttrs := append([]attribute.KeyValue{
		attribute.String("method", info.Method),
		attribute.String("route", info.Route),
	}, r.serviceAttrs...)

	r.dispatches.Add(ctx, 1, metric.WithAttributes(append(routeAttrs,
		attribute.String("status_class", statusClass(info.Status, info.Err != nil)),
		attribute.String("strategy", info.Strategy.String()),
	)...))
	r.dispatchDuration.Record(ctx, info.Duration.Seconds(), metric.WithAttributes(routeAttrs...))
	r.matchDuration.Record(ctx, info.MatchDuration.Seconds(), metric.WithAttributes(
		append(r.serviceAttrs, attribute.String("strategy", info.Strategy.String()))...,
	))

	if info.NotFound {
		r.notFound.Add(ctx, 1, metric.WithAttributes(
			append(r.serviceAttrs, attribute.String("method", info.Method))...,
		))
	}
	if info.Err != nil {
		r.dispatchErrors.Add(ctx, 1, metric.WithAttributes(routeAttrs...))
	}
}

// statusClass buckets a status code for low-cardinality labels.
func statusClass(status int, failed bool) string {
	switch {
	case failed:
		return "error"
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	case status >= 100:
		return "1xx"
	default:
		return "unknown"
	}
}
