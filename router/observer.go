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

package router

import (
	"time"
)

// Observer receives routing lifecycle hooks. Implementations typically
// record metrics; see the metrics package for a Prometheus recorder.
//
// Lifecycle:
//  1. OnRouteRegistered for every accepted registration
//  2. OnStrategyCommitted once, before the first match
//  3. OnDispatch after every dispatched request
//
// Thread safety: OnDispatch is called concurrently.
type Observer interface {
	OnRouteRegistered(method, pattern string)

	// OnStrategyCommitted reports the chosen strategy. cause is the
	// fast path rejection when strategy is StrategyFallback, or nil.
	OnStrategyCommitted(strategy Strategy, routes int, cause error)

	OnDispatch(info DispatchInfo)
}

// DispatchInfo describes one completed dispatch.
type DispatchInfo struct {
	Method string

	// Route is the pattern of the most specific matched route, or
	// NotFoundRoute when only catch-all routes or nothing matched.
	Route string

	Strategy Strategy
	Matches  int
	Status   int // 0 when the dispatch returned an error
	NotFound bool
	Err      error

	MatchDuration time.Duration
	Duration      time.Duration
}

// NotFoundRoute is the route label used when no specific route matched.
const NotFoundRoute = "_not_found"
