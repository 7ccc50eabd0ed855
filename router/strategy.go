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
	"sync"
	"sync/atomic"

	"rivaas.dev/smartrouter/router/compiler"
	"rivaas.dev/smartrouter/router/route"
	"rivaas.dev/smartrouter/router/trie"
)

// Strategy identifies the matcher serving requests.
type Strategy uint32

const (
	// StrategyUndecided means no request has been matched yet.
	StrategyUndecided Strategy = iota
	// StrategyFast matches with one compiled expression per method.
	StrategyFast
	// StrategyFallback matches by walking a prefix tree.
	StrategyFallback
)

func (s Strategy) String() string {
	switch s {
	case StrategyUndecided:
		return "undecided"
	case StrategyFast:
		return "fast"
	case StrategyFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// coordinator commits the matching strategy once. The first caller
// finalizes the registry and builds the matcher; all later callers get
// the committed matcher without further checks.
type coordinator struct {
	once     sync.Once
	strategy atomic.Uint32
	matcher  route.Matcher
	cause    error // fast path rejection, if any
}

func (r *Router) commit() route.Matcher {
	c := &r.coord
	c.once.Do(func() {
		table := r.registry.Finalize()

		if r.forced != StrategyFallback {
			m, err := compiler.Build(table)
			if err == nil {
				c.matcher = m
				c.strategy.Store(uint32(StrategyFast))
				r.committed(StrategyFast, table.Len(), nil)
				return
			}
			c.cause = err
			r.logger.Warn("fast path rejected, using prefix tree", "reason", err.Error())
			r.emit(DiagFastPathRejected, "route set cannot be compiled", map[string]any{
				"error": err.Error(),
			})
		}

		c.matcher = trie.New(table.Entries())
		c.strategy.Store(uint32(StrategyFallback))
		r.committed(StrategyFallback, table.Len(), c.cause)
	})
	return c.matcher
}

func (r *Router) committed(s Strategy, routes int, cause error) {
	r.logger.Info("routing strategy committed", "strategy", s.String(), "routes", routes)
	r.emit(DiagStrategyCommitted, "routing strategy committed", map[string]any{
		"strategy": s.String(),
		"routes":   routes,
	})
	if r.observer != nil {
		r.observer.OnStrategyCommitted(s, routes, cause)
	}
}

// Strategy returns the committed strategy, or StrategyUndecided before
// the first match or Warmup.
func (r *Router) Strategy() Strategy {
	return Strategy(r.coord.strategy.Load())
}

// StrategyCause returns why the fast path was rejected, or nil.
func (r *Router) StrategyCause() error {
	if r.Strategy() != StrategyFallback {
		return nil
	}
	return r.coord.cause
}

// Warmup commits the matching strategy before traffic arrives and freezes
// the route set. It returns the fast path rejection only when the router
// was created with WithStrategy(StrategyFast); requests are still served
// by the prefix tree in that case.
func (r *Router) Warmup() error {
	r.commit()
	if r.forced == StrategyFast {
		return r.StrategyCause()
	}
	return nil
}
