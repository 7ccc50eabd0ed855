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

package route

import (
	"cmp"
	"slices"

	"rivaas.dev/smartrouter/router/pattern"
)

// Match is one entry matched against a request path with its parameters.
type Match struct {
	Entry  Entry
	Params Params
}

// Matcher resolves a method and path to the ordered entries to run.
// Implementations are read-only after construction and safe for
// concurrent use. An empty result is valid.
type Matcher interface {
	Match(method, path string) []Match
}

// Precedes reports whether wildcard-free entry a is more specific than b,
// falling back to registration order.
func Precedes(a, b Entry) bool {
	return compareExact(a, b) < 0
}

func compareExact(a, b Entry) int {
	if c := pattern.Compare(a.Pattern, b.Pattern); c != 0 {
		return c
	}
	return cmp.Compare(a.Score, b.Score)
}

func compareScore(a, b Match) int {
	return cmp.Compare(a.Entry.Score, b.Entry.Score)
}

// Select orders the matches for one request path in place and returns the
// run list: catch-all matches by score, then the most specific
// wildcard-free match. Other wildcard-free matches are dropped.
func Select(matches []Match) []Match {
	out := matches[:0]
	var best *Match
	for i := range matches {
		m := matches[i]
		if m.Entry.CatchAll() {
			out = append(out, m)
			continue
		}
		if best == nil || compareExact(m.Entry, best.Entry) < 0 {
			b := m
			best = &b
		}
	}
	slices.SortStableFunc(out, compareScore)
	if best != nil {
		out = append(out, *best)
	}
	return out
}

// Order applies the same precedence to entries known to match a common set
// of paths. Matchers that precompute candidates use it at build time.
func Order(entries []Entry) []Entry {
	var out []Entry
	var best *Entry
	for i := range entries {
		e := entries[i]
		if e.CatchAll() {
			out = append(out, e)
			continue
		}
		if best == nil || compareExact(e, *best) < 0 {
			best = &entries[i]
		}
	}
	slices.SortStableFunc(out, func(a, b Entry) int {
		return cmp.Compare(a.Score, b.Score)
	})
	if best != nil {
		out = append(out, *best)
	}
	return out
}
