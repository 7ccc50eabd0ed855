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
	"slices"
	"sync"

	"rivaas.dev/smartrouter/router/pattern"
)

// Registry accumulates entries until Finalize is called.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	entries []Entry
	score   uint64
	table   *Table // non-nil once finalized
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Insert records one registration. All patterns share the next score.
// It fails with *RegistryFinalizedError after Finalize.
func (r *Registry) Insert(method string, patterns []pattern.Pattern, h Handler) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.table != nil {
		raw := ""
		if len(patterns) > 0 {
			raw = patterns[0].Raw()
		}
		return 0, &RegistryFinalizedError{Method: method, Pattern: raw}
	}

	score := r.score
	r.score++
	for _, p := range patterns {
		r.entries = append(r.entries, Entry{
			Method:  method,
			Pattern: p,
			Handler: h,
			Score:   score,
		})
	}
	return score, nil
}

// Len returns the number of entries, counting optional expansions separately.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Entries returns a copy of the entries in registration order.
func (r *Registry) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.entries)
}

// Finalized reports whether Finalize has been called.
func (r *Registry) Finalized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.table != nil
}

// Finalize freezes the registry and returns its table.
// Subsequent calls return the same table.
func (r *Registry) Finalize() *Table {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.table == nil {
		r.table = newTable(slices.Clone(r.entries))
	}
	return r.table
}

// Table is the frozen view of a registry, grouped by method.
// MethodAll entries are visible through every method.
type Table struct {
	entries  []Entry
	all      []Entry
	byMethod map[string][]Entry
}

// NewTable builds a table from entries listed in registration order.
func NewTable(entries []Entry) *Table {
	return newTable(slices.Clone(entries))
}

func newTable(entries []Entry) *Table {
	t := &Table{
		entries:  entries,
		byMethod: make(map[string][]Entry),
	}

	own := make(map[string][]Entry)
	for _, e := range entries {
		if e.Method == MethodAll {
			t.all = append(t.all, e)
			continue
		}
		own[e.Method] = append(own[e.Method], e)
	}

	for method, list := range own {
		merged := make([]Entry, 0, len(list)+len(t.all))
		merged = append(merged, list...)
		merged = append(merged, t.all...)
		slices.SortStableFunc(merged, func(a, b Entry) int {
			switch {
			case a.Score < b.Score:
				return -1
			case a.Score > b.Score:
				return 1
			default:
				return 0
			}
		})
		t.byMethod[method] = merged
	}
	return t
}

// Entries returns every entry in registration order.
func (t *Table) Entries() []Entry {
	return t.entries
}

// Methods returns the concrete methods that have their own entries, sorted.
func (t *Table) Methods() []string {
	methods := make([]string, 0, len(t.byMethod))
	for m := range t.byMethod {
		methods = append(methods, m)
	}
	slices.Sort(methods)
	return methods
}

// For returns the entries visible to method in registration order.
// Methods without entries of their own see only MethodAll entries.
func (t *Table) For(method string) []Entry {
	if list, ok := t.byMethod[method]; ok {
		return list
	}
	return t.all
}

// Len returns the total number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}
