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

package compiler

import (
	"regexp"
	"strings"

	"rivaas.dev/smartrouter/router/route"
)

// Table matches paths for one method with a single combined expression.
// It is immutable after Compile and safe for concurrent use.
type Table struct {
	method  string
	re      *regexp.Regexp
	leaves  []*leaf // ordered by marker group
	statics *staticIndex
	entries int
}

// Compile builds the table for one method's entries, which must be listed
// in registration order. It returns *AmbiguousRouteError when the entries
// cannot be represented by one expression.
func Compile(method string, entries []route.Entry) (*Table, error) {
	b := &builder{method: method, root: newNode()}
	for _, e := range entries {
		if err := b.insert(e); err != nil {
			return nil, err
		}
	}

	t := &Table{method: method, entries: len(entries)}
	if len(b.leaves) == 0 {
		t.statics = newStaticIndex(nil)
		return t, nil
	}

	var sb strings.Builder
	sb.WriteByte('^')
	b.emit(&sb, b.root, nil, true)
	sb.WriteByte('$')

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, &AmbiguousRouteError{
			Method:  method,
			Pattern: sb.String(),
			Reason:  "combined expression does not compile",
			Err:     err,
		}
	}
	if err := b.plan(entries); err != nil {
		return nil, err
	}

	t.re = re
	t.leaves = make([]*leaf, b.groups+1)
	for _, l := range b.leaves {
		t.leaves[l.marker] = l
	}
	t.statics = newStaticIndex(b.leaves)
	return t, nil
}

// Method returns the method the table was compiled for.
func (t *Table) Method() string {
	return t.method
}

// Expr returns the combined expression, or "" for an empty table.
func (t *Table) Expr() string {
	if t.re == nil {
		return ""
	}
	return t.re.String()
}

// Len returns the number of entries compiled into the table.
func (t *Table) Len() int {
	return t.entries
}

// Match returns the ordered matches for path.
func (t *Table) Match(path string) []route.Match {
	if t.re == nil {
		return nil
	}
	if l := t.statics.lookup(path); l != nil {
		return l.matches(path, nil)
	}

	loc := t.re.FindStringSubmatchIndex(path)
	if loc == nil {
		return nil
	}
	for g := 1; g < len(t.leaves); g++ {
		if l := t.leaves[g]; l != nil && loc[2*g] >= 0 {
			return l.matches(path, loc)
		}
	}
	return nil
}

func (l *leaf) matches(path string, loc []int) []route.Match {
	out := make([]route.Match, 0, len(l.plans))
	for _, p := range l.plans {
		m := route.Match{Entry: p.entry}
		if len(p.sources) > 0 {
			m.Params = make(route.Params, 0, len(p.sources))
			for _, s := range p.sources {
				v := s.text
				if s.group > 0 {
					v = path[loc[2*s.group]:loc[2*s.group+1]]
				}
				m.Params = m.Params.Add(s.name, v)
			}
		}
		out = append(out, m)
	}
	return out
}

// Matcher holds one compiled table per method.
type Matcher struct {
	tables map[string]*Table
	all    *Table // methods without entries of their own
}

// Build compiles every method of table. The first rejection is returned
// and no partial matcher is kept.
func Build(table *route.Table) (*Matcher, error) {
	m := &Matcher{tables: make(map[string]*Table)}
	for _, method := range table.Methods() {
		t, err := Compile(method, table.For(method))
		if err != nil {
			return nil, err
		}
		m.tables[method] = t
	}

	all, err := Compile(route.MethodAll, table.For(route.MethodAll))
	if err != nil {
		return nil, err
	}
	m.all = all
	return m, nil
}

// Match implements route.Matcher.
func (m *Matcher) Match(method, path string) []route.Match {
	if t, ok := m.tables[method]; ok {
		return t.Match(path)
	}
	return m.all.Match(path)
}

// Table returns the compiled table used for method.
func (m *Matcher) Table(method string) *Table {
	if t, ok := m.tables[method]; ok {
		return t
	}
	return m.all
}
