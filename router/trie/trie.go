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

package trie

import (
	"slices"
	"strings"

	"rivaas.dev/smartrouter/router/pattern"
	"rivaas.dev/smartrouter/router/route"
)

// edge is a static child keyed by its segment text.
type edge struct {
	label string
	node  *node
}

// paramEdge is a parameter or wildcard child. Edges with the same
// expression share a node; names are resolved per entry.
type paramEdge struct {
	seg  pattern.Segment
	key  string
	node *node
}

type node struct {
	edges   []edge      // static children, linear scan
	params  []paramEdge // constrained before unconstrained
	tail    *node       // trailing wildcard
	entries []*route.Entry
}

func (n *node) findChild(segment string) *node {
	for i := range n.edges {
		if n.edges[i].label == segment {
			return n.edges[i].node
		}
	}
	return nil
}

func (n *node) findOrCreateChild(segment string) *node {
	if child := n.findChild(segment); child != nil {
		return child
	}
	child := &node{}
	n.edges = append(n.edges, edge{label: segment, node: child})
	return child
}

func (n *node) findOrCreateParam(seg pattern.Segment) *node {
	key := seg.Expr()
	for i := range n.params {
		if n.params[i].key == key {
			return n.params[i].node
		}
	}
	child := &node{}
	n.params = append(n.params, paramEdge{seg: seg, key: key, node: child})
	slices.SortStableFunc(n.params, func(a, b paramEdge) int {
		return boolRank(a.seg.Constrained()) - boolRank(b.seg.Constrained())
	})
	return child
}

func boolRank(constrained bool) int {
	if constrained {
		return 0
	}
	return 1
}

// Tree is the fallback matcher. It is immutable after New and safe for
// concurrent use.
type Tree struct {
	root    *node
	entries int
}

// New builds a tree from entries of any method.
func New(entries []route.Entry) *Tree {
	t := &Tree{root: &node{}, entries: len(entries)}
	for i := range entries {
		e := entries[i]
		n := t.root
		for _, seg := range e.Pattern.Segments {
			switch seg.Kind {
			case pattern.Static:
				n = n.findOrCreateChild(seg.Text)
			case pattern.TrailingWildcard:
				if n.tail == nil {
					n.tail = &node{}
				}
				n = n.tail
			default:
				n = n.findOrCreateParam(seg)
			}
		}
		n.entries = append(n.entries, &e)
	}
	return t
}

// Len returns the number of entries in the tree.
func (t *Tree) Len() int {
	return t.entries
}

// state is one frontier element: a node reached after consuming pos
// segments, with the text bound at every pattern position so far.
type state struct {
	n    *node
	pos  int
	vals []string
}

// Match implements route.Matcher.
func (t *Tree) Match(method, path string) []route.Match {
	segs, ok := split(path)
	if !ok {
		return nil
	}

	var (
		matches  []route.Match
		seen     map[*route.Entry]struct{}
		frontier = []state{{n: t.root}}
	)
	collect := func(n *node, vals []string) {
		for _, e := range n.entries {
			if e.Method != method && e.Method != route.MethodAll {
				continue
			}
			if _, dup := seen[e]; dup {
				continue
			}
			if seen == nil {
				seen = make(map[*route.Entry]struct{})
			}
			seen[e] = struct{}{}
			matches = append(matches, route.Match{Entry: *e, Params: bind(e.Pattern, vals)})
		}
	}

	if len(segs) == 0 {
		// "/" is also one empty segment for a root parameter that accepts "".
		for i := len(t.root.params) - 1; i >= 0; i-- {
			if p := t.root.params[i]; p.seg.Accepts("") {
				frontier = append(frontier, state{n: p.node, vals: []string{""}})
			}
		}
	}

	for len(frontier) > 0 {
		s := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		if s.n.tail != nil {
			collect(s.n.tail, s.vals)
		}
		if s.pos == len(segs) {
			collect(s.n, s.vals)
			continue
		}

		// Pushed in reverse so static children are explored first.
		var next []state
		seg := segs[s.pos]
		if child := s.n.findChild(seg); child != nil {
			next = append(next, state{n: child, pos: s.pos + 1, vals: push(s.vals, seg)})
		}
		for _, p := range s.n.params {
			if !p.seg.Spans() {
				if p.seg.Accepts(seg) {
					next = append(next, state{n: p.node, pos: s.pos + 1, vals: push(s.vals, seg)})
				}
				continue
			}
			for end := len(segs); end > s.pos; end-- {
				text := strings.Join(segs[s.pos:end], "/")
				if p.seg.Accepts(text) {
					next = append(next, state{n: p.node, pos: end, vals: push(s.vals, text)})
				}
			}
		}
		for i := len(next) - 1; i >= 0; i-- {
			frontier = append(frontier, next[i])
		}
	}

	return route.Select(matches)
}

// push appends without sharing the backing array between branches.
func push(vals []string, v string) []string {
	return append(slices.Clip(vals), v)
}

func bind(p pattern.Pattern, vals []string) route.Params {
	var params route.Params
	for i, seg := range p.Segments {
		if seg.Kind == pattern.Param && i < len(vals) {
			params = params.Add(seg.Text, vals[i])
		}
	}
	return params
}

// split breaks an absolute path into segments: "/" has none and "/a/"
// ends with an empty segment.
func split(path string) ([]string, bool) {
	if path == "" || path[0] != '/' {
		return nil, false
	}
	if path == "/" {
		return nil, true
	}
	return strings.Split(path[1:], "/"), true
}
