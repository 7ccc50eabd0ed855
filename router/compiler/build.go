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
	"slices"
	"strings"

	"rivaas.dev/smartrouter/router/pattern"
	"rivaas.dev/smartrouter/router/route"
)

// node is one position in the prefix tree used to lay out the expression.
// A node has at most one parameter child; sibling parameters with
// different expressions cannot share a capture group.
type node struct {
	static   map[string]*node
	param    *node
	paramKey string
	spans    bool // reached through a parameter that may match '/'
	tail     *node
	leaf     *leaf
	owner    string // pattern that created the parameter child
}

// leaf is a concrete pattern shape ending at a node.
type leaf struct {
	shape  pattern.Pattern
	static bool

	// marker is the capture group that participates when this leaf matches.
	marker int

	// groups holds, per shape position, the capture group of a parameter
	// segment or zero for static and trailing segments.
	groups []int

	plans []plan
}

// plan is one candidate entry for a leaf with its parameter sources.
type plan struct {
	entry   route.Entry
	sources []source
}

// source yields one parameter value: a constant for parameters that sit on
// a static leaf segment, otherwise a capture group.
type source struct {
	name  string
	text  string
	group int
}

type builder struct {
	method string
	root   *node
	leaves []*leaf
	groups int
}

func newNode() *node {
	return &node{static: make(map[string]*node)}
}

func (b *builder) insert(e route.Entry) error {
	n := b.root
	segs := e.Pattern.Segments
	for i, seg := range segs {
		if n.spans {
			return &AmbiguousRouteError{
				Method:  b.method,
				Pattern: e.Pattern.Raw(),
				Reason:  "segments follow a parameter that spans '/'",
			}
		}
		switch seg.Kind {
		case pattern.Static:
			child, ok := n.static[seg.Text]
			if !ok {
				child = newNode()
				n.static[seg.Text] = child
			}
			n = child

		case pattern.TrailingWildcard:
			if i != len(segs)-1 {
				return &AmbiguousRouteError{Method: b.method, Pattern: e.Pattern.Raw(), Reason: "trailing wildcard is not last"}
			}
			if n.tail == nil {
				n.tail = newNode()
			}
			n = n.tail

		default:
			key := seg.Expr()
			if n.param == nil {
				n.param = newNode()
				n.paramKey = key
				n.param.spans = seg.Spans()
				n.owner = e.Pattern.Raw()
			} else if n.paramKey != key {
				return &AmbiguousRouteError{
					Method:  b.method,
					Pattern: e.Pattern.Raw(),
					Other:   n.owner,
					Reason:  "sibling parameters with different constraints",
				}
			}
			n = n.param
		}
	}

	if n.leaf == nil {
		n.leaf = &leaf{shape: e.Pattern, static: e.Pattern.Static()}
		b.leaves = append(b.leaves, n.leaf)
	}
	return nil
}

// emit writes the alternation for n. Capture groups are numbered in the
// order their opening parenthesis appears, so the counter advances in
// the same order the text is produced.
func (b *builder) emit(sb *strings.Builder, n *node, stack []int, root bool) {
	alts := 0
	if n.leaf != nil {
		alts++
	}
	alts += len(n.static)
	if n.param != nil {
		alts++
	}
	if n.tail != nil {
		alts++
	}

	if alts > 1 {
		sb.WriteString("(?:")
	}
	first := true
	sep := func() {
		if !first {
			sb.WriteByte('|')
		}
		first = false
	}

	if n.leaf != nil {
		sep()
		b.groups++
		n.leaf.marker = b.groups
		n.leaf.groups = slices.Clone(stack)
		if root {
			sb.WriteByte('/')
		}
		sb.WriteString("()")
	}

	keys := make([]string, 0, len(n.static))
	for k := range n.static {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		sep()
		sb.WriteByte('/')
		sb.WriteString(regexp.QuoteMeta(k))
		b.emit(sb, n.static[k], append(stack, 0), false)
	}

	if n.param != nil {
		sep()
		b.groups++
		g := b.groups
		sb.WriteString("/(")
		sb.WriteString(n.paramKey)
		sb.WriteByte(')')
		b.emit(sb, n.param, append(stack, g), false)
	}

	if n.tail != nil {
		sep()
		sb.WriteString(pattern.TrailingWildcardExpr)
		b.emit(sb, n.tail, append(stack, 0), false)
	}

	if alts > 1 {
		sb.WriteByte(')')
	}
}

// plan computes the candidate entries of every leaf. An entry is a
// candidate when it matches every path the leaf shape matches; a partial
// overlap means the candidates would depend on the concrete path.
func (b *builder) plan(entries []route.Entry) error {
	for _, l := range b.leaves {
		var candidates []route.Entry
		for _, e := range entries {
			switch pattern.Relate(l.shape, e.Pattern) {
			case pattern.Equal, pattern.Subset:
				candidates = append(candidates, e)
			case pattern.Overlap:
				return &AmbiguousRouteError{
					Method:  b.method,
					Pattern: e.Pattern.Raw(),
					Other:   l.shape.Raw(),
					Reason:  "patterns partially overlap",
				}
			}
		}

		for _, e := range route.Order(candidates) {
			l.plans = append(l.plans, plan{entry: e, sources: l.sources(e.Pattern)})
		}
	}
	return nil
}

func (l *leaf) sources(p pattern.Pattern) []source {
	var out []source
	for i, seg := range p.Segments {
		if seg.Kind != pattern.Param {
			continue
		}
		if i >= len(l.groups) {
			break
		}
		s := source{name: seg.Text}
		if at := l.shape.Segments[i]; at.Kind == pattern.Static {
			s.text = at.Text
		} else {
			s.group = l.groups[i]
		}
		out = append(out, s)
	}
	return out
}
