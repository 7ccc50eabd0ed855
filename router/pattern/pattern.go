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

package pattern

import (
	"regexp"
	"strings"
)

// Kind identifies the type of a segment.
type Kind uint8

const (
	// Static matches its text literally.
	Static Kind = iota
	// Param binds one segment (or more, for spanning constraints) to a name.
	Param
	// Wildcard matches exactly one non-empty segment without binding it.
	Wildcard
	// TrailingWildcard matches zero or more trailing segments.
	TrailingWildcard
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Static:
		return "static"
	case Param:
		return "param"
	case Wildcard:
		return "wildcard"
	case TrailingWildcard:
		return "trailing-wildcard"
	default:
		return "unknown"
	}
}

const (
	// DefaultParamExpr is the expression used by unconstrained parameters and wildcards.
	DefaultParamExpr = `[^/]+`

	// TrailingWildcardExpr matches an empty suffix or any suffix starting with '/'.
	TrailingWildcardExpr = `(?:|/.*)`
)

// Segment describes one element of a parsed pattern.
type Segment struct {
	Kind Kind

	// Text is the literal for Static segments and the parameter name for Param segments.
	Text string

	// Constraint restricts a Param segment; nil means DefaultParamExpr.
	Constraint *Constraint
}

// ParamLike reports whether the segment consumes path text through a regular
// expression rather than by literal comparison.
func (s Segment) ParamLike() bool {
	return s.Kind == Param || s.Kind == Wildcard
}

// Constrained reports whether the segment is a parameter with an explicit constraint.
func (s Segment) Constrained() bool {
	return s.Kind == Param && s.Constraint != nil
}

// Spans reports whether the segment may consume more than one path segment.
func (s Segment) Spans() bool {
	return s.Kind == Param && s.Constraint != nil && s.Constraint.Spans()
}

// Expr returns the regular expression matching the path text of the segment,
// without the leading '/'.
func (s Segment) Expr() string {
	switch s.Kind {
	case Static:
		return regexp.QuoteMeta(s.Text)
	case Param:
		if s.Constraint != nil {
			return s.Constraint.Expr()
		}
		return DefaultParamExpr
	case Wildcard:
		return DefaultParamExpr
	default:
		return TrailingWildcardExpr
	}
}

// Accepts reports whether text satisfies a param-like segment.
func (s Segment) Accepts(text string) bool {
	if s.Kind == Param && s.Constraint != nil {
		return s.Constraint.MatchString(text)
	}
	return text != "" && !strings.Contains(text, "/")
}

// shape renders the segment with parameter names erased.
func (s Segment) shape() string {
	switch s.Kind {
	case Static:
		return s.Text
	case Param, Wildcard:
		return "{" + s.Expr() + "}"
	default:
		return "*"
	}
}

// String renders the segment in pattern syntax.
func (s Segment) String() string {
	switch s.Kind {
	case Static:
		return s.Text
	case Param:
		if s.Constraint != nil {
			return ":" + s.Text + "{" + s.Constraint.Source() + "}"
		}
		return ":" + s.Text
	default:
		return "*"
	}
}

// Pattern is one concrete (expanded) route pattern.
type Pattern struct {
	Segments []Segment

	raw string
}

// New builds a pattern from segments. raw is the text the pattern was
// registered with; an empty raw defaults to the canonical form.
func New(raw string, segments ...Segment) Pattern {
	p := Pattern{Segments: segments, raw: raw}
	if p.raw == "" {
		p.raw = p.String()
	}
	return p
}

// Raw returns the pattern text as it was registered, before expansion.
func (p Pattern) Raw() string {
	return p.raw
}

// String returns the canonical form of the pattern.
func (p Pattern) String() string {
	if len(p.Segments) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range p.Segments {
		b.WriteByte('/')
		b.WriteString(s.String())
	}
	return b.String()
}

// Shape returns the pattern with parameter names erased. Two patterns with
// the same shape match exactly the same set of paths.
func (p Pattern) Shape() string {
	if len(p.Segments) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range p.Segments {
		b.WriteByte('/')
		b.WriteString(s.shape())
	}
	return b.String()
}

// CatchAll reports whether the pattern contains a wildcard of either kind.
func (p Pattern) CatchAll() bool {
	for _, s := range p.Segments {
		if s.Kind == Wildcard || s.Kind == TrailingWildcard {
			return true
		}
	}
	return false
}

// Static reports whether every segment is static.
func (p Pattern) Static() bool {
	for _, s := range p.Segments {
		if s.Kind != Static {
			return false
		}
	}
	return true
}

// ParamNames returns parameter names in pattern order.
func (p Pattern) ParamNames() []string {
	var names []string
	for _, s := range p.Segments {
		if s.Kind == Param {
			names = append(names, s.Text)
		}
	}
	return names
}

// Under returns p with the segments of base prepended. It is used when a
// route set is mounted below a prefix.
func (p Pattern) Under(base Pattern) Pattern {
	segs := make([]Segment, 0, len(base.Segments)+len(p.Segments))
	segs = append(segs, base.Segments...)
	segs = append(segs, p.Segments...)
	out := Pattern{Segments: segs}
	out.raw = joinRaw(base.String(), p.raw)
	return out
}

func joinRaw(base, raw string) string {
	switch {
	case base == "/":
		return raw
	case raw == "/" || raw == "":
		return base
	default:
		return base + raw
	}
}
