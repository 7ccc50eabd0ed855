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

// Relation describes how the path sets matched by two patterns relate.
type Relation uint8

const (
	// Disjoint patterns never match the same path.
	Disjoint Relation = iota
	// Equal patterns match exactly the same paths.
	Equal
	// Subset means every path matched by the first pattern is matched by the second.
	Subset
	// Superset means every path matched by the second pattern is matched by the first.
	Superset
	// Overlap means the patterns share some paths but neither contains the other,
	// or the relation cannot be decided structurally.
	Overlap
)

func (r Relation) String() string {
	switch r {
	case Disjoint:
		return "disjoint"
	case Equal:
		return "equal"
	case Subset:
		return "subset"
	case Superset:
		return "superset"
	default:
		return "overlap"
	}
}

// Invert swaps the roles of the two patterns.
func (r Relation) Invert() Relation {
	switch r {
	case Subset:
		return Superset
	case Superset:
		return Subset
	default:
		return r
	}
}

// Relate compares the path sets of a and b segment by segment.
// The answer is conservative: when containment cannot be shown
// structurally the result is Overlap.
func Relate(a, b Pattern) Relation {
	acc := Equal
	for i := 0; ; i++ {
		aDone, bDone := i >= len(a.Segments), i >= len(b.Segments)
		switch {
		case aDone && bDone:
			return acc
		case aDone:
			if b.Segments[i].Kind == TrailingWildcard {
				return combine(acc, Subset)
			}
			return Disjoint
		case bDone:
			if a.Segments[i].Kind == TrailingWildcard {
				return combine(acc, Superset)
			}
			return Disjoint
		}

		sa, sb := a.Segments[i], b.Segments[i]
		switch {
		case sa.Kind == TrailingWildcard && sb.Kind == TrailingWildcard:
			return acc
		case sa.Kind == TrailingWildcard:
			return combine(acc, Superset)
		case sb.Kind == TrailingWildcard:
			return combine(acc, Subset)
		case sa.Spans() || sb.Spans():
			if tailShape(a, i) == tailShape(b, i) {
				return acc
			}
			return combine(acc, Overlap)
		}

		acc = combine(acc, relateSegment(sa, sb))
		if acc == Disjoint {
			return Disjoint
		}
	}
}

func relateSegment(a, b Segment) Relation {
	switch {
	case a.Kind == Static && b.Kind == Static:
		if a.Text == b.Text {
			return Equal
		}
		return Disjoint
	case a.Kind == Static:
		if b.Accepts(a.Text) {
			return Subset
		}
		return Disjoint
	case b.Kind == Static:
		if a.Accepts(b.Text) {
			return Superset
		}
		return Disjoint
	}

	ea, eb := a.Expr(), b.Expr()
	switch {
	case ea == eb:
		return Equal
	case ea == DefaultParamExpr:
		if b.Accepts("") {
			return Overlap
		}
		return Superset
	case eb == DefaultParamExpr:
		if a.Accepts("") {
			return Overlap
		}
		return Subset
	default:
		return Overlap
	}
}

func combine(acc, r Relation) Relation {
	switch {
	case acc == Disjoint || r == Disjoint:
		return Disjoint
	case acc == Equal:
		return r
	case r == Equal || acc == r:
		return acc
	default:
		return Overlap
	}
}

func tailShape(p Pattern, from int) string {
	return Pattern{Segments: p.Segments[from:]}.Shape()
}

// Compare orders two patterns by structural precedence: static segments
// before constrained parameters, constrained before plain parameters and
// wildcards, and those before a trailing wildcard, decided at the first
// position where the two differ. It returns a negative number when a
// takes precedence, a positive one when b does, and zero otherwise.
func Compare(a, b Pattern) int {
	n := min(len(a.Segments), len(b.Segments))
	for i := range n {
		if d := rank(a.Segments[i]) - rank(b.Segments[i]); d != 0 {
			return d
		}
	}
	return 0
}

func rank(s Segment) int {
	switch {
	case s.Kind == Static:
		return 0
	case s.Constrained():
		return 1
	case s.Kind == TrailingWildcard:
		return 3
	default:
		return 2
	}
}
