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
	"regexp/syntax"
	"sync"
)

// Constraint is a compiled parameter constraint.
// Constraints are immutable and safe for concurrent use.
type Constraint struct {
	source string         // as written between the braces
	expr   string         // embeddable form, free of capture groups
	re     *regexp.Regexp // ^(?:expr)$
	spans  bool           // may match '/'
}

// Source returns the constraint as written in the pattern.
func (c *Constraint) Source() string {
	return c.source
}

// Expr returns the expression suitable for embedding in a larger regular
// expression. It never contains capture groups or anchors.
func (c *Constraint) Expr() string {
	return c.expr
}

// MatchString reports whether the whole of s satisfies the constraint.
func (c *Constraint) MatchString(s string) bool {
	return c.re.MatchString(s)
}

// Spans reports whether the constraint can match text containing '/', i.e.
// whether a parameter using it may consume several path segments.
func (c *Constraint) Spans() bool {
	return c.spans
}

// compileConstraint validates and compiles a constraint expression.
// It returns a reason string (empty on success) for InvalidPatternError.
func compileConstraint(source string) (*Constraint, string, error) {
	if source == "" {
		return nil, "empty constraint", nil
	}

	tree, err := syntax.Parse(source, syntax.Perl)
	if err != nil {
		return nil, "invalid constraint", err
	}

	expr := source
	// A constraint wrapped in a single unnamed group, e.g. (a|b), is rewritten
	// to a non-capturing group so group numbering in the compiled table holds.
	if tree.Op == syntax.OpCapture {
		if tree.Name != "" {
			return nil, "named capture groups are not allowed in constraints", nil
		}
		expr = "(?:" + source[1:]
		tree = tree.Sub[0]
	}

	if reason := checkConstraintTree(tree); reason != "" {
		return nil, reason, nil
	}

	re, err := regexp.Compile("^(?:" + expr + ")$")
	if err != nil {
		return nil, "invalid constraint", err
	}

	return &Constraint{
		source: source,
		expr:   expr,
		re:     re,
		spans:  matchesSlash(tree),
	}, "", nil
}

// checkConstraintTree rejects constructs that would change how the
// constraint composes with the rest of a route.
func checkConstraintTree(re *syntax.Regexp) string {
	switch re.Op {
	case syntax.OpCapture:
		return "capture groups are not allowed in constraints"
	case syntax.OpBeginLine, syntax.OpEndLine, syntax.OpBeginText, syntax.OpEndText,
		syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		return "anchors are not allowed in constraints"
	}
	for _, sub := range re.Sub {
		if reason := checkConstraintTree(sub); reason != "" {
			return reason
		}
	}
	return ""
}

// matchesSlash reports whether any leaf of the expression can consume '/'.
func matchesSlash(re *syntax.Regexp) bool {
	switch re.Op {
	case syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		return true
	case syntax.OpLiteral:
		for _, r := range re.Rune {
			if r == '/' {
				return true
			}
		}
		return false
	case syntax.OpCharClass:
		for i := 0; i+1 < len(re.Rune); i += 2 {
			if re.Rune[i] <= '/' && '/' <= re.Rune[i+1] {
				return true
			}
		}
		return false
	}
	for _, sub := range re.Sub {
		if matchesSlash(sub) {
			return true
		}
	}
	return false
}

type cacheKey struct {
	name   string
	source string
}

// Cache memoizes compiled constraints by parameter name and expression.
// It only grows; entries are never evicted. A Cache is owned by one router
// so independent routers do not share state.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]*Constraint
}

// NewCache creates an empty constraint cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]*Constraint)}
}

// Len returns the number of cached constraints.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Reset drops all cached constraints.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.entries = make(map[cacheKey]*Constraint)
	c.mu.Unlock()
}

// constraint returns the compiled constraint for (name, source), compiling it
// on first use.
func (c *Cache) constraint(pattern, name, source string) (*Constraint, error) {
	key := cacheKey{name: name, source: source}

	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	compiled, reason, err := compileConstraint(source)
	if reason != "" {
		return nil, &InvalidPatternError{Pattern: pattern, Reason: reason + " (" + name + ")", Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		return existing, nil
	}
	c.entries[key] = compiled
	return compiled, nil
}
