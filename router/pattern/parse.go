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
	"strings"
)

// maxOptional bounds the number of optional parameters in one pattern.
// Each optional parameter doubles the number of expanded patterns.
const maxOptional = 6

// Parser turns pattern strings into expanded Patterns.
// A Parser is safe for concurrent use.
type Parser struct {
	cache *Cache
}

// NewParser returns a parser that compiles constraints through cache.
// A nil cache gets a private one.
func NewParser(cache *Cache) *Parser {
	if cache == nil {
		cache = NewCache()
	}
	return &Parser{cache: cache}
}

// Cache returns the constraint cache used by the parser.
func (p *Parser) Cache() *Cache {
	return p.cache
}

// Parse parses raw into one or more concrete patterns. More than one pattern
// is returned when raw contains optional parameters; the variant with every
// optional parameter removed comes first.
func (p *Parser) Parse(raw string) ([]Pattern, error) {
	text := strings.TrimSpace(raw)
	if text == "*" {
		text = "/*"
	}
	if text == "" || text[0] != '/' {
		return nil, &InvalidPatternError{Pattern: raw, Reason: "pattern must start with '/'"}
	}

	parts, err := splitSegments(raw, text[1:])
	if err != nil {
		return nil, err
	}
	if n := len(parts); n > 0 && parts[n-1] == "" {
		parts = parts[:n-1]
	}

	segments := make([]Segment, 0, len(parts))
	var optional []int
	seen := make(map[string]struct{}, len(parts))

	for i, part := range parts {
		last := i == len(parts)-1
		switch {
		case part == "":
			return nil, &InvalidPatternError{Pattern: raw, Reason: "empty segment"}

		case part == "*":
			kind := Wildcard
			if last {
				kind = TrailingWildcard
			}
			segments = append(segments, Segment{Kind: kind})

		case part[0] == ':':
			seg, opt, err := p.parseParam(raw, part)
			if err != nil {
				return nil, err
			}
			if _, dup := seen[seg.Text]; dup {
				return nil, &InvalidPatternError{Pattern: raw, Reason: "duplicate parameter " + seg.Text}
			}
			seen[seg.Text] = struct{}{}
			if opt {
				optional = append(optional, len(segments))
			}
			segments = append(segments, seg)

		default:
			if strings.ContainsAny(part, "*?{}") {
				return nil, &InvalidPatternError{Pattern: raw, Reason: "unexpected character in static segment " + part}
			}
			segments = append(segments, Segment{Kind: Static, Text: part})
		}
	}

	base := Pattern{Segments: segments, raw: raw}
	if len(optional) == 0 {
		return []Pattern{base}, nil
	}
	if base.CatchAll() {
		return nil, &InvalidPatternError{Pattern: raw, Reason: "optional parameters cannot be combined with wildcards"}
	}
	if len(optional) > maxOptional {
		return nil, &InvalidPatternError{Pattern: raw, Reason: "too many optional parameters"}
	}
	return expand(base, optional), nil
}

// parseParam parses ":name", ":name{re}" and their optional "?" forms.
func (p *Parser) parseParam(raw, part string) (Segment, bool, error) {
	body := part[1:]
	optional := false

	name := body
	source := ""
	hasConstraint := false
	if i := strings.IndexByte(body, '{'); i >= 0 {
		name = body[:i]
		end := matchingBrace(body, i)
		if end < 0 {
			return Segment{}, false, &InvalidPatternError{Pattern: raw, Reason: "unterminated constraint in " + part}
		}
		source = body[i+1 : end]
		hasConstraint = true
		switch rest := body[end+1:]; rest {
		case "":
		case "?":
			optional = true
		default:
			return Segment{}, false, &InvalidPatternError{Pattern: raw, Reason: "unexpected text after constraint in " + part}
		}
	} else if strings.HasSuffix(name, "?") {
		name = strings.TrimSuffix(name, "?")
		optional = true
	}

	if !validName(name) {
		return Segment{}, false, &InvalidPatternError{Pattern: raw, Reason: "invalid parameter name in " + part}
	}

	seg := Segment{Kind: Param, Text: name}
	if hasConstraint {
		c, err := p.cache.constraint(raw, name, source)
		if err != nil {
			return Segment{}, false, err
		}
		seg.Constraint = c
	}
	return seg, optional, nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return false
		}
	}
	return true
}

// splitSegments splits on '/' outside of constraint braces.
func splitSegments(raw, s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return nil, &InvalidPatternError{Pattern: raw, Reason: "unbalanced '}'"}
			}
		case '/':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, &InvalidPatternError{Pattern: raw, Reason: "unbalanced '{'"}
	}
	return append(parts, s[start:]), nil
}

// matchingBrace returns the index of the '}' closing the '{' at open.
func matchingBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// expand produces every combination of present and absent optional
// parameters, dropping variants whose shape repeats an earlier one.
func expand(base Pattern, optional []int) []Pattern {
	total := 1 << len(optional)
	out := make([]Pattern, 0, total)
	shapes := make(map[string]struct{}, total)

	for mask := range total {
		drop := make(map[int]struct{}, len(optional))
		for bit, idx := range optional {
			if mask&(1<<bit) == 0 {
				drop[idx] = struct{}{}
			}
		}
		segs := make([]Segment, 0, len(base.Segments))
		for i, s := range base.Segments {
			if _, skip := drop[i]; !skip {
				segs = append(segs, s)
			}
		}
		variant := Pattern{Segments: segs, raw: base.raw}
		shape := variant.Shape()
		if _, dup := shapes[shape]; dup {
			continue
		}
		shapes[shape] = struct{}{}
		out = append(out, variant)
	}
	return out
}
