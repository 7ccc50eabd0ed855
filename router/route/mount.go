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
	"rivaas.dev/smartrouter/router/pattern"
)

// MountedRoute is one subrouter registration rewritten under a mount prefix.
type MountedRoute struct {
	Method   string
	Patterns []pattern.Pattern
	Handler  Handler

	// Strip is the number of leading path segments the prefix occupies.
	Strip int
}

// PrepareMount rewrites entries under base. Entries sharing a score came
// from one registration and stay together; relative order is kept.
func PrepareMount(base pattern.Pattern, entries []Entry) []MountedRoute {
	var out []MountedRoute
	for i, e := range entries {
		p := e.Pattern.Under(base)
		if i > 0 && entries[i-1].Score == e.Score {
			last := &out[len(out)-1]
			last.Patterns = append(last.Patterns, p)
			continue
		}
		out = append(out, MountedRoute{
			Method:   e.Method,
			Patterns: []pattern.Pattern{p},
			Handler:  e.Handler,
			Strip:    len(base.Segments),
		})
	}
	return out
}
