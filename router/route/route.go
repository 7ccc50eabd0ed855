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

// Handler is a type alias for handler functions.
// In practice, this will be router.HandlerFunc.
// Using any here avoids the import cycle with the main router package.
type Handler = any

// MethodAll registers an entry for every request method.
const MethodAll = "ALL"

// Entry is one registered route: a method, one concrete pattern and its handler.
// Entries expanded from one registration share a score.
type Entry struct {
	Method  string
	Pattern pattern.Pattern
	Handler Handler

	// Score is the registration sequence number; lower registered earlier.
	Score uint64
}

// CatchAll reports whether the entry's pattern contains a wildcard.
func (e Entry) CatchAll() bool {
	return e.Pattern.CatchAll()
}

// Info describes a registered route for introspection.
type Info struct {
	Method   string   // HTTP method or MethodAll
	Path     string   // Pattern as registered (mount prefix included)
	Shape    string   // Concrete expanded pattern
	Params   []string // Parameter names in path order
	Score    uint64   // Registration sequence number
	CatchAll bool     // Pattern contains a wildcard
}

// Info returns the introspection record for the entry.
func (e Entry) Info() Info {
	return Info{
		Method:   e.Method,
		Path:     e.Pattern.Raw(),
		Shape:    e.Pattern.String(),
		Params:   e.Pattern.ParamNames(),
		Score:    e.Score,
		CatchAll: e.CatchAll(),
	}
}
