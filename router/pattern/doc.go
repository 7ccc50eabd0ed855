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

// Package pattern parses route pattern strings into segment descriptors.
//
// A pattern is a '/'-separated list of segments:
//
//	/users              static segment
//	/users/:id          named parameter (one non-empty segment)
//	/items/:id{[0-9]+}  parameter constrained by a regular expression
//	/files/*/raw        wildcard (one non-empty segment, not captured)
//	/static/*           trailing wildcard (zero or more trailing segments)
//	/a/:b?/c            optional parameter, expanded to /a/c and /a/:b/c
//
// Optional parameters are expanded at parse time, so a single registration
// may yield several concrete patterns. Constraint regular expressions are
// compiled once and shared through a Cache owned by the router.
//
// Relate and Compare expose the structural relations the matchers rely on:
// Relate decides whether two patterns are equal, nested, disjoint or
// partially overlapping, and Compare orders patterns by specificity.
package pattern
