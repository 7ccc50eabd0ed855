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

// Package compiler implements the fast matching path of the router: every
// route of one method is merged into a single regular expression.
//
// # Layout
//
// Patterns are first inserted into a prefix tree so shared prefixes are
// written once. The tree is then written out as nested alternations:
//
//	GET /users            ^/users(?:()|/active()|/([^/]+)())$
//	GET /users/active
//	GET /users/:id
//
// At each node the alternatives appear in a fixed order: the end of a
// route, static children sorted by text, the parameter child, and the
// trailing wildcard. The regexp engine prefers earlier alternatives, so
// static segments win over parameters at the same position.
//
// Every route end contributes an empty capture group (its marker). After a
// match the one marker that participated identifies the route shape, and a
// precomputed plan lists the entries to run for that shape together with
// the capture group of each of their parameters.
//
// # Static Routes
//
// Fully static shapes are also kept in a map, guarded by a bloom filter
// once there are enough of them, so the common case skips the expression.
//
// # Rejection
//
// Compile returns *AmbiguousRouteError when the set cannot be represented:
//
//   - two parameters with different expressions at the same position
//   - segments after a parameter whose constraint may match '/'
//   - two routes that partially overlap, so the entries to run would
//     depend on the concrete path
//
// The router then rebuilds everything with the trie matcher.
package compiler
