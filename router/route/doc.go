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

// Package route holds the registration-time data model of the router:
// route entries, the registry that numbers them, the frozen per-method
// table handed to matchers, matched parameters and mount rewriting.
//
// Entries are created while routes are registered and are immutable once
// the registry is finalized. Matchers in the compiler and trie packages
// consume a *Table and produce []Match values for the dispatch chain.
//
// # Ordering
//
// When several entries match one path, Select orders them: entries whose
// pattern contains a wildcard come first in registration order, followed
// by the single most specific wildcard-free entry. Registration order
// breaks ties between equally specific patterns.
//
// # Parameters
//
// Params keeps the raw (still percent-encoded) value of each parameter and
// decodes it on first read:
//
//	id, ok := m.Params.Get("id")
package route
