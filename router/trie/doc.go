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

// Package trie implements the general matching path of the router: a
// prefix tree over pattern segments walked with a frontier of candidate
// nodes.
//
// Unlike the compiled expression, the tree keeps every viable branch
// alive: sibling parameters with different constraints, parameters whose
// constraint spans several segments followed by further segments, and
// routes that partially overlap are all supported. The cost is a tree
// walk per request instead of one expression match.
//
// One tree holds the routes of every method; entries are filtered by
// method when they are collected.
package trie
