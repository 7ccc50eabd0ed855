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

package trie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/smartrouter/router/pattern"
	"rivaas.dev/smartrouter/router/route"
)

type routeDef struct {
	method string
	path   string
}

func newTree(t *testing.T, defs ...routeDef) *Tree {
	t.Helper()
	parser := pattern.NewParser(nil)
	reg := route.NewRegistry()
	for _, d := range defs {
		patterns, err := parser.Parse(d.path)
		require.NoError(t, err)
		_, err = reg.Insert(d.method, patterns, d.method+" "+d.path)
		require.NoError(t, err)
	}
	return New(reg.Finalize().Entries())
}

func labels(matches []route.Match) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Entry.Handler.(string))
	}
	return out
}

// TestTree_Match tests resolution across the pattern grammar.
func TestTree_Match(t *testing.T) {
	t.Parallel()

	tree := newTree(t,
		routeDef{"GET", "/api/items/:id"},
		routeDef{"GET", "/api/items/active"},
		routeDef{"ALL", "/api/*"},
		routeDef{"GET", "/items/:id{[0-9]+}"},
		routeDef{"GET", "/items/:slug{[a-z]+}"},
		routeDef{"GET", "/items/:any"},
		routeDef{"GET", "/blob/:path{.+}/raw"},
		routeDef{"GET", "/a/:b?/c"},
		routeDef{"POST", "/api/items"},
		routeDef{"GET", "/"},
	)
	assert.Equal(t, 11, tree.Len())

	tests := []struct {
		name       string
		method     string
		path       string
		wantLabels []string
		wantParams map[string]string
	}{
		{name: "static beats param", method: "GET", path: "/api/items/active", wantLabels: []string{"ALL /api/*", "GET /api/items/active"}},
		{name: "param", method: "GET", path: "/api/items/42", wantLabels: []string{"ALL /api/*", "GET /api/items/:id"}, wantParams: map[string]string{"id": "42"}},
		{name: "catch-all only", method: "GET", path: "/api/unknown", wantLabels: []string{"ALL /api/*"}},
		{name: "method filter", method: "POST", path: "/api/items", wantLabels: []string{"ALL /api/*", "POST /api/items"}},
		{name: "unknown method sees ALL", method: "PATCH", path: "/api/items/1", wantLabels: []string{"ALL /api/*"}},
		{name: "numeric constraint", method: "GET", path: "/items/42", wantLabels: []string{"GET /items/:id{[0-9]+}"}, wantParams: map[string]string{"id": "42"}},
		{name: "alpha constraint", method: "GET", path: "/items/abc", wantLabels: []string{"GET /items/:slug{[a-z]+}"}, wantParams: map[string]string{"slug": "abc"}},
		{name: "constraints fall through", method: "GET", path: "/items/A-1", wantLabels: []string{"GET /items/:any"}, wantParams: map[string]string{"any": "A-1"}},
		{name: "spanning parameter", method: "GET", path: "/blob/a/b/c/raw", wantLabels: []string{"GET /blob/:path{.+}/raw"}, wantParams: map[string]string{"path": "a/b/c"}},
		{name: "optional absent", method: "GET", path: "/a/c", wantLabels: []string{"GET /a/:b?/c"}},
		{name: "optional present", method: "GET", path: "/a/42/c", wantLabels: []string{"GET /a/:b?/c"}, wantParams: map[string]string{"b": "42"}},
		{name: "root", method: "GET", path: "/", wantLabels: []string{"GET /"}},
		{name: "empty segment rejected by param", method: "GET", path: "/items/", wantLabels: []string{}},
		{name: "relative path", method: "GET", path: "items", wantLabels: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tree.Match(tt.method, tt.path)
			assert.Equal(t, tt.wantLabels, labels(got))
			if tt.wantParams != nil {
				require.NotEmpty(t, got)
				assert.Equal(t, tt.wantParams, got[len(got)-1].Params.Map())
			}
		})
	}
}

// TestTree_CatchAllOnce tests that an entry reachable through several
// spans runs once.
func TestTree_CatchAllOnce(t *testing.T) {
	t.Parallel()

	tree := newTree(t, routeDef{"ALL", "/f/:p{.+}/*"})
	got := tree.Match("GET", "/f/x/y/z")
	require.Len(t, got, 1)
	assert.Equal(t, "x/y/z", got[0].Params.ByName("p"))
}

// TestTree_OverlapOrder tests ordering for partially overlapping routes.
func TestTree_OverlapOrder(t *testing.T) {
	t.Parallel()

	tree := newTree(t,
		routeDef{"GET", "/:y/b"},
		routeDef{"GET", "/a/:x"},
		routeDef{"ALL", "/a/*"},
	)

	got := tree.Match("GET", "/a/b")
	assert.Equal(t, []string{"ALL /a/*", "GET /a/:x"}, labels(got))
	assert.Equal(t, []string{"GET /:y/b"}, labels(tree.Match("GET", "/z/b")))
}

// TestSplit tests path segmentation.
func TestSplit(t *testing.T) {
	t.Parallel()

	segs, ok := split("/")
	assert.True(t, ok)
	assert.Empty(t, segs)

	segs, ok = split("/a/")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", ""}, segs)

	_, ok = split("")
	assert.False(t, ok)
}

// TestTree_RootEmptyParam tests that "/" binds an empty value to a root
// parameter whose constraint accepts it.
func TestTree_RootEmptyParam(t *testing.T) {
	t.Parallel()

	tree := newTree(t,
		routeDef{"GET", "/:w{[0-9]*}"},
		routeDef{"GET", "/:name"},
	)

	matches := tree.Match("GET", "/")
	require.Len(t, matches, 1)
	assert.Equal(t, "GET /:w{[0-9]*}", labels(matches)[0])
	v, ok := matches[0].Params.Get("w")
	assert.True(t, ok)
	assert.Empty(t, v)

	assert.Equal(t, []string{"GET /:w{[0-9]*}"}, labels(tree.Match("GET", "/7")))
}
