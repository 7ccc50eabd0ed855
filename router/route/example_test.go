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

package route_test

import (
	"fmt"

	"rivaas.dev/smartrouter/router/pattern"
	"rivaas.dev/smartrouter/router/route"
)

// ExampleRegistry demonstrates how entries become visible per method.
func ExampleRegistry() {
	parser := pattern.NewParser(nil)
	reg := route.NewRegistry()

	for _, r := range []struct{ method, path string }{
		{"GET", "/users/:id"},
		{route.MethodAll, "/*"},
		{"POST", "/users"},
	} {
		patterns, err := parser.Parse(r.path)
		if err != nil {
			fmt.Println("Error:", err)
			return
		}
		if _, err := reg.Insert(r.method, patterns, nil); err != nil {
			fmt.Println("Error:", err)
			return
		}
	}

	table := reg.Finalize()
	for _, e := range table.For("GET") {
		fmt.Println(e.Method, e.Pattern)
	}
	// Output:
	// GET /users/:id
	// ALL /*
}

// ExampleParams demonstrates lazy percent-decoding of parameters.
func ExampleParams() {
	ps := route.Params{}.Add("q", "caf%C3%A9")
	fmt.Println(ps.ByName("q"))
	fmt.Println(ps[0].Raw)
	// Output:
	// café
	// caf%C3%A9
}
