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
	"iter"
	"net/url"
)

// Param is one bound path parameter.
type Param struct {
	Key string
	Raw string // as it appeared in the request path

	value   string
	decoded bool
}

// Value returns the percent-decoded value. Decoding happens once; a value
// that is not valid percent-encoding is returned unchanged.
func (p *Param) Value() string {
	if !p.decoded {
		v, err := url.PathUnescape(p.Raw)
		if err != nil {
			v = p.Raw
		}
		p.value = v
		p.decoded = true
	}
	return p.value
}

// Params are the parameters bound by one matched entry, in path order.
// A Params value belongs to a single request.
type Params []Param

// Add appends a parameter with its raw value.
func (ps Params) Add(key, raw string) Params {
	return append(ps, Param{Key: key, Raw: raw})
}

// Get returns the decoded value of the named parameter.
func (ps Params) Get(key string) (string, bool) {
	for i := range ps {
		if ps[i].Key == key {
			return ps[i].Value(), true
		}
	}
	return "", false
}

// ByName returns the decoded value of the named parameter or "".
func (ps Params) ByName(key string) string {
	v, _ := ps.Get(key)
	return v
}

// Len returns the number of parameters.
func (ps Params) Len() int {
	return len(ps)
}

// All iterates over keys and decoded values in path order.
func (ps Params) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for i := range ps {
			if !yield(ps[i].Key, ps[i].Value()) {
				return
			}
		}
	}
}

// Map returns the decoded parameters as a map.
func (ps Params) Map() map[string]string {
	m := make(map[string]string, len(ps))
	for k, v := range ps.All() {
		m[k] = v
	}
	return m
}
