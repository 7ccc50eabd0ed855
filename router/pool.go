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

package router

import (
	"sync"
)

var contextPool = sync.Pool{
	New: func() any {
		c := &Context{}
		c.reset()
		return c
	},
}

// acquireContext retrieves a Context from the pool.
func acquireContext() *Context {
	c, ok := contextPool.Get().(*Context)
	if !ok {
		// This should never happen in normal operation.
		panic("router: pool corruption - contextPool returned non-Context type")
	}
	return c
}

// releaseContext cleans up and returns a context to the pool.
//
// Usage:
//
//	c := acquireContext()
//	defer releaseContext(c)
func releaseContext(c *Context) {
	c.reset()
	contextPool.Put(c)
}
