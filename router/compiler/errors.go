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

package compiler

import (
	"errors"
	"fmt"
)

// ErrAmbiguousRoute marks a route set the combined expression cannot represent.
var ErrAmbiguousRoute = errors.New("route set cannot be compiled")

// AmbiguousRouteError describes why compilation was rejected.
// It is a build-time signal; callers fall back to the trie matcher.
type AmbiguousRouteError struct {
	Method  string
	Pattern string // route that triggered the rejection
	Other   string // conflicting route, if any
	Reason  string
	Err     error // regexp compile error, if any
}

func (e *AmbiguousRouteError) Error() string {
	msg := fmt.Sprintf("ambiguous route %s %s: %s", e.Method, e.Pattern, e.Reason)
	if e.Other != "" {
		msg += " (conflicts with " + e.Other + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches ErrAmbiguousRoute.
func (e *AmbiguousRouteError) Is(target error) bool {
	return target == ErrAmbiguousRoute
}

// Unwrap returns the underlying regexp error.
func (e *AmbiguousRouteError) Unwrap() error {
	return e.Err
}
