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
	"errors"
	"fmt"
)

// ErrRegistryFinalized is returned when a route is added after the router
// committed its matching strategy.
var ErrRegistryFinalized = errors.New("route registry is finalized")

// RegistryFinalizedError reports the rejected registration.
type RegistryFinalizedError struct {
	Method  string
	Pattern string
}

func (e *RegistryFinalizedError) Error() string {
	return fmt.Sprintf("cannot register %s %s: %v", e.Method, e.Pattern, ErrRegistryFinalized)
}

// Unwrap returns ErrRegistryFinalized.
func (e *RegistryFinalizedError) Unwrap() error {
	return ErrRegistryFinalized
}
