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
	"errors"
	"fmt"
)

var (
	// ErrDoubleContinuation indicates a handler invoked its continuation more than once.
	ErrDoubleContinuation = errors.New("continuation invoked more than once")

	// ErrInvalidStrategy indicates that WithStrategy received an unknown strategy.
	ErrInvalidStrategy = errors.New("invalid routing strategy")

	// ErrInvalidMountBase indicates a mount prefix that is not a single
	// segment-aligned pattern.
	ErrInvalidMountBase = errors.New("invalid mount base")

	// ErrInvalidHandler indicates a handler of an unsupported type.
	ErrInvalidHandler = errors.New("invalid handler")

	// ErrNilHandler indicates a nil handler was registered.
	ErrNilHandler = errors.New("handler is nil")

	// ErrServerTimeoutInvalid indicates that a server timeout is negative.
	ErrServerTimeoutInvalid = errors.New("server timeout must not be negative")
)

// DoubleContinuationError is returned by Next.Run when the frame's
// continuation already ran. It is a programming error and is never
// passed to the error handler.
type DoubleContinuationError struct {
	Method string
	Path   string
	Route  string // pattern of the handler that called next twice
}

func (e *DoubleContinuationError) Error() string {
	return fmt.Sprintf("%s %s: handler for %s: %v", e.Method, e.Path, e.Route, ErrDoubleContinuation)
}

// Unwrap returns ErrDoubleContinuation.
func (e *DoubleContinuationError) Unwrap() error {
	return ErrDoubleContinuation
}
