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

// Package errors turns handler errors into router responses.
//
// Two formatters are provided:
//   - RFC9457: RFC 9457 Problem Details (application/problem+json)
//   - Simple: {"error": "..."} objects (application/json)
//
// Handler adapts a Formatter into a router.ErrorHandler that also logs
// the error:
//
//	r := router.MustNew(
//	    router.WithErrorHandler(errors.Handler(errors.NewRFC9457("https://api.example.com/problems"), logger)),
//	)
//
// Messages of 5xx errors are replaced by the status text unless the
// formatter sets ExposeInternal, so internal details do not leak.
//
// # Error Interfaces
//
// Domain errors can implement optional interfaces:
//
//   - ErrorType: declare the HTTP status code
//   - ErrorDetails: provide structured details (e.g. field-level validation errors)
//   - ErrorCode: provide a machine-readable error code
//
// WithStatus attaches a status to any error. Errors wrapping
// context.DeadlineExceeded map to 504.
package errors
