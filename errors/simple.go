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

package errors

import (
	"errors"
	"net/http"

	"rivaas.dev/smartrouter/router"
)

// Simple formats errors as {"error": "message", "details": ..., "code": "..."}
// with Content-Type "application/json".
type Simple struct {
	// StatusResolver determines the HTTP status from an error.
	// If nil, StatusOf's default mapping applies.
	StatusResolver func(err error) int

	// ExposeInternal includes the error message of 5xx errors.
	ExposeInternal bool
}

// NewSimple creates a new Simple formatter.
func NewSimple() *Simple {
	return &Simple{}
}

// Format implements Formatter.
func (f *Simple) Format(_ *router.Context, err error) *router.Response {
	status := StatusOf(err, f.StatusResolver)

	body := map[string]any{
		"error": message(err, status, f.ExposeInternal),
	}
	var detailed ErrorDetails
	if errors.As(err, &detailed) {
		body["details"] = detailed.Details()
	}
	var coded ErrorCode
	if errors.As(err, &coded) {
		body["code"] = coded.Code()
	}

	resp, mErr := router.JSON(status, body)
	if mErr != nil {
		return router.Text(status, http.StatusText(status))
	}
	resp.Header.Set("Content-Type", "application/json; charset=utf-8")
	return resp
}
