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

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"rivaas.dev/smartrouter/config"
	"rivaas.dev/smartrouter/router"
)

// addRoutes registers a static responder per route setting.
func addRoutes(r *router.Router, routes []config.RouteSettings) error {
	for _, rt := range routes {
		h, err := responder(rt)
		if err != nil {
			return fmt.Errorf("%s %s: %w", rt.Method, rt.Pattern, err)
		}
		if err = r.Add(strings.ToUpper(rt.Method), rt.Pattern, h); err != nil {
			return err
		}
	}
	return nil
}

// responder answers with the configured status, headers and body.
// A JSON value is encoded once up front.
func responder(rt config.RouteSettings) (router.HandlerFunc, error) {
	body := []byte(rt.Body)
	contentType := "text/plain; charset=utf-8"
	if rt.JSON != nil {
		encoded, err := json.Marshal(rt.JSON)
		if err != nil {
			return nil, fmt.Errorf("encode json body: %w", err)
		}
		body = encoded
		contentType = "application/json"
	}

	status := rt.StatusOrDefault()
	header := make(http.Header, len(rt.Headers)+1)
	header.Set("Content-Type", contentType)
	for k, v := range rt.Headers {
		header.Set(k, v)
	}

	return func(_ *router.Context, _ router.Next) (*router.Response, error) {
		resp := router.NewResponse(status, body)
		resp.Header = header.Clone()
		return resp, nil
	}, nil
}
