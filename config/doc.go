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

// Package config loads the smartrouterd settings.
//
// Settings are assembled in layers, later layers overriding earlier ones:
//
//  1. built-in defaults (see DefaultYAML)
//  2. YAML documents given with WithFile or WithContent, in order
//  3. environment variables with the prefix given to WithEnv
//
// Environment keys map onto the settings tree by underscores, matching
// the longest known key at every level, so SMARTROUTER_SERVER_READ_TIMEOUT
// sets server.read_timeout. Values are converted to the type of the
// setting they replace.
//
//	settings, err := config.New(
//	    config.WithFile("smartrouterd.yaml"),
//	    config.WithEnv("SMARTROUTER_"),
//	).Load(ctx)
//
// Routes and mounts describe static responders:
//
//	routes:
//	  - method: GET
//	    pattern: /healthz
//	    body: ok
//	mounts:
//	  - base: /api/v1
//	    routes:
//	      - {method: GET, pattern: "/users/:id{[0-9]+}", json: {kind: user}}
package config
