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

// Package logging builds the structured logger shared by the router, its
// middleware and the server binary.
//
//	logger := logging.MustNew(
//	    logging.WithConsoleHandler(),
//	    logging.WithServiceName("smartrouterd"),
//	    logging.WithLevel(logging.LevelDebug),
//	)
//	r := router.MustNew(router.WithLogger(logger.Logger()))
//
// Every logger produced here redacts sensitive keys (password, token,
// secret, api_key, authorization) and, when a record is logged with a
// context that carries an OpenTelemetry span, adds trace_id and span_id.
//
// The level can be changed at runtime with SetLevel; loggers already
// handed out observe the change.
package logging
