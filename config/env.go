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

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// applyEnv overrides values with prefixed environment variables.
// Variables that name no known setting are ignored.
func applyEnv(values map[string]any, prefix string, environ []string) error {
	for _, kv := range environ {
		key, raw, found := strings.Cut(kv, "=")
		if !found || !strings.HasPrefix(key, prefix) {
			continue
		}
		parts := strings.Split(strings.ToLower(strings.TrimPrefix(key, prefix)), "_")
		path, parent, ok := resolve(values, parts)
		if !ok {
			continue
		}

		leaf := path[len(path)-1]
		v, err := convert(parent[leaf], strings.TrimSpace(raw))
		if err != nil {
			return NewFieldError("env", strings.Join(path, "."), "convert", fmt.Errorf("%s: %w", key, err))
		}
		parent[leaf] = v
	}
	return nil
}

// resolve finds the setting named by underscore-separated parts,
// preferring the longest key at each level. It returns the key path and
// the map holding the leaf.
func resolve(m map[string]any, parts []string) ([]string, map[string]any, bool) {
	for i := len(parts); i >= 1; i-- {
		key := strings.Join(parts[:i], "_")
		v, exists := m[key]
		if !exists {
			continue
		}
		if i == len(parts) {
			if _, isMap := v.(map[string]any); isMap {
				return nil, nil, false
			}
			return []string{key}, m, true
		}
		if sub, isMap := v.(map[string]any); isMap {
			if path, parent, ok := resolve(sub, parts[i:]); ok {
				return append([]string{key}, path...), parent, true
			}
		}
	}
	return nil, nil, false
}

// convert parses raw into the type of the value it replaces.
func convert(current any, raw string) (any, error) {
	switch current.(type) {
	case bool:
		return cast.ToBoolE(raw)
	case int, int64, uint64:
		return cast.ToInt64E(raw)
	case float64:
		return cast.ToFloat64E(raw)
	case []any:
		if raw == "" {
			return []any{}, nil
		}
		items := strings.Split(raw, ",")
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = strings.TrimSpace(item)
		}
		return out, nil
	default:
		return raw, nil
	}
}
