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
	"context"
	"errors"
	"fmt"
	"os"

	"dario.cat/mergo"
	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-yaml"
)

// Option configures a Loader.
type Option func(l *Loader)

type layer struct {
	name string
	read func() ([]byte, error)
}

// Loader assembles Settings from defaults, YAML layers and the
// environment.
type Loader struct {
	layers    []layer
	envPrefix string
	environ   func() []string
}

// WithFile adds a YAML file layer.
func WithFile(path string) Option {
	return func(l *Loader) {
		l.layers = append(l.layers, layer{
			name: fmt.Sprintf("file[%s]", path),
			read: func() ([]byte, error) { return os.ReadFile(path) },
		})
	}
}

// WithContent adds an in-memory YAML layer.
func WithContent(data []byte) Option {
	return func(l *Loader) {
		l.layers = append(l.layers, layer{
			name: fmt.Sprintf("content[%d]", len(l.layers)),
			read: func() ([]byte, error) { return data, nil },
		})
	}
}

// WithEnv enables environment overrides for variables starting with
// prefix, e.g. "SMARTROUTER_".
func WithEnv(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithEnviron replaces os.Environ as the environment source.
func WithEnviron(fn func() []string) Option {
	return func(l *Loader) {
		l.environ = fn
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{environ: os.Environ}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load merges every layer, decodes the result and validates it.
func (l *Loader) Load(ctx context.Context) (*Settings, error) {
	if ctx == nil {
		return nil, errors.New("context cannot be nil")
	}

	values, err := parse([]byte(DefaultYAML))
	if err != nil {
		return nil, NewError("defaults", "parse", err)
	}

	for _, ly := range l.layers {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		data, err := ly.read()
		if err != nil {
			return nil, NewError(ly.name, "read", err)
		}
		conf, err := parse(data)
		if err != nil {
			return nil, NewError(ly.name, "parse", err)
		}
		if err = mergo.Map(&values, conf, mergo.WithOverride); err != nil {
			return nil, NewError(ly.name, "merge", err)
		}
	}

	if l.envPrefix != "" {
		if err = applyEnv(values, l.envPrefix, l.environ()); err != nil {
			return nil, err
		}
	}

	settings, err := decode(values)
	if err != nil {
		return nil, NewError("binding", "decode", err)
	}
	if err = settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Default returns the built-in settings.
func Default() *Settings {
	s, err := New().Load(context.Background())
	if err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return s
}

func parse(data []byte) (map[string]any, error) {
	values := make(map[string]any)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	if values == nil {
		values = make(map[string]any)
	}
	return values, nil
}

func decode(values map[string]any) (*Settings, error) {
	var s Settings
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "config",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &s,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err = decoder.Decode(values); err != nil {
		return nil, err
	}
	return &s, nil
}
