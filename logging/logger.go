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

package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// HandlerType represents the type of logging handler.
type HandlerType string

const (
	// JSONHandler outputs structured JSON logs.
	JSONHandler HandlerType = "json"
	// TextHandler outputs key=value text logs.
	TextHandler HandlerType = "text"
	// ConsoleHandler outputs human-readable colored logs.
	ConsoleHandler HandlerType = "console"
)

// Level represents log level.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// SamplingConfig thins out high-volume logs.
//
// The first Initial records of each Tick are logged, then one in every
// Thereafter. Records at LevelError and above are never dropped.
type SamplingConfig struct {
	Initial    int
	Thereafter int           // 0 logs everything after Initial
	Tick       time.Duration // 0 never resets the counter
}

// Logger builds and owns a configured *slog.Logger.
// All methods are safe for concurrent use.
type Logger struct {
	handlerType HandlerType
	output      io.Writer
	level       *slog.LevelVar

	serviceName    string
	serviceVersion string
	environment    string

	addSource   bool
	replaceAttr func(groups []string, a slog.Attr) slog.Attr

	sampling      *SamplingConfig
	sampleCounter atomic.Int64
	sampleStop    chan struct{}
	stopOnce      sync.Once

	customLogger   *slog.Logger
	useCustom      bool
	registerGlobal bool

	slogger *slog.Logger
}

// Option configures a Logger.
type Option func(*Logger)

func defaultLogger() *Logger {
	l := &Logger{
		handlerType: JSONHandler,
		output:      os.Stdout,
		level:       new(slog.LevelVar),
	}
	l.level.Set(LevelInfo)
	return l
}

// New creates a Logger. It does not replace slog's default logger unless
// WithGlobalLogger is given.
func New(opts ...Option) (*Logger, error) {
	l := defaultLogger()
	for _, opt := range opts {
		opt(l)
	}

	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := l.initialize(); err != nil {
		return nil, err
	}
	return l, nil
}

// MustNew creates a Logger or panics on error.
func MustNew(opts ...Option) *Logger {
	l, err := New(opts...)
	if err != nil {
		panic("logging initialization failed: " + err.Error())
	}
	return l
}

// Validate checks the configuration.
func (l *Logger) Validate() error {
	if l.useCustom {
		if l.customLogger == nil {
			return ErrNilLogger
		}
		return nil
	}
	if l.output == nil {
		return errors.New("output writer cannot be nil")
	}
	switch l.handlerType {
	case JSONHandler, TextHandler, ConsoleHandler:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidHandler, l.handlerType)
	}
	if l.sampling != nil && (l.sampling.Initial < 0 || l.sampling.Thereafter < 0 || l.sampling.Tick < 0) {
		return errors.New("sampling config values must be non-negative")
	}
	return nil
}

func (l *Logger) initialize() error {
	if l.useCustom {
		l.slogger = l.customLogger
	} else {
		l.slogger = slog.New(l.buildHandler())

		var attrs []any
		if l.serviceName != "" {
			attrs = append(attrs, "service", l.serviceName)
		}
		if l.serviceVersion != "" {
			attrs = append(attrs, "version", l.serviceVersion)
		}
		if l.environment != "" {
			attrs = append(attrs, "env", l.environment)
		}
		if len(attrs) > 0 {
			l.slogger = l.slogger.With(attrs...)
		}

		if l.sampling != nil && l.sampling.Tick > 0 {
			l.sampleStop = make(chan struct{})
			go l.resetSampling(l.sampling.Tick)
		}
	}

	if l.registerGlobal {
		slog.SetDefault(l.slogger)
	}
	return nil
}

// buildHandler stacks sampling over trace correlation over the output
// handler.
func (l *Logger) buildHandler() slog.Handler {
	opts := &slog.HandlerOptions{
		Level:       l.level,
		AddSource:   l.addSource,
		ReplaceAttr: l.buildReplaceAttr(),
	}

	var h slog.Handler
	switch l.handlerType {
	case TextHandler:
		h = slog.NewTextHandler(l.output, opts)
	case ConsoleHandler:
		h = newConsoleHandler(l.output, opts)
	default:
		h = slog.NewJSONHandler(l.output, opts)
	}

	h = &traceHandler{next: h}
	if l.sampling != nil {
		h = &samplingHandler{next: h, cfg: *l.sampling, counter: &l.sampleCounter}
	}
	return h
}

func (l *Logger) resetSampling(tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sampleCounter.Store(0)
		case <-l.sampleStop:
			return
		}
	}
}

var sensitiveKeys = map[string]bool{
	"password":      true,
	"token":         true,
	"secret":        true,
	"api_key":       true,
	"authorization": true,
}

func (l *Logger) buildReplaceAttr() func(groups []string, a slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if sensitiveKeys[strings.ToLower(a.Key)] {
			return slog.String(a.Key, "***REDACTED***")
		}
		if l.replaceAttr != nil {
			return l.replaceAttr(groups, a)
		}
		return a
	}
}

// Logger returns the configured *slog.Logger.
func (l *Logger) Logger() *slog.Logger {
	return l.slogger
}

// With returns a child logger with the given attributes.
func (l *Logger) With(args ...any) *slog.Logger {
	return l.slogger.With(args...)
}

// SetLevel changes the minimum level of this logger and every child.
func (l *Logger) SetLevel(level Level) error {
	if l.useCustom {
		return ErrCannotChangeLevel
	}
	l.level.Set(level)
	return nil
}

// Level returns the current minimum level.
func (l *Logger) Level() Level {
	if l.useCustom {
		for _, lv := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError} {
			if l.customLogger.Enabled(context.Background(), lv) {
				return lv
			}
		}
		return LevelError
	}
	return l.level.Level()
}

// ServiceName returns the configured service name.
func (l *Logger) ServiceName() string {
	return l.serviceName
}

// Shutdown stops background sampling work. Logging after Shutdown
// still works.
func (l *Logger) Shutdown(_ context.Context) error {
	l.stopOnce.Do(func() {
		if l.sampleStop != nil {
			close(l.sampleStop)
		}
	})
	return nil
}

// ParseLevel converts a level name such as "debug" or "WARN" to a Level.
func ParseLevel(s string) (Level, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "WARNING" {
		name = "WARN"
	}
	var lv Level
	if err := lv.UnmarshalText([]byte(name)); err != nil {
		return LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return lv, nil
}
