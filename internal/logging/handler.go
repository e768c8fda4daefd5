// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
)

const messageKey = "message"

// Config configures a log handler.
type Config struct {
	// Format is text (or plain) or json.
	Format string

	// Rules sets the default and per-module log levels.
	Rules Rules

	// NoColor disables colors for text output.
	NoColor bool
}

// NewHandler creates a slog handler that writes to w and filters records by
// module according to the configured rules. Text output is rendered with
// zerolog's console writer.
func NewHandler(cfg Config, w io.Writer) (slog.Handler, error) {
	defaultLevel := slog.LevelError
	modules := map[string]slog.Level{}
	for _, r := range cfg.Rules {
		if r.Module == "" {
			defaultLevel = r.Level
		} else {
			modules[r.Module] = r.Level
		}
	}

	lowestLevel := defaultLevel
	for _, l := range modules {
		if l < lowestLevel {
			lowestLevel = l
		}
	}

	opts := &slog.HandlerOptions{
		Level: lowestLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 || a.Key != slog.MessageKey {
				return a
			}
			if a.Value.Kind() == slog.KindString {
				return slog.Any(messageKey, a.Value)
			}
			return slog.String(messageKey, fmt.Sprint(a.Value.Any()))
		},
	}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text", "plain":
		h = slog.NewJSONHandler(ConsoleWriter(w, cfg.NoColor), opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, errors.BadRequest.WithFormat("log format %q is not supported", cfg.Format)
	}

	return &logHandler{
		handler:      h,
		defaultLevel: defaultLevel,
		lowestLevel:  lowestLevel,
		modules:      modules,
	}, nil
}

// ConsoleWriter creates a zerolog console writer that formats JSON log
// messages as plain text.
func ConsoleWriter(w io.Writer, noColor bool) io.Writer {
	return &zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: time.RFC3339,
		FormatLevel: func(i interface{}) string {
			if ll, ok := i.(string); ok {
				return strings.ToUpper(ll)
			}
			return "????"
		},
		FormatMessage: func(i interface{}) string {
			s, ok := i.(string)
			if ok {
				return s
			}
			return fmt.Sprint(i)
		},
	}
}

type logHandler struct {
	handler      slog.Handler
	defaultLevel slog.Level
	lowestLevel  slog.Level
	modules      map[string]slog.Level

	// module is set if WithAttrs has been called with a module attribute
	module string
}

func (h *logHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	i := *h
	i.handler = h.handler.WithAttrs(attrs)
	if m, ok := moduleOf(attrs); ok {
		i.module = m
	}
	return &i
}

func (h *logHandler) WithGroup(name string) slog.Handler {
	i := *h
	i.handler = h.handler.WithGroup(name)
	return &i
}

func (h *logHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level < h.lowestLevel {
		return false
	}
	if h.module != "" && level < h.levelFor(h.module) {
		return false
	}
	if m, ok := moduleOf(Attrs(ctx)); ok && level < h.levelFor(m) {
		return false
	}
	return h.handler.Enabled(ctx, level)
}

func (h *logHandler) Handle(ctx context.Context, record slog.Record) error {
	module := h.module
	if m, ok := moduleOf(Attrs(ctx)); ok {
		module = m
	}
	record.Attrs(func(a slog.Attr) bool {
		if a.Key == "module" {
			module = strings.ToLower(a.Value.String())
			return false
		}
		return true
	})
	if record.Level < h.levelFor(module) {
		return nil
	}

	if attrs := Attrs(ctx); len(attrs) > 0 {
		record = record.Clone()
		record.AddAttrs(attrs...)
	}
	return h.handler.Handle(ctx, record)
}

func (h *logHandler) levelFor(module string) slog.Level {
	if module == "" {
		return h.defaultLevel
	}
	if l, ok := h.modules[module]; ok {
		return l
	}
	return h.defaultLevel
}

func moduleOf(attrs []slog.Attr) (string, bool) {
	for _, a := range attrs {
		if a.Key == "module" {
			return strings.ToLower(a.Value.String()), true
		}
	}
	return "", false
}
