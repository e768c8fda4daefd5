// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newJSONLogger(t *testing.T, rules string) (*slog.Logger, *bytes.Buffer) {
	r, err := ParseRules(rules)
	require.NoError(t, err)
	buf := new(bytes.Buffer)
	h, err := NewHandler(Config{Format: "json", Rules: r}, buf)
	require.NoError(t, err)
	return slog.New(h), buf
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		v := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &v))
		out = append(out, v)
	}
	return out
}

func TestLoggingCtxAttrs(t *testing.T) {
	logger, buf := newJSONLogger(t, "debug")

	ctx := With(context.Background(), "foo", "bar")
	logger.InfoContext(ctx, "Hello world")

	records := lines(t, buf)
	require.Len(t, records, 1)
	require.Equal(t, "Hello world", records[0][messageKey])
	require.Equal(t, "bar", records[0]["foo"])
}

func TestModuleRules(t *testing.T) {
	logger, buf := newJSONLogger(t, "error;token=debug")

	logger.Info("dropped")
	logger.Info("kept", "module", "token")
	logger.With("module", "token").Debug("kept too")
	logger.With("module", "badger").Info("dropped too")
	logger.Error("kept error")

	var messages []string
	for _, r := range lines(t, buf) {
		messages = append(messages, r[messageKey].(string))
	}
	require.Equal(t, []string{"kept", "kept too", "kept error"}, messages)
}

func TestContextModule(t *testing.T) {
	logger, buf := newJSONLogger(t, "error;ledger=info")

	ctx := With(context.Background(), "module", "ledger")
	logger.InfoContext(ctx, "kept")
	logger.InfoContext(context.Background(), "dropped")

	records := lines(t, buf)
	require.Len(t, records, 1)
	require.Equal(t, "kept", records[0][messageKey])
}

func TestPlainLogging(t *testing.T) {
	buf := new(bytes.Buffer)
	h, err := NewHandler(Config{Rules: Rules{{Level: slog.LevelDebug}}, NoColor: true}, buf)
	require.NoError(t, err)

	slog.New(h).Info("Hello world", "amount", 10)
	out := buf.String()
	require.Contains(t, out, "INFO")
	require.Contains(t, out, "Hello world")
	require.Contains(t, out, "amount=10")
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := NewHandler(Config{Format: "xml"}, new(bytes.Buffer))
	require.Error(t, err)
}

func TestParseRules(t *testing.T) {
	rules, err := ParseRules("error; token=debug;*=warn")
	require.NoError(t, err)
	require.Equal(t, Rules{
		{Level: slog.LevelError},
		{Module: "token", Level: slog.LevelDebug},
		{Level: slog.LevelWarn},
	}, rules)
	require.Equal(t, "ERROR;token=DEBUG;WARN", rules.String())

	_, err = ParseRules("token=loud")
	require.Error(t, err)
}
