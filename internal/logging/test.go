// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package logging

import (
	"io"
	"log/slog"
	"strings"
	"testing"
)

// TestLogger writes log output to a test's log.
type TestLogger struct {
	Test testing.TB
}

var _ io.Writer = (*TestLogger)(nil)

func (l *TestLogger) Write(b []byte) (int, error) {
	s := string(b)
	if strings.HasSuffix(s, "\n") {
		s = s[:len(s)-1]
	}
	l.Test.Log(s)
	return len(b), nil
}

// NewTestLogger returns a logger that writes plain text to the test's log
// with the given rules.
func NewTestLogger(t testing.TB, rules string) *slog.Logger {
	r, err := ParseRules(rules)
	if err != nil {
		t.Fatalf("Invalid log rules: %v", err)
	}

	h, err := NewHandler(Config{Format: "text", Rules: r, NoColor: true}, &TestLogger{Test: t})
	if err != nil {
		t.Fatalf("Failed to create log handler: %v", err)
	}
	return slog.New(h)
}
