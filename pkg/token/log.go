// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package token

import (
	"log/slog"

	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/ledger"
)

// Logger is a hook that logs every mutating call.
type Logger struct {
	logger *slog.Logger
}

var _ Hook = (*Logger)(nil)

// NewLogger returns a logging hook. The logger receives a module=token
// attribute.
func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger.With("module", "token")}
}

func (l *Logger) Before(c *Call) error {
	l.logger.Debug("Executing", "id", c.ID, "op", c.Op, "caller", c.Caller)
	return nil
}

func (l *Logger) After(c *Call, err error) {
	if err != nil {
		code := errors.Code(err)
		if code.IsClientError() {
			l.logger.Info("Rejected", "id", c.ID, "op", c.Op, "caller", c.Caller, "code", code, "error", err)
		} else {
			l.logger.Error("Failed", "id", c.ID, "op", c.Op, "caller", c.Caller, "error", err)
		}
		return
	}

	l.logger.Debug("Executed", "id", c.ID, "op", c.Op, "caller", c.Caller, "events", len(c.Events), "duration", c.Duration)
	for _, e := range c.Events {
		l.logger.Info("Event", append([]any{"id", c.ID}, eventAttrs(e)...)...)
	}
}

func eventAttrs(e *ledger.Event) []any {
	attrs := []any{"seq", e.Sequence, "kind", e.Kind}
	if e.From != zeroAddr {
		attrs = append(attrs, "from", e.From)
	}
	if e.To != zeroAddr {
		attrs = append(attrs, "to", e.To)
	}
	if e.Asset != zeroAddr {
		attrs = append(attrs, "asset", e.Asset)
	}
	if e.Amount != nil {
		attrs = append(attrs, "amount", ledger.FormatAmount(e.Amount))
	}
	if e.Count != 0 {
		attrs = append(attrs, "count", e.Count)
	}
	return attrs
}
