// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package logging

import (
	"fmt"
	"log/slog"
	"strings"

	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
)

// Rule sets the level for a module. A rule with no module sets the default
// level.
type Rule struct {
	Module string
	Level  slog.Level
}

// Rules is a set of logging rules.
type Rules []Rule

// DefaultRules logs errors, plus informational messages from the token
// module.
var DefaultRules = "error;token=info"

// ParseRules parses a string such as "error;token=debug" into a set of rules.
func ParseRules(s string) (Rules, error) {
	var rules Rules
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		var rule Rule
		module, level, ok := strings.Cut(part, "=")
		if ok {
			rule.Module = strings.ToLower(strings.TrimSpace(module))
		} else {
			level = module
		}
		if rule.Module == "*" {
			rule.Module = ""
		}

		err := rule.Level.UnmarshalText([]byte(strings.TrimSpace(level)))
		if err != nil {
			return nil, errors.BadRequest.WithFormat("invalid log level %q: %w", level, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// String converts the rules back into a string, for example
// "ERROR;token=DEBUG".
func (r Rules) String() string {
	s := new(strings.Builder)
	for i, rule := range r {
		if i > 0 {
			s.WriteString(";")
		}
		if rule.Module == "" {
			s.WriteString(rule.Level.String())
		} else {
			fmt.Fprintf(s, "%s=%s", rule.Module, rule.Level)
		}
	}
	return s.String()
}
