// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package ledger

import (
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
)

// MaxAmount is the largest representable amount. An allowance of MaxAmount is
// never decreased.
var MaxAmount = new(uint256.Int).SetAllOne()

// ParseAmount parses a non-negative base-10 integer.
func ParseAmount(s string) (*uint256.Int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.BadRequest.WithFormat("invalid amount %q", s)
	}
	if b.Sign() < 0 {
		return nil, errors.BadRequest.WithFormat("invalid amount %q: negative", s)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, errors.ArithmeticOverflow.WithFormat("amount %s does not fit in 256 bits", s)
	}
	return v, nil
}

// FormatAmount formats an amount as a base-10 integer.
func FormatAmount(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.ToBig().String()
}

// FormatDecimal formats an amount with the given number of decimal places,
// trimming trailing zeros.
func FormatDecimal(v *uint256.Int, decimals uint8) string {
	s := FormatAmount(v)
	if decimals == 0 {
		return s
	}
	d := int(decimals)
	if len(s) <= d {
		s = strings.Repeat("0", d-len(s)+1) + s
	}
	whole, frac := s[:len(s)-d], strings.TrimRight(s[len(s)-d:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

func add(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, errors.ArithmeticOverflow.WithFormat("%s + %s overflows", FormatAmount(x), FormatAmount(y))
	}
	return z, nil
}

func sub(x, y *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(x, y)
	if underflow {
		return nil, errors.ArithmeticOverflow.WithFormat("%s - %s underflows", FormatAmount(x), FormatAmount(y))
	}
	return z, nil
}

// Sum adds the amounts, failing with ArithmeticOverflow instead of wrapping.
func Sum(amounts []*uint256.Int) (*uint256.Int, error) {
	total := new(uint256.Int)
	for _, a := range amounts {
		if a == nil {
			return nil, errors.BadRequest.With("missing amount")
		}
		var err error
		total, err = add(total, a)
		if err != nil {
			return nil, err
		}
	}
	return total, nil
}
