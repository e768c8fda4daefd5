// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/holiman/uint256"
	"github.com/spf13/pflag"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/ledger"
)

var (
	colorError   = color.New(color.FgRed, color.Bold)
	colorOK      = color.New(color.FgGreen)
	colorLabel   = color.New(color.FgHiBlack)
	colorAmount  = color.New(color.FgCyan)
	colorAddress = color.New(color.FgYellow)
	colorWarn    = color.New(color.FgYellow, color.Bold)
)

func disableColor() {
	color.NoColor = true
}

// formatTokens formats an amount in whole tokens with thousands separators.
func formatTokens(v *uint256.Int, decimals uint8) string {
	s := ledger.FormatDecimal(v, decimals)
	whole, frac, _ := strings.Cut(s, ".")
	b, _ := new(big.Int).SetString(whole, 10)
	whole = humanize.BigComma(b)
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

func parseAddress(s string) common.Address {
	if !common.IsHexAddress(s) {
		fatalf("invalid address %q", s)
	}
	return common.HexToAddress(s)
}

func parseAmount(s string) *uint256.Int {
	v, err := ledger.ParseAmount(s)
	checkf(err, "invalid amount")
	return v
}

// addressFlag is a flag holding an address.
type addressFlag common.Address

var _ pflag.Value = (*addressFlag)(nil)

func (f *addressFlag) String() string {
	if *f == (addressFlag{}) {
		return ""
	}
	return common.Address(*f).Hex()
}

func (f *addressFlag) Set(s string) error {
	if !common.IsHexAddress(s) {
		return errors.BadRequest.WithFormat("invalid address %q", s)
	}
	*f = addressFlag(common.HexToAddress(s))
	return nil
}

func (f *addressFlag) Type() string { return "address" }

func (f *addressFlag) Address() common.Address { return common.Address(*f) }
