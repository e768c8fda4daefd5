// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package ledger

import (
	"encoding/json"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
)

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount("100_000_000_000000000000000000")
	require.NoError(t, err)
	require.Equal(t, "100000000000000000000000000", FormatAmount(v))

	_, err = ParseAmount("-1")
	require.Equal(t, errors.BadRequest, errors.Code(err))

	_, err = ParseAmount("abc")
	require.Equal(t, errors.BadRequest, errors.Code(err))

	// 2^256
	_, err = ParseAmount("115792089237316195423570985008687907853269984665640564039457584007913129639936")
	require.Equal(t, errors.ArithmeticOverflow, errors.Code(err))
}

func TestFormatDecimal(t *testing.T) {
	cases := []struct {
		Amount   uint64
		Decimals uint8
		Want     string
	}{
		{1, 0, "1"},
		{1, 2, "0.01"},
		{100, 2, "1"},
		{150, 2, "1.5"},
		{123456, 3, "123.456"},
		{0, 18, "0"},
	}
	for _, c := range cases {
		require.Equal(t, c.Want, FormatDecimal(u(c.Amount), c.Decimals))
	}
}

func TestSumOverflow(t *testing.T) {
	v, err := Sum(nil)
	require.NoError(t, err)
	require.True(t, v.IsZero())

	_, err = Sum([]*uint256.Int{MaxAmount, u(1)})
	require.Equal(t, errors.ArithmeticOverflow, errors.Code(err))
}

func TestEventJSON(t *testing.T) {
	e := &Event{Sequence: 3, Kind: EventTransferred, From: alice, To: bob, Amount: u(42)}
	b, err := json.Marshal(e)
	require.NoError(t, err)
	require.NotContains(t, string(b), "asset")
	require.Contains(t, string(b), `"amount":"42"`)

	var f Event
	require.NoError(t, json.Unmarshal(b, &f))
	require.Equal(t, e.Kind, f.Kind)
	require.Equal(t, e.From, f.From)
	require.Equal(t, e.To, f.To)
	require.True(t, e.Amount.Eq(f.Amount))
}
