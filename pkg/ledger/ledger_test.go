// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package ledger

import (
	"math/rand"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/database/keyvalue/memory"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
)

var (
	alice = common.HexToAddress("0xA11CE00000000000000000000000000000000001")
	bob   = common.HexToAddress("0xB0B0000000000000000000000000000000000002")
	carol = common.HexToAddress("0xCA20100000000000000000000000000000000003")
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

func setup(t testing.TB, maxSupply uint64) (*memory.Database, keyvalue.ChangeSet, *Ledger) {
	t.Helper()
	db := memory.New()
	batch := db.Begin(true)
	t.Cleanup(batch.Discard)
	l, err := Init(batch, u(maxSupply))
	require.NoError(t, err)
	return db, batch, l
}

func requireBalance(t testing.TB, l *Ledger, a common.Address, want uint64) {
	t.Helper()
	v, err := l.BalanceOf(a)
	require.NoError(t, err)
	require.Equal(t, want, v.Uint64())
}

func requireCode(t testing.TB, err error, code errors.Status) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, errors.Code(err), "%v", err)
}

func TestInit(t *testing.T) {
	_, batch, _ := setup(t, 1000)

	_, err := Init(batch, u(1000))
	requireCode(t, err, errors.BadRequest)

	_, err = Init(memory.New().Begin(true), new(uint256.Int))
	requireCode(t, err, errors.BadRequest)

	_, err = Load(memory.New().Begin(false))
	requireCode(t, err, errors.NotFound)
}

func TestLoadAfterCommit(t *testing.T) {
	db, batch, l := setup(t, 1000)
	require.NoError(t, l.Mint(alice, u(10)))
	require.NoError(t, batch.Commit())

	l, err := Load(db.Begin(false))
	require.NoError(t, err)
	require.Equal(t, uint64(1000), l.MaxSupply().Uint64())
	requireBalance(t, l, alice, 10)
}

func TestMint(t *testing.T) {
	_, _, l := setup(t, 1000)

	require.NoError(t, l.Mint(alice, u(900)))
	require.NoError(t, l.Mint(alice, u(100)))
	requireBalance(t, l, alice, 1000)

	// At the cap
	err := l.Mint(bob, u(1))
	requireCode(t, err, errors.SupplyCapExceeded)
	requireBalance(t, l, bob, 0)

	supply, err := l.TotalIssued()
	require.NoError(t, err)
	require.Equal(t, uint64(1000), supply.Uint64())
}

func TestMintZeroAddress(t *testing.T) {
	_, _, l := setup(t, 1000)
	requireCode(t, l.Mint(common.Address{}, u(1)), errors.InvalidRecipient)
}

func TestMintZeroEmits(t *testing.T) {
	_, batch, l := setup(t, 1000)
	require.NoError(t, l.Mint(alice, u(0)))
	requireBalance(t, l, alice, 0)

	events, err := LoadEvents(batch, 0, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, EventIssued, events[0].Kind)
	require.Equal(t, alice, events[0].To)
	require.True(t, events[0].Amount.IsZero())
}

func TestMintOverflow(t *testing.T) {
	db := memory.New()
	batch := db.Begin(true)
	defer batch.Discard()
	l, err := Init(batch, MaxAmount)
	require.NoError(t, err)

	require.NoError(t, l.Mint(alice, MaxAmount))
	requireCode(t, l.Mint(bob, u(1)), errors.ArithmeticOverflow)
}

func TestBurn(t *testing.T) {
	_, _, l := setup(t, 1000)
	require.NoError(t, l.Mint(alice, u(100)))

	requireCode(t, l.Burn(alice, u(101)), errors.InsufficientBalance)
	requireBalance(t, l, alice, 100)

	require.NoError(t, l.Burn(alice, u(40)))
	requireBalance(t, l, alice, 60)
	supply, err := l.TotalIssued()
	require.NoError(t, err)
	require.Equal(t, uint64(60), supply.Uint64())
}

func TestTransfer(t *testing.T) {
	_, _, l := setup(t, 1000)
	require.NoError(t, l.Mint(alice, u(100)))

	requireCode(t, l.Transfer(alice, bob, u(101)), errors.InsufficientBalance)
	requireCode(t, l.Transfer(alice, common.Address{}, u(1)), errors.InvalidRecipient)
	requireBalance(t, l, alice, 100)
	requireBalance(t, l, bob, 0)

	require.NoError(t, l.Transfer(alice, bob, u(30)))
	requireBalance(t, l, alice, 70)
	requireBalance(t, l, bob, 30)
}

func TestSelfTransfer(t *testing.T) {
	_, _, l := setup(t, 1000)
	require.NoError(t, l.Mint(alice, u(100)))

	require.NoError(t, l.Transfer(alice, alice, u(100)))
	requireBalance(t, l, alice, 100)

	requireCode(t, l.Transfer(alice, alice, u(101)), errors.InsufficientBalance)

	kinds := []EventKind{}
	for _, e := range l.Emitted() {
		kinds = append(kinds, e.Kind)
	}
	require.Equal(t, []EventKind{EventIssued, EventTransferred}, kinds)
}

func TestAllowance(t *testing.T) {
	_, _, l := setup(t, 1000)

	requireCode(t, l.Approve(alice, common.Address{}, u(1)), errors.InvalidSpender)

	require.NoError(t, l.Approve(alice, bob, u(50)))
	v, err := l.Allowance(alice, bob)
	require.NoError(t, err)
	require.Equal(t, uint64(50), v.Uint64())

	requireCode(t, l.SpendAllowance(alice, bob, u(51)), errors.InsufficientAllowance)
	require.NoError(t, l.SpendAllowance(alice, bob, u(20)))
	v, err = l.Allowance(alice, bob)
	require.NoError(t, err)
	require.Equal(t, uint64(30), v.Uint64())

	// Unlimited
	require.NoError(t, l.Approve(alice, carol, MaxAmount))
	require.NoError(t, l.SpendAllowance(alice, carol, u(1000)))
	v, err = l.Allowance(alice, carol)
	require.NoError(t, err)
	require.True(t, v.Eq(MaxAmount))
}

func TestConservation(t *testing.T) {
	_, batch, l := setup(t, 1_000_000)
	principals := []common.Address{alice, bob, carol}
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 500; i++ {
		a := principals[rng.Intn(len(principals))]
		b := principals[rng.Intn(len(principals))]
		amount := u(uint64(rng.Intn(5000)))

		var err error
		switch rng.Intn(3) {
		case 0:
			err = l.Mint(a, amount)
		case 1:
			err = l.Burn(a, amount)
		case 2:
			err = l.Transfer(a, b, amount)
		}
		if err != nil {
			code := errors.Code(err)
			require.Contains(t, []errors.Status{errors.SupplyCapExceeded, errors.InsufficientBalance}, code, "%v", err)
		}

		r, err := Audit(batch)
		require.NoError(t, err)
		require.True(t, r.Balanced())
	}
}

func TestAuditDetectsImbalance(t *testing.T) {
	_, batch, l := setup(t, 1000)
	require.NoError(t, l.Mint(alice, u(10)))
	require.NoError(t, l.Mint(bob, u(5)))

	r, err := Audit(batch)
	require.NoError(t, err)
	require.Equal(t, 2, r.Holders)
	require.Equal(t, uint64(15), r.SumBalances.Uint64())

	holders, err := Holders(batch)
	require.NoError(t, err)
	require.ElementsMatch(t, []common.Address{alice, bob}, holders)

	// Corrupt a balance directly
	b := u(11).Bytes32()
	require.NoError(t, batch.Put(keyBalance(alice), b[:]))
	r, err = Audit(batch)
	requireCode(t, err, errors.InternalError)
	require.False(t, r.Balanced())
}
