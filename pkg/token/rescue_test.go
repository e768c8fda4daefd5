// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package token

import (
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/database/keyvalue/memory"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/ledger"
)

// deployForeign deploys a second token and gives tokenAddr a balance of it.
func deployForeign(t *testing.T, holding uint64) *Token {
	t.Helper()
	foreign, err := Deploy(memory.New(), Params{
		Name:      "Other",
		Symbol:    "OTH",
		MaxSupply: u(1_000_000),
		Owner:     owner,
		Address:   otherAddr,
	})
	require.NoError(t, err)
	require.NoError(t, foreign.Transfer(owner, tokenAddr, u(holding)))
	return foreign
}

func TestRescue(t *testing.T) {
	_, tok := deploy(t, u(10_000))
	foreign := deployForeign(t, 500)

	require.NoError(t, tok.RescueForeignAsset(owner, foreign, alice, u(200)))
	requireBalance(t, foreign, alice, u(200))
	requireBalance(t, foreign, tokenAddr, u(300))

	events, err := tok.Events(0, 10)
	require.NoError(t, err)
	e := events[len(events)-1]
	require.Equal(t, ledger.EventRescued, e.Kind)
	require.Equal(t, otherAddr, e.Asset)
	require.Equal(t, alice, e.To)
	require.Equal(t, uint64(200), e.Amount.Uint64())
}

func TestRescueSelfForbidden(t *testing.T) {
	_, tok := deploy(t, u(10_000))
	requireCode(t, tok.RescueForeignAsset(owner, tok, alice, u(1)), errors.SelfRescueForbidden)
}

func TestRescueUnauthorized(t *testing.T) {
	_, tok := deploy(t, u(10_000))
	foreign := deployForeign(t, 500)
	requireCode(t, tok.RescueForeignAsset(alice, foreign, alice, u(1)), errors.Unauthorized)
	requireBalance(t, foreign, tokenAddr, u(500))
}

func TestRescueExternalFailure(t *testing.T) {
	_, tok := deploy(t, u(10_000))
	foreign := deployForeign(t, 500)
	n := eventCount(t, tok)

	err := tok.RescueForeignAsset(owner, foreign, alice, u(501))
	requireCode(t, err, errors.ExternalTransferFailed)
	require.ErrorIs(t, err, errors.InsufficientBalance)
	require.Equal(t, n, eventCount(t, tok))
}

func TestPausedBurnFailsRescueSucceeds(t *testing.T) {
	_, tok := deploy(t, u(10_000))
	require.NoError(t, tok.Transfer(owner, alice, u(50)))
	foreign := deployForeign(t, 500)

	require.NoError(t, tok.Pause(owner))
	requireCode(t, tok.Burn(alice, u(10)), errors.ContractPaused)
	require.NoError(t, tok.RescueForeignAsset(owner, foreign, bob, u(100)))
	requireBalance(t, foreign, bob, u(100))
}

// reentrantAsset calls back into the token from within its transfer.
type reentrantAsset struct {
	tok *Token
	err error
}

func (a *reentrantAsset) Address() common.Address { return otherAddr }

func (a *reentrantAsset) Transfer(caller, to common.Address, amount *uint256.Int) error {
	a.err = a.tok.Mint(owner, to, amount)
	return a.err
}

func TestRescueReentrancy(t *testing.T) {
	_, tok := deploy(t, u(10_000))
	asset := &reentrantAsset{tok: tok}

	err := tok.RescueForeignAsset(owner, asset, alice, u(1))
	requireCode(t, err, errors.ExternalTransferFailed)
	requireCode(t, asset.err, errors.ReentrantCall)
	require.ErrorIs(t, err, errors.ReentrantCall)
	requireBalance(t, tok, alice, u(0))
	requireSupply(t, tok, u(100))

	// The latch is released
	require.NoError(t, tok.Mint(owner, alice, u(1)))
}

// blockingAsset holds the token's latch until released.
type blockingAsset struct {
	entered chan struct{}
	release chan struct{}
}

func (a *blockingAsset) Address() common.Address { return otherAddr }

func (a *blockingAsset) Transfer(common.Address, common.Address, *uint256.Int) error {
	close(a.entered)
	<-a.release
	return nil
}

func TestConcurrentCallRejected(t *testing.T) {
	_, tok := deploy(t, u(10_000))
	asset := &blockingAsset{entered: make(chan struct{}), release: make(chan struct{})}

	var wg sync.WaitGroup
	var rescueErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		rescueErr = tok.RescueForeignAsset(owner, asset, alice, u(1))
	}()

	<-asset.entered
	requireCode(t, tok.Transfer(owner, alice, u(1)), errors.ReentrantCall)
	close(asset.release)
	wg.Wait()

	require.NoError(t, rescueErr)
	require.NoError(t, tok.Transfer(owner, alice, u(1)))
}
