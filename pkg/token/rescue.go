// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package token

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/ledger"
)

// ForeignAsset is another asset that may hold a balance for this token's
// address. [Token] satisfies ForeignAsset.
type ForeignAsset interface {
	Address() common.Address
	Transfer(caller, to common.Address, amount *uint256.Int) error
}

var _ ForeignAsset = (*Token)(nil)

// RescueForeignAsset transfers a balance of another asset held by this
// token's address to the recipient. Only the owner may rescue assets, and
// rescue remains available while the token is paused.
func (t *Token) RescueForeignAsset(caller common.Address, asset ForeignAsset, to common.Address, amount *uint256.Int) error {
	return t.execute(&Call{Op: OpRescue, Caller: caller, OwnerOnly: true}, func(s *state) error {
		if asset == nil {
			return errors.BadRequest.With("missing asset")
		}
		if asset.Address() == t.meta.Address {
			return errors.SelfRescueForbidden.With("cannot rescue the token's own asset")
		}
		if to == (common.Address{}) {
			return errors.InvalidRecipient.With("cannot rescue to the zero address")
		}
		if amount == nil {
			return errors.BadRequest.With("missing amount")
		}

		err := asset.Transfer(t.meta.Address, to, amount)
		if err != nil {
			return errors.ExternalTransferFailed.WithCauseAndFormat(err, "transfer %s of %v to %v failed: %v",
				ledger.FormatAmount(amount), asset.Address(), to, err)
		}

		return s.ledger.Emit(&ledger.Event{
			Kind:   ledger.EventRescued,
			Asset:  asset.Address(),
			To:     to,
			Amount: amount.Clone(),
		})
	})
}
