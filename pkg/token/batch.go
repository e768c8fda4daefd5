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

// BatchTransfer moves units from the caller to each recipient. The total is
// checked against the caller's balance before any leg is applied, so either
// every recipient is credited or none is.
func (t *Token) BatchTransfer(caller common.Address, recipients []common.Address, amounts []*uint256.Int) error {
	return t.execute(&Call{Op: OpBatchTransfer, Caller: caller, Pausable: true}, func(s *state) error {
		if len(recipients) != len(amounts) {
			return errors.LengthMismatch.WithFormat("%d recipients but %d amounts", len(recipients), len(amounts))
		}
		if len(recipients) == 0 {
			return errors.EmptyBatch.With("no recipients")
		}

		total, err := ledger.Sum(amounts)
		if err != nil {
			return err
		}

		balance, err := s.ledger.BalanceOf(caller)
		if err != nil {
			return err
		}
		if balance.Lt(total) {
			return errors.InsufficientBalance.WithFormat("balance of %v is %s, batch total is %s",
				caller, ledger.FormatAmount(balance), ledger.FormatAmount(total))
		}

		for i, to := range recipients {
			err = s.ledger.Transfer(caller, to, amounts[i])
			if err != nil {
				return errors.UnknownError.WithFormat("transfer %d of %d: %w", i+1, len(recipients), err)
			}
		}

		return s.ledger.Emit(&ledger.Event{
			Kind:   ledger.EventBatchTransferred,
			From:   caller,
			Count:  uint64(len(recipients)),
			Amount: total,
		})
	})
}
