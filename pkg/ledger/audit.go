// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
)

// AuditReport is the result of walking every balance in the ledger.
type AuditReport struct {
	Holders     int
	SumBalances *uint256.Int
	TotalIssued *uint256.Int
	MaxSupply   *uint256.Int
}

// Balanced returns true if the balances add up to the recorded supply and
// the supply is within the cap.
func (r *AuditReport) Balanced() bool {
	return r.SumBalances.Eq(r.TotalIssued) && !r.TotalIssued.Gt(r.MaxSupply)
}

// Audit walks every balance and verifies the sum equals the recorded supply.
// Audit returns the report along with an InternalError if the ledger is out
// of balance.
func Audit(store keyvalue.Store) (*AuditReport, error) {
	l, err := Load(store)
	if err != nil {
		return nil, err
	}

	r := new(AuditReport)
	r.MaxSupply = l.MaxSupply()
	r.TotalIssued, err = l.TotalIssued()
	if err != nil {
		return nil, err
	}

	r.SumBalances = new(uint256.Int)
	err = store.ForEach(func(key *keyvalue.Key, value []byte) error {
		if key.Len() != 2 || key.Get(0) != "Balance" {
			return nil
		}
		if len(value) != 32 {
			return errors.EncodingError.WithFormat("invalid %v: want 32 bytes, got %d", key, len(value))
		}
		v := new(uint256.Int).SetBytes(value)
		if !v.IsZero() {
			r.Holders++
		}
		r.SumBalances, err = add(r.SumBalances, v)
		return err
	})
	if err != nil {
		return nil, err
	}

	if !r.Balanced() {
		return r, errors.InternalError.WithFormat("ledger out of balance: balances sum to %s, supply is %s, cap is %s",
			FormatAmount(r.SumBalances), FormatAmount(r.TotalIssued), FormatAmount(r.MaxSupply))
	}
	return r, nil
}

// Holders returns every principal with a non-zero balance.
func Holders(store keyvalue.Store) ([]common.Address, error) {
	var holders []common.Address
	err := store.ForEach(func(key *keyvalue.Key, value []byte) error {
		if key.Len() != 2 || key.Get(0) != "Balance" {
			return nil
		}
		if new(uint256.Int).SetBytes(value).IsZero() {
			return nil
		}
		holders = append(holders, common.HexToAddress(key.Get(1)))
		return nil
	})
	return holders, err
}
