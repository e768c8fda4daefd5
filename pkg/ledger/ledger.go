// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package ledger implements balance bookkeeping for a fungible asset with a
// fixed supply cap. A [Ledger] operates on a key-value change set; callers
// commit the change set when an operation succeeds and discard it when it
// fails, so a failed operation never leaves a partial change behind.
package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
)

var (
	keyMaxSupply   = keyvalue.NewKey("Ledger", "MaxSupply")
	keyTotalIssued = keyvalue.NewKey("Ledger", "TotalIssued")
)

func keyBalance(a common.Address) *keyvalue.Key { return keyvalue.NewKey("Balance", a) }

func keyAllowance(owner, spender common.Address) *keyvalue.Key {
	return keyvalue.NewKey("Allowance", owner, spender)
}

// Ledger is a view of the ledger state within a change set.
type Ledger struct {
	store     keyvalue.Store
	maxSupply *uint256.Int
	emitted   []*Event
}

// Init writes the initial state of a new ledger. Init fails if the store
// already holds a ledger.
func Init(store keyvalue.Store, maxSupply *uint256.Int) (*Ledger, error) {
	if maxSupply == nil || maxSupply.IsZero() {
		return nil, errors.BadRequest.With("max supply must be greater than zero")
	}

	_, err := store.Get(keyMaxSupply)
	switch {
	case err == nil:
		return nil, errors.BadRequest.With("ledger already initialized")
	case !keyvalue.IsNotFound(err):
		return nil, errors.UnknownError.WithFormat("load max supply: %w", err)
	}

	l := &Ledger{store: store, maxSupply: maxSupply.Clone()}
	err = l.putAmount(keyMaxSupply, maxSupply)
	if err != nil {
		return nil, err
	}
	err = l.putAmount(keyTotalIssued, new(uint256.Int))
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Load opens the ledger stored in the change set.
func Load(store keyvalue.Store) (*Ledger, error) {
	l := &Ledger{store: store}
	var err error
	l.maxSupply, err = l.getAmount(keyMaxSupply)
	if err != nil {
		if keyvalue.IsNotFound(err) {
			return nil, errors.NotFound.With("ledger has not been initialized")
		}
		return nil, err
	}
	return l, nil
}

// Store returns the change set the ledger operates on.
func (l *Ledger) Store() keyvalue.Store { return l.store }

// MaxSupply returns the supply cap.
func (l *Ledger) MaxSupply() *uint256.Int { return l.maxSupply.Clone() }

// TotalIssued returns the sum of all balances.
func (l *Ledger) TotalIssued() (*uint256.Int, error) {
	return l.getAmount(keyTotalIssued)
}

// BalanceOf returns the balance of the principal.
func (l *Ledger) BalanceOf(a common.Address) (*uint256.Int, error) {
	return l.getAmountOrZero(keyBalance(a))
}

// Allowance returns the amount the spender may transfer on behalf of the
// owner.
func (l *Ledger) Allowance(owner, spender common.Address) (*uint256.Int, error) {
	return l.getAmountOrZero(keyAllowance(owner, spender))
}

// Mint issues new units to the recipient.
func (l *Ledger) Mint(to common.Address, amount *uint256.Int) error {
	if amount == nil {
		return errors.BadRequest.With("missing amount")
	}
	if to == (common.Address{}) {
		return errors.InvalidRecipient.With("cannot mint to the zero address")
	}

	supply, err := l.TotalIssued()
	if err != nil {
		return err
	}
	supply, err = add(supply, amount)
	if err != nil {
		return err
	}
	if supply.Gt(l.maxSupply) {
		return errors.SupplyCapExceeded.WithFormat("minting %s would bring the supply to %s, exceeding the cap of %s",
			FormatAmount(amount), FormatAmount(supply), FormatAmount(l.maxSupply))
	}

	balance, err := l.BalanceOf(to)
	if err != nil {
		return err
	}
	balance, err = add(balance, amount)
	if err != nil {
		return err
	}

	err = l.putAmount(keyTotalIssued, supply)
	if err != nil {
		return err
	}
	err = l.putAmount(keyBalance(to), balance)
	if err != nil {
		return err
	}
	return l.Emit(&Event{Kind: EventIssued, To: to, Amount: amount.Clone()})
}

// Burn destroys units held by the principal.
func (l *Ledger) Burn(from common.Address, amount *uint256.Int) error {
	balance, err := l.debitable(from, amount)
	if err != nil {
		return err
	}

	supply, err := l.TotalIssued()
	if err != nil {
		return err
	}
	supply, err = sub(supply, amount)
	if err != nil {
		return err
	}
	balance, err = sub(balance, amount)
	if err != nil {
		return err
	}

	err = l.putAmount(keyTotalIssued, supply)
	if err != nil {
		return err
	}
	err = l.putAmount(keyBalance(from), balance)
	if err != nil {
		return err
	}
	return l.Emit(&Event{Kind: EventBurned, From: from, Amount: amount.Clone()})
}

// Transfer moves units between principals. A transfer to self must still be
// covered by the balance but does not change it.
func (l *Ledger) Transfer(from, to common.Address, amount *uint256.Int) error {
	if to == (common.Address{}) {
		return errors.InvalidRecipient.With("cannot transfer to the zero address")
	}

	fromBalance, err := l.debitable(from, amount)
	if err != nil {
		return err
	}

	if from != to {
		fromBalance, err = sub(fromBalance, amount)
		if err != nil {
			return err
		}

		toBalance, err := l.BalanceOf(to)
		if err != nil {
			return err
		}
		toBalance, err = add(toBalance, amount)
		if err != nil {
			return err
		}

		err = l.putAmount(keyBalance(from), fromBalance)
		if err != nil {
			return err
		}
		err = l.putAmount(keyBalance(to), toBalance)
		if err != nil {
			return err
		}
	}

	return l.Emit(&Event{Kind: EventTransferred, From: from, To: to, Amount: amount.Clone()})
}

// Approve sets the amount the spender may transfer on behalf of the owner.
func (l *Ledger) Approve(owner, spender common.Address, amount *uint256.Int) error {
	if owner == (common.Address{}) {
		return errors.BadRequest.With("cannot approve on behalf of the zero address")
	}
	if spender == (common.Address{}) {
		return errors.InvalidSpender.With("cannot approve the zero address")
	}

	err := l.putAmount(keyAllowance(owner, spender), amount)
	if err != nil {
		return err
	}
	return l.Emit(&Event{Kind: EventApproved, From: owner, To: spender, Amount: amount.Clone()})
}

// SpendAllowance decreases the spender's allowance. An allowance of
// [MaxAmount] is never decreased.
func (l *Ledger) SpendAllowance(owner, spender common.Address, amount *uint256.Int) error {
	if amount == nil {
		return errors.BadRequest.With("missing amount")
	}
	allowance, err := l.Allowance(owner, spender)
	if err != nil {
		return err
	}
	if allowance.Eq(MaxAmount) {
		return nil
	}
	if allowance.Lt(amount) {
		return errors.InsufficientAllowance.WithFormat("allowance of %v for %v is %s, attempted to spend %s",
			spender, owner, FormatAmount(allowance), FormatAmount(amount))
	}

	allowance, err = sub(allowance, amount)
	if err != nil {
		return err
	}
	return l.putAmount(keyAllowance(owner, spender), allowance)
}

// Emit appends an event to the log.
func (l *Ledger) Emit(e *Event) error {
	err := appendEvent(l.store, e)
	if err != nil {
		return err
	}
	l.emitted = append(l.emitted, e)
	return nil
}

// Emitted returns the events emitted through this view, in order.
func (l *Ledger) Emitted() []*Event {
	return l.emitted
}

func (l *Ledger) debitable(from common.Address, amount *uint256.Int) (*uint256.Int, error) {
	if amount == nil {
		return nil, errors.BadRequest.With("missing amount")
	}
	balance, err := l.BalanceOf(from)
	if err != nil {
		return nil, err
	}
	if balance.Lt(amount) {
		return nil, errors.InsufficientBalance.WithFormat("balance of %v is %s, attempted to debit %s",
			from, FormatAmount(balance), FormatAmount(amount))
	}
	return balance, nil
}

func (l *Ledger) getAmount(key *keyvalue.Key) (*uint256.Int, error) {
	b, err := l.store.Get(key)
	if err != nil {
		if keyvalue.IsNotFound(err) {
			return nil, err
		}
		return nil, errors.UnknownError.WithFormat("load %v: %w", key, err)
	}
	if len(b) != 32 {
		return nil, errors.EncodingError.WithFormat("invalid %v: want 32 bytes, got %d", key, len(b))
	}
	return new(uint256.Int).SetBytes(b), nil
}

func (l *Ledger) getAmountOrZero(key *keyvalue.Key) (*uint256.Int, error) {
	v, err := l.getAmount(key)
	if keyvalue.IsNotFound(err) {
		return new(uint256.Int), nil
	}
	return v, err
}

func (l *Ledger) putAmount(key *keyvalue.Key, v *uint256.Int) error {
	if v == nil {
		return errors.BadRequest.With("missing amount")
	}
	b := v.Bytes32()
	err := l.store.Put(key, b[:])
	if err != nil {
		return errors.UnknownError.WithFormat("store %v: %w", key, err)
	}
	return nil
}
