// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package token implements a capped, pausable fungible token on top of the
// balance ledger. Every mutating entry point runs through the gate: a
// reentrancy latch, then the pause check, then the owner check, within a
// single key-value change set.
package token

import (
	"encoding/binary"
	"log/slog"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/ledger"
)

var zeroAddr common.Address

// InitialIssuanceDivisor determines the amount issued to the owner on
// deployment, MaxSupply / InitialIssuanceDivisor rounded down.
const InitialIssuanceDivisor = 100

var (
	keyMetadata = keyvalue.NewKey("Token", "Metadata")
	keyOwner    = keyvalue.NewKey("Token", "Owner")
	keyPaused   = keyvalue.NewKey("Token", "Paused")
)

func keyNonce(owner common.Address) *keyvalue.Key { return keyvalue.NewKey("Nonce", owner) }

// Params are the construction parameters of a token.
type Params struct {
	Name      string
	Symbol    string
	Decimals  uint8
	MaxSupply *uint256.Int
	Owner     common.Address

	// Address is the principal of the token itself. It is the sender when
	// rescuing foreign assets held by the token.
	Address common.Address

	// ChainID is used for the signed approval domain.
	ChainID uint64
}

// Metadata is the immutable descriptive state of a token.
type Metadata struct {
	Name     string
	Symbol   string
	Decimals uint8
	Address  common.Address
	ChainID  uint64
}

// Token is a capped, pausable fungible token.
type Token struct {
	db     keyvalue.Beginner
	meta   Metadata
	logger *slog.Logger
	hooks  []Hook
	now    func() time.Time
	latch  atomic.Bool
}

// Option configures a [Token].
type Option func(*Token)

// WithLogger sets the logger. The logger receives a module=token attribute.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Token) { t.logger = logger.With("module", "token") }
}

// WithHooks registers hooks that run around every mutating call.
func WithHooks(hooks ...Hook) Option {
	return func(t *Token) { t.hooks = append(t.hooks, hooks...) }
}

// WithClock sets the clock used to check signed approval deadlines.
func WithClock(now func() time.Time) Option {
	return func(t *Token) { t.now = now }
}

func newToken(db keyvalue.Beginner, opts []Option) *Token {
	t := &Token{db: db, logger: slog.Default().With("module", "token"), now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Deploy creates a new token in the database. The owner receives the initial
// issuance. Deploy fails if the database already holds a token.
func Deploy(db keyvalue.Beginner, params Params, opts ...Option) (*Token, error) {
	switch {
	case params.Name == "":
		return nil, errors.BadRequest.With("missing name")
	case params.Symbol == "":
		return nil, errors.BadRequest.With("missing symbol")
	case params.Owner == (common.Address{}):
		return nil, errors.BadRequest.With("missing owner")
	case params.Address == (common.Address{}):
		return nil, errors.BadRequest.With("missing token address")
	case params.Address == params.Owner:
		return nil, errors.BadRequest.With("the token cannot own itself")
	}

	t := newToken(db, opts)
	t.meta = Metadata{
		Name:     params.Name,
		Symbol:   params.Symbol,
		Decimals: params.Decimals,
		Address:  params.Address,
		ChainID:  params.ChainID,
	}

	batch := db.Begin(true)
	defer batch.Discard()

	l, err := ledger.Init(batch, params.MaxSupply)
	if err != nil {
		return nil, errors.UnknownError.WithFormat("initialize ledger: %w", err)
	}

	b, err := rlp.EncodeToBytes(&t.meta)
	if err != nil {
		return nil, errors.EncodingError.WithFormat("encode metadata: %w", err)
	}
	err = batch.Put(keyMetadata, b)
	if err != nil {
		return nil, errors.UnknownError.WithFormat("store metadata: %w", err)
	}

	s := &state{batch: batch, ledger: l}
	err = s.setOwner(params.Owner)
	if err != nil {
		return nil, err
	}
	err = s.setPaused(false)
	if err != nil {
		return nil, err
	}

	initial := new(uint256.Int).Div(params.MaxSupply, uint256.NewInt(InitialIssuanceDivisor))
	err = l.Mint(params.Owner, initial)
	if err != nil {
		return nil, errors.UnknownError.WithFormat("initial issuance: %w", err)
	}

	err = batch.Commit()
	if err != nil {
		return nil, errors.UnknownError.WithFormat("commit: %w", err)
	}

	t.logger.Info("Deployed token", "name", t.meta.Name, "symbol", t.meta.Symbol,
		"max-supply", ledger.FormatAmount(params.MaxSupply), "owner", params.Owner, "initial", ledger.FormatAmount(initial))
	return t, nil
}

// Open loads a token previously deployed to the database.
func Open(db keyvalue.Beginner, opts ...Option) (*Token, error) {
	t := newToken(db, opts)

	batch := db.Begin(false)
	defer batch.Discard()

	b, err := batch.Get(keyMetadata)
	switch {
	case err == nil:
	case keyvalue.IsNotFound(err):
		return nil, errors.NotFound.With("no token has been deployed")
	default:
		return nil, errors.UnknownError.WithFormat("load metadata: %w", err)
	}

	err = rlp.DecodeBytes(b, &t.meta)
	if err != nil {
		return nil, errors.EncodingError.WithFormat("decode metadata: %w", err)
	}
	return t, nil
}

// Address returns the principal of the token itself.
func (t *Token) Address() common.Address { return t.meta.Address }

func (t *Token) Name() string { return t.meta.Name }
func (t *Token) Symbol() string { return t.meta.Symbol }
func (t *Token) Decimals() uint8 { return t.meta.Decimals }
func (t *Token) Metadata() Metadata { return t.meta }

// state is the token state within a single change set.
type state struct {
	batch  keyvalue.ChangeSet
	ledger *ledger.Ledger
}

func (t *Token) load(batch keyvalue.ChangeSet) (*state, error) {
	l, err := ledger.Load(batch)
	if err != nil {
		return nil, err
	}
	return &state{batch: batch, ledger: l}, nil
}

func (s *state) owner() (common.Address, error) {
	b, err := s.batch.Get(keyOwner)
	if err != nil {
		return common.Address{}, errors.UnknownError.WithFormat("load owner: %w", err)
	}
	return common.BytesToAddress(b), nil
}

func (s *state) setOwner(owner common.Address) error {
	err := s.batch.Put(keyOwner, owner.Bytes())
	if err != nil {
		return errors.UnknownError.WithFormat("store owner: %w", err)
	}
	return nil
}

func (s *state) paused() (bool, error) {
	b, err := s.batch.Get(keyPaused)
	switch {
	case err == nil:
		return len(b) > 0 && b[0] != 0, nil
	case keyvalue.IsNotFound(err):
		return false, nil
	default:
		return false, errors.UnknownError.WithFormat("load pause flag: %w", err)
	}
}

func (s *state) setPaused(paused bool) error {
	var b byte
	if paused {
		b = 1
	}
	err := s.batch.Put(keyPaused, []byte{b})
	if err != nil {
		return errors.UnknownError.WithFormat("store pause flag: %w", err)
	}
	return nil
}

func (s *state) nonce(owner common.Address) (uint64, error) {
	b, err := s.batch.Get(keyNonce(owner))
	switch {
	case err == nil:
	case keyvalue.IsNotFound(err):
		return 0, nil
	default:
		return 0, errors.UnknownError.WithFormat("load nonce: %w", err)
	}
	if len(b) != 8 {
		return 0, errors.EncodingError.WithFormat("invalid nonce: want 8 bytes, got %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

func (s *state) setNonce(owner common.Address, nonce uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], nonce)
	err := s.batch.Put(keyNonce(owner), b[:])
	if err != nil {
		return errors.UnknownError.WithFormat("store nonce: %w", err)
	}
	return nil
}

// view runs a read-only function against the current state.
func (t *Token) view(fn func(*state) error) error {
	batch := t.db.Begin(false)
	defer batch.Discard()
	s, err := t.load(batch)
	if err != nil {
		return err
	}
	return fn(s)
}

// BalanceOf returns the balance of the principal.
func (t *Token) BalanceOf(a common.Address) (*uint256.Int, error) {
	var v *uint256.Int
	err := t.view(func(s *state) (err error) { v, err = s.ledger.BalanceOf(a); return })
	return v, err
}

// TotalIssued returns the total supply in circulation.
func (t *Token) TotalIssued() (*uint256.Int, error) {
	var v *uint256.Int
	err := t.view(func(s *state) (err error) { v, err = s.ledger.TotalIssued(); return })
	return v, err
}

// MaxSupply returns the supply cap.
func (t *Token) MaxSupply() (*uint256.Int, error) {
	var v *uint256.Int
	err := t.view(func(s *state) error { v = s.ledger.MaxSupply(); return nil })
	return v, err
}

// Allowance returns the amount the spender may transfer on behalf of the
// owner.
func (t *Token) Allowance(owner, spender common.Address) (*uint256.Int, error) {
	var v *uint256.Int
	err := t.view(func(s *state) (err error) { v, err = s.ledger.Allowance(owner, spender); return })
	return v, err
}

// Owner returns the current owner.
func (t *Token) Owner() (common.Address, error) {
	var v common.Address
	err := t.view(func(s *state) (err error) { v, err = s.owner(); return })
	return v, err
}

// Paused returns true if the token is paused.
func (t *Token) Paused() (bool, error) {
	var v bool
	err := t.view(func(s *state) (err error) { v, err = s.paused(); return })
	return v, err
}

// Events loads up to count events starting at the given sequence number.
func (t *Token) Events(start, count uint64) ([]*ledger.Event, error) {
	var v []*ledger.Event
	err := t.view(func(s *state) (err error) { v, err = ledger.LoadEvents(s.batch, start, count); return })
	return v, err
}

// EventCount returns the number of events in the log.
func (t *Token) EventCount() (uint64, error) {
	var v uint64
	err := t.view(func(s *state) (err error) { v, err = ledger.EventCount(s.batch); return })
	return v, err
}

// Audit verifies the sum of all balances equals the total issued.
func (t *Token) Audit() (*ledger.AuditReport, error) {
	var v *ledger.AuditReport
	err := t.view(func(s *state) (err error) { v, err = ledger.Audit(s.batch); return })
	return v, err
}

// Mint issues new units to the recipient. Only the owner may mint.
func (t *Token) Mint(caller, to common.Address, amount *uint256.Int) error {
	return t.execute(&Call{Op: OpMint, Caller: caller, Pausable: true, OwnerOnly: true}, func(s *state) error {
		return s.ledger.Mint(to, amount)
	})
}

// Burn destroys units held by the caller.
func (t *Token) Burn(caller common.Address, amount *uint256.Int) error {
	return t.execute(&Call{Op: OpBurn, Caller: caller, Pausable: true}, func(s *state) error {
		return s.ledger.Burn(caller, amount)
	})
}

// BurnFrom destroys units held by the owner, spending the caller's
// allowance.
func (t *Token) BurnFrom(caller, owner common.Address, amount *uint256.Int) error {
	return t.execute(&Call{Op: OpBurnFrom, Caller: caller, Pausable: true}, func(s *state) error {
		err := s.ledger.SpendAllowance(owner, caller, amount)
		if err != nil {
			return err
		}
		return s.ledger.Burn(owner, amount)
	})
}

// Transfer moves units from the caller to the recipient.
func (t *Token) Transfer(caller, to common.Address, amount *uint256.Int) error {
	return t.execute(&Call{Op: OpTransfer, Caller: caller, Pausable: true}, func(s *state) error {
		return s.ledger.Transfer(caller, to, amount)
	})
}

// TransferFrom moves units from the owner to the recipient, spending the
// caller's allowance.
func (t *Token) TransferFrom(caller, from, to common.Address, amount *uint256.Int) error {
	return t.execute(&Call{Op: OpTransferFrom, Caller: caller, Pausable: true}, func(s *state) error {
		err := s.ledger.SpendAllowance(from, caller, amount)
		if err != nil {
			return err
		}
		return s.ledger.Transfer(from, to, amount)
	})
}

// Approve sets the amount the spender may transfer on behalf of the caller.
// Approvals are accepted while paused.
func (t *Token) Approve(caller, spender common.Address, amount *uint256.Int) error {
	return t.execute(&Call{Op: OpApprove, Caller: caller}, func(s *state) error {
		return s.ledger.Approve(caller, spender, amount)
	})
}

// Pause stops transfers, issuance and destruction. Pausing a paused token
// fails with AlreadyPaused.
func (t *Token) Pause(caller common.Address) error {
	return t.execute(&Call{Op: OpPause, Caller: caller, OwnerOnly: true}, func(s *state) error {
		paused, err := s.paused()
		if err != nil {
			return err
		}
		if paused {
			return errors.AlreadyPaused.With("already paused")
		}
		err = s.setPaused(true)
		if err != nil {
			return err
		}
		return s.ledger.Emit(&ledger.Event{Kind: ledger.EventPaused, From: caller})
	})
}

// Unpause resumes normal operation. Unpausing an active token fails with
// NotPaused.
func (t *Token) Unpause(caller common.Address) error {
	return t.execute(&Call{Op: OpUnpause, Caller: caller, OwnerOnly: true}, func(s *state) error {
		paused, err := s.paused()
		if err != nil {
			return err
		}
		if !paused {
			return errors.NotPaused.With("not paused")
		}
		err = s.setPaused(false)
		if err != nil {
			return err
		}
		return s.ledger.Emit(&ledger.Event{Kind: ledger.EventUnpaused, From: caller})
	})
}

// TransferOwnership hands the owner role to another principal.
func (t *Token) TransferOwnership(caller, newOwner common.Address) error {
	return t.execute(&Call{Op: OpTransferOwnership, Caller: caller, OwnerOnly: true}, func(s *state) error {
		if newOwner == (common.Address{}) {
			return errors.InvalidRecipient.With("cannot transfer ownership to the zero address")
		}
		err := s.setOwner(newOwner)
		if err != nil {
			return err
		}
		return s.ledger.Emit(&ledger.Event{Kind: ledger.EventOwnershipTransferred, From: caller, To: newOwner})
	})
}

// chainID returns the chain ID as a big integer.
func (t *Token) chainID() *big.Int { return new(big.Int).SetUint64(t.meta.ChainID) }
