// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package token

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/ledger"
)

// Operation names a mutating entry point.
type Operation string

const (
	OpMint              Operation = "mint"
	OpBurn              Operation = "burn"
	OpBurnFrom          Operation = "burnFrom"
	OpTransfer          Operation = "transfer"
	OpTransferFrom      Operation = "transferFrom"
	OpApprove           Operation = "approve"
	OpPermitApprove     Operation = "permitApprove"
	OpBatchTransfer     Operation = "batchTransfer"
	OpRescue            Operation = "rescueForeignAsset"
	OpPause             Operation = "pause"
	OpUnpause           Operation = "unpause"
	OpTransferOwnership Operation = "transferOwnership"
)

// Call describes a mutating call as it passes through the gate.
type Call struct {
	// ID identifies the call in logs.
	ID     uuid.UUID
	Op     Operation
	Caller common.Address

	// Pausable calls fail with ContractPaused while the token is paused.
	Pausable bool

	// OwnerOnly calls fail with Unauthorized unless the caller is the owner.
	OwnerOnly bool

	// Events is populated with the events emitted by a successful call.
	Events []*ledger.Event

	// Duration is the time spent in the call, set before After hooks run.
	Duration time.Duration
}

// Hook observes mutating calls. Before runs once the reentrancy latch is
// held and before any state is loaded; an error returned by Before aborts
// the call. After runs on every exit path, including rejection by the gate.
type Hook interface {
	Before(*Call) error
	After(*Call, error)
}

// execute runs fn within the gate and a fresh change set. The change set is
// committed only if every step succeeds.
func (t *Token) execute(c *Call, fn func(*state) error) (err error) {
	c.ID = uuid.New()
	start := time.Now()
	defer func() {
		c.Duration = time.Since(start)
		for _, h := range t.hooks {
			h.After(c, err)
		}
	}()

	if !t.latch.CompareAndSwap(false, true) {
		return errors.ReentrantCall.WithFormat("%s: another call is in progress", c.Op)
	}
	defer t.latch.Store(false)

	for _, h := range t.hooks {
		err = h.Before(c)
		if err != nil {
			return err
		}
	}

	batch := t.db.Begin(true)
	defer batch.Discard()

	s, err := t.load(batch)
	if err != nil {
		return err
	}

	err = t.checkPause(c, s)
	if err != nil {
		return err
	}

	err = t.checkOwner(c, s)
	if err != nil {
		return err
	}

	err = fn(s)
	if err != nil {
		return err
	}

	err = batch.Commit()
	if err != nil {
		return errors.UnknownError.WithFormat("commit: %w", err)
	}

	c.Events = s.ledger.Emitted()
	return nil
}

func (t *Token) checkPause(c *Call, s *state) error {
	if !c.Pausable {
		return nil
	}
	paused, err := s.paused()
	if err != nil {
		return err
	}
	if paused {
		return errors.ContractPaused.WithFormat("%s: token is paused", c.Op)
	}
	return nil
}

func (t *Token) checkOwner(c *Call, s *state) error {
	if !c.OwnerOnly {
		return nil
	}
	owner, err := s.owner()
	if err != nil {
		return err
	}
	if c.Caller != owner {
		return errors.Unauthorized.WithFormat("%s: %v is not the owner", c.Op, c.Caller)
	}
	return nil
}
