// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
)

// DomainVersion is the version of the signed approval domain.
const DomainVersion = "1"

var (
	domainTypeHash = crypto.Keccak256Hash([]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"))
	permitTypeHash = crypto.Keccak256Hash([]byte("Permit(address owner,address spender,uint256 value,uint256 nonce,uint256 deadline)"))
)

// Domain describes the EIP-712 domain of signed approvals.
type Domain struct {
	Name              string
	Version           string
	ChainID           *big.Int
	VerifyingContract common.Address
}

// Domain returns the signed approval domain.
func (t *Token) Domain() Domain {
	return Domain{
		Name:              t.meta.Name,
		Version:           DomainVersion,
		ChainID:           t.chainID(),
		VerifyingContract: t.meta.Address,
	}
}

// DomainSeparator returns the EIP-712 hash of the domain.
func (t *Token) DomainSeparator() common.Hash {
	d := t.Domain()
	return crypto.Keccak256Hash(
		domainTypeHash[:],
		crypto.Keccak256([]byte(d.Name)),
		crypto.Keccak256([]byte(d.Version)),
		common.LeftPadBytes(d.ChainID.Bytes(), 32),
		common.LeftPadBytes(d.VerifyingContract[:], 32),
	)
}

// PermitHash returns the digest a signed approval must sign. The deadline
// is a Unix timestamp in seconds. Verifying the signature is the
// responsibility of the caller of [Token.PermitApprove].
func (t *Token) PermitHash(owner, spender common.Address, amount *uint256.Int, nonce uint64, deadline *big.Int) (common.Hash, error) {
	if amount == nil {
		return common.Hash{}, errors.BadRequest.With("missing amount")
	}
	if deadline == nil {
		return common.Hash{}, errors.BadRequest.With("missing deadline")
	}
	if deadline.Sign() < 0 || deadline.BitLen() > 256 {
		return common.Hash{}, errors.BadRequest.WithFormat("deadline %v is not a uint256", deadline)
	}

	value := amount.Bytes32()
	structHash := crypto.Keccak256(
		permitTypeHash[:],
		common.LeftPadBytes(owner[:], 32),
		common.LeftPadBytes(spender[:], 32),
		value[:],
		common.LeftPadBytes(new(big.Int).SetUint64(nonce).Bytes(), 32),
		common.LeftPadBytes(deadline.Bytes(), 32),
	)
	sep := t.DomainSeparator()
	return crypto.Keccak256Hash([]byte{0x19, 0x01}, sep[:], structHash), nil
}

// Nonces returns the next signed approval nonce of the owner.
func (t *Token) Nonces(owner common.Address) (uint64, error) {
	var v uint64
	err := t.view(func(s *state) (err error) { v, err = s.nonce(owner); return })
	return v, err
}

// PermitApprove redeems a signed approval that has already been verified.
// The approval is valid until the deadline, inclusive. The nonce must equal
// the owner's current nonce and is consumed on success.
func (t *Token) PermitApprove(owner, spender common.Address, amount *uint256.Int, nonce uint64, deadline *big.Int) error {
	return t.execute(&Call{Op: OpPermitApprove, Caller: owner}, func(s *state) error {
		if deadline == nil {
			return errors.BadRequest.With("missing deadline")
		}
		now := big.NewInt(t.now().Unix())
		if now.Cmp(deadline) > 0 {
			return errors.PermitExpired.WithFormat("approval expired at %v, now %v", deadline, now)
		}

		current, err := s.nonce(owner)
		if err != nil {
			return err
		}
		if nonce != current {
			return errors.InvalidNonce.WithFormat("nonce of %v is %d, got %d", owner, current, nonce)
		}
		err = s.setNonce(owner, current+1)
		if err != nil {
			return err
		}
		return s.ledger.Approve(owner, spender, amount)
	})
}
