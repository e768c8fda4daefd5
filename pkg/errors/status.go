// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package errors

import "fmt"

// Status is a request status code.
type Status uint64

const (
	// OK means the request completed successfully.
	OK Status = 200

	// BadRequest means the request was malformed or invalid.
	BadRequest Status = 400

	// Unauthorized means the caller is not permitted to perform the operation.
	Unauthorized Status = 401

	// ContractPaused means the ledger is paused.
	ContractPaused Status = 403

	// NotFound means a record could not be found.
	NotFound Status = 404

	// ReentrantCall means a mutating operation was invoked while another was
	// in progress.
	ReentrantCall Status = 409

	// AlreadyPaused means pause was requested while the ledger is paused.
	AlreadyPaused Status = 410

	// NotPaused means unpause was requested while the ledger is active.
	NotPaused Status = 411

	// SupplyCapExceeded means an issuance would exceed the maximum supply.
	SupplyCapExceeded Status = 412

	// InsufficientBalance means the source balance is too small.
	InsufficientBalance Status = 413

	// InsufficientAllowance means the spender's allowance is too small.
	InsufficientAllowance Status = 414

	// InvalidRecipient means the recipient is the null principal.
	InvalidRecipient Status = 415

	// InvalidSpender means the spender is the null principal.
	InvalidSpender Status = 416

	// InvalidNonce means an approval nonce does not match the expected value.
	InvalidNonce Status = 417

	// LengthMismatch means parallel batch sequences have different lengths.
	LengthMismatch Status = 418

	// EmptyBatch means a batch has no entries.
	EmptyBatch Status = 419

	// SelfRescueForbidden means rescue targeted the ledger's own asset.
	SelfRescueForbidden Status = 420

	// PermitExpired means a signed approval was redeemed after its deadline.
	PermitExpired Status = 421

	// UnknownError means an unknown error occurred.
	UnknownError Status = 500

	// InternalError means an internal error occurred.
	InternalError Status = 501

	// ArithmeticOverflow means a fixed-width computation overflowed or
	// underflowed.
	ArithmeticOverflow Status = 502

	// ExternalTransferFailed means a foreign asset rejected a transfer.
	ExternalTransferFailed Status = 503

	// EncodingError means a stored value could not be encoded or decoded.
	EncodingError Status = 504
)

var statusNames = map[Status]string{
	OK:                     "ok",
	BadRequest:             "badRequest",
	Unauthorized:           "unauthorized",
	ContractPaused:         "contractPaused",
	NotFound:               "notFound",
	ReentrantCall:          "reentrantCall",
	AlreadyPaused:          "alreadyPaused",
	NotPaused:              "notPaused",
	SupplyCapExceeded:      "supplyCapExceeded",
	InsufficientBalance:    "insufficientBalance",
	InsufficientAllowance:  "insufficientAllowance",
	InvalidRecipient:       "invalidRecipient",
	InvalidSpender:         "invalidSpender",
	InvalidNonce:           "invalidNonce",
	LengthMismatch:         "lengthMismatch",
	EmptyBatch:             "emptyBatch",
	SelfRescueForbidden:    "selfRescueForbidden",
	PermitExpired:          "permitExpired",
	UnknownError:           "unknownError",
	InternalError:          "internalError",
	ArithmeticOverflow:     "arithmeticOverflow",
	ExternalTransferFailed: "externalTransferFailed",
	EncodingError:          "encodingError",
}

// String returns the name of the status.
func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Status:%d", uint64(s))
}

// StatusByName returns the status with the given name.
func StatusByName(name string) (Status, bool) {
	for s, n := range statusNames {
		if n == name {
			return s, true
		}
	}
	return 0, false
}

// Success returns true if the status represents success.
func (s Status) Success() bool { return s < 300 }

// IsKnownError returns true if the status is non-zero and not UnknownError.
func (s Status) IsKnownError() bool { return s != 0 && s != UnknownError }

// IsClientError returns true if the status is a client error.
func (s Status) IsClientError() bool { return s >= 400 && s < 500 }

// IsServerError returns true if the status is a server error.
func (s Status) IsServerError() bool { return s >= 500 }

// Error implements error.
func (s Status) Error() string { return s.String() }
