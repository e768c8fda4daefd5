// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package keyvalue

import "gitlab.com/accumulatenetwork/tokenledger/pkg/errors"

// Store is a key-value store.
type Store interface {
	// Get loads a value. Get returns a NotFound error if the key does not
	// exist.
	Get(*Key) ([]byte, error)

	// Put stores a value.
	Put(*Key, []byte) error

	// Delete deletes a key-value pair.
	Delete(*Key) error

	// ForEach iterates over each value.
	ForEach(func(*Key, []byte) error) error
}

// ChangeSet is a key-value change set.
type ChangeSet interface {
	Store

	// Commit commits pending changes.
	Commit() error

	// Discard discards pending changes.
	Discard()
}

// A Beginner can begin key-value change sets.
type Beginner interface {
	// Begin begins a transaction. Changes made to a read-only change set
	// are rejected.
	Begin(writable bool) ChangeSet
}

// NotFound returns a NotFound error for the key.
func NotFound(key *Key) error {
	return errors.NotFound.WithFormat("%v not found", key)
}

// IsNotFound returns true if the error is a NotFound error.
func IsNotFound(err error) bool {
	return errors.Code(err) == errors.NotFound
}
