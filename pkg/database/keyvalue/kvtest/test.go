// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package kvtest is a conformance suite for key-value store drivers.
package kvtest

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
)

type Opener = func() (keyvalue.Beginner, error)

type closableDb struct {
	keyvalue.Beginner
	t      testing.TB
	closed bool
}

func (c *closableDb) Close() {
	if c.closed {
		return
	}
	c.closed = true

	if d, ok := c.Beginner.(io.Closer); ok {
		require.NoError(c.t, d.Close())
	}
}

func openDb(t testing.TB, open Opener) *closableDb {
	db, err := open()
	require.NoError(t, err)
	c := &closableDb{db, t, false}
	t.Cleanup(c.Close)
	return c
}

// TestSuite runs every test in the suite. The opener must return the same
// underlying database each time it is called (reopening it if necessary).
func TestSuite(t *testing.T, open Opener) {
	t.Run("Database", func(t *testing.T) { TestDatabase(t, open) })
	t.Run("Delete", func(t *testing.T) { TestDelete(t, open) })
	t.Run("Discard", func(t *testing.T) { TestDiscard(t, open) })
	t.Run("ReadOnly", func(t *testing.T) { TestReadOnly(t, open) })
	t.Run("ForEachOverlay", func(t *testing.T) { TestForEachOverlay(t, open) })
}

func TestDatabase(t *testing.T, open Opener) {
	const N = 1000

	// Open and write changes
	db := openDb(t, open)

	batch := db.Begin(true)
	defer batch.Discard()

	// Read when nothing exists
	_, err := batch.Get(keyvalue.NewKey("answer", 0))
	require.Error(t, err)
	require.ErrorIs(t, err, errors.NotFound)

	// Write
	values := map[string]string{}
	for i := 0; i < N; i++ {
		key := keyvalue.NewKey("answer", i)
		value := fmt.Sprintf("%x this much data ", i)
		values[key.String()] = value
		err := batch.Put(key, []byte(value))
		require.NoError(t, err, "Put")
	}

	// Commit
	require.NoError(t, batch.Commit())

	// Verify with a new batch
	batch = db.Begin(false)
	defer batch.Discard()

	for i := 0; i < N; i++ {
		val, err := batch.Get(keyvalue.NewKey("answer", i))
		require.NoError(t, err, "Get")
		require.Equal(t, fmt.Sprintf("%x this much data ", i), string(val))
	}

	batch.Discard()

	// Verify with a fresh instance
	db.Close()
	db = openDb(t, open)

	batch = db.Begin(false)
	defer batch.Discard()

	for i := 0; i < N; i++ {
		val, err := batch.Get(keyvalue.NewKey("answer", i))
		require.NoError(t, err, "Get")
		require.Equal(t, fmt.Sprintf("%x this much data ", i), string(val))
	}

	// Verify ForEach
	require.NoError(t, batch.ForEach(func(key *keyvalue.Key, value []byte) error {
		if !key.HasPrefix("answer") {
			return nil
		}
		expect, ok := values[key.String()]
		require.Truef(t, ok, "%v should exist", key)
		require.Equalf(t, expect, string(value), "%v should match", key)
		delete(values, key.String())
		return nil
	}))
	require.Empty(t, values, "All values should be iterated over")
}

func TestDelete(t *testing.T, open Opener) {
	db := openDb(t, open)

	// Write a value
	batch := db.Begin(true)
	defer batch.Discard()
	require.NoError(t, batch.Put(keyvalue.NewKey("foo"), []byte("bar")))
	require.NoError(t, batch.Commit())

	// Verify it can be retrieved
	batch = db.Begin(false)
	defer batch.Discard()
	v, err := batch.Get(keyvalue.NewKey("foo"))
	require.NoError(t, err)
	require.Equal(t, "bar", string(v))
	batch.Discard()

	// Delete the value
	batch = db.Begin(true)
	defer batch.Discard()
	require.NoError(t, batch.Delete(keyvalue.NewKey("foo")))

	// Verify it returns not found from the same batch
	_, err = batch.Get(keyvalue.NewKey("foo"))
	require.ErrorIs(t, err, errors.NotFound)

	// Commit and reopen
	require.NoError(t, batch.Commit())
	db.Close()
	db = openDb(t, open)

	// Verify it returns not found from a new batch
	batch = db.Begin(false)
	defer batch.Discard()
	_, err = batch.Get(keyvalue.NewKey("foo"))
	require.ErrorIs(t, err, errors.NotFound)
}

func TestDiscard(t *testing.T, open Opener) {
	db := openDb(t, open)

	batch := db.Begin(true)
	defer batch.Discard()
	require.NoError(t, batch.Put(keyvalue.NewKey("discarded"), []byte("value")))
	batch.Discard()

	// Using a discarded batch fails
	_, err := batch.Get(keyvalue.NewKey("discarded"))
	require.Error(t, err)

	// The change is not visible
	batch = db.Begin(false)
	defer batch.Discard()
	_, err = batch.Get(keyvalue.NewKey("discarded"))
	require.ErrorIs(t, err, errors.NotFound)
}

func TestReadOnly(t *testing.T, open Opener) {
	db := openDb(t, open)

	batch := db.Begin(false)
	defer batch.Discard()
	require.Error(t, batch.Put(keyvalue.NewKey("ro"), []byte("value")))
	require.Error(t, batch.Delete(keyvalue.NewKey("ro")))
	require.Error(t, batch.Commit())
}

func TestForEachOverlay(t *testing.T, open Opener) {
	db := openDb(t, open)

	batch := db.Begin(true)
	defer batch.Discard()
	require.NoError(t, batch.Put(keyvalue.NewKey("overlay", "a"), []byte("1")))
	require.NoError(t, batch.Put(keyvalue.NewKey("overlay", "b"), []byte("2")))
	require.NoError(t, batch.Commit())

	// Pending changes shadow committed values
	batch = db.Begin(true)
	defer batch.Discard()
	require.NoError(t, batch.Put(keyvalue.NewKey("overlay", "a"), []byte("3")))
	require.NoError(t, batch.Delete(keyvalue.NewKey("overlay", "b")))
	require.NoError(t, batch.Put(keyvalue.NewKey("overlay", "c"), []byte("4")))

	seen := map[string]string{}
	require.NoError(t, batch.ForEach(func(key *keyvalue.Key, value []byte) error {
		if key.HasPrefix("overlay") {
			seen[key.Get(1)] = string(value)
		}
		return nil
	}))
	require.Equal(t, map[string]string{"a": "3", "c": "4"}, seen)
}
