// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package memory

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/database/keyvalue/kvtest"
)

func open(testing.TB) kvtest.Opener {
	// Reuse the same in-memory database each time
	db := New()
	return func() (keyvalue.Beginner, error) { return db, nil }
}

func TestSuite(t *testing.T) {
	kvtest.TestSuite(t, open(t))
}

func TestExportIsSorted(t *testing.T) {
	db := New()
	batch := db.Begin(true)
	require.NoError(t, batch.Put(keyvalue.NewKey("b"), []byte("2")))
	require.NoError(t, batch.Put(keyvalue.NewKey("a"), []byte("1")))
	require.NoError(t, batch.Commit())

	entries := db.Export()
	require.Len(t, entries, 2)
	require.Equal(t, "a", entries[0].Key.String())
	require.Equal(t, "b", entries[1].Key.String())
}
