// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/tokenledger/internal/config"
	"gitlab.com/accumulatenetwork/tokenledger/internal/logging"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
)

func TestOpenEachType(t *testing.T) {
	for _, typ := range []config.StorageType{
		config.MemoryStorage,
		config.BadgerStorage,
		config.BoltStorage,
		config.LevelDBStorage,
	} {
		t.Run(string(typ), func(t *testing.T) {
			dir := t.TempDir()
			logger := logging.NewTestLogger(t, "error;storage=debug")
			s, err := Open(config.Storage{Type: typ, Path: "data/ledger.db"}, dir, logger)
			require.NoError(t, err)
			require.Equal(t, typ, s.Type())

			batch := s.Begin(true)
			require.NoError(t, batch.Put(keyvalue.NewKey("Test", "Key"), []byte("value")))
			require.NoError(t, batch.Commit())
			s.Close()

			if typ == config.MemoryStorage {
				return
			}

			// Reopen and verify the value persisted
			s, err = Open(config.Storage{Type: typ, Path: "data/ledger.db"}, dir, logger)
			require.NoError(t, err)
			defer s.Close()

			batch = s.Begin(false)
			defer batch.Discard()
			v, err := batch.Get(keyvalue.NewKey("Test", "Key"))
			require.NoError(t, err)
			require.Equal(t, "value", string(v))
		})
	}
}

func TestOpenUnsupported(t *testing.T) {
	_, err := Open(config.Storage{Type: "etcd", Path: "x"}, t.TempDir(), nil)
	require.Equal(t, errors.BadRequest, errors.Code(err))
}
