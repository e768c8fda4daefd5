// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package leveldb

import (
	"os"

	"github.com/syndtr/goleveldb/leveldb"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/database/keyvalue/memory"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
)

type Database struct {
	leveldb *leveldb.DB
}

func OpenFile(filepath string) (*Database, error) {
	// Make sure all directories exist
	err := os.MkdirAll(filepath, 0700)
	if err != nil {
		return nil, errors.UnknownError.WithFormat("create %q: %w", filepath, err)
	}

	db, err := leveldb.OpenFile(filepath, nil)
	if err != nil {
		return nil, errors.UnknownError.WithFormat("open %q: %w", filepath, err)
	}

	return &Database{leveldb: db}, nil
}

// Begin begins a change set.
func (d *Database) Begin(writable bool) keyvalue.ChangeSet {
	snap, err := d.leveldb.GetSnapshot()

	// Read from the snapshot
	get := func(key *keyvalue.Key) ([]byte, error) {
		return d.get(snap, err, key)
	}

	// Commit to the write batch
	var commit memory.CommitFunc
	if writable {
		commit = d.commit
	}

	forEach := func(fn func(*keyvalue.Key, []byte) error) error {
		return d.forEach(snap, err, fn)
	}

	discard := func() {
		if snap != nil {
			snap.Release()
		}
	}

	// The memory changeset caches entries in a map so Get will see values
	// updated with Put, regardless of the underlying snapshot
	return memory.NewChangeSet(memory.ChangeSetOptions{
		Get:     get,
		Commit:  commit,
		ForEach: forEach,
		Discard: discard,
	})
}

func (d *Database) commit(entries map[string]memory.Entry) error {
	batch := new(leveldb.Batch)
	for k, e := range entries {
		if e.Delete {
			batch.Delete([]byte(k))
		} else {
			batch.Put([]byte(k), e.Value)
		}
	}

	return d.leveldb.Write(batch, nil)
}

func (d *Database) get(snap *leveldb.Snapshot, err error, key *keyvalue.Key) ([]byte, error) {
	if err != nil {
		return nil, err
	}

	v, err := snap.Get(key.MustMarshalBinary(), nil)
	switch {
	case err == nil:
		u := make([]byte, len(v))
		copy(u, v)
		return u, nil
	case errors.Is(err, leveldb.ErrNotFound):
		return nil, keyvalue.NotFound(key)
	default:
		return nil, err
	}
}

func (d *Database) forEach(snap *leveldb.Snapshot, err error, fn func(*keyvalue.Key, []byte) error) error {
	if err != nil {
		return err
	}

	it := snap.NewIterator(nil, nil)
	defer it.Release()
	for it.Next() {
		key := new(keyvalue.Key)
		if err := key.UnmarshalBinary(it.Key()); err != nil {
			return errors.InternalError.WithFormat("cannot unmarshal key: %w", err)
		}
		value := make([]byte, len(it.Value()))
		copy(value, it.Value())
		err = fn(key, value)
		if err != nil {
			return err
		}
	}
	return it.Error()
}

// Close the underlying database.
func (d *Database) Close() error {
	return d.leveldb.Close()
}
