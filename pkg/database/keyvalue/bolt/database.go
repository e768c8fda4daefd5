// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package bolt

import (
	"log/slog"

	"gitlab.com/accumulatenetwork/tokenledger/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/database/keyvalue/memory"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// Database is a key-value store backed by bbolt. The first part of each key
// selects the bucket.
type Database struct {
	bolt *bolt.DB
}

func Open(filepath string) (*Database, error) {
	d := new(Database)
	var err error
	d.bolt, err = bolt.Open(filepath, 0600, nil)
	if err != nil {
		return nil, errors.UnknownError.WithFormat("open %q: %w", filepath, err)
	}

	return d, nil
}

func (d *Database) bucket(tx *bolt.Tx, key *keyvalue.Key, create bool) (*bolt.Bucket, []byte, error) {
	if key.Len() == 0 {
		return nil, nil, errors.InternalError.With("invalid key: empty")
	}

	b := tx.Bucket([]byte(key.Get(0)))
	if b == nil {
		if !create {
			// No reason to do more work
			return nil, nil, nil
		}

		var err error
		b, err = tx.CreateBucket([]byte(key.Get(0)))
		if err != nil {
			return nil, nil, err
		}
	}

	return b, key.SliceI(1).MustMarshalBinary(), nil
}

// Begin begins a change set.
func (d *Database) Begin(writable bool) keyvalue.ChangeSet {
	// Use a read-only transaction for reading
	rd, err := d.bolt.Begin(false)

	// Discard the transaction
	discard := func() {
		if rd != nil {
			_ = rd.Rollback()
		}
	}

	// Read from the transaction
	get := func(key *keyvalue.Key) ([]byte, error) {
		return d.get(rd, err, key)
	}

	// Commit to the write batch
	var commit memory.CommitFunc
	if writable {
		commit = func(entries map[string]memory.Entry) error {
			return d.commit(rd, entries)
		}
	}

	forEach := func(fn func(*keyvalue.Key, []byte) error) error {
		return d.forEach(rd, err, fn)
	}

	// The memory changeset caches entries in a map so Get will see values
	// updated with Put, regardless of the underlying transaction
	return memory.NewChangeSet(memory.ChangeSetOptions{
		Get:     get,
		Commit:  commit,
		ForEach: forEach,
		Discard: discard,
	})
}

func (d *Database) get(txn *bolt.Tx, err error, key *keyvalue.Key) ([]byte, error) {
	if err != nil {
		return nil, err
	}

	b, k, err := d.bucket(txn, key, false)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, keyvalue.NotFound(key)
	}

	v := b.Get(k)
	if v == nil {
		return nil, keyvalue.NotFound(key)
	}

	u := make([]byte, len(v))
	copy(u, v)
	return u, nil
}

func (d *Database) commit(rd *bolt.Tx, entries map[string]memory.Entry) error {
	// Discard the read transaction to unlock the database
	if rd != nil {
		_ = rd.Rollback()
	}

	return d.bolt.Update(func(tx *bolt.Tx) error {
		for _, e := range entries {
			b, k, err := d.bucket(tx, e.Key, true)
			if err != nil {
				return err
			}

			if e.Delete {
				err = b.Delete(k)
			} else {
				err = b.Put(k, e.Value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *Database) forEach(txn *bolt.Tx, err error, fn func(*keyvalue.Key, []byte) error) error {
	if err != nil {
		return err
	}

	return txn.ForEach(func(name []byte, b *bolt.Bucket) error {
		return b.ForEach(func(k, v []byte) error {
			// Decode key
			key := new(keyvalue.Key)
			if err := key.UnmarshalBinary(k); err != nil {
				slog.Error("Cannot unmarshal database key", "module", "bolt", "bucket", string(name), "error", err)
				return errors.InternalError.WithFormat("cannot unmarshal key: %w", err)
			}

			// Add bucket
			key = keyvalue.NewKey(string(name)).AppendKey(key)

			// Copy value
			u := make([]byte, len(v))
			copy(u, v)

			return fn(key, u)
		})
	})
}

func (d *Database) Close() error {
	return d.bolt.Close()
}
