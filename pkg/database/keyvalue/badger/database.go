// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package badger

import (
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/database/keyvalue/memory"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
)

// TruncateBadger controls whether Badger is configured to truncate corrupted
// data. If the process is terminated abruptly, setting this may be necessary to
// recover the state of the ledger.
var TruncateBadger = false

// GCInterval is how often value log garbage collection runs.
var GCInterval = time.Hour

type Database struct {
	badger *badger.DB
	ready  bool
	mu     sync.RWMutex
	stop   chan struct{}
}

func New(filepath string) (*Database, error) {
	// Make sure all directories exist
	err := os.MkdirAll(filepath, 0700)
	if err != nil {
		return nil, errors.UnknownError.WithFormat("open badger: create %q: %w", filepath, err)
	}

	opts := badger.DefaultOptions(filepath)
	opts = opts.WithLogger(slogger{})

	// Truncate corrupted data
	if TruncateBadger {
		opts = opts.WithTruncate(true)
	}

	d := new(Database)
	d.ready = true
	d.stop = make(chan struct{})

	// Open Badger
	d.badger, err = badger.Open(opts)
	if err != nil {
		return nil, errors.UnknownError.WithFormat("open badger: %w", err)
	}

	mDbOpen.Inc()
	go d.gc()

	return d, nil
}

// Begin begins a change set.
func (d *Database) Begin(writable bool) keyvalue.ChangeSet {
	// Use a read-only transaction for reading
	rd := d.badger.NewTransaction(false)

	// Read from the transaction
	get := func(key *keyvalue.Key) ([]byte, error) {
		l, err := d.lock(false)
		if err != nil {
			return nil, err
		}
		defer l.Unlock()

		item, err := rd.Get(key.MustMarshalBinary())
		switch {
		case err == nil:
			// Ok
		case errors.Is(err, badger.ErrKeyNotFound):
			return nil, keyvalue.NotFound(key)
		default:
			return nil, errors.UnknownError.WithFormat("get %v: %w", key, err)
		}

		v, err := item.ValueCopy(nil)
		if err != nil {
			return nil, errors.UnknownError.WithFormat("get %v: %w", key, err)
		}
		return v, nil
	}

	// Commit to the write batch
	var commit memory.CommitFunc
	if writable {
		commit = d.commit
	}

	forEach := func(fn func(*keyvalue.Key, []byte) error) error {
		l, err := d.lock(false)
		if err != nil {
			return err
		}
		defer l.Unlock()

		it := rd.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := new(keyvalue.Key)
			if err := key.UnmarshalBinary(item.KeyCopy(nil)); err != nil {
				return errors.InternalError.WithFormat("cannot unmarshal key: %w", err)
			}
			v, err := item.ValueCopy(nil)
			if err != nil {
				return errors.UnknownError.WithFormat("get %v: %w", key, err)
			}
			if err := fn(key, v); err != nil {
				return err
			}
		}
		return nil
	}

	// The memory changeset caches entries in a map so Get will see values
	// updated with Put, regardless of the underlying transaction and write
	// batch behavior
	return memory.NewChangeSet(memory.ChangeSetOptions{
		Get:     get,
		Commit:  commit,
		ForEach: forEach,
		Discard: rd.Discard,
	})
}

func (d *Database) commit(entries map[string]memory.Entry) error {
	l, err := d.lock(false)
	if err != nil {
		return err
	}
	defer l.Unlock()

	start := time.Now()
	defer func() { mCommitDuration.Set(time.Since(start).Seconds()) }()

	// Use a write batch for writing to work around Badger's limitations
	wr := d.badger.NewWriteBatch()
	for k, e := range entries {
		if e.Delete {
			err = wr.Delete([]byte(k))
		} else {
			err = wr.Set([]byte(k), e.Value)
		}
		if err != nil {
			wr.Cancel()
			return err
		}
	}

	return wr.Flush()
}

// Close the underlying database.
func (d *Database) Close() error {
	l, err := d.lock(true)
	if err != nil {
		return err
	}
	defer l.Unlock()

	d.ready = false
	close(d.stop)
	mDbOpen.Dec()
	return d.badger.Close()
}

func (d *Database) gc() {
	t := time.NewTicker(GCInterval)
	defer t.Stop()

	for {
		select {
		case <-d.stop:
			return
		case <-t.C:
		}

		l, err := d.lock(false)
		if err != nil {
			return
		}

		start := time.Now()
		for d.badger.RunValueLogGC(0.5) == nil {
		}
		mGcRun.Inc()
		mGcDuration.Set(time.Since(start).Seconds())
		l.Unlock()
	}
}

// lock acquires a lock on the ready mutex and checks for readiness. This
// prevents races between reads or commits and Close.
func (d *Database) lock(closing bool) (sync.Locker, error) {
	var l sync.Locker = &d.mu
	if !closing {
		l = d.mu.RLocker()
	}

	l.Lock()
	if !d.ready {
		l.Unlock()
		return nil, errors.InternalError.With("database is closed")
	}

	return l, nil
}
