// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package memory

import (
	"sort"
	"sync"

	"gitlab.com/accumulatenetwork/tokenledger/pkg/database/keyvalue"
)

type Database struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

var _ keyvalue.Beginner = (*Database)(nil)

func New() *Database {
	return &Database{entries: map[string]Entry{}}
}

// Begin begins a change set.
func (d *Database) Begin(writable bool) keyvalue.ChangeSet {
	opts := ChangeSetOptions{
		Get:     d.get,
		ForEach: d.forEach,
	}
	if writable {
		opts.Commit = d.put
	}
	return NewChangeSet(opts)
}

// Export exports the database as a set of entries, sorted by key.
func (d *Database) Export() []Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	keys := make([]string, 0, len(d.entries))
	for k := range d.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, d.entries[k])
	}
	return entries
}

func (d *Database) get(key *keyvalue.Key) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entry, ok := d.entries[string(key.MustMarshalBinary())]
	if ok {
		v := make([]byte, len(entry.Value))
		copy(v, entry.Value)
		return v, nil
	}

	// Not found
	return nil, keyvalue.NotFound(key)
}

func (d *Database) put(entries map[string]Entry) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for k, e := range entries {
		if e.Delete {
			delete(d.entries, k)
		} else {
			d.entries[k] = e
		}
	}
	return nil
}

func (d *Database) forEach(fn func(*keyvalue.Key, []byte) error) error {
	for _, e := range d.Export() {
		if err := fn(e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}
