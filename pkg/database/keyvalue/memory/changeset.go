// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package memory

import (
	"sort"

	"gitlab.com/accumulatenetwork/tokenledger/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
)

// Entry is a pending change.
type Entry struct {
	Key    *keyvalue.Key
	Value  []byte
	Delete bool
}

type GetFunc = func(*keyvalue.Key) ([]byte, error)
type CommitFunc = func(map[string]Entry) error
type ForEachFunc = func(func(*keyvalue.Key, []byte) error) error

type ChangeSetOptions struct {
	Get     GetFunc
	Commit  CommitFunc
	ForEach ForEachFunc
	Discard func()
}

// ChangeSet caches changes in memory until they are committed. Changes are
// keyed by the binary encoding of the key.
type ChangeSet struct {
	opts    ChangeSetOptions
	entries map[string]Entry
	done    bool
}

var _ keyvalue.ChangeSet = (*ChangeSet)(nil)

// NewChangeSet returns a change set that reads through to opts.Get and
// commits to opts.Commit. A change set without a commit function is
// read-only.
func NewChangeSet(opts ChangeSetOptions) *ChangeSet {
	return &ChangeSet{opts: opts, entries: map[string]Entry{}}
}

func (c *ChangeSet) check(write bool) error {
	if c.done {
		return errors.InternalError.With("change set has been committed or discarded")
	}
	if write && c.opts.Commit == nil {
		return errors.BadRequest.With("change set is not writable")
	}
	return nil
}

func (c *ChangeSet) Get(key *keyvalue.Key) ([]byte, error) {
	if err := c.check(false); err != nil {
		return nil, err
	}

	if e, ok := c.entries[string(key.MustMarshalBinary())]; ok {
		if e.Delete {
			return nil, keyvalue.NotFound(key)
		}
		return e.Value, nil
	}

	if c.opts.Get == nil {
		return nil, keyvalue.NotFound(key)
	}
	return c.opts.Get(key)
}

func (c *ChangeSet) Put(key *keyvalue.Key, value []byte) error {
	if err := c.check(true); err != nil {
		return err
	}

	v := make([]byte, len(value))
	copy(v, value)
	c.entries[string(key.MustMarshalBinary())] = Entry{Key: key, Value: v}
	return nil
}

func (c *ChangeSet) Delete(key *keyvalue.Key) error {
	if err := c.check(true); err != nil {
		return err
	}

	c.entries[string(key.MustMarshalBinary())] = Entry{Key: key, Delete: true}
	return nil
}

// ForEach iterates over the committed values the change set shadows and then
// over its own pending values, in key order.
func (c *ChangeSet) ForEach(fn func(*keyvalue.Key, []byte) error) error {
	if err := c.check(false); err != nil {
		return err
	}

	if c.opts.ForEach != nil {
		err := c.opts.ForEach(func(key *keyvalue.Key, value []byte) error {
			if _, ok := c.entries[string(key.MustMarshalBinary())]; ok {
				return nil
			}
			return fn(key, value)
		})
		if err != nil {
			return err
		}
	}

	keys := make([]string, 0, len(c.entries))
	for k, e := range c.entries {
		if !e.Delete {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		e := c.entries[k]
		if err := fn(e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}

func (c *ChangeSet) Commit() error {
	if err := c.check(true); err != nil {
		return err
	}

	err := c.opts.Commit(c.entries)
	c.Discard()
	return err
}

func (c *ChangeSet) Discard() {
	if c.done {
		return
	}
	c.done = true
	c.entries = nil
	if c.opts.Discard != nil {
		c.opts.Discard()
	}
}
