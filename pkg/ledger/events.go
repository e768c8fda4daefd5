// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package ledger

import (
	"encoding/binary"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
)

type EventKind string

const (
	EventIssued               EventKind = "issued"
	EventBurned               EventKind = "burned"
	EventTransferred          EventKind = "transferred"
	EventApproved             EventKind = "approved"
	EventBatchTransferred     EventKind = "batchTransferred"
	EventRescued              EventKind = "rescued"
	EventPaused               EventKind = "paused"
	EventUnpaused             EventKind = "unpaused"
	EventOwnershipTransferred EventKind = "ownershipTransferred"
)

// Event is an entry in the ledger's append-only event log. Which fields are
// set depends on the kind:
//
//   - Issued: To, Amount
//   - Burned: From, Amount
//   - Transferred: From, To, Amount
//   - Approved: From (owner), To (spender), Amount
//   - BatchTransferred: From, Count, Amount (total)
//   - Rescued: Asset, To, Amount
//   - Paused, Unpaused: From (account that changed the state)
//   - OwnershipTransferred: From (previous owner), To (new owner)
type Event struct {
	Sequence uint64
	Kind     EventKind
	From     common.Address
	To       common.Address
	Asset    common.Address
	Amount   *uint256.Int
	Count    uint64
}

type eventJSON struct {
	Sequence uint64          `json:"sequence"`
	Kind     EventKind       `json:"kind"`
	From     *common.Address `json:"from,omitempty"`
	To       *common.Address `json:"to,omitempty"`
	Asset    *common.Address `json:"asset,omitempty"`
	Amount   string          `json:"amount,omitempty"`
	Count    uint64          `json:"count,omitempty"`
}

func optAddr(a common.Address) *common.Address {
	if a == (common.Address{}) {
		return nil
	}
	return &a
}

func (e *Event) MarshalJSON() ([]byte, error) {
	v := eventJSON{
		Sequence: e.Sequence,
		Kind:     e.Kind,
		From:     optAddr(e.From),
		To:       optAddr(e.To),
		Asset:    optAddr(e.Asset),
		Count:    e.Count,
	}
	if e.Amount != nil {
		v.Amount = FormatAmount(e.Amount)
	}
	return json.Marshal(v)
}

func (e *Event) UnmarshalJSON(b []byte) error {
	var v eventJSON
	err := json.Unmarshal(b, &v)
	if err != nil {
		return err
	}

	*e = Event{Sequence: v.Sequence, Kind: v.Kind, Count: v.Count}
	if v.From != nil {
		e.From = *v.From
	}
	if v.To != nil {
		e.To = *v.To
	}
	if v.Asset != nil {
		e.Asset = *v.Asset
	}
	if v.Amount != "" {
		e.Amount, err = ParseAmount(v.Amount)
		if err != nil {
			return err
		}
	}
	return nil
}

var keyEventCount = keyvalue.NewKey("Ledger", "EventCount")

func keyEvent(seq uint64) *keyvalue.Key { return keyvalue.NewKey("Event", seq) }

// EventCount returns the number of events in the log.
func EventCount(store keyvalue.Store) (uint64, error) {
	b, err := store.Get(keyEventCount)
	switch {
	case err == nil:
	case keyvalue.IsNotFound(err):
		return 0, nil
	default:
		return 0, errors.UnknownError.WithFormat("load event count: %w", err)
	}
	if len(b) != 8 {
		return 0, errors.EncodingError.WithFormat("invalid event count: want 8 bytes, got %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

// appendEvent assigns the next sequence number to the event and writes it to
// the log.
func appendEvent(store keyvalue.Store, e *Event) error {
	n, err := EventCount(store)
	if err != nil {
		return err
	}

	e.Sequence = n
	b, err := json.Marshal(e)
	if err != nil {
		return errors.EncodingError.WithFormat("encode event: %w", err)
	}
	err = store.Put(keyEvent(n), b)
	if err != nil {
		return errors.UnknownError.WithFormat("store event: %w", err)
	}

	var c [8]byte
	binary.BigEndian.PutUint64(c[:], n+1)
	err = store.Put(keyEventCount, c[:])
	if err != nil {
		return errors.UnknownError.WithFormat("store event count: %w", err)
	}
	return nil
}

// LoadEvents loads up to count events starting at the given sequence number.
func LoadEvents(store keyvalue.Store, start, count uint64) ([]*Event, error) {
	n, err := EventCount(store)
	if err != nil {
		return nil, err
	}
	if start >= n {
		return nil, nil
	}
	if count > n-start {
		count = n - start
	}

	events := make([]*Event, 0, count)
	for i := start; i < start+count; i++ {
		b, err := store.Get(keyEvent(i))
		if err != nil {
			return nil, errors.UnknownError.WithFormat("load event %d: %w", i, err)
		}
		e := new(Event)
		err = json.Unmarshal(b, e)
		if err != nil {
			return nil, errors.EncodingError.WithFormat("decode event %d: %w", i, err)
		}
		events = append(events, e)
	}
	return events, nil
}
