// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package badger

import (
	"testing"

	"gitlab.com/accumulatenetwork/tokenledger/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/database/keyvalue/kvtest"
)

func open(t *testing.T) kvtest.Opener {
	dir := t.TempDir()
	return func() (keyvalue.Beginner, error) {
		return New(dir)
	}
}

func TestDatabase(t *testing.T) {
	kvtest.TestDatabase(t, open(t))
}

func TestDelete(t *testing.T) {
	kvtest.TestDelete(t, open(t))
}

func TestDiscard(t *testing.T) {
	kvtest.TestDiscard(t, open(t))
}

func TestReadOnly(t *testing.T) {
	kvtest.TestReadOnly(t, open(t))
}

func TestForEachOverlay(t *testing.T) {
	kvtest.TestForEachOverlay(t, open(t))
}
