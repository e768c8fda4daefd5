// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package keyvalue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyBinaryRoundTrip(t *testing.T) {
	key := NewKey("Balance", []byte{0xde, 0xad}, uint64(42), "")
	b, err := key.MarshalBinary()
	require.NoError(t, err)

	got := new(Key)
	require.NoError(t, got.UnmarshalBinary(b))
	require.True(t, key.Equal(got), "%v != %v", key, got)
	require.Equal(t, "Balance.dead.42.", got.String())
}

func TestKeyUnmarshalRejectsGarbage(t *testing.T) {
	require.Error(t, new(Key).UnmarshalBinary(nil))
	require.Error(t, new(Key).UnmarshalBinary([]byte{1, 5, 'a'}))

	b := NewKey("a").MustMarshalBinary()
	require.Error(t, new(Key).UnmarshalBinary(append(b, 0)))
}

func TestKeyPrefix(t *testing.T) {
	key := NewKey("Allowance", "owner", "spender")
	require.True(t, key.HasPrefix("Allowance"))
	require.True(t, key.HasPrefix("Allowance", "owner"))
	require.False(t, key.HasPrefix("Balance"))
	require.False(t, NewKey("Allowance").HasPrefix("Allowance", "owner"))

	require.Equal(t, "owner.spender", key.SliceI(1).String())
	require.True(t, NewKey("Allowance").AppendKey(key.SliceI(1)).Equal(key))
}
