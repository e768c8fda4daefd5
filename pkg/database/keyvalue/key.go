// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package keyvalue

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
)

// A Key is the key for a record. Each part is stored in its string form.
type Key struct {
	parts []string
}

// NewKey creates a key. Strings are used as-is, integers are formatted in
// decimal, byte slices are hex encoded, and anything implementing
// [fmt.Stringer] is formatted with String.
func NewKey(v ...any) *Key {
	return new(Key).Append(v...)
}

func (k *Key) Len() int {
	if k == nil {
		return 0
	}
	return len(k.parts)
}

func (k *Key) Get(i int) string {
	if i < 0 || i >= k.Len() {
		return ""
	}
	return k.parts[i]
}

// SliceI returns the key without its first i parts.
func (k *Key) SliceI(i int) *Key {
	return &Key{k.parts[i:]}
}

// Append creates a child key of this key.
func (k *Key) Append(v ...any) *Key {
	l := &Key{make([]string, 0, k.Len()+len(v))}
	if k != nil {
		l.parts = append(l.parts, k.parts...)
	}
	for _, v := range v {
		l.parts = append(l.parts, formatPart(v))
	}
	return l
}

// AppendKey creates a child key of this key.
func (k *Key) AppendKey(l *Key) *Key {
	if l.Len() == 0 {
		return k
	}
	m := &Key{make([]string, 0, k.Len()+l.Len())}
	if k != nil {
		m.parts = append(m.parts, k.parts...)
	}
	m.parts = append(m.parts, l.parts...)
	return m
}

// HasPrefix returns true if the first parts of the key equal the given
// values.
func (k *Key) HasPrefix(v ...any) bool {
	if k.Len() < len(v) {
		return false
	}
	for i, v := range v {
		if k.parts[i] != formatPart(v) {
			return false
		}
	}
	return true
}

func (k *Key) Equal(l *Key) bool {
	if k.Len() != l.Len() {
		return false
	}
	for i := range k.parts {
		if k.parts[i] != l.parts[i] {
			return false
		}
	}
	return true
}

func (k *Key) String() string {
	if k.Len() == 0 {
		return "()"
	}
	return strings.Join(k.parts, ".")
}

// MarshalBinary encodes the key as a part count followed by length-prefixed
// parts.
func (k *Key) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	var b [binary.MaxVarintLen64]byte
	buf.Write(b[:binary.PutUvarint(b[:], uint64(k.Len()))])
	for i := 0; i < k.Len(); i++ {
		buf.Write(b[:binary.PutUvarint(b[:], uint64(len(k.parts[i])))])
		buf.WriteString(k.parts[i])
	}
	return buf.Bytes(), nil
}

// MustMarshalBinary is MarshalBinary for callers that cannot handle an error.
// MarshalBinary never fails.
func (k *Key) MustMarshalBinary() []byte {
	b, _ := k.MarshalBinary()
	return b
}

func (k *Key) UnmarshalBinary(b []byte) error {
	rd := bytes.NewReader(b)
	n, err := binary.ReadUvarint(rd)
	if err != nil {
		return errors.EncodingError.WithFormat("decode key length: %w", err)
	}
	if n > uint64(len(b)) {
		return errors.EncodingError.WithFormat("invalid key length %d", n)
	}

	parts := make([]string, n)
	for i := range parts {
		l, err := binary.ReadUvarint(rd)
		if err != nil {
			return errors.EncodingError.WithFormat("decode key part %d: %w", i, err)
		}
		if l > uint64(rd.Len()) {
			return errors.EncodingError.WithFormat("decode key part %d: %w", i, io.ErrUnexpectedEOF)
		}
		s := make([]byte, l)
		_, _ = rd.Read(s)
		parts[i] = string(s)
	}
	if rd.Len() > 0 {
		return errors.EncodingError.WithFormat("%d trailing bytes after key", rd.Len())
	}

	k.parts = parts
	return nil
}

func formatPart(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []byte:
		return hex.EncodeToString(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
