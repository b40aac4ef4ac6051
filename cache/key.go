// SPDX-License-Identifier: MIT

package cache

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Key is a 64-bit content hash of a memoised call's arguments.
type Key uint64

// KeyBuilder accumulates typed arguments into an xxhash digest. Every write is
// length- or type-delimited so ("ab","c") and ("a","bc") hash differently.
type KeyBuilder struct {
	d   *xxhash.Digest
	buf [8]byte
}

// NewKey starts a key for the function identified by tag.
func NewKey(tag string) *KeyBuilder {
	b := &KeyBuilder{d: xxhash.New()}
	return b.String(tag)
}

func (b *KeyBuilder) word(u uint64) {
	binary.LittleEndian.PutUint64(b.buf[:], u)
	_, _ = b.d.Write(b.buf[:])
}

// String writes s, prefixed by its length.
func (b *KeyBuilder) String(s string) *KeyBuilder {
	b.word(uint64(len(s)))
	_, _ = b.d.WriteString(s)
	return b
}

// Int writes v as a 64-bit word.
func (b *KeyBuilder) Int(v int) *KeyBuilder {
	b.word(uint64(int64(v)))
	return b
}

// Bool writes v as a 0/1 word.
func (b *KeyBuilder) Bool(v bool) *KeyBuilder {
	if v {
		b.word(1)
	} else {
		b.word(0)
	}
	return b
}

// Float writes the IEEE-754 bits of v, so 0 and −0 differ.
func (b *KeyBuilder) Float(v float64) *KeyBuilder {
	b.word(math.Float64bits(v))
	return b
}

// Floats writes len(v) followed by every element.
func (b *KeyBuilder) Floats(v []float64) *KeyBuilder {
	b.word(uint64(len(v)))
	for _, x := range v {
		b.word(math.Float64bits(x))
	}
	return b
}

// Sum finalises the key. The builder may keep being extended afterwards.
func (b *KeyBuilder) Sum() Key {
	return Key(b.d.Sum64())
}
