// Package bitutil holds the packed bit containers shared by the QR encoder and
// decoder: a growable BitArray, a two-dimensional BitMatrix and a BitSource
// for reading bitstreams.
package bitutil

import (
	"fmt"
	"math/bits"
	"strings"
)

const (
	wordBits = 32
	wordMask = wordBits - 1

	// growth headroom used when appending past capacity
	loadFactor = 0.75
)

// BitArray is a resizable sequence of bits packed into uint32 words, least
// significant bit first within each word. Bits past Size in the final word
// are ignored by every operation except raw word access.
type BitArray struct {
	words []uint32
	size  int
}

// NewBitArray returns a zeroed BitArray holding size bits.
func NewBitArray(size int) *BitArray {
	if size <= 0 {
		return &BitArray{}
	}
	return &BitArray{words: newWords(size), size: size}
}

// NewBitArrayFromWords wraps existing packed words. The slice is not copied.
func NewBitArrayFromWords(words []uint32, size int) *BitArray {
	return &BitArray{words: words, size: size}
}

func newWords(size int) []uint32 {
	return make([]uint32, (size+wordMask)/wordBits)
}

func bitMask(i int) uint32 { return 1 << uint(i&wordMask) }

// spanMask selects bits lo..hi (inclusive) of a single word.
func spanMask(lo, hi int) uint32 {
	return uint32((uint64(2) << uint(hi)) - (uint64(1) << uint(lo)))
}

// Size is the logical number of bits.
func (a *BitArray) Size() int { return a.size }

// SizeInBytes is the number of bytes needed to hold Size bits.
func (a *BitArray) SizeInBytes() int { return (a.size + 7) / 8 }

// Words exposes the backing words.
func (a *BitArray) Words() []uint32 { return a.words }

func (a *BitArray) ensureCapacity(n int) {
	if n <= len(a.words)*wordBits {
		return
	}
	grown := newWords(int(float64(n) / loadFactor))
	copy(grown, a.words)
	a.words = grown
}

func (a *BitArray) Get(i int) bool { return a.words[i/wordBits]&bitMask(i) != 0 }

func (a *BitArray) Set(i int) { a.words[i/wordBits] |= bitMask(i) }

func (a *BitArray) Flip(i int) { a.words[i/wordBits] ^= bitMask(i) }

// SetBulk overwrites the 32 bits of the word containing bit i.
func (a *BitArray) SetBulk(i int, word uint32) { a.words[i/wordBits] = word }

// Clear unsets every bit.
func (a *BitArray) Clear() { clear(a.words) }

// NextSet returns the index of the first set bit at or after from, or Size
// when there is none.
func (a *BitArray) NextSet(from int) int { return a.scan(from, 0) }

// NextUnset returns the index of the first unset bit at or after from, or
// Size when there is none.
func (a *BitArray) NextUnset(from int) int { return a.scan(from, ^uint32(0)) }

// scan finds the first bit whose value differs from the bits of invert.
func (a *BitArray) scan(from int, invert uint32) int {
	if from >= a.size {
		return a.size
	}
	w := from / wordBits
	cur := (a.words[w] ^ invert) &^ (bitMask(from) - 1)
	for cur == 0 {
		w++
		if w == len(a.words) {
			return a.size
		}
		cur = a.words[w] ^ invert
	}
	return min(w*wordBits+bits.TrailingZeros32(cur), a.size)
}

func (a *BitArray) checkRange(start, end int) {
	if end < start || start < 0 || end > a.size {
		panic(fmt.Sprintf("bitutil: invalid range [%d,%d) for size %d", start, end, a.size))
	}
}

// forRange calls fn with each word index touched by [start,end) and the mask
// of the bits inside the range for that word.
func forRange(start, end int, fn func(w int, mask uint32) bool) bool {
	last := end - 1
	first, lastWord := start/wordBits, last/wordBits
	for w := first; w <= lastWord; w++ {
		lo, hi := 0, wordMask
		if w == first {
			lo = start & wordMask
		}
		if w == lastWord {
			hi = last & wordMask
		}
		if !fn(w, spanMask(lo, hi)) {
			return false
		}
	}
	return true
}

// SetRange sets the bits in [start,end). It panics on an invalid range.
func (a *BitArray) SetRange(start, end int) {
	a.checkRange(start, end)
	if start == end {
		return
	}
	forRange(start, end, func(w int, mask uint32) bool {
		a.words[w] |= mask
		return true
	})
}

// IsRange reports whether every bit in [start,end) equals value. It panics
// on an invalid range.
func (a *BitArray) IsRange(start, end int, value bool) bool {
	a.checkRange(start, end)
	if start == end {
		return true
	}
	return forRange(start, end, func(w int, mask uint32) bool {
		got := a.words[w] & mask
		if value {
			return got == mask
		}
		return got == 0
	})
}

func (a *BitArray) AppendBit(bit bool) {
	a.ensureCapacity(a.size + 1)
	if bit {
		a.words[a.size/wordBits] |= bitMask(a.size)
	}
	a.size++
}

// AppendBits appends the low n bits of value, most significant first.
func (a *BitArray) AppendBits(value uint32, n int) {
	if n < 0 || n > wordBits {
		panic("bitutil: AppendBits count must be in [0,32]")
	}
	a.ensureCapacity(a.size + n)
	for shift := n - 1; shift >= 0; shift-- {
		a.AppendBit(value>>uint(shift)&1 == 1)
	}
}

func (a *BitArray) AppendBitArray(other *BitArray) {
	a.ensureCapacity(a.size + other.size)
	for i := 0; i < other.size; i++ {
		a.AppendBit(other.Get(i))
	}
}

// Xor combines other into a in place. Both arrays must have the same size.
func (a *BitArray) Xor(other *BitArray) {
	if a.size != other.size {
		panic("bitutil: Xor of arrays with different sizes")
	}
	for i := 0; i < (a.size+wordMask)/wordBits; i++ {
		a.words[i] ^= other.words[i]
	}
}

// ToBytes packs numBytes bytes starting at bitOffset into dst[offset:],
// most significant bit first.
func (a *BitArray) ToBytes(bitOffset int, dst []byte, offset, numBytes int) {
	for i := 0; i < numBytes; i++ {
		var b byte
		for j := 0; j < 8; j++ {
			b <<= 1
			if a.Get(bitOffset) {
				b |= 1
			}
			bitOffset++
		}
		dst[offset+i] = b
	}
}

// Reverse reverses the order of the bits in place.
func (a *BitArray) Reverse() {
	if a.size == 0 {
		return
	}
	n := (a.size + wordMask) / wordBits
	out := make([]uint32, len(a.words))
	for i := 0; i < n; i++ {
		out[n-1-i] = bits.Reverse32(a.words[i])
	}
	if pad := uint(n*wordBits - a.size); pad != 0 {
		for i := 0; i < n; i++ {
			v := out[i] >> pad
			if i+1 < n {
				v |= out[i+1] << (wordBits - pad)
			}
			out[i] = v
		}
	}
	a.words = out
}

func (a *BitArray) Clone() *BitArray {
	return &BitArray{words: append([]uint32(nil), a.words...), size: a.size}
}

// String renders set bits as 'X' and unset bits as '.', with a space before
// every group of eight.
func (a *BitArray) String() string {
	var sb strings.Builder
	sb.Grow(a.size + a.size/8 + 1)
	for i := 0; i < a.size; i++ {
		if i%8 == 0 {
			sb.WriteByte(' ')
		}
		if a.Get(i) {
			sb.WriteByte('X')
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}
