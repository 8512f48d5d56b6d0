package bitutil

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitArrayGetSet(t *testing.T) {
	a := NewBitArray(33)
	for i := 0; i < 33; i++ {
		assert.False(t, a.Get(i), "bit %d", i)
	}
	a.Set(0)
	a.Set(31)
	a.Set(32)
	assert.True(t, a.Get(0))
	assert.True(t, a.Get(31))
	assert.True(t, a.Get(32))
	assert.False(t, a.Get(1))
	assert.False(t, a.Get(30))
}

func TestBitArrayNextSet(t *testing.T) {
	a := NewBitArray(64)
	a.Set(10)
	a.Set(40)
	tests := []struct{ from, want int }{
		{0, 10}, {10, 10}, {11, 40}, {40, 40}, {41, 64}, {100, 64},
	}
	for _, tt := range tests {
		if got := a.NextSet(tt.from); got != tt.want {
			t.Errorf("NextSet(%d) = %d, want %d", tt.from, got, tt.want)
		}
	}
}

func TestBitArrayNextUnset(t *testing.T) {
	a := NewBitArray(70)
	a.SetRange(0, 70)
	a.Flip(33)
	assert.Equal(t, 33, a.NextUnset(0))
	assert.Equal(t, 70, a.NextUnset(34))
}

func TestBitArrayNextSetIgnoresPadding(t *testing.T) {
	a := NewBitArray(40)
	a.SetBulk(32, 0xFFFFFF00)
	assert.Equal(t, 40, a.NextSet(33))
}

func TestBitArrayAppendBits(t *testing.T) {
	a := &BitArray{}
	a.AppendBits(0x1E, 6)
	require.Equal(t, 6, a.Size())
	assert.Equal(t, " .XXXX.", a.String())

	a.AppendBit(true)
	a.AppendBits(0xFFFFFFFF, 32)
	assert.Equal(t, 39, a.Size())
	assert.True(t, a.IsRange(6, 39, true))
}

func TestBitArrayAppendBitArray(t *testing.T) {
	a := &BitArray{}
	a.AppendBits(0b101, 3)
	b := &BitArray{}
	b.AppendBits(0b0110, 4)
	a.AppendBitArray(b)
	assert.Equal(t, " X.X.XX.", a.String())
}

func TestBitArraySetRangeAcrossWords(t *testing.T) {
	a := NewBitArray(96)
	a.SetRange(30, 70)
	for i := 0; i < 96; i++ {
		assert.Equal(t, i >= 30 && i < 70, a.Get(i), "bit %d", i)
	}
	assert.True(t, a.IsRange(30, 70, true))
	assert.False(t, a.IsRange(29, 70, true))
	assert.True(t, a.IsRange(70, 96, false))
	assert.True(t, a.IsRange(5, 5, true))
}

func TestBitArrayInvalidRangePanics(t *testing.T) {
	a := NewBitArray(16)
	assert.Panics(t, func() { a.SetRange(5, 4) })
	assert.Panics(t, func() { a.SetRange(-1, 4) })
	assert.Panics(t, func() { a.IsRange(0, 17, true) })
}

func TestBitArrayToBytes(t *testing.T) {
	a := &BitArray{}
	a.AppendBits(0xA5, 8)
	a.AppendBits(0x3C, 8)
	out := make([]byte, 3)
	a.ToBytes(0, out, 1, 2)
	assert.Equal(t, []byte{0, 0xA5, 0x3C}, out)
	assert.Equal(t, 2, a.SizeInBytes())
}

func TestBitArrayXor(t *testing.T) {
	a, b := NewBitArray(40), NewBitArray(40)
	a.SetRange(0, 20)
	b.SetRange(10, 40)
	a.Xor(b)
	assert.True(t, a.IsRange(0, 10, true))
	assert.True(t, a.IsRange(10, 20, false))
	assert.True(t, a.IsRange(20, 40, true))
	assert.Panics(t, func() { a.Xor(NewBitArray(41)) })
}

func TestBitArrayXorAfterAppend(t *testing.T) {
	// appending over-allocates words, so equal sizes can differ in word count
	for n := 1; n < 300; n++ {
		a := &BitArray{}
		for i := 0; i < n; i++ {
			a.AppendBit(i%3 == 0)
		}
		b := NewBitArray(n)
		b.Set(n - 1)
		require.NotPanics(t, func() { a.Xor(b) }, "size %d", n)
		require.NotPanics(t, func() { b.Xor(a) }, "size %d", n)
		assert.Equal(t, (n-1)%3 != 0, a.Get(n-1), "size %d", n)
	}
}

func TestBitArrayReverse(t *testing.T) {
	for _, size := range []int{1, 7, 32, 33, 63, 64, 100} {
		a := NewBitArray(size)
		a.Set(0)
		if size > 3 {
			a.Set(3)
		}
		a.Reverse()
		assert.True(t, a.Get(size-1), "size %d", size)
		if size > 3 {
			assert.True(t, a.Get(size-4), "size %d", size)
		}
		assert.Equal(t, size, a.Size())
	}
}

func TestBitArrayClone(t *testing.T) {
	a := NewBitArray(10)
	a.Set(4)
	c := a.Clone()
	c.Set(5)
	assert.False(t, a.Get(5))
	assert.True(t, c.Get(4))
}

func bitArrayFrom(bits []bool) *BitArray {
	a := &BitArray{}
	for _, b := range bits {
		a.AppendBit(b)
	}
	return a
}

func TestBitArrayProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("reverse twice is identity", prop.ForAll(
		func(bits []bool) bool {
			a := bitArrayFrom(bits)
			want := a.String()
			a.Reverse()
			a.Reverse()
			return a.String() == want
		},
		gen.SliceOf(gen.Bool()),
	))

	properties.Property("flip twice is identity", prop.ForAll(
		func(bits []bool, i int) bool {
			if len(bits) == 0 {
				return true
			}
			a := bitArrayFrom(bits)
			i %= len(bits)
			a.Flip(i)
			a.Flip(i)
			return a.Get(i) == bits[i]
		},
		gen.SliceOf(gen.Bool()),
		gen.IntRange(0, 1<<16),
	))

	properties.Property("set range then is range", prop.ForAll(
		func(size, s, e int) bool {
			s, e = s%(size+1), e%(size+1)
			if s > e {
				s, e = e, s
			}
			a := NewBitArray(size)
			a.SetRange(s, e)
			return a.IsRange(s, e, true)
		},
		gen.IntRange(1, 300),
		gen.IntRange(0, 300),
		gen.IntRange(0, 300),
	))

	properties.Property("clear unsets everything", prop.ForAll(
		func(bits []bool) bool {
			a := bitArrayFrom(bits)
			a.Clear()
			return a.NextSet(0) == a.Size()
		},
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}
