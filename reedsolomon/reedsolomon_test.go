package reedsolomon

import (
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Version 1-M encoding of "01234567".
var (
	qrVectorData = []int{
		0x10, 0x20, 0x0C, 0x56, 0x61, 0x80, 0xEC, 0x11,
		0xEC, 0x11, 0xEC, 0x11, 0xEC, 0x11, 0xEC, 0x11,
	}
	qrVectorEC = []int{0xA5, 0x24, 0xD4, 0xC1, 0xED, 0x36, 0xC7, 0x87, 0x2C, 0x55}
)

func TestEncodeKnownVector(t *testing.T) {
	buf := append(append([]int(nil), qrVectorData...), make([]int, len(qrVectorEC))...)
	NewEncoder(QRCodeField256).Encode(buf, len(qrVectorEC))
	assert.Equal(t, qrVectorData, buf[:len(qrVectorData)])
	assert.Equal(t, qrVectorEC, buf[len(qrVectorData):])
}

func TestDecodeKnownVectorWithErrors(t *testing.T) {
	word := append(append([]int(nil), qrVectorData...), qrVectorEC...)
	tests := []struct {
		name    string
		corrupt []int
	}{
		{"none", nil},
		{"one data", []int{0}},
		{"spread", []int{1, 9, 20}},
		{"at capacity", []int{0, 5, 11, 17, 25}},
	}
	dec := NewDecoder(QRCodeField256)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := append([]int(nil), word...)
			for _, p := range tt.corrupt {
				got[p] ^= 0x5A
			}
			n, err := dec.Decode(got, len(qrVectorEC))
			require.NoError(t, err)
			assert.Equal(t, len(tt.corrupt), n)
			assert.Equal(t, word, got)
		})
	}
}

func TestDecodeTooManyErrors(t *testing.T) {
	word := append(append([]int(nil), qrVectorData...), qrVectorEC...)
	for i := range word {
		word[i] ^= 0xFF
	}
	_, err := NewDecoder(QRCodeField256).Decode(word, len(qrVectorEC))
	assert.ErrorIs(t, err, ErrReedSolomon)
}

func TestDataMatrixFieldRoundTrip(t *testing.T) {
	// base 1 exercises the extra X_i^-1 factor in the magnitude computation
	field := DataMatrixField256
	word := []int{142, 164, 186, 0, 0, 0, 0, 0}
	NewEncoder(field).Encode(word, 5)
	want := append([]int(nil), word...)
	word[1] ^= 0x33
	word[6] ^= 0x01
	n, err := NewDecoder(field).Decode(word, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, want, word)
}

func TestEncoderPanics(t *testing.T) {
	enc := NewEncoder(QRCodeField256)
	assert.Panics(t, func() { enc.Encode(make([]int, 4), 0) })
	assert.Panics(t, func() { enc.Encode(make([]int, 4), 4) })
}

func TestInverseOfZeroPanics(t *testing.T) {
	assert.Panics(t, func() { QRCodeField256.Inverse(0) })
	assert.Panics(t, func() { QRCodeField256.Log(0) })
}

func TestPolyNormalisesLeadingZeros(t *testing.T) {
	p := NewPoly(QRCodeField256, []int{0, 0, 3, 0})
	assert.Equal(t, []int{3, 0}, p.Coefficients())
	assert.Equal(t, 1, p.Degree())

	z := NewPoly(QRCodeField256, []int{0, 0, 0})
	assert.True(t, z.IsZero())
	assert.Equal(t, 0, z.Degree())
}

func TestPolyDivide(t *testing.T) {
	f := QRCodeField256
	a := NewPoly(f, []int{7, 3, 0, 9, 1})
	b := NewPoly(f, []int{2, 5})
	q, r := a.Divide(b)
	assert.Less(t, r.Degree(), b.Degree())
	assert.Equal(t, a.Coefficients(), q.Multiply(b).AddOrSubtract(r).Coefficients())
	assert.Panics(t, func() { a.Divide(f.Zero()) })
}

var fieldCases = []*GaloisField{QRCodeField256, DataMatrixField256, AztecData10, AztecData6, AztecParam}

func TestFieldLaws(t *testing.T) {
	properties := gopter.NewProperties(nil)

	for _, f := range fieldCases {
		f := f
		elem := gen.IntRange(1, f.Size()-1)
		properties.Property(f.String()+" a * a^-1 == 1", prop.ForAll(
			func(a int) bool { return f.Multiply(a, f.Inverse(a)) == 1 },
			elem,
		))
		properties.Property(f.String()+" exp(log(a)) == a", prop.ForAll(
			func(a int) bool { return f.Multiply(f.Exp(f.Log(a)), 1) == a },
			elem,
		))
		properties.Property(f.String()+" a + a == 0", prop.ForAll(
			func(a int) bool { return AddOrSubtract(a, a) == 0 },
			elem,
		))
		properties.Property(f.String()+" multiply is commutative and associative", prop.ForAll(
			func(a, b, c int) bool {
				return f.Multiply(a, b) == f.Multiply(b, a) &&
					f.Multiply(f.Multiply(a, b), c) == f.Multiply(a, f.Multiply(b, c))
			},
			elem, elem, elem,
		))
		properties.Property(f.String()+" multiply distributes over add", prop.ForAll(
			func(a, b, c int) bool {
				return f.Multiply(a, b^c) == f.Multiply(a, b)^f.Multiply(a, c)
			},
			elem, elem, elem,
		))
	}

	properties.TestingRun(t)
}

func TestCorrectionCapacity(t *testing.T) {
	properties := gopter.NewProperties(nil)
	field := QRCodeField256

	properties.Property("up to ecBytes/2 errors are corrected", prop.ForAll(
		func(dataLen, ecLen int, seed int64) bool {
			rng := rand.New(rand.NewSource(seed))
			word := make([]int, dataLen+ecLen)
			for i := 0; i < dataLen; i++ {
				word[i] = rng.Intn(256)
			}
			NewEncoder(field).Encode(word, ecLen)
			want := append([]int(nil), word...)

			nErr := rng.Intn(ecLen/2 + 1)
			for _, p := range rng.Perm(len(word))[:nErr] {
				word[p] ^= 1 + rng.Intn(255)
			}
			n, err := NewDecoder(field).Decode(word, ecLen)
			if err != nil || n != nErr {
				return false
			}
			for i := range want {
				if word[i] != want[i] {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 120),
		gen.IntRange(2, 30),
		gen.Int64(),
	))

	properties.Property("beyond capacity never returns the original", prop.ForAll(
		func(dataLen, ecLen int, seed int64) bool {
			rng := rand.New(rand.NewSource(seed))
			word := make([]int, dataLen+ecLen)
			for i := 0; i < dataLen; i++ {
				word[i] = rng.Intn(256)
			}
			NewEncoder(field).Encode(word, ecLen)
			want := append([]int(nil), word...)
			for _, p := range rng.Perm(len(word))[:ecLen/2+1] {
				word[p] ^= 1 + rng.Intn(255)
			}
			if _, err := NewDecoder(field).Decode(word, ecLen); err != nil {
				return true
			}
			for i := range want {
				if word[i] != want[i] {
					return true
				}
			}
			return false
		},
		gen.IntRange(4, 60),
		gen.IntRange(2, 20),
		gen.Int64(),
	))

	properties.TestingRun(t)
}
