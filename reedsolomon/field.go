// Package reedsolomon implements arithmetic over GF(2^m) and the
// Reed-Solomon codes built on it.
package reedsolomon

import "fmt"

// GaloisField is GF(size) generated by a primitive polynomial, with alpha
// fixed at 2. generatorBase is the exponent of the first root of the
// generator polynomial (0 for QR, 1 for most other symbologies).
type GaloisField struct {
	primitive     int
	size          int
	generatorBase int
	exp           []int
	log           []int
	zero, one     *Poly
}

// Shared fields. They are built once at package initialisation and never
// modified afterwards.
var (
	QRCodeField256     = NewGaloisField(0x011D, 256, 0) // x^8 + x^4 + x^3 + x^2 + 1
	DataMatrixField256 = NewGaloisField(0x012D, 256, 1) // x^8 + x^5 + x^3 + x^2 + 1
	AztecData12        = NewGaloisField(0x1069, 4096, 1)
	AztecData10        = NewGaloisField(0x0409, 1024, 1)
	AztecData6         = NewGaloisField(0x0043, 64, 1)
	AztecParam         = NewGaloisField(0x0013, 16, 1)
	AztecData8         = DataMatrixField256
	MaxiCodeField64    = AztecData6
)

// NewGaloisField builds the exp and log tables for the field.
func NewGaloisField(primitive, size, generatorBase int) *GaloisField {
	f := &GaloisField{
		primitive:     primitive,
		size:          size,
		generatorBase: generatorBase,
		exp:           make([]int, size),
		log:           make([]int, size),
	}
	for i, x := 0, 1; i < size; i++ {
		f.exp[i] = x
		x <<= 1
		if x >= size {
			x = (x ^ primitive) & (size - 1)
		}
	}
	for i := 0; i < size-1; i++ {
		f.log[f.exp[i]] = i
	}
	f.zero = &Poly{field: f, coef: []int{0}}
	f.one = &Poly{field: f, coef: []int{1}}
	return f
}

// AddOrSubtract is addition in GF(2^m), which is also subtraction.
func AddOrSubtract(a, b int) int { return a ^ b }

// Exp returns alpha^a.
func (f *GaloisField) Exp(a int) int { return f.exp[a] }

// Log returns the discrete logarithm of a. It panics when a is 0.
func (f *GaloisField) Log(a int) int {
	if a == 0 {
		panic("reedsolomon: log of zero")
	}
	return f.log[a]
}

// Inverse returns the multiplicative inverse of a. It panics when a is 0.
func (f *GaloisField) Inverse(a int) int {
	if a == 0 {
		panic("reedsolomon: inverse of zero")
	}
	return f.exp[f.size-1-f.log[a]]
}

func (f *GaloisField) Multiply(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return f.exp[(f.log[a]+f.log[b])%(f.size-1)]
}

func (f *GaloisField) Size() int { return f.size }

func (f *GaloisField) GeneratorBase() int { return f.generatorBase }

// Zero is the zero polynomial of this field.
func (f *GaloisField) Zero() *Poly { return f.zero }

// One is the constant polynomial 1.
func (f *GaloisField) One() *Poly { return f.one }

// BuildMonomial returns coefficient * x^degree.
func (f *GaloisField) BuildMonomial(degree, coefficient int) *Poly {
	if degree < 0 {
		panic("reedsolomon: negative monomial degree")
	}
	if coefficient == 0 {
		return f.zero
	}
	coef := make([]int, degree+1)
	coef[0] = coefficient
	return &Poly{field: f, coef: coef}
}

func (f *GaloisField) String() string {
	return fmt.Sprintf("GF(0x%x,%d)", f.primitive, f.size)
}
