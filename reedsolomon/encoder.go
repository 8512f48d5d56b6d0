package reedsolomon

import "sync"

// Encoder appends Reed-Solomon parity symbols. Generator polynomials are
// cached per degree; an Encoder is safe for concurrent use.
type Encoder struct {
	field *GaloisField

	mu         sync.Mutex
	generators []*Poly
}

func NewEncoder(field *GaloisField) *Encoder {
	return &Encoder{field: field, generators: []*Poly{field.one}}
}

// generator returns the product of (x - alpha^(base+i)) for i in [0,degree).
func (e *Encoder) generator(degree int) *Poly {
	e.mu.Lock()
	defer e.mu.Unlock()
	for d := len(e.generators); d <= degree; d++ {
		root := e.field.Exp(d - 1 + e.field.generatorBase)
		next := e.generators[d-1].Multiply(NewPoly(e.field, []int{1, root}))
		e.generators = append(e.generators, next)
	}
	return e.generators[degree]
}

// Encode fills the last ecBytes entries of toEncode with parity computed
// over the entries before them. It panics when ecBytes is zero or no data
// symbols precede the parity.
func (e *Encoder) Encode(toEncode []int, ecBytes int) {
	if ecBytes == 0 {
		panic("reedsolomon: no error correction symbols requested")
	}
	n := len(toEncode) - ecBytes
	if n <= 0 {
		panic("reedsolomon: no data symbols to encode")
	}
	msg := NewPoly(e.field, append([]int(nil), toEncode[:n]...))
	_, rem := msg.MultiplyByMonomial(ecBytes, 1).Divide(e.generator(ecBytes))
	parity := toEncode[n:]
	clear(parity)
	copy(parity[ecBytes-len(rem.coef):], rem.coef)
}
