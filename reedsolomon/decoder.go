package reedsolomon

import (
	"errors"
	"fmt"
)

// ErrReedSolomon reports a codeword that could not be corrected.
var ErrReedSolomon = errors.New("reedsolomon: uncorrectable codeword")

// Decoder corrects errors in Reed-Solomon codewords over a fixed field.
// A Decoder holds no mutable state and may be shared.
type Decoder struct {
	field *GaloisField
}

func NewDecoder(field *GaloisField) *Decoder {
	return &Decoder{field: field}
}

// Decode corrects received in place, treating its last twoS symbols as
// error correction symbols. It returns the number of symbols corrected.
func (d *Decoder) Decode(received []int, twoS int) (int, error) {
	f := d.field
	msg := NewPoly(f, received)
	syn := make([]int, twoS)
	clean := true
	for i := range twoS {
		v := msg.EvaluateAt(f.Exp(i + f.generatorBase))
		syn[twoS-1-i] = v
		clean = clean && v == 0
	}
	if clean {
		return 0, nil
	}

	sigma, omega, err := d.euclid(f.BuildMonomial(twoS, 1), NewPoly(f, syn), twoS)
	if err != nil {
		return 0, err
	}
	locations, err := d.chien(sigma)
	if err != nil {
		return 0, err
	}
	magnitudes := d.forney(omega, locations)
	for i, loc := range locations {
		pos := len(received) - 1 - f.Log(loc)
		if pos < 0 {
			return 0, fmt.Errorf("%w: error location %d outside codeword", ErrReedSolomon, pos)
		}
		received[pos] ^= magnitudes[i]
	}
	return len(locations), nil
}

// euclid runs the extended Euclidean algorithm on a and b until the
// remainder degree falls below R/2, yielding the error locator sigma and
// error evaluator omega, both normalised so that sigma(0) == 1.
func (d *Decoder) euclid(a, b *Poly, R int) (sigma, omega *Poly, err error) {
	f := d.field
	if a.Degree() < b.Degree() {
		a, b = b, a
	}
	rPrev, r := a, b
	tPrev, t := f.zero, f.one

	for 2*r.Degree() >= R {
		rPrevPrev, tPrevPrev := rPrev, tPrev
		rPrev, tPrev = r, t
		if rPrev.IsZero() {
			return nil, nil, fmt.Errorf("%w: remainder vanished early", ErrReedSolomon)
		}
		r = rPrevPrev
		q := f.zero
		invLead := f.Inverse(rPrev.Coefficient(rPrev.Degree()))
		for r.Degree() >= rPrev.Degree() && !r.IsZero() {
			shift := r.Degree() - rPrev.Degree()
			scale := f.Multiply(r.Coefficient(r.Degree()), invLead)
			q = q.AddOrSubtract(f.BuildMonomial(shift, scale))
			r = r.AddOrSubtract(rPrev.MultiplyByMonomial(shift, scale))
		}
		t = q.Multiply(tPrev).AddOrSubtract(tPrevPrev)
		if r.Degree() >= rPrev.Degree() {
			return nil, nil, fmt.Errorf("%w: remainder degree did not drop", ErrReedSolomon)
		}
	}

	sigmaAtZero := t.Coefficient(0)
	if sigmaAtZero == 0 {
		return nil, nil, fmt.Errorf("%w: sigma(0) is zero", ErrReedSolomon)
	}
	inv := f.Inverse(sigmaAtZero)
	return t.MultiplyScalar(inv), r.MultiplyScalar(inv), nil
}

// chien finds the inverse roots of the error locator by trying every
// nonzero field element.
func (d *Decoder) chien(sigma *Poly) ([]int, error) {
	n := sigma.Degree()
	if n == 1 {
		return []int{sigma.Coefficient(1)}, nil
	}
	locs := make([]int, 0, n)
	for i := 1; i < d.field.size && len(locs) < n; i++ {
		if sigma.EvaluateAt(i) == 0 {
			locs = append(locs, d.field.Inverse(i))
		}
	}
	if len(locs) != n {
		return nil, fmt.Errorf("%w: locator degree %d but %d roots", ErrReedSolomon, n, len(locs))
	}
	return locs, nil
}

// forney computes error magnitudes. The denominator is the product over
// j != i of (1 + X_j * X_i^-1).
func (d *Decoder) forney(omega *Poly, locs []int) []int {
	f := d.field
	mags := make([]int, len(locs))
	for i, xi := range locs {
		xiInv := f.Inverse(xi)
		denom := 1
		for j, xj := range locs {
			if j != i {
				denom = f.Multiply(denom, AddOrSubtract(1, f.Multiply(xj, xiInv)))
			}
		}
		mags[i] = f.Multiply(omega.EvaluateAt(xiInv), f.Inverse(denom))
		if f.generatorBase != 0 {
			mags[i] = f.Multiply(mags[i], xiInv)
		}
	}
	return mags
}
