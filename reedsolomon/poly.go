package reedsolomon

// Poly is an immutable polynomial over a GaloisField. Coefficients are held
// most significant first and never carry leading zeros, so the zero
// polynomial is always the single coefficient 0.
type Poly struct {
	field *GaloisField
	coef  []int
}

// NewPoly builds a polynomial from coefficients ordered highest degree
// first. Leading zeros are dropped; coef must not be empty.
func NewPoly(field *GaloisField, coef []int) *Poly {
	if len(coef) == 0 {
		panic("reedsolomon: polynomial needs at least one coefficient")
	}
	lead := 0
	for lead < len(coef)-1 && coef[lead] == 0 {
		lead++
	}
	if lead > 0 {
		coef = append([]int(nil), coef[lead:]...)
	}
	return &Poly{field: field, coef: coef}
}

// Coefficients returns the backing coefficients, highest degree first.
func (p *Poly) Coefficients() []int { return p.coef }

func (p *Poly) Degree() int { return len(p.coef) - 1 }

func (p *Poly) IsZero() bool { return p.coef[0] == 0 }

// Coefficient returns the coefficient of x^degree.
func (p *Poly) Coefficient(degree int) int { return p.coef[len(p.coef)-1-degree] }

// EvaluateAt computes p(a) by Horner's rule.
func (p *Poly) EvaluateAt(a int) int {
	switch a {
	case 0:
		return p.Coefficient(0)
	case 1:
		sum := 0
		for _, c := range p.coef {
			sum ^= c
		}
		return sum
	}
	acc := p.coef[0]
	for _, c := range p.coef[1:] {
		acc = p.field.Multiply(a, acc) ^ c
	}
	return acc
}

func (p *Poly) AddOrSubtract(q *Poly) *Poly {
	if p.IsZero() {
		return q
	}
	if q.IsZero() {
		return p
	}
	long, short := p.coef, q.coef
	if len(short) > len(long) {
		long, short = short, long
	}
	sum := append([]int(nil), long...)
	off := len(long) - len(short)
	for i, c := range short {
		sum[off+i] ^= c
	}
	return NewPoly(p.field, sum)
}

func (p *Poly) Multiply(q *Poly) *Poly {
	if p.IsZero() || q.IsZero() {
		return p.field.zero
	}
	prod := make([]int, len(p.coef)+len(q.coef)-1)
	for i, a := range p.coef {
		for j, b := range q.coef {
			prod[i+j] ^= p.field.Multiply(a, b)
		}
	}
	return NewPoly(p.field, prod)
}

func (p *Poly) MultiplyScalar(s int) *Poly {
	switch s {
	case 0:
		return p.field.zero
	case 1:
		return p
	}
	return p.MultiplyByMonomial(0, s)
}

// MultiplyByMonomial returns p * coefficient * x^degree.
func (p *Poly) MultiplyByMonomial(degree, coefficient int) *Poly {
	if degree < 0 {
		panic("reedsolomon: negative monomial degree")
	}
	if coefficient == 0 {
		return p.field.zero
	}
	prod := make([]int, len(p.coef)+degree)
	for i, c := range p.coef {
		prod[i] = p.field.Multiply(c, coefficient)
	}
	return NewPoly(p.field, prod)
}

// Divide returns the quotient and remainder of p / q. It panics when q is
// the zero polynomial.
func (p *Poly) Divide(q *Poly) (quotient, remainder *Poly) {
	if q.IsZero() {
		panic("reedsolomon: division by the zero polynomial")
	}
	quotient, remainder = p.field.zero, p
	invLead := p.field.Inverse(q.Coefficient(q.Degree()))
	for !remainder.IsZero() && remainder.Degree() >= q.Degree() {
		shift := remainder.Degree() - q.Degree()
		scale := p.field.Multiply(remainder.Coefficient(remainder.Degree()), invLead)
		quotient = quotient.AddOrSubtract(p.field.BuildMonomial(shift, scale))
		remainder = remainder.AddOrSubtract(q.MultiplyByMonomial(shift, scale))
	}
	return quotient, remainder
}
