// Package transform maps points between image space and the ideal module
// grid of a symbol and samples a binarized image along that mapping.
package transform

// Point is a location in either image or grid coordinates.
type Point struct{ X, Y float64 }

// Quad lists four corners in order: the images of (0,0), (1,0), (1,1) and
// (0,1) of the unit square.
type Quad [4]Point

// PerspectiveTransform is a 3x3 projective matrix. A point maps to
// ((a11 x + a21 y + a31) / w, (a12 x + a22 y + a32) / w) with
// w = a13 x + a23 y + a33.
type PerspectiveTransform struct {
	a11, a12, a13 float64
	a21, a22, a23 float64
	a31, a32, a33 float64
}

// QuadrilateralToQuadrilateral maps src onto dst corner by corner.
func QuadrilateralToQuadrilateral(src, dst Quad) *PerspectiveTransform {
	return SquareToQuadrilateral(dst).Times(QuadrilateralToSquare(src))
}

// SquareToQuadrilateral maps the unit square onto q.
func SquareToQuadrilateral(q Quad) *PerspectiveTransform {
	p0, p1, p2, p3 := q[0], q[1], q[2], q[3]
	dx3 := p0.X - p1.X + p2.X - p3.X
	dy3 := p0.Y - p1.Y + p2.Y - p3.Y
	if dx3 == 0 && dy3 == 0 {
		return &PerspectiveTransform{
			a11: p1.X - p0.X, a12: p1.Y - p0.Y,
			a21: p2.X - p1.X, a22: p2.Y - p1.Y,
			a31: p0.X, a32: p0.Y,
			a33: 1,
		}
	}
	dx1, dx2 := p1.X-p2.X, p3.X-p2.X
	dy1, dy2 := p1.Y-p2.Y, p3.Y-p2.Y
	det := dx1*dy2 - dx2*dy1
	a13 := (dx3*dy2 - dx2*dy3) / det
	a23 := (dx1*dy3 - dx3*dy1) / det
	return &PerspectiveTransform{
		a11: p1.X - p0.X + a13*p1.X, a12: p1.Y - p0.Y + a13*p1.Y, a13: a13,
		a21: p3.X - p0.X + a23*p3.X, a22: p3.Y - p0.Y + a23*p3.Y, a23: a23,
		a31: p0.X, a32: p0.Y, a33: 1,
	}
}

// QuadrilateralToSquare maps q onto the unit square. The adjoint is used in
// place of the inverse since projective matrices are defined up to scale.
func QuadrilateralToSquare(q Quad) *PerspectiveTransform {
	return SquareToQuadrilateral(q).Adjoint()
}

// Adjoint returns the transpose of the cofactor matrix.
func (t *PerspectiveTransform) Adjoint() *PerspectiveTransform {
	return &PerspectiveTransform{
		a11: t.a22*t.a33 - t.a23*t.a32,
		a12: t.a13*t.a32 - t.a12*t.a33,
		a13: t.a12*t.a23 - t.a13*t.a22,
		a21: t.a23*t.a31 - t.a21*t.a33,
		a22: t.a11*t.a33 - t.a13*t.a31,
		a23: t.a13*t.a21 - t.a11*t.a23,
		a31: t.a21*t.a32 - t.a22*t.a31,
		a32: t.a12*t.a31 - t.a11*t.a32,
		a33: t.a11*t.a22 - t.a12*t.a21,
	}
}

// Times returns the transform that applies o first and then t.
func (t *PerspectiveTransform) Times(o *PerspectiveTransform) *PerspectiveTransform {
	return &PerspectiveTransform{
		a11: t.a11*o.a11 + t.a21*o.a12 + t.a31*o.a13,
		a21: t.a11*o.a21 + t.a21*o.a22 + t.a31*o.a23,
		a31: t.a11*o.a31 + t.a21*o.a32 + t.a31*o.a33,
		a12: t.a12*o.a11 + t.a22*o.a12 + t.a32*o.a13,
		a22: t.a12*o.a21 + t.a22*o.a22 + t.a32*o.a23,
		a32: t.a12*o.a31 + t.a22*o.a32 + t.a32*o.a33,
		a13: t.a13*o.a11 + t.a23*o.a12 + t.a33*o.a13,
		a23: t.a13*o.a21 + t.a23*o.a22 + t.a33*o.a23,
		a33: t.a13*o.a31 + t.a23*o.a32 + t.a33*o.a33,
	}
}

// Apply maps a single point.
func (t *PerspectiveTransform) Apply(p Point) Point {
	w := t.a13*p.X + t.a23*p.Y + t.a33
	return Point{
		X: (t.a11*p.X + t.a21*p.Y + t.a31) / w,
		Y: (t.a12*p.X + t.a22*p.Y + t.a32) / w,
	}
}

// TransformPoints maps interleaved x,y pairs in place.
func (t *PerspectiveTransform) TransformPoints(xy []float64) {
	for i := 0; i+1 < len(xy); i += 2 {
		p := t.Apply(Point{xy[i], xy[i+1]})
		xy[i], xy[i+1] = p.X, p.Y
	}
}

// TransformPointsXY maps parallel coordinate slices in place.
func (t *PerspectiveTransform) TransformPointsXY(xs, ys []float64) {
	for i := range xs {
		p := t.Apply(Point{xs[i], ys[i]})
		xs[i], ys[i] = p.X, p.Y
	}
}
