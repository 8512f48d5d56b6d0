// Package qrkit locates, decodes and encodes QR codes.
//
// The root package holds the types shared by every stage: result points,
// luminance and binarizer abstractions, decode results and the error
// values returned throughout the module.
package qrkit

import "math"

// ResultPoint is a location of interest in image coordinates, such as the
// centre of a finder pattern.
type ResultPoint struct {
	X, Y float64
}

// Position lets a ResultPoint satisfy Positioned.
func (p ResultPoint) Position() ResultPoint { return p }

// Positioned is anything that occupies a point in the image.
type Positioned interface {
	Position() ResultPoint
}

// ResultPointCallback receives candidate points as detection confirms them.
// It is purely observational.
type ResultPointCallback func(ResultPoint)

// Distance returns the Euclidean distance between a and b.
func Distance(a, b ResultPoint) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// CrossProductZ returns the z component of (b-a) x (c-a).
func CrossProductZ(a, b, c ResultPoint) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// OrderBestPatterns orders three finder-like points as bottom-left,
// top-left, top-right. The top-left point is opposite the longest side, and
// the remaining two are ordered so that the turn from bottom-left through
// top-left to top-right is clockwise in image coordinates.
func OrderBestPatterns[P Positioned](p [3]P) [3]P {
	d01 := Distance(p[0].Position(), p[1].Position())
	d12 := Distance(p[1].Position(), p[2].Position())
	d02 := Distance(p[0].Position(), p[2].Position())

	var a, b, c P
	switch {
	case d12 >= d01 && d12 >= d02:
		b, a, c = p[0], p[1], p[2]
	case d02 >= d12 && d02 >= d01:
		b, a, c = p[1], p[0], p[2]
	default:
		b, a, c = p[2], p[0], p[1]
	}
	if CrossProductZ(a.Position(), b.Position(), c.Position()) < 0 {
		a, c = c, a
	}
	return [3]P{a, b, c}
}
