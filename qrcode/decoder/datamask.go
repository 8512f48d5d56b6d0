package decoder

import "github.com/ericlevine/qrkit/bitutil"

// DataMask reports whether the module at row i, column j is inverted by
// the mask.
type DataMask func(i, j int) bool

// DataMasks are the eight masks, indexed by their three-bit reference.
var DataMasks = [8]DataMask{
	func(i, j int) bool { return (i+j)%2 == 0 },
	func(i, j int) bool { return i%2 == 0 },
	func(i, j int) bool { return j%3 == 0 },
	func(i, j int) bool { return (i+j)%3 == 0 },
	func(i, j int) bool { return (i/2+j/3)%2 == 0 },
	func(i, j int) bool { return i*j%6 == 0 },
	func(i, j int) bool { return i*j%6 < 3 },
	func(i, j int) bool { return (i+j+i*j%3)%2 == 0 },
}

// UnmaskBitMatrix flips every masked module in the top-left dim x dim area.
// Applying it twice restores the matrix.
func UnmaskBitMatrix(m *bitutil.BitMatrix, dim, mask int) {
	isMasked := DataMasks[mask]
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			if isMasked(i, j) {
				m.Flip(j, i)
			}
		}
	}
}
