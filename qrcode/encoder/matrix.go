package encoder

import (
	"fmt"
	"math/bits"

	"github.com/ericlevine/qrkit"
	"github.com/ericlevine/qrkit/bitutil"
	"github.com/ericlevine/qrkit/qrcode/decoder"
)

const (
	formatInfoPoly  = 0x537  // x^10 + x^8 + x^5 + x^4 + x^2 + x + 1
	versionInfoPoly = 0x1F25 // x^12 + x^11 + x^10 + x^9 + x^8 + x^5 + x^2 + 1
)

// formatInfoCoords are the positions of format bits 0..14 around the
// top-left finder pattern.
var formatInfoCoords = [15][2]int{
	{8, 0}, {8, 1}, {8, 2}, {8, 3}, {8, 4}, {8, 5}, {8, 7}, {8, 8},
	{7, 8}, {5, 8}, {4, 8}, {3, 8}, {2, 8}, {1, 8}, {0, 8},
}

// buildMatrix lays out every module of a symbol: function patterns, format
// and version information, then the masked data bits.
func buildMatrix(data *bitutil.BitArray, level decoder.ErrorCorrectionLevel,
	version *decoder.Version, mask int, m *ByteMatrix) error {
	m.Clear(empty)
	embedFunctionPatterns(version, m)
	embedFormatInfo(level, mask, m)
	embedVersionInfo(version, m)
	return embedDataBits(data, mask, m)
}

func chebyshev(dx, dy int) int {
	return max(abs(dx), abs(dy))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// embedFinder draws a 7x7 finder pattern centred on (cx, cy) together with
// its one-module light separator, clipped to the matrix.
func embedFinder(cx, cy int, m *ByteMatrix) {
	for dy := -4; dy <= 4; dy++ {
		for dx := -4; dx <= 4; dx++ {
			x, y := cx+dx, cy+dy
			if x < 0 || y < 0 || x >= m.Width() || y >= m.Height() {
				continue
			}
			d := chebyshev(dx, dy)
			m.SetBool(x, y, d != 2 && d != 4)
		}
	}
}

// embedAlignment draws a 5x5 alignment pattern centred on (cx, cy).
func embedAlignment(cx, cy int, m *ByteMatrix) {
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			m.SetBool(cx+dx, cy+dy, chebyshev(dx, dy) != 1)
		}
	}
}

func embedFunctionPatterns(version *decoder.Version, m *ByteMatrix) {
	dim := m.Width()
	embedFinder(3, 3, m)
	embedFinder(dim-4, 3, m)
	embedFinder(3, dim-4, m)

	// the dark module above the bottom-left format strip
	m.Set(8, dim-8, 1)

	// alignment patterns never overlap the finders
	for _, cy := range version.AlignmentCenters {
		for _, cx := range version.AlignmentCenters {
			if m.IsEmpty(cx, cy) {
				embedAlignment(cx, cy, m)
			}
		}
	}

	for i := 8; i < dim-8; i++ {
		dark := i%2 == 0
		if m.IsEmpty(i, 6) {
			m.SetBool(i, 6, dark)
		}
		if m.IsEmpty(6, i) {
			m.SetBool(6, i, dark)
		}
	}
}

// bchCode returns the remainder of value * x^deg(poly) divided by poly.
func bchCode(value, poly int) int {
	if poly == 0 {
		panic("encoder: zero BCH polynomial")
	}
	polyLen := bits.Len(uint(poly))
	value <<= polyLen - 1
	for bits.Len(uint(value)) >= polyLen {
		value ^= poly << (bits.Len(uint(value)) - polyLen)
	}
	return value
}

// formatInfoBits is the masked 15-bit format word for level and mask.
func formatInfoBits(level decoder.ErrorCorrectionLevel, mask int) int {
	info := level.Bits()<<3 | mask
	return (info<<10 | bchCode(info, formatInfoPoly)) ^ decoder.FormatInfoMask
}

func embedFormatInfo(level decoder.ErrorCorrectionLevel, mask int, m *ByteMatrix) {
	word := formatInfoBits(level, mask)
	dim := m.Width()
	for i, c := range formatInfoCoords {
		dark := word>>i&1 == 1
		m.SetBool(c[0], c[1], dark)
		if i < 8 {
			m.SetBool(dim-1-i, 8, dark)
		} else {
			m.SetBool(8, dim-7+(i-8), dark)
		}
	}
}

// embedVersionInfo writes the two 6x3 version blocks of versions 7 and up.
func embedVersionInfo(version *decoder.Version, m *ByteMatrix) {
	if version.Number < 7 {
		return
	}
	word := version.Number<<12 | bchCode(version.Number, versionInfoPoly)
	dim := m.Width()
	n := 0
	for i := 0; i < 6; i++ {
		for j := 0; j < 3; j++ {
			dark := word>>n&1 == 1
			n++
			m.SetBool(i, dim-11+j, dark)
			m.SetBool(dim-11+j, i, dark)
		}
	}
}

// embedDataBits fills the remaining modules in placement order, masking as
// it goes. Modules left over after the data run out are light before
// masking.
func embedDataBits(data *bitutil.BitArray, mask int, m *ByteMatrix) error {
	isMasked := decoder.DataMasks[mask]
	dim := m.Width()
	next := 0
	upward := true
	for right := dim - 1; right > 0; right -= 2 {
		if right == 6 {
			right--
		}
		for k := 0; k < dim; k++ {
			y := k
			if upward {
				y = dim - 1 - k
			}
			for x := right; x > right-2; x-- {
				if !m.IsEmpty(x, y) {
					continue
				}
				dark := false
				if next < data.Size() {
					dark = data.Get(next)
					next++
				}
				if isMasked(y, x) {
					dark = !dark
				}
				m.SetBool(x, y, dark)
			}
		}
		upward = !upward
	}
	if next != data.Size() {
		return fmt.Errorf("%w: placed %d of %d data bits", qrkit.ErrWriter, next, data.Size())
	}
	return nil
}
