package decoder

import (
	"fmt"

	"github.com/ericlevine/qrkit"
	"github.com/ericlevine/qrkit/bitutil"
)

// BitMatrixParser reads format information, version and codewords from a
// sampled symbol, one module per bit.
type BitMatrixParser struct {
	bits     *bitutil.BitMatrix
	version  *Version
	format   *FormatInformation
	mirrored bool
	unmasked bool
}

// NewBitMatrixParser checks that bits is a plausible symbol size.
func NewBitMatrixParser(bits *bitutil.BitMatrix) (*BitMatrixParser, error) {
	dim := bits.Height()
	if dim < 21 || dim%4 != 1 {
		return nil, fmt.Errorf("%w: %d modules is not a QR code size", qrkit.ErrFormat, dim)
	}
	return &BitMatrixParser{bits: bits}, nil
}

// shift appends the module at column x, row y to acc, reading the
// transposed position in mirrored mode.
func (p *BitMatrixParser) shift(x, y, acc int) int {
	if p.mirrored {
		x, y = y, x
	}
	acc <<= 1
	if p.bits.Get(x, y) {
		acc |= 1
	}
	return acc
}

// ReadFormatInformation reads both copies of the format word: around the
// top-left finder, and split between the top-right and bottom-left finders.
func (p *BitMatrixParser) ReadFormatInformation() (*FormatInformation, error) {
	if p.format != nil {
		return p.format, nil
	}
	dim := p.bits.Height()

	first := 0
	for x := 0; x <= 8; x++ {
		if x != 6 {
			first = p.shift(x, 8, first)
		}
	}
	for y := 7; y >= 0; y-- {
		if y != 6 {
			first = p.shift(8, y, first)
		}
	}

	second := 0
	for y := dim - 1; y >= dim-7; y-- {
		second = p.shift(8, y, second)
	}
	for x := dim - 8; x < dim; x++ {
		second = p.shift(x, 8, second)
	}

	p.format = DecodeFormatInformation(first, second)
	if p.format == nil {
		return nil, fmt.Errorf("%w: unreadable format information", qrkit.ErrFormat)
	}
	return p.format, nil
}

// ReadVersion infers versions up to 6 from the dimension and decodes the
// version blocks beside the top-right and bottom-left finders otherwise.
func (p *BitMatrixParser) ReadVersion() (*Version, error) {
	if p.version != nil {
		return p.version, nil
	}
	dim := p.bits.Height()
	if n := (dim - 17) / 4; n <= 6 {
		return VersionForNumber(n)
	}

	topRight := 0
	for y := 5; y >= 0; y-- {
		for x := dim - 9; x >= dim-11; x-- {
			topRight = p.shift(x, y, topRight)
		}
	}
	if v := DecodeVersionInformation(topRight); v != nil && v.Dimension() == dim {
		p.version = v
		return v, nil
	}

	bottomLeft := 0
	for x := 5; x >= 0; x-- {
		for y := dim - 9; y >= dim-11; y-- {
			bottomLeft = p.shift(x, y, bottomLeft)
		}
	}
	if v := DecodeVersionInformation(bottomLeft); v != nil && v.Dimension() == dim {
		p.version = v
		return v, nil
	}
	return nil, fmt.Errorf("%w: unreadable version information", qrkit.ErrFormat)
}

// ReadCodewords unmasks the symbol and reads codewords in placement order:
// two-module wide columns from the right, alternately upward and downward,
// skipping the vertical timing column and all function modules.
func (p *BitMatrixParser) ReadCodewords() ([]byte, error) {
	format, err := p.ReadFormatInformation()
	if err != nil {
		return nil, err
	}
	version, err := p.ReadVersion()
	if err != nil {
		return nil, err
	}
	dim := p.bits.Height()
	UnmaskBitMatrix(p.bits, dim, format.DataMask)
	p.unmasked = true
	function := version.BuildFunctionPattern()

	out := make([]byte, 0, version.TotalCodewords())
	cur, n := 0, 0
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
				if function.Get(x, y) {
					continue
				}
				cur <<= 1
				if p.bits.Get(x, y) {
					cur |= 1
				}
				if n++; n == 8 {
					out = append(out, byte(cur))
					cur, n = 0, 0
				}
			}
		}
		upward = !upward
	}
	if len(out) != version.TotalCodewords() {
		return nil, fmt.Errorf("%w: read %d codewords, version %d holds %d",
			qrkit.ErrFormat, len(out), version.Number, version.TotalCodewords())
	}
	return out, nil
}

// Remask restores the data mask removed by ReadCodewords.
func (p *BitMatrixParser) Remask() {
	if !p.unmasked {
		return
	}
	UnmaskBitMatrix(p.bits, p.bits.Height(), p.format.DataMask)
	p.unmasked = false
}

// SetMirror switches between normal and transposed reading of format and
// version information, discarding anything already parsed.
func (p *BitMatrixParser) SetMirror(mirrored bool) {
	p.version = nil
	p.format = nil
	p.mirrored = mirrored
}

// Mirror transposes the matrix in place.
func (p *BitMatrixParser) Mirror() {
	dim := p.bits.Height()
	for x := 0; x < dim; x++ {
		for y := x + 1; y < dim; y++ {
			if p.bits.Get(x, y) != p.bits.Get(y, x) {
				p.bits.Flip(x, y)
				p.bits.Flip(y, x)
			}
		}
	}
}
