// Package qrcode reads and writes QR codes in images.
package qrcode

import (
	"fmt"
	"math"

	"github.com/ericlevine/qrkit"
	"github.com/ericlevine/qrkit/bitutil"
	"github.com/ericlevine/qrkit/qrcode/decoder"
	"github.com/ericlevine/qrkit/qrcode/detector"
)

// Reader decodes QR codes from binary images.
type Reader struct {
	dec *decoder.Decoder
}

var _ qrkit.Reader = (*Reader)(nil)

func NewReader() *Reader {
	return &Reader{dec: decoder.NewDecoder()}
}

// Decode locates and decodes a QR code. With PureBarcode set the image is
// taken to hold nothing but an unrotated symbol and its quiet zone.
func (r *Reader) Decode(image *qrkit.BinaryBitmap, opts *qrkit.DecodeOptions) (*qrkit.Result, error) {
	matrix, err := image.BlackMatrix()
	if err != nil {
		return nil, err
	}

	var (
		bits   *bitutil.BitMatrix
		points []qrkit.ResultPoint
	)
	if opts != nil && opts.PureBarcode {
		if bits, err = extractPureBits(matrix); err != nil {
			return nil, err
		}
	} else {
		det, err := detector.NewDetector(matrix).Detect(opts)
		if err != nil {
			return nil, err
		}
		bits, points = det.Bits, det.Points
	}

	dr, err := r.dec.DecodeBitMatrix(bits, opts)
	if err != nil {
		return nil, err
	}

	// a transposed reading swaps bottom-left and top-right
	if dr.Mirrored && len(points) >= 3 {
		points[0], points[2] = points[2], points[0]
	}

	result := qrkit.NewResult(dr.Text, dr.RawBytes, points)
	result.NumBits = dr.NumBits
	if dr.ByteSegments != nil {
		result.PutMetadata(qrkit.MetadataByteSegments, dr.ByteSegments)
	}
	result.PutMetadata(qrkit.MetadataErrorCorrectionLevel, dr.ECLevel.String())
	result.PutMetadata(qrkit.MetadataErrorsCorrected, dr.ErrorsCorrected)
	if dr.HasStructuredAppend() {
		result.PutMetadata(qrkit.MetadataStructuredAppendSequence, dr.StructuredAppendSequence)
		result.PutMetadata(qrkit.MetadataStructuredAppendParity, dr.StructuredAppendParity)
	}
	result.PutMetadata(qrkit.MetadataSymbologyIdentifier, fmt.Sprintf("]Q%d", dr.SymbologyModifier))
	if dr.Mirrored {
		result.PutMetadata(qrkit.MetadataMirrored, true)
	}
	return result, nil
}

// extractPureBits samples a symbol that is axis aligned and surrounded
// only by light pixels, taking the module size from the top-left finder.
func extractPureBits(image *bitutil.BitMatrix) (*bitutil.BitMatrix, error) {
	left, top, ok := image.TopLeftOnBit()
	right, bottom, ok2 := image.BottomRightOnBit()
	if !ok || !ok2 {
		return nil, fmt.Errorf("%w: blank image", qrkit.ErrNotFound)
	}

	moduleSize, err := pureModuleSize(image, left, top)
	if err != nil {
		return nil, err
	}

	if left >= right || top >= bottom {
		return nil, fmt.Errorf("%w: degenerate symbol bounds", qrkit.ErrNotFound)
	}
	if bottom-top != right-left {
		// the last row may end in light modules; trust the height
		right = left + (bottom - top)
		if right >= image.Width() {
			return nil, fmt.Errorf("%w: symbol is not square", qrkit.ErrNotFound)
		}
	}

	width := int(math.Round(float64(right-left+1) / moduleSize))
	height := int(math.Round(float64(bottom-top+1) / moduleSize))
	if width <= 0 || height <= 0 || width != height {
		return nil, fmt.Errorf("%w: %dx%d modules", qrkit.ErrNotFound, width, height)
	}

	// sample module centres, nudged back inside if rounding overshoots
	nudge := int(moduleSize / 2)
	top += nudge
	left += nudge
	if over := left + int(float64(width-1)*moduleSize) - right; over > 0 {
		if over > nudge {
			return nil, fmt.Errorf("%w: sampling overruns right edge", qrkit.ErrNotFound)
		}
		left -= over
	}
	if over := top + int(float64(height-1)*moduleSize) - bottom; over > 0 {
		if over > nudge {
			return nil, fmt.Errorf("%w: sampling overruns bottom edge", qrkit.ErrNotFound)
		}
		top -= over
	}

	bits := bitutil.NewBitMatrix(width)
	for y := 0; y < height; y++ {
		iy := top + int(float64(y)*moduleSize)
		for x := 0; x < width; x++ {
			if image.Get(left+int(float64(x)*moduleSize), iy) {
				bits.Set(x, y)
			}
		}
	}
	return bits, nil
}

// pureModuleSize walks the diagonal from the top-left corner across the
// finder pattern, which spans seven modules.
func pureModuleSize(image *bitutil.BitMatrix, left, top int) (float64, error) {
	w, h := image.Width(), image.Height()
	x, y := left, top
	dark := true
	transitions := 0
	for ; x < w && y < h; x, y = x+1, y+1 {
		if dark != image.Get(x, y) {
			if transitions++; transitions == 5 {
				break
			}
			dark = !dark
		}
	}
	if x == w || y == h {
		return 0, fmt.Errorf("%w: finder pattern runs off the image", qrkit.ErrNotFound)
	}
	return float64(x-left) / 7, nil
}
