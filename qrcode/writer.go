package qrcode

import (
	"fmt"

	"github.com/ericlevine/qrkit"
	"github.com/ericlevine/qrkit/bitutil"
	"github.com/ericlevine/qrkit/qrcode/decoder"
	"github.com/ericlevine/qrkit/qrcode/encoder"
)

// DefaultQuietZone is the margin, in modules, when none is given.
const DefaultQuietZone = 4

// Writer renders content as a QR code.
type Writer struct{}

var _ qrkit.Writer = Writer{}

func NewWriter() Writer { return Writer{} }

// Encode encodes contents and scales the symbol, with its quiet zone, by
// the largest whole factor that fits width x height. The result is never
// smaller than the unscaled symbol.
func (Writer) Encode(contents string, width, height int, opts *qrkit.EncodeOptions) (*bitutil.BitMatrix, error) {
	if contents == "" {
		return nil, fmt.Errorf("%w: empty contents", qrkit.ErrWriter)
	}
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: requested dimensions %dx%d", qrkit.ErrWriter, width, height)
	}

	level, hints, quietZone, err := encodeParams(opts)
	if err != nil {
		return nil, err
	}
	code, err := encoder.Encode(contents, level, hints)
	if err != nil {
		return nil, err
	}
	return Render(code, width, height, quietZone), nil
}

func encodeParams(opts *qrkit.EncodeOptions) (decoder.ErrorCorrectionLevel, *encoder.Hints, int, error) {
	if opts == nil {
		return decoder.ECLevelL, nil, DefaultQuietZone, nil
	}
	level := decoder.ECLevelL
	if opts.ErrorCorrection != "" {
		l, err := decoder.ParseECLevel(opts.ErrorCorrection)
		if err != nil {
			return 0, nil, 0, fmt.Errorf("%w: %v", qrkit.ErrWriter, err)
		}
		level = l
	}
	quietZone := DefaultQuietZone
	if opts.Margin != nil {
		if *opts.Margin < 0 {
			return 0, nil, 0, fmt.Errorf("%w: negative margin %d", qrkit.ErrWriter, *opts.Margin)
		}
		quietZone = *opts.Margin
	}
	hints := &encoder.Hints{
		CharacterSet: opts.CharacterSet,
		ForceECI:     opts.ForceECI,
		Version:      opts.Version,
		MaskPattern:  opts.MaskPattern,
	}
	return level, hints, quietZone, nil
}

// Render draws code centred in a width x height matrix.
func Render(code *encoder.QRCode, width, height, quietZone int) *bitutil.BitMatrix {
	input := code.Matrix
	inW, inH := input.Width(), input.Height()
	qrW, qrH := inW+2*quietZone, inH+2*quietZone
	outW, outH := max(width, qrW), max(height, qrH)

	multiple := min(outW/qrW, outH/qrH)
	leftPad := (outW - inW*multiple) / 2
	topPad := (outH - inH*multiple) / 2

	out := bitutil.NewBitMatrixWithSize(outW, outH)
	for y := 0; y < inH; y++ {
		row := input.Row(y)
		for x, v := range row {
			if v == 1 {
				out.SetRegion(leftPad+x*multiple, topPad+y*multiple, multiple, multiple)
			}
		}
	}
	return out
}
