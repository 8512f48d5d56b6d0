package decoder

import (
	"errors"
	"fmt"

	"github.com/ericlevine/qrkit"
	"github.com/ericlevine/qrkit/bitutil"
	"github.com/ericlevine/qrkit/reedsolomon"
)

// Decoder reads a sampled module grid into a DecoderResult. It holds no
// per-call state and may be shared between goroutines.
type Decoder struct {
	rs *reedsolomon.Decoder
}

func NewDecoder() *Decoder {
	return &Decoder{rs: reedsolomon.NewDecoder(reedsolomon.QRCodeField256)}
}

// Decode decodes a grid of modules given as rows, true meaning dark.
func (d *Decoder) Decode(image [][]bool, opts *qrkit.DecodeOptions) (*DecoderResult, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty module grid", qrkit.ErrFormat)
	}
	for y, row := range image {
		if len(row) != len(image) {
			return nil, fmt.Errorf("%w: row %d has %d modules, want %d", qrkit.ErrFormat, y, len(row), len(image))
		}
	}
	return d.DecodeBitMatrix(bitutil.ParseBoolMatrix(image), opts)
}

// DecodeBitMatrix decodes a grid of modules, one bit per module. If the
// symbol cannot be read as is, the transposed reading is tried before
// giving up with the original error. bits may be modified.
func (d *Decoder) DecodeBitMatrix(bits *bitutil.BitMatrix, opts *qrkit.DecodeOptions) (*DecoderResult, error) {
	parser, err := NewBitMatrixParser(bits)
	if err != nil {
		return nil, err
	}
	var cs string
	if opts != nil {
		cs = opts.CharacterSet
	}

	res, err := d.decode(parser, cs)
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, qrkit.ErrFormat) && !errors.Is(err, qrkit.ErrChecksum) {
		return nil, err
	}

	parser.Remask()
	parser.SetMirror(true)
	if _, verr := parser.ReadVersion(); verr != nil {
		return nil, err
	}
	if _, ferr := parser.ReadFormatInformation(); ferr != nil {
		return nil, err
	}
	parser.Mirror()

	res, merr := d.decode(parser, cs)
	if merr != nil {
		return nil, err
	}
	res.Mirrored = true
	return res, nil
}

func (d *Decoder) decode(parser *BitMatrixParser, characterSet string) (*DecoderResult, error) {
	version, err := parser.ReadVersion()
	if err != nil {
		return nil, err
	}
	format, err := parser.ReadFormatInformation()
	if err != nil {
		return nil, err
	}
	raw, err := parser.ReadCodewords()
	if err != nil {
		return nil, err
	}
	blocks, err := splitBlocks(raw, version, format.ECLevel)
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, version.DataCapacity(format.ECLevel))
	corrected := 0
	for i, b := range blocks {
		n, err := d.correct(b)
		if err != nil {
			return nil, fmt.Errorf("%w: block %d of %d: %w", qrkit.ErrChecksum, i+1, len(blocks), err)
		}
		corrected += n
		data = append(data, b.codewords[:b.numData]...)
	}

	res, err := decodeBitstream(data, version, format.ECLevel, characterSet)
	if err != nil {
		return nil, err
	}
	res.ErrorsCorrected = corrected
	return res, nil
}

// correct fixes b's data codewords in place.
func (d *Decoder) correct(b dataBlock) (int, error) {
	received := make([]int, len(b.codewords))
	for i, c := range b.codewords {
		received[i] = int(c)
	}
	n, err := d.rs.Decode(received, len(received)-b.numData)
	if err != nil {
		return 0, err
	}
	for i := 0; i < b.numData; i++ {
		b.codewords[i] = byte(received[i])
	}
	return n, nil
}
