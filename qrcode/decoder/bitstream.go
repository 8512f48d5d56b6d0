package decoder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ericlevine/qrkit"
	"github.com/ericlevine/qrkit/bitutil"
	"github.com/ericlevine/qrkit/charset"
)

const alphanumericChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

// GB 2312 is subset 1 of Hanzi mode.
const hanziSubsetGB2312 = 1

// segmentReader interprets the mode segments of a corrected data stream.
type segmentReader struct {
	src      *bitutil.BitSource
	version  *Version
	hint     string
	text     strings.Builder
	segments [][]byte
	eci      *charset.ECI

	fnc1First, fnc1Second bool
	sawECI                bool
	saSequence, saParity  int
}

func (r *segmentReader) read(n int) (int, error) {
	v, err := r.src.ReadBits(n)
	if errors.Is(err, bitutil.ErrBitSourceExhausted) {
		return 0, fmt.Errorf("%w: bitstream truncated", qrkit.ErrFormat)
	}
	return v, err
}

// decodeBitstream turns data codewords into text. characterSet, if set,
// is used for byte segments that carry no ECI.
func decodeBitstream(data []byte, v *Version, level ErrorCorrectionLevel, characterSet string) (*DecoderResult, error) {
	r := &segmentReader{
		src:        bitutil.NewBitSource(data),
		version:    v,
		hint:       characterSet,
		saSequence: -1,
		saParity:   -1,
	}
	r.text.Grow(50)
	if err := r.run(); err != nil {
		return nil, err
	}

	modifier := 1
	switch {
	case r.fnc1First:
		modifier = 3
	case r.fnc1Second:
		modifier = 5
	}
	if r.sawECI {
		modifier++
	}
	return &DecoderResult{
		RawBytes:                 data,
		NumBits:                  8 * len(data),
		Text:                     r.text.String(),
		ByteSegments:             r.segments,
		ECLevel:                  level,
		StructuredAppendSequence: r.saSequence,
		StructuredAppendParity:   r.saParity,
		SymbologyModifier:        modifier,
	}, nil
}

func (r *segmentReader) run() error {
	for {
		// fewer than four bits left is an implicit terminator
		if r.src.Available() < 4 {
			return nil
		}
		bits, err := r.read(4)
		if err != nil {
			return err
		}
		mode, err := ModeForBits(bits)
		if err != nil {
			return err
		}
		switch mode {
		case ModeTerminator:
			return nil
		case ModeFNC1FirstPosition:
			r.fnc1First = true
		case ModeFNC1SecondPosition:
			r.fnc1Second = true
		case ModeStructuredAppend:
			if r.src.Available() < 16 {
				return fmt.Errorf("%w: truncated structured append header", qrkit.ErrFormat)
			}
			if r.saSequence, err = r.read(8); err != nil {
				return err
			}
			if r.saParity, err = r.read(8); err != nil {
				return err
			}
		case ModeECI:
			value, err := r.eciDesignator()
			if err != nil {
				return err
			}
			if r.eci, err = charset.ForValue(value); err != nil {
				return fmt.Errorf("%w: %v", qrkit.ErrFormat, err)
			}
			r.sawECI = true
		case ModeHanzi:
			subset, err := r.read(4)
			if err != nil {
				return err
			}
			count, err := r.read(mode.CharacterCountBits(r.version))
			if err != nil {
				return err
			}
			if subset == hanziSubsetGB2312 && count > 0 {
				if err := r.hanzi(count); err != nil {
					return err
				}
			}
		default:
			count, err := r.read(mode.CharacterCountBits(r.version))
			if err != nil {
				return err
			}
			switch mode {
			case ModeNumeric:
				err = r.numeric(count)
			case ModeAlphanumeric:
				err = r.alphanumeric(count)
			case ModeByte:
				err = r.byteSegment(count)
			case ModeKanji:
				err = r.kanji(count)
			default:
				err = fmt.Errorf("%w: unexpected mode %v", qrkit.ErrFormat, mode)
			}
			if err != nil {
				return err
			}
		}
	}
}

// eciDesignator reads a one, two or three byte ECI value.
func (r *segmentReader) eciDesignator() (int, error) {
	first, err := r.read(8)
	if err != nil {
		return 0, err
	}
	switch {
	case first&0x80 == 0:
		return first & 0x7F, nil
	case first&0xC0 == 0x80:
		second, err := r.read(8)
		if err != nil {
			return 0, err
		}
		return (first&0x3F)<<8 | second, nil
	case first&0xE0 == 0xC0:
		rest, err := r.read(16)
		if err != nil {
			return 0, err
		}
		return (first&0x1F)<<16 | rest, nil
	}
	return 0, fmt.Errorf("%w: bad ECI designator %#x", qrkit.ErrFormat, first)
}

func (r *segmentReader) numeric(count int) error {
	digits := func(n, width, limit int) error {
		v, err := r.read(width)
		if err != nil {
			return err
		}
		if v >= limit {
			return fmt.Errorf("%w: numeric group %d out of range", qrkit.ErrFormat, v)
		}
		fmt.Fprintf(&r.text, "%0*d", n, v)
		return nil
	}
	for ; count >= 3; count -= 3 {
		if err := digits(3, 10, 1000); err != nil {
			return err
		}
	}
	switch count {
	case 2:
		return digits(2, 7, 100)
	case 1:
		return digits(1, 4, 10)
	}
	return nil
}

func alphanumericChar(v int) (byte, error) {
	if v >= len(alphanumericChars) {
		return 0, fmt.Errorf("%w: alphanumeric value %d", qrkit.ErrFormat, v)
	}
	return alphanumericChars[v], nil
}

func (r *segmentReader) alphanumeric(count int) error {
	var seg []byte
	for ; count > 1; count -= 2 {
		pair, err := r.read(11)
		if err != nil {
			return err
		}
		a, err := alphanumericChar(pair / 45)
		if err != nil {
			return err
		}
		b, err := alphanumericChar(pair % 45)
		if err != nil {
			return err
		}
		seg = append(seg, a, b)
	}
	if count == 1 {
		v, err := r.read(6)
		if err != nil {
			return err
		}
		c, err := alphanumericChar(v)
		if err != nil {
			return err
		}
		seg = append(seg, c)
	}
	if r.fnc1First || r.fnc1Second {
		seg = expandFNC1(seg)
	}
	r.text.Write(seg)
	return nil
}

// expandFNC1 applies the GS1 reading of '%' in alphanumeric segments: "%%"
// is a literal percent sign and a lone '%' is the FNC1 separator, GS.
func expandFNC1(seg []byte) []byte {
	out := seg[:0:0]
	for i := 0; i < len(seg); i++ {
		if seg[i] != '%' {
			out = append(out, seg[i])
			continue
		}
		if i+1 < len(seg) && seg[i+1] == '%' {
			out = append(out, '%')
			i++
		} else {
			out = append(out, 0x1D)
		}
	}
	return out
}

func (r *segmentReader) byteSegment(count int) error {
	if 8*count > r.src.Available() {
		return fmt.Errorf("%w: byte segment of %d overruns the stream", qrkit.ErrFormat, count)
	}
	raw := make([]byte, count)
	for i := range raw {
		b, _ := r.read(8)
		raw[i] = byte(b)
	}

	cs := r.eci
	if cs == nil && r.hint != "" {
		cs = charset.Lookup(r.hint)
	}
	if cs == nil {
		cs = charset.Guess(raw)
	}
	s, err := charset.Decode(raw, cs.Name)
	if err != nil {
		return fmt.Errorf("%w: %v", qrkit.ErrFormat, err)
	}
	r.text.WriteString(s)
	r.segments = append(r.segments, raw)
	return nil
}

// kanji reads 13-bit Shift_JIS characters.
func (r *segmentReader) kanji(count int) error {
	if 13*count > r.src.Available() {
		return fmt.Errorf("%w: kanji segment of %d overruns the stream", qrkit.ErrFormat, count)
	}
	buf := make([]byte, 0, 2*count)
	for range count {
		v, _ := r.read(13)
		code := (v/0xC0)<<8 | v%0xC0
		if code < 0x1F00 {
			code += 0x8140
		} else {
			code += 0xC140
		}
		buf = append(buf, byte(code>>8), byte(code))
	}
	return r.appendDecoded(buf, charset.ShiftJIS)
}

// hanzi reads 13-bit GB 2312 characters.
func (r *segmentReader) hanzi(count int) error {
	if 13*count > r.src.Available() {
		return fmt.Errorf("%w: hanzi segment of %d overruns the stream", qrkit.ErrFormat, count)
	}
	buf := make([]byte, 0, 2*count)
	for range count {
		v, _ := r.read(13)
		code := (v/0x60)<<8 | v%0x60
		if code < 0x00A00 {
			code += 0x0A1A1
		} else {
			code += 0x0A6A1
		}
		buf = append(buf, byte(code>>8), byte(code))
	}
	return r.appendDecoded(buf, charset.GB18030)
}

func (r *segmentReader) appendDecoded(b []byte, cs *charset.ECI) error {
	s, err := charset.Decode(b, cs.Name)
	if err != nil {
		return fmt.Errorf("%w: %v", qrkit.ErrFormat, err)
	}
	r.text.WriteString(s)
	return nil
}
