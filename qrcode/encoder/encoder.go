// Package encoder builds QR symbols: segment mode selection, bitstream
// assembly, version choice, Reed-Solomon interleaving, mask selection and
// module placement.
package encoder

import (
	"fmt"
	"math"
	"strings"

	"github.com/ericlevine/qrkit"
	"github.com/ericlevine/qrkit/bitutil"
	"github.com/ericlevine/qrkit/charset"
	"github.com/ericlevine/qrkit/qrcode/decoder"
	"github.com/ericlevine/qrkit/reedsolomon"
)

// DefaultCharacterSet is used for byte mode when no character set is given
// and the content fits in it.
const DefaultCharacterSet = "ISO-8859-1"

// Hints adjust Encode. The zero value selects everything automatically.
type Hints struct {
	// CharacterSet for byte mode. Empty means ISO-8859-1 when the content
	// fits and UTF-8 otherwise.
	CharacterSet string

	// ForceECI writes the ECI designator even for ISO-8859-1.
	ForceECI bool

	// Version forces a version from 1 to 40; zero picks the smallest fit.
	Version int

	// MaskPattern forces a mask from 0 to 7; nil picks the lowest penalty.
	MaskPattern *int
}

var rsEncoder = reedsolomon.NewEncoder(reedsolomon.QRCodeField256)

// alphanumericCode returns the value of c in alphanumeric mode, or -1.
func alphanumericCode(c rune) int {
	if c > 0x7F {
		return -1
	}
	return strings.IndexByte("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:", byte(c))
}

// ChooseMode picks the most compact single mode for content. Kanji mode is
// only considered when encoding is Shift_JIS.
func ChooseMode(content, encoding string) decoder.Mode {
	if charset.Lookup(encoding) == charset.ShiftJIS && isOnlyDoubleByteKanji(content) {
		return decoder.ModeKanji
	}
	digits, alnum := false, false
	for _, c := range content {
		switch {
		case c >= '0' && c <= '9':
			digits = true
		case alphanumericCode(c) >= 0:
			alnum = true
		default:
			return decoder.ModeByte
		}
	}
	switch {
	case alnum:
		return decoder.ModeAlphanumeric
	case digits:
		return decoder.ModeNumeric
	}
	return decoder.ModeByte
}

func isOnlyDoubleByteKanji(content string) bool {
	b, err := charset.Encode(content, charset.ShiftJIS.Name)
	return err == nil && charset.IsShiftJISKanji(b)
}

// Encode builds a symbol for content at the given level.
func Encode(content string, level decoder.ErrorCorrectionLevel, hints *Hints) (*QRCode, error) {
	if hints == nil {
		hints = &Hints{}
	}
	encoding := hints.CharacterSet
	if encoding == "" {
		encoding = DefaultCharacterSet
		if !charset.CanEncode(content, encoding) {
			encoding = charset.UTF8.Name
		}
	}
	cs := charset.Lookup(encoding)
	if cs == nil {
		return nil, fmt.Errorf("%w: unsupported character set %q", qrkit.ErrWriter, encoding)
	}

	mode := ChooseMode(content, cs.Name)

	header := &bitutil.BitArray{}
	if mode == decoder.ModeByte && (cs != charset.ISO8859_1 || hints.ForceECI) {
		header.AppendBits(uint32(decoder.ModeECI.Bits()), 4)
		header.AppendBits(uint32(cs.Value), 8)
	}
	header.AppendBits(uint32(mode.Bits()), 4)

	data := &bitutil.BitArray{}
	letters, err := appendData(content, mode, cs, data)
	if err != nil {
		return nil, err
	}

	var version *decoder.Version
	if hints.Version > 0 {
		if version, err = decoder.VersionForNumber(hints.Version); err != nil {
			return nil, fmt.Errorf("%w: %v", qrkit.ErrWriter, err)
		}
		if !willFit(bitsNeeded(mode, header, data, version), version, level) {
			return nil, fmt.Errorf("%w: data too big for version %d", qrkit.ErrWriter, hints.Version)
		}
	} else if version, err = recommendVersion(level, mode, header, data); err != nil {
		return nil, err
	}

	bits := &bitutil.BitArray{}
	bits.AppendBitArray(header)
	countBits := mode.CharacterCountBits(version)
	if letters >= 1<<countBits {
		return nil, fmt.Errorf("%w: %d characters exceed the %d-bit count field", qrkit.ErrWriter, letters, countBits)
	}
	bits.AppendBits(uint32(letters), countBits)
	bits.AppendBitArray(data)

	ec := version.ECBlocksForLevel(level)
	numDataBytes := version.DataCapacity(level)
	if err := terminateBits(numDataBytes, bits); err != nil {
		return nil, err
	}
	final, err := interleaveWithECBytes(bits, version.TotalCodewords(), numDataBytes, ec.NumBlocks())
	if err != nil {
		return nil, err
	}

	qr := &QRCode{Mode: mode, ECLevel: level, Version: version}
	dim := version.Dimension()
	matrix := NewByteMatrix(dim, dim)
	if hints.MaskPattern != nil {
		if !IsValidMaskPattern(*hints.MaskPattern) {
			return nil, fmt.Errorf("%w: invalid mask pattern %d", qrkit.ErrWriter, *hints.MaskPattern)
		}
		qr.MaskPattern = *hints.MaskPattern
	} else if qr.MaskPattern, err = chooseMaskPattern(final, level, version, matrix); err != nil {
		return nil, err
	}
	if err := buildMatrix(final, level, version, qr.MaskPattern, matrix); err != nil {
		return nil, err
	}
	qr.Matrix = matrix
	return qr, nil
}

// appendData writes the segment body and returns the character count the
// header must carry.
func appendData(content string, mode decoder.Mode, cs *charset.ECI, bits *bitutil.BitArray) (int, error) {
	switch mode {
	case decoder.ModeNumeric:
		return len(content), appendNumeric(content, bits)
	case decoder.ModeAlphanumeric:
		return len(content), appendAlphanumeric(content, bits)
	case decoder.ModeByte:
		b, err := charset.Encode(content, cs.Name)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", qrkit.ErrWriter, err)
		}
		for _, c := range b {
			bits.AppendBits(uint32(c), 8)
		}
		return len(b), nil
	case decoder.ModeKanji:
		b, err := charset.Encode(content, charset.ShiftJIS.Name)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", qrkit.ErrWriter, err)
		}
		return len(b) / 2, appendKanji(b, bits)
	}
	return 0, fmt.Errorf("%w: cannot encode in mode %v", qrkit.ErrWriter, mode)
}

// appendNumeric packs digits in groups of three (10 bits), with a trailing
// pair in 7 bits or single digit in 4.
func appendNumeric(content string, bits *bitutil.BitArray) error {
	for i := 0; i < len(content); {
		n := min(3, len(content)-i)
		v := 0
		for _, c := range content[i : i+n] {
			if c < '0' || c > '9' {
				return fmt.Errorf("%w: %q is not a digit", qrkit.ErrWriter, c)
			}
			v = 10*v + int(c-'0')
		}
		bits.AppendBits(uint32(v), 3*n+1)
		i += n
	}
	return nil
}

// appendAlphanumeric packs pairs into 11 bits and a trailing character
// into 6.
func appendAlphanumeric(content string, bits *bitutil.BitArray) error {
	code := func(c byte) (int, error) {
		v := alphanumericCode(rune(c))
		if v < 0 {
			return 0, fmt.Errorf("%w: %q is not alphanumeric", qrkit.ErrWriter, c)
		}
		return v, nil
	}
	for i := 0; i < len(content); i += 2 {
		a, err := code(content[i])
		if err != nil {
			return err
		}
		if i+1 == len(content) {
			bits.AppendBits(uint32(a), 6)
			break
		}
		b, err := code(content[i+1])
		if err != nil {
			return err
		}
		bits.AppendBits(uint32(45*a+b), 11)
	}
	return nil
}

// appendKanji packs each double-byte Shift_JIS character into 13 bits.
func appendKanji(sjis []byte, bits *bitutil.BitArray) error {
	if len(sjis)%2 != 0 {
		return fmt.Errorf("%w: Kanji input has odd length", qrkit.ErrWriter)
	}
	for i := 0; i < len(sjis); i += 2 {
		code := int(sjis[i])<<8 | int(sjis[i+1])
		var sub int
		switch {
		case code >= 0x8140 && code <= 0x9FFC:
			sub = code - 0x8140
		case code >= 0xE040 && code <= 0xEBBF:
			sub = code - 0xC140
		default:
			return fmt.Errorf("%w: %#04x is outside Kanji mode", qrkit.ErrWriter, code)
		}
		bits.AppendBits(uint32((sub>>8)*0xC0+(sub&0xFF)), 13)
	}
	return nil
}

func bitsNeeded(mode decoder.Mode, header, data *bitutil.BitArray, v *decoder.Version) int {
	return header.Size() + mode.CharacterCountBits(v) + data.Size()
}

// willFit reports whether numBits of input fit the data capacity of v.
func willFit(numBits int, v *decoder.Version, level decoder.ErrorCorrectionLevel) bool {
	return v.DataCapacity(level) >= (numBits+7)/8
}

// recommendVersion sizes the count field for version 1, picks a version,
// then re-sizes the count field for that version and picks again.
func recommendVersion(level decoder.ErrorCorrectionLevel, mode decoder.Mode, header, data *bitutil.BitArray) (*decoder.Version, error) {
	v1, _ := decoder.VersionForNumber(1)
	provisional, err := chooseVersion(bitsNeeded(mode, header, data, v1), level)
	if err != nil {
		return nil, err
	}
	return chooseVersion(bitsNeeded(mode, header, data, provisional), level)
}

func chooseVersion(numBits int, level decoder.ErrorCorrectionLevel) (*decoder.Version, error) {
	for n := 1; n <= 40; n++ {
		v, _ := decoder.VersionForNumber(n)
		if willFit(numBits, v, level) {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: data too big (%d bits)", qrkit.ErrWriter, numBits)
}

// terminateBits appends up to four terminator bits, pads to a byte
// boundary and fills the remaining capacity with 0xEC 0x11 pad codewords.
func terminateBits(numDataBytes int, bits *bitutil.BitArray) error {
	capacity := 8 * numDataBytes
	if bits.Size() > capacity {
		return fmt.Errorf("%w: %d data bits exceed capacity %d", qrkit.ErrWriter, bits.Size(), capacity)
	}
	for i := 0; i < 4 && bits.Size() < capacity; i++ {
		bits.AppendBit(false)
	}
	if r := bits.Size() % 8; r != 0 {
		bits.AppendBits(0, 8-r)
	}
	for i := 0; bits.Size() < capacity; i++ {
		pad := uint32(0xEC)
		if i%2 == 1 {
			pad = 0x11
		}
		bits.AppendBits(pad, 8)
	}
	if bits.Size() != capacity {
		return fmt.Errorf("%w: terminated stream is %d bits, want %d", qrkit.ErrWriter, bits.Size(), capacity)
	}
	return nil
}

// blockSizes returns the data and EC byte counts of RS block id. Blocks
// in the second group carry one more data byte than those in the first;
// all blocks carry the same number of EC bytes.
func blockSizes(numTotalBytes, numDataBytes, numRSBlocks, id int) (data, ec int, err error) {
	if id >= numRSBlocks {
		return 0, 0, fmt.Errorf("%w: block %d of %d", qrkit.ErrWriter, id, numRSBlocks)
	}
	group2 := numTotalBytes % numRSBlocks
	group1 := numRSBlocks - group2
	total1 := numTotalBytes / numRSBlocks
	data1 := numDataBytes / numRSBlocks
	ec1 := total1 - data1
	ec2 := (total1 + 1) - (data1 + 1)

	switch {
	case ec1 != ec2:
		return 0, 0, fmt.Errorf("%w: EC bytes mismatch", qrkit.ErrWriter)
	case numRSBlocks != group1+group2:
		return 0, 0, fmt.Errorf("%w: RS blocks mismatch", qrkit.ErrWriter)
	case numTotalBytes != (data1+ec1)*group1+(data1+1+ec2)*group2:
		return 0, 0, fmt.Errorf("%w: total bytes mismatch", qrkit.ErrWriter)
	}
	if id < group1 {
		return data1, ec1, nil
	}
	return data1 + 1, ec2, nil
}

type rsBlock struct {
	data, ec []byte
}

// interleaveWithECBytes splits the data codewords into RS blocks, appends
// EC codewords to each, and interleaves data then EC bytes column-wise.
func interleaveWithECBytes(bits *bitutil.BitArray, numTotalBytes, numDataBytes, numRSBlocks int) (*bitutil.BitArray, error) {
	if bits.SizeInBytes() != numDataBytes {
		return nil, fmt.Errorf("%w: %d data bytes, want %d", qrkit.ErrWriter, bits.SizeInBytes(), numDataBytes)
	}

	blocks := make([]rsBlock, numRSBlocks)
	offset, maxData, maxEC := 0, 0, 0
	for i := range blocks {
		nd, ne, err := blockSizes(numTotalBytes, numDataBytes, numRSBlocks, i)
		if err != nil {
			return nil, err
		}
		data := make([]byte, nd)
		bits.ToBytes(8*offset, data, 0, nd)
		blocks[i] = rsBlock{data: data, ec: generateECBytes(data, ne)}
		maxData = max(maxData, nd)
		maxEC = max(maxEC, ne)
		offset += nd
	}
	if offset != numDataBytes {
		return nil, fmt.Errorf("%w: blocks hold %d data bytes, want %d", qrkit.ErrWriter, offset, numDataBytes)
	}

	out := &bitutil.BitArray{}
	for i := 0; i < maxData; i++ {
		for _, b := range blocks {
			if i < len(b.data) {
				out.AppendBits(uint32(b.data[i]), 8)
			}
		}
	}
	for i := 0; i < maxEC; i++ {
		for _, b := range blocks {
			if i < len(b.ec) {
				out.AppendBits(uint32(b.ec[i]), 8)
			}
		}
	}
	if out.SizeInBytes() != numTotalBytes {
		return nil, fmt.Errorf("%w: interleaved %d bytes, want %d", qrkit.ErrWriter, out.SizeInBytes(), numTotalBytes)
	}
	return out, nil
}

func generateECBytes(data []byte, numEC int) []byte {
	buf := make([]int, len(data)+numEC)
	for i, b := range data {
		buf[i] = int(b)
	}
	rsEncoder.Encode(buf, numEC)
	ec := make([]byte, numEC)
	for i := range ec {
		ec[i] = byte(buf[len(data)+i])
	}
	return ec
}

// chooseMaskPattern builds the symbol under every mask and keeps the one
// with the lowest penalty; ties go to the lower mask.
func chooseMaskPattern(bits *bitutil.BitArray, level decoder.ErrorCorrectionLevel,
	version *decoder.Version, m *ByteMatrix) (int, error) {
	best, bestPenalty := 0, math.MaxInt
	for mask := 0; mask < numMaskPatterns; mask++ {
		if err := buildMatrix(bits, level, version, mask, m); err != nil {
			return 0, err
		}
		if p := maskPenalty(m); p < bestPenalty {
			best, bestPenalty = mask, p
		}
	}
	return best, nil
}
