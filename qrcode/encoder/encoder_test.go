package encoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericlevine/qrkit"
	"github.com/ericlevine/qrkit/bitutil"
	"github.com/ericlevine/qrkit/qrcode/decoder"
)

func TestChooseMode(t *testing.T) {
	tests := []struct {
		content, encoding string
		want              decoder.Mode
	}{
		{"0", "", decoder.ModeNumeric},
		{"0123456789", "", decoder.ModeNumeric},
		{"A", "", decoder.ModeAlphanumeric},
		{"AB12 $%*+-./:", "", decoder.ModeAlphanumeric},
		{"a", "", decoder.ModeByte},
		{"#", "", decoder.ModeByte},
		{"", "", decoder.ModeByte},
		{"点茗", "Shift_JIS", decoder.ModeKanji},
		{"点茗", "UTF-8", decoder.ModeByte},
		{"ｱ", "Shift_JIS", decoder.ModeByte},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ChooseMode(tt.content, tt.encoding), "%q in %q", tt.content, tt.encoding)
	}
}

func TestAppendNumeric(t *testing.T) {
	tests := []struct{ in, want string }{
		{"1", " ...X"},
		{"12", " ...XX.."},
		{"123", " ...XXXX. XX"},
		{"1234", " ...XXXX. XX.X.."},
	}
	for _, tt := range tests {
		bits := &bitutil.BitArray{}
		require.NoError(t, appendNumeric(tt.in, bits))
		assert.Equal(t, tt.want, bits.String(), tt.in)
	}
	assert.ErrorIs(t, appendNumeric("1a", &bitutil.BitArray{}), qrkit.ErrWriter)
}

func TestAppendAlphanumeric(t *testing.T) {
	bits := &bitutil.BitArray{}
	require.NoError(t, appendAlphanumeric("A1", bits))
	// 10*45 + 1 = 451
	assert.Equal(t, " ..XXX... .XX", bits.String())

	bits = &bitutil.BitArray{}
	require.NoError(t, appendAlphanumeric("A", bits))
	assert.Equal(t, " ..X.X.", bits.String())

	assert.ErrorIs(t, appendAlphanumeric("a", &bitutil.BitArray{}), qrkit.ErrWriter)
}

func TestTerminateBits(t *testing.T) {
	tests := []struct {
		prefix, numBytes int
		want             string
	}{
		{0, 0, ""},
		{0, 1, " ........"},
		{3, 1, " ........"},
		{5, 1, " ........"},
		{8, 1, " ........"},
		{0, 2, " ........ XXX.XX.."},
		{1, 3, " ........ XXX.XX.. ...X...X"},
	}
	for _, tt := range tests {
		bits := &bitutil.BitArray{}
		bits.AppendBits(0, tt.prefix)
		require.NoError(t, terminateBits(tt.numBytes, bits))
		assert.Equal(t, tt.want, bits.String())
	}

	bits := &bitutil.BitArray{}
	bits.AppendBits(0, 9)
	assert.ErrorIs(t, terminateBits(1, bits), qrkit.ErrWriter)
}

func TestBlockSizes(t *testing.T) {
	tests := []struct {
		total, data, blocks, id int
		wantData, wantEC        int
	}{
		{26, 9, 1, 0, 9, 17},
		{70, 26, 2, 0, 13, 22},
		{70, 26, 2, 1, 13, 22},
		{196, 66, 5, 0, 13, 26},
		{196, 66, 5, 4, 14, 26},
		{3706, 1276, 81, 0, 15, 30},
		{3706, 1276, 81, 20, 16, 30},
		{3706, 1276, 81, 80, 16, 30},
	}
	for _, tt := range tests {
		d, e, err := blockSizes(tt.total, tt.data, tt.blocks, tt.id)
		require.NoError(t, err)
		assert.Equal(t, [2]int{tt.wantData, tt.wantEC}, [2]int{d, e}, "%+v", tt)
	}
	_, _, err := blockSizes(26, 9, 1, 1)
	assert.ErrorIs(t, err, qrkit.ErrWriter)
}

// Version 1-M encoding of "01234567".
var (
	vectorData = []byte{
		0x10, 0x20, 0x0C, 0x56, 0x61, 0x80, 0xEC, 0x11,
		0xEC, 0x11, 0xEC, 0x11, 0xEC, 0x11, 0xEC, 0x11,
	}
	vectorEC = []byte{0xA5, 0x24, 0xD4, 0xC1, 0xED, 0x36, 0xC7, 0x87, 0x2C, 0x55}
)

func TestInterleaveSingleBlock(t *testing.T) {
	in := &bitutil.BitArray{}
	for _, b := range vectorData {
		in.AppendBits(uint32(b), 8)
	}
	out, err := interleaveWithECBytes(in, 26, 16, 1)
	require.NoError(t, err)
	got := make([]byte, out.SizeInBytes())
	out.ToBytes(0, got, 0, len(got))
	assert.Equal(t, append(append([]byte(nil), vectorData...), vectorEC...), got)

	_, err = interleaveWithECBytes(in, 26, 15, 1)
	assert.ErrorIs(t, err, qrkit.ErrWriter)
}

func TestBCHCode(t *testing.T) {
	assert.Equal(t, 0xDC, bchCode(5, formatInfoPoly))
	assert.Equal(t, 0x1C2, bchCode(0x13, formatInfoPoly))
	assert.Equal(t, 0x214, bchCode(0x1B, formatInfoPoly))
	assert.Equal(t, 0xC94, bchCode(7, versionInfoPoly))
	assert.Equal(t, 0x5BC, bchCode(8, versionInfoPoly))
	assert.Panics(t, func() { bchCode(1, 0) })
}

func TestFormatAndVersionWordsDecode(t *testing.T) {
	for l := decoder.ECLevelL; l <= decoder.ECLevelH; l++ {
		for mask := 0; mask < numMaskPatterns; mask++ {
			w := formatInfoBits(l, mask)
			fi := decoder.DecodeFormatInformation(w, w)
			require.NotNil(t, fi)
			assert.Equal(t, decoder.FormatInformation{ECLevel: l, DataMask: mask}, *fi)
		}
	}
	for n := 7; n <= 40; n++ {
		v := decoder.DecodeVersionInformation(n<<12 | bchCode(n, versionInfoPoly))
		require.NotNil(t, v, "version %d", n)
		assert.Equal(t, n, v.Number)
	}
}

// The modules left empty after drawing function patterns must be exactly
// those the decoder reads data from.
func TestFunctionPatternsMatchDecoder(t *testing.T) {
	for n := 1; n <= 40; n++ {
		v, err := decoder.VersionForNumber(n)
		require.NoError(t, err)
		dim := v.Dimension()
		m := NewByteMatrix(dim, dim)
		m.Clear(empty)
		embedFunctionPatterns(v, m)
		embedFormatInfo(decoder.ECLevelM, 3, m)
		embedVersionInfo(v, m)

		function := v.BuildFunctionPattern()
		free := 0
		for y := 0; y < dim; y++ {
			for x := 0; x < dim; x++ {
				if m.IsEmpty(x, y) == function.Get(x, y) {
					t.Fatalf("version %d: module (%d,%d) empty=%v function=%v",
						n, x, y, m.IsEmpty(x, y), function.Get(x, y))
				}
				if m.IsEmpty(x, y) {
					free++
				}
			}
		}
		assert.GreaterOrEqual(t, free, 8*v.TotalCodewords(), "version %d", n)
		assert.Less(t, free-8*v.TotalCodewords(), 8, "version %d", n)
	}
}

func matrixFrom(rows ...[]int8) *ByteMatrix {
	m := NewByteMatrix(len(rows[0]), len(rows))
	for y, r := range rows {
		for x, v := range r {
			m.Set(x, y, v)
		}
	}
	return m
}

func TestPenaltyRules(t *testing.T) {
	assert.Equal(t, 0, penaltyRule1(matrixFrom([]int8{0, 0, 0, 0})))
	assert.Equal(t, 3, penaltyRule1(matrixFrom([]int8{0, 0, 0, 0, 0, 1})))
	assert.Equal(t, 4, penaltyRule1(matrixFrom([]int8{0, 0, 0, 0, 0, 0})))
	assert.Equal(t, 4, penaltyRule1(matrixFrom([]int8{0}, []int8{0}, []int8{0}, []int8{0}, []int8{0}, []int8{0})))

	assert.Equal(t, 0, penaltyRule2(matrixFrom([]int8{0})))
	assert.Equal(t, 3, penaltyRule2(matrixFrom([]int8{0, 0}, []int8{0, 0})))
	assert.Equal(t, 0, penaltyRule2(matrixFrom([]int8{0, 0}, []int8{0, 1})))
	assert.Equal(t, 12, penaltyRule2(matrixFrom([]int8{0, 0, 0}, []int8{0, 0, 0}, []int8{0, 0, 0})))

	assert.Equal(t, 40, penaltyRule3(matrixFrom([]int8{0, 0, 0, 0, 1, 0, 1, 1, 1, 0, 1})))
	assert.Equal(t, 40, penaltyRule3(matrixFrom([]int8{1, 0, 1, 1, 1, 0, 1, 0, 0, 0, 0})))
	assert.Equal(t, 40, penaltyRule3(matrixFrom([]int8{1, 0, 1, 1, 1, 0, 1})))
	assert.Equal(t, 0, penaltyRule3(matrixFrom([]int8{1, 1, 0, 1, 0, 1, 1, 1, 0, 1, 1})))
	assert.Equal(t, 40, penaltyRule3(matrixFrom(
		[]int8{0}, []int8{0}, []int8{0}, []int8{0}, []int8{1}, []int8{0},
		[]int8{1}, []int8{1}, []int8{1}, []int8{0}, []int8{1})))

	assert.Equal(t, 100, penaltyRule4(matrixFrom([]int8{0})))
	assert.Equal(t, 0, penaltyRule4(matrixFrom([]int8{0, 1})))
	assert.Equal(t, 30, penaltyRule4(matrixFrom([]int8{0, 1, 1, 1, 1, 0})))
}

func decodeSymbol(t *testing.T, qr *QRCode, characterSet string) *decoder.DecoderResult {
	t.Helper()
	res, err := decoder.NewDecoder().DecodeBitMatrix(qr.Matrix.ToBitMatrix(),
		&qrkit.DecodeOptions{CharacterSet: characterSet})
	require.NoError(t, err)
	return res
}

func TestEncodeKnownVector(t *testing.T) {
	qr, err := Encode("01234567", decoder.ECLevelM, nil)
	require.NoError(t, err)
	assert.Equal(t, decoder.ModeNumeric, qr.Mode)
	assert.Equal(t, 1, qr.Version.Number)
	assert.True(t, IsValidMaskPattern(qr.MaskPattern))

	res := decodeSymbol(t, qr, "")
	assert.Equal(t, "01234567", res.Text)
	assert.Equal(t, vectorData, res.RawBytes)
	assert.Equal(t, 0, res.ErrorsCorrected)
}

func TestEncodeHelloWorldQ(t *testing.T) {
	qr, err := Encode("HELLO WORLD", decoder.ECLevelQ, nil)
	require.NoError(t, err)
	assert.Equal(t, decoder.ModeAlphanumeric, qr.Mode)

	// 4 mode bits, 9 count bits, five pairs and one single
	needed := 4 + 9 + 5*11 + 6
	assert.GreaterOrEqual(t, 8*qr.Version.DataCapacity(decoder.ECLevelQ), needed)
	assert.Equal(t, 1, qr.Version.Number)
	assert.Equal(t, "HELLO WORLD", decodeSymbol(t, qr, "").Text)
}

func TestEncodeModes(t *testing.T) {
	tests := []struct {
		name, content string
		hints         *Hints
		mode          decoder.Mode
		modifier      int
	}{
		{"byte latin1", "café au lait", nil, decoder.ModeByte, 1},
		{"byte utf8 fallback", "日本語 text", nil, decoder.ModeByte, 2},
		{"forced eci", "plain", &Hints{ForceECI: true}, decoder.ModeByte, 2},
		{"kanji", "点茗", &Hints{CharacterSet: "Shift_JIS"}, decoder.ModeKanji, 1},
		{"explicit utf8", "ü", &Hints{CharacterSet: "UTF-8"}, decoder.ModeByte, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qr, err := Encode(tt.content, decoder.ECLevelM, tt.hints)
			require.NoError(t, err)
			assert.Equal(t, tt.mode, qr.Mode)
			res := decodeSymbol(t, qr, "")
			assert.Equal(t, tt.content, res.Text)
			assert.Equal(t, tt.modifier, res.SymbologyModifier)
		})
	}
}

func TestEncodeForcedChoices(t *testing.T) {
	mask := 5
	qr, err := Encode("forced", decoder.ECLevelL, &Hints{Version: 7, MaskPattern: &mask})
	require.NoError(t, err)
	assert.Equal(t, 7, qr.Version.Number)
	assert.Equal(t, 5, qr.MaskPattern)
	assert.Equal(t, "forced", decodeSymbol(t, qr, "").Text)

	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}
	_, err = Encode(string(long), decoder.ECLevelH, &Hints{Version: 1})
	assert.ErrorIs(t, err, qrkit.ErrWriter)

	bad := 8
	_, err = Encode("x", decoder.ECLevelL, &Hints{MaskPattern: &bad})
	assert.ErrorIs(t, err, qrkit.ErrWriter)

	_, err = Encode("x", decoder.ECLevelL, &Hints{CharacterSet: "klingon"})
	assert.ErrorIs(t, err, qrkit.ErrWriter)

	_, err = Encode("日本", decoder.ECLevelL, &Hints{CharacterSet: "ISO-8859-1"})
	assert.ErrorIs(t, err, qrkit.ErrWriter)
}

func TestEncodeTooLong(t *testing.T) {
	huge := make([]byte, 3000)
	for i := range huge {
		huge[i] = 'x'
	}
	_, err := Encode(string(huge), decoder.ECLevelH, nil)
	assert.ErrorIs(t, err, qrkit.ErrWriter)
}

func TestLargeVersionRoundTrip(t *testing.T) {
	content := make([]byte, 1500)
	for i := range content {
		content[i] = "0123456789"[i%10]
	}
	qr, err := Encode(string(content), decoder.ECLevelQ, nil)
	require.NoError(t, err)
	assert.Greater(t, qr.Version.Number, 20)
	assert.Equal(t, string(content), decodeSymbol(t, qr, "").Text)
}
