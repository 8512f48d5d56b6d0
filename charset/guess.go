package charset

import "unicode/utf8"

// Guess picks the most plausible encoding for a byte segment that carries no
// ECI: UTF-8 when the bytes are valid UTF-8 with at least one multi-byte
// sequence (or a BOM), Shift_JIS when they look like Japanese text, and
// ISO-8859-1 otherwise.
func Guess(b []byte) *ECI {
	if len(b) > 2 && (b[0] == 0xFE && b[1] == 0xFF) {
		return UTF16BE
	}
	hasBOM := len(b) > 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF
	if utf8.Valid(b) && (hasBOM || hasMultiByte(b)) {
		return UTF8
	}

	sj := scanShiftJIS(b)
	latin, highOther := scanLatin1(b)
	switch {
	case sj.valid && (sj.maxKatakanaRun >= 3 || sj.maxDoubleRun >= 3):
		return ShiftJIS
	case latin && sj.valid:
		// two isolated half-width katakana, or many high Latin-1 symbols,
		// read better as Shift_JIS
		if (sj.maxKatakanaRun == 2 && sj.katakana == 2) || highOther*10 >= len(b) {
			return ShiftJIS
		}
		return ISO8859_1
	case latin:
		return ISO8859_1
	case sj.valid:
		return ShiftJIS
	}
	return UTF8
}

func hasMultiByte(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return true
		}
	}
	return false
}

// scanLatin1 reports whether b avoids the C1 control range and counts the
// bytes in the symbol and punctuation part of the upper half.
func scanLatin1(b []byte) (ok bool, highOther int) {
	for _, c := range b {
		switch {
		case c > 0x7F && c < 0xA0:
			return false, highOther
		case c > 0x9F && (c < 0xC0 || c == 0xD7 || c == 0xF7):
			highOther++
		}
	}
	return true, highOther
}

type sjisStats struct {
	valid          bool
	katakana       int
	maxKatakanaRun int
	maxDoubleRun   int
}

func scanShiftJIS(b []byte) sjisStats {
	st := sjisStats{valid: true}
	trail := false
	kataRun, doubleRun := 0, 0
	for _, c := range b {
		if trail {
			if c < 0x40 || c == 0x7F || c > 0xFC {
				st.valid = false
				return st
			}
			trail = false
			continue
		}
		switch {
		case c == 0x80 || c == 0xA0 || c > 0xEF:
			st.valid = false
			return st
		case c > 0xA0 && c < 0xE0:
			st.katakana++
			doubleRun = 0
			kataRun++
			st.maxKatakanaRun = max(st.maxKatakanaRun, kataRun)
		case c > 0x7F:
			trail = true
			kataRun = 0
			doubleRun++
			st.maxDoubleRun = max(st.maxDoubleRun, doubleRun)
		default:
			kataRun, doubleRun = 0, 0
		}
	}
	if trail {
		st.valid = false
	}
	return st
}

// IsShiftJISKanji reports whether b is a non-empty sequence of double-byte
// Shift_JIS characters that QR Kanji mode can hold: each lead byte in
// 0x81-0x9F or 0xE0-0xEB, forming codes in 0x8140-0x9FFC or 0xE040-0xEBBF.
func IsShiftJISKanji(b []byte) bool {
	if len(b) == 0 || len(b)%2 != 0 {
		return false
	}
	for i := 0; i < len(b); i += 2 {
		code := int(b[i])<<8 | int(b[i+1])
		if !(code >= 0x8140 && code <= 0x9FFC) && !(code >= 0xE040 && code <= 0xEBBF) {
			return false
		}
	}
	return true
}
