package decoder

import (
	"fmt"

	"github.com/ericlevine/qrkit"
)

// Mode is the four-bit indicator that starts each bitstream segment.
type Mode int

const (
	ModeTerminator         Mode = 0x0
	ModeNumeric            Mode = 0x1
	ModeAlphanumeric       Mode = 0x2
	ModeStructuredAppend   Mode = 0x3
	ModeByte               Mode = 0x4
	ModeFNC1FirstPosition  Mode = 0x5
	ModeECI                Mode = 0x7
	ModeKanji              Mode = 0x8
	ModeFNC1SecondPosition Mode = 0x9
	ModeHanzi              Mode = 0xD // GB/T 18284-2000
)

// countBits gives the character count width for versions 1-9, 10-26 and
// 27-40. Modes without a count are absent.
var countBits = map[Mode][3]int{
	ModeNumeric:      {10, 12, 14},
	ModeAlphanumeric: {9, 11, 13},
	ModeByte:         {8, 16, 16},
	ModeKanji:        {8, 10, 12},
	ModeHanzi:        {8, 10, 12},
}

// ModeForBits decodes a mode indicator.
func ModeForBits(b int) (Mode, error) {
	switch m := Mode(b); m {
	case ModeTerminator, ModeNumeric, ModeAlphanumeric, ModeStructuredAppend,
		ModeByte, ModeFNC1FirstPosition, ModeECI, ModeKanji,
		ModeFNC1SecondPosition, ModeHanzi:
		return m, nil
	}
	return 0, fmt.Errorf("%w: invalid mode indicator %#x", qrkit.ErrFormat, b)
}

// CharacterCountBits is the width of the count field in version v.
func (m Mode) CharacterCountBits(v *Version) int {
	widths, ok := countBits[m]
	if !ok {
		return 0
	}
	switch {
	case v.Number <= 9:
		return widths[0]
	case v.Number <= 26:
		return widths[1]
	}
	return widths[2]
}

// Bits is the four-bit indicator value.
func (m Mode) Bits() int { return int(m) }

func (m Mode) String() string {
	switch m {
	case ModeTerminator:
		return "TERMINATOR"
	case ModeNumeric:
		return "NUMERIC"
	case ModeAlphanumeric:
		return "ALPHANUMERIC"
	case ModeStructuredAppend:
		return "STRUCTURED_APPEND"
	case ModeByte:
		return "BYTE"
	case ModeFNC1FirstPosition:
		return "FNC1_FIRST_POSITION"
	case ModeECI:
		return "ECI"
	case ModeKanji:
		return "KANJI"
	case ModeFNC1SecondPosition:
		return "FNC1_SECOND_POSITION"
	case ModeHanzi:
		return "HANZI"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}
