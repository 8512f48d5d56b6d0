// Package decoder turns a sampled QR module grid into codewords and text:
// format and version recovery, unmasking, codeword extraction, Reed-Solomon
// correction and bitstream interpretation.
package decoder

import (
	"fmt"
	"strings"

	"github.com/ericlevine/qrkit"
)

// ErrorCorrectionLevel is one of L, M, Q or H, ordered by redundancy.
type ErrorCorrectionLevel int

const (
	ECLevelL ErrorCorrectionLevel = iota // recovers ~7% of codewords
	ECLevelM                             // ~15%
	ECLevelQ                             // ~25%
	ECLevelH                             // ~30%
)

// format-information encoding of each level, indexed by level
var ecLevelBits = [4]int{0x01, 0x00, 0x03, 0x02}

// Bits is the two-bit value stored in format information.
func (l ErrorCorrectionLevel) Bits() int { return ecLevelBits[l] }

func (l ErrorCorrectionLevel) String() string {
	if l < ECLevelL || l > ECLevelH {
		return "?"
	}
	return "LMQH"[l : l+1]
}

// ECLevelForBits inverts Bits.
func ECLevelForBits(b int) (ErrorCorrectionLevel, error) {
	for l, v := range ecLevelBits {
		if v == b {
			return ErrorCorrectionLevel(l), nil
		}
	}
	return 0, fmt.Errorf("%w: invalid error correction bits %d", qrkit.ErrFormat, b)
}

// ParseECLevel accepts "L", "M", "Q" or "H" in either case; empty means L.
func ParseECLevel(s string) (ErrorCorrectionLevel, error) {
	switch strings.ToUpper(s) {
	case "", "L":
		return ECLevelL, nil
	case "M":
		return ECLevelM, nil
	case "Q":
		return ECLevelQ, nil
	case "H":
		return ECLevelH, nil
	}
	return 0, fmt.Errorf("invalid error correction level %q", s)
}
