package encoder

import (
	"fmt"
	"strings"

	"github.com/ericlevine/qrkit/qrcode/decoder"
)

const numMaskPatterns = 8

// QRCode is a finished symbol and the choices that produced it.
type QRCode struct {
	Mode        decoder.Mode
	ECLevel     decoder.ErrorCorrectionLevel
	Version     *decoder.Version
	MaskPattern int
	Matrix      *ByteMatrix
}

// IsValidMaskPattern reports whether p names one of the eight masks.
func IsValidMaskPattern(p int) bool { return p >= 0 && p < numMaskPatterns }

func (q *QRCode) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<<\n mode: %v\n ecLevel: %v\n version: %v\n maskPattern: %d\n",
		q.Mode, q.ECLevel, q.Version, q.MaskPattern)
	if q.Matrix == nil {
		sb.WriteString(" matrix: nil\n")
	} else {
		sb.WriteString(" matrix:\n")
		sb.WriteString(q.Matrix.String())
	}
	sb.WriteString(">>\n")
	return sb.String()
}
