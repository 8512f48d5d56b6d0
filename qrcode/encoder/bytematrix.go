package encoder

import (
	"strings"

	"github.com/ericlevine/qrkit/bitutil"
)

// empty marks a module that has not been assigned yet.
const empty int8 = -1

// ByteMatrix holds the modules of a symbol under construction: 0 light,
// 1 dark, or -1 while still unassigned.
type ByteMatrix struct {
	width, height int
	cells         []int8
}

func NewByteMatrix(width, height int) *ByteMatrix {
	return &ByteMatrix{width: width, height: height, cells: make([]int8, width*height)}
}

func (m *ByteMatrix) Width() int  { return m.width }
func (m *ByteMatrix) Height() int { return m.height }

func (m *ByteMatrix) Get(x, y int) int8 { return m.cells[y*m.width+x] }

func (m *ByteMatrix) Set(x, y int, v int8) { m.cells[y*m.width+x] = v }

func (m *ByteMatrix) SetBool(x, y int, dark bool) {
	var v int8
	if dark {
		v = 1
	}
	m.Set(x, y, v)
}

func (m *ByteMatrix) IsEmpty(x, y int) bool { return m.Get(x, y) == empty }

// Clear assigns v to every module.
func (m *ByteMatrix) Clear(v int8) {
	for i := range m.cells {
		m.cells[i] = v
	}
}

// Row returns row y. The slice aliases the matrix.
func (m *ByteMatrix) Row(y int) []int8 { return m.cells[y*m.width : (y+1)*m.width] }

// ToBitMatrix converts to a BitMatrix with dark modules set.
func (m *ByteMatrix) ToBitMatrix() *bitutil.BitMatrix {
	out := bitutil.NewBitMatrixWithSize(m.width, m.height)
	for y := 0; y < m.height; y++ {
		for x, v := range m.Row(y) {
			if v == 1 {
				out.Set(x, y)
			}
		}
	}
	return out
}

func (m *ByteMatrix) String() string {
	var sb strings.Builder
	sb.Grow(m.height * (2*m.width + 1))
	for y := 0; y < m.height; y++ {
		for _, v := range m.Row(y) {
			switch v {
			case 0:
				sb.WriteString(" 0")
			case 1:
				sb.WriteString(" 1")
			default:
				sb.WriteString("  ")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
