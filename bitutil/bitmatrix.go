package bitutil

import (
	"fmt"
	"math/bits"
	"strings"
)

// BitMatrix is a width x height grid of bits. x is the column and y the row,
// with the origin at the top left. Each row is packed into RowSize words.
type BitMatrix struct {
	width, height int
	rowSize       int
	words         []uint32
}

// NewBitMatrix returns a zeroed square matrix.
func NewBitMatrix(dimension int) *BitMatrix {
	return NewBitMatrixWithSize(dimension, dimension)
}

// NewBitMatrixWithSize returns a zeroed matrix. It panics unless both
// dimensions are at least 1.
func NewBitMatrixWithSize(width, height int) *BitMatrix {
	if width < 1 || height < 1 {
		panic(fmt.Sprintf("bitutil: matrix dimensions must be positive, got %dx%d", width, height))
	}
	rowSize := (width + wordMask) / wordBits
	return &BitMatrix{
		width:   width,
		height:  height,
		rowSize: rowSize,
		words:   make([]uint32, rowSize*height),
	}
}

// ParseBoolMatrix builds a matrix from rows of booleans, true meaning set.
func ParseBoolMatrix(rows [][]bool) *BitMatrix {
	m := NewBitMatrixWithSize(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, on := range row {
			if on {
				m.Set(x, y)
			}
		}
	}
	return m
}

// ParseStringMatrix parses the output of StringWith back into a matrix.
// Rows are separated by newlines; every row must have the same length.
func ParseStringMatrix(repr, set, unset string) (*BitMatrix, error) {
	var (
		cells  []bool
		rows   int
		rowLen = -1
		start  int
	)
	endRow := func() error {
		n := len(cells) - start
		if n == 0 {
			return nil
		}
		if rowLen == -1 {
			rowLen = n
		} else if n != rowLen {
			return fmt.Errorf("bitutil: row %d has %d cells, want %d", rows, n, rowLen)
		}
		rows++
		start = len(cells)
		return nil
	}
	for pos := 0; pos < len(repr); {
		switch {
		case repr[pos] == '\n' || repr[pos] == '\r':
			if err := endRow(); err != nil {
				return nil, err
			}
			pos++
		case strings.HasPrefix(repr[pos:], set):
			cells = append(cells, true)
			pos += len(set)
		case strings.HasPrefix(repr[pos:], unset):
			cells = append(cells, false)
			pos += len(unset)
		default:
			return nil, fmt.Errorf("bitutil: unexpected %q at offset %d", repr[pos], pos)
		}
	}
	if err := endRow(); err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("bitutil: empty matrix")
	}
	m := NewBitMatrixWithSize(rowLen, rows)
	for i, on := range cells {
		if on {
			m.Set(i%rowLen, i/rowLen)
		}
	}
	return m, nil
}

func (m *BitMatrix) offset(x, y int) int { return y*m.rowSize + x/wordBits }

func (m *BitMatrix) Get(x, y int) bool { return m.words[m.offset(x, y)]&bitMask(x) != 0 }

func (m *BitMatrix) Set(x, y int) { m.words[m.offset(x, y)] |= bitMask(x) }

func (m *BitMatrix) Unset(x, y int) { m.words[m.offset(x, y)] &^= bitMask(x) }

func (m *BitMatrix) Flip(x, y int) { m.words[m.offset(x, y)] ^= bitMask(x) }

// FlipAll inverts every bit. Padding bits past width stay clear.
func (m *BitMatrix) FlipAll() {
	tail := ^uint32(0)
	if r := m.width % wordBits; r != 0 {
		tail = uint32(1)<<uint(r) - 1
	}
	for i, w := range m.words {
		w = ^w
		if i%m.rowSize == m.rowSize-1 {
			w &= tail
		}
		m.words[i] = w
	}
}

// Xor flips every bit of m that is set in mask. The matrices must have the
// same dimensions.
func (m *BitMatrix) Xor(mask *BitMatrix) {
	if m.width != mask.width || m.height != mask.height {
		panic("bitutil: Xor of matrices with different dimensions")
	}
	for i, w := range mask.words {
		m.words[i] ^= w
	}
}

func (m *BitMatrix) Clear() { clear(m.words) }

// SetRegion sets every bit of the rectangle with the given top-left corner
// and size. It panics when the rectangle does not fit.
func (m *BitMatrix) SetRegion(left, top, width, height int) {
	switch {
	case left < 0 || top < 0:
		panic("bitutil: region origin must be non-negative")
	case width < 1 || height < 1:
		panic("bitutil: region must be at least 1x1")
	case left+width > m.width || top+height > m.height:
		panic("bitutil: region exceeds matrix bounds")
	}
	for y := top; y < top+height; y++ {
		for x := left; x < left+width; x++ {
			m.Set(x, y)
		}
	}
}

// Row copies row y into dst, allocating when dst is nil or too small.
func (m *BitMatrix) Row(y int, dst *BitArray) *BitArray {
	if dst == nil || dst.Size() < m.width {
		dst = NewBitArray(m.width)
	} else {
		dst.Clear()
	}
	copy(dst.words, m.words[y*m.rowSize:(y+1)*m.rowSize])
	return dst
}

// SetRow overwrites row y with the leading bits of row.
func (m *BitMatrix) SetRow(y int, row *BitArray) {
	copy(m.words[y*m.rowSize:(y+1)*m.rowSize], row.words)
}

// Rotate turns the matrix counterclockwise by a multiple of 90 degrees.
func (m *BitMatrix) Rotate(degrees int) {
	switch ((degrees % 360) + 360) % 360 {
	case 0:
	case 90:
		m.Rotate90()
	case 180:
		m.Rotate180()
	case 270:
		m.Rotate90()
		m.Rotate180()
	default:
		panic("bitutil: rotation must be a multiple of 90 degrees")
	}
}

// Rotate180 turns the matrix upside down by swapping reversed rows.
func (m *BitMatrix) Rotate180() {
	top, bottom := NewBitArray(m.width), NewBitArray(m.width)
	for y := 0; y < (m.height+1)/2; y++ {
		other := m.height - 1 - y
		top = m.Row(y, top)
		bottom = m.Row(other, bottom)
		top.Reverse()
		bottom.Reverse()
		m.SetRow(y, bottom)
		m.SetRow(other, top)
	}
}

// Rotate90 turns the matrix 90 degrees counterclockwise.
func (m *BitMatrix) Rotate90() {
	rotated := NewBitMatrixWithSize(m.height, m.width)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if m.Get(x, y) {
				rotated.Set(y, m.width-1-x)
			}
		}
	}
	*m = *rotated
}

// EnclosingRectangle returns the smallest rectangle holding every set bit.
// ok is false when no bit is set.
func (m *BitMatrix) EnclosingRectangle() (left, top, width, height int, ok bool) {
	left, top = m.width, m.height
	right, bottom := -1, -1
	for y := 0; y < m.height; y++ {
		for w := 0; w < m.rowSize; w++ {
			word := m.words[y*m.rowSize+w]
			if word == 0 {
				continue
			}
			top = min(top, y)
			bottom = max(bottom, y)
			base := w * wordBits
			left = min(left, base+bits.TrailingZeros32(word))
			right = max(right, base+wordMask-bits.LeadingZeros32(word))
		}
	}
	if right < left || bottom < top {
		return 0, 0, 0, 0, false
	}
	return left, top, right - left + 1, bottom - top + 1, true
}

// TopLeftOnBit returns the first set bit in row-major order.
func (m *BitMatrix) TopLeftOnBit() (x, y int, ok bool) {
	for i, w := range m.words {
		if w != 0 {
			return (i%m.rowSize)*wordBits + bits.TrailingZeros32(w), i / m.rowSize, true
		}
	}
	return 0, 0, false
}

// BottomRightOnBit returns the last set bit in row-major order.
func (m *BitMatrix) BottomRightOnBit() (x, y int, ok bool) {
	for i := len(m.words) - 1; i >= 0; i-- {
		if w := m.words[i]; w != 0 {
			return (i%m.rowSize)*wordBits + wordMask - bits.LeadingZeros32(w), i / m.rowSize, true
		}
	}
	return 0, 0, false
}

func (m *BitMatrix) Width() int { return m.width }

func (m *BitMatrix) Height() int { return m.height }

// RowSize is the number of uint32 words per row.
func (m *BitMatrix) RowSize() int { return m.rowSize }

func (m *BitMatrix) Clone() *BitMatrix {
	c := *m
	c.words = append([]uint32(nil), m.words...)
	return &c
}

// Equal reports whether both matrices have the same size and bits.
func (m *BitMatrix) Equal(other *BitMatrix) bool {
	if m.width != other.width || m.height != other.height {
		return false
	}
	for i, w := range m.words {
		if w != other.words[i] {
			return false
		}
	}
	return true
}

func (m *BitMatrix) String() string { return m.StringWith("X ", "  ") }

// StringWith renders one line per row using set and unset for each cell.
func (m *BitMatrix) StringWith(set, unset string) string {
	var sb strings.Builder
	sb.Grow(m.height * (m.width*len(set) + 1))
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if m.Get(x, y) {
				sb.WriteString(set)
			} else {
				sb.WriteString(unset)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
