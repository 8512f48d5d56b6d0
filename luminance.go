package qrkit

import "github.com/ericlevine/qrkit/bitutil"

// LuminanceSource provides 8-bit greyscale values for an image, 0 being
// black.
type LuminanceSource interface {
	// Row returns row y, reusing row when it is large enough.
	Row(y int, row []byte) []byte
	// Matrix returns all rows concatenated, width*height bytes.
	Matrix() []byte
	Width() int
	Height() int
}

// Binarizer thresholds a LuminanceSource into black and white.
type Binarizer interface {
	BlackRow(y int, row *bitutil.BitArray) (*bitutil.BitArray, error)
	BlackMatrix() (*bitutil.BitMatrix, error)
	LuminanceSource() LuminanceSource
	Width() int
	Height() int
}

// BinaryBitmap is the input to a Reader. It memoises the binarized matrix.
type BinaryBitmap struct {
	binarizer Binarizer
	matrix    *bitutil.BitMatrix
}

func NewBinaryBitmap(b Binarizer) *BinaryBitmap {
	return &BinaryBitmap{binarizer: b}
}

// NewBinaryBitmapFromMatrix wraps an already binarized matrix.
func NewBinaryBitmapFromMatrix(m *bitutil.BitMatrix) *BinaryBitmap {
	return &BinaryBitmap{binarizer: matrixBinarizer{m}, matrix: m}
}

func (b *BinaryBitmap) Width() int { return b.binarizer.Width() }

func (b *BinaryBitmap) Height() int { return b.binarizer.Height() }

func (b *BinaryBitmap) BlackRow(y int, row *bitutil.BitArray) (*bitutil.BitArray, error) {
	return b.binarizer.BlackRow(y, row)
}

// BlackMatrix binarizes the whole image on first use.
func (b *BinaryBitmap) BlackMatrix() (*bitutil.BitMatrix, error) {
	if b.matrix == nil {
		m, err := b.binarizer.BlackMatrix()
		if err != nil {
			return nil, err
		}
		b.matrix = m
	}
	return b.matrix, nil
}

// matrixBinarizer serves a fixed matrix; it has no luminance source.
type matrixBinarizer struct{ m *bitutil.BitMatrix }

func (mb matrixBinarizer) BlackRow(y int, row *bitutil.BitArray) (*bitutil.BitArray, error) {
	return mb.m.Row(y, row), nil
}

func (mb matrixBinarizer) BlackMatrix() (*bitutil.BitMatrix, error) { return mb.m, nil }

func (matrixBinarizer) LuminanceSource() LuminanceSource { return nil }

func (mb matrixBinarizer) Width() int { return mb.m.Width() }

func (mb matrixBinarizer) Height() int { return mb.m.Height() }
