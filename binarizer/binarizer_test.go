package binarizer

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericlevine/qrkit"
)

// squareImage draws a dark square on a light background, optionally with a
// horizontal lighting gradient.
func squareImage(size int, gradient bool) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			bg, fg := 220, 30
			if gradient {
				shift := 120 * x / size
				bg, fg = bg-shift, fg+shift/4
			}
			v := bg
			if x >= size/4 && x < 3*size/4 && y >= size/4 && y < 3*size/4 {
				v = fg
			}
			img.SetGray(x, y, color.Gray{Y: uint8(v)})
		}
	}
	return img
}

func assertSquare(t *testing.T, size int, get func(x, y int) bool) {
	t.Helper()
	for _, p := range [][2]int{{size / 2, size / 2}, {size/4 + 1, size/4 + 1}} {
		assert.True(t, get(p[0], p[1]), "inside %v", p)
	}
	for _, p := range [][2]int{{1, 1}, {size - 2, size / 2}, {size / 2, size - 2}} {
		assert.False(t, get(p[0], p[1]), "outside %v", p)
	}
}

func TestGlobalHistogramMatrix(t *testing.T) {
	src := qrkit.NewGrayImageLuminanceSource(squareImage(60, false))
	m, err := NewGlobalHistogram(src).BlackMatrix()
	require.NoError(t, err)
	assertSquare(t, 60, m.Get)
}

func TestGlobalHistogramRow(t *testing.T) {
	src := qrkit.NewGrayImageLuminanceSource(squareImage(60, false))
	row, err := NewGlobalHistogram(src).BlackRow(30, nil)
	require.NoError(t, err)
	assert.True(t, row.Get(30))
	assert.False(t, row.Get(5))
}

func TestGlobalHistogramLowContrast(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 50, 50))
	for i := range img.Pix {
		img.Pix[i] = uint8(128 + 8*(i%2))
	}
	_, err := NewGlobalHistogram(qrkit.NewGrayImageLuminanceSource(img)).BlackMatrix()
	assert.ErrorIs(t, err, qrkit.ErrNotFound)
}

func TestHybridHandlesGradient(t *testing.T) {
	src := qrkit.NewGrayImageLuminanceSource(squareImage(120, true))
	h := NewHybrid(src)
	m, err := h.BlackMatrix()
	require.NoError(t, err)
	assertSquare(t, 120, m.Get)

	again, err := h.BlackMatrix()
	require.NoError(t, err)
	assert.Same(t, m, again)
}

func TestHybridSmallImageFallsBack(t *testing.T) {
	src := qrkit.NewGrayImageLuminanceSource(squareImage(32, false))
	m, err := NewHybrid(src).BlackMatrix()
	require.NoError(t, err)
	assertSquare(t, 32, m.Get)
}
