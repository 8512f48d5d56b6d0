package qrkit

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// ImageLuminanceSource holds the greyscale rendition of an image.
type ImageLuminanceSource struct {
	lum           []byte
	width, height int
}

// NewImageLuminanceSource flattens img onto a white background, so that
// transparent pixels read as white, and converts it to greyscale.
func NewImageLuminanceSource(img image.Image) *ImageLuminanceSource {
	if g, ok := img.(*image.Gray); ok {
		return NewGrayImageLuminanceSource(g)
	}
	size := img.Bounds().Size()
	flat := imaging.Overlay(imaging.New(size.X, size.Y, color.White), img, image.Point{}, 1)
	gray := imaging.Grayscale(flat)
	lum := make([]byte, size.X*size.Y)
	for i := range lum {
		lum[i] = gray.Pix[4*i]
	}
	return &ImageLuminanceSource{lum: lum, width: size.X, height: size.Y}
}

// NewGrayImageLuminanceSource copies the pixels of a greyscale image.
func NewGrayImageLuminanceSource(img *image.Gray) *ImageLuminanceSource {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	lum := make([]byte, w*h)
	for y := 0; y < h; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(lum[y*w:(y+1)*w], img.Pix[off:off+w])
	}
	return &ImageLuminanceSource{lum: lum, width: w, height: h}
}

func (s *ImageLuminanceSource) Row(y int, row []byte) []byte {
	if y < 0 || y >= s.height {
		return nil
	}
	if len(row) < s.width {
		row = make([]byte, s.width)
	}
	copy(row, s.lum[y*s.width:(y+1)*s.width])
	return row
}

func (s *ImageLuminanceSource) Matrix() []byte {
	return append([]byte(nil), s.lum...)
}

func (s *ImageLuminanceSource) Width() int { return s.width }

func (s *ImageLuminanceSource) Height() int { return s.height }

// Bits is the read-only view of a bit grid needed for rendering.
type Bits interface {
	Width() int
	Height() int
	Get(x, y int) bool
}

// BitMatrixToImage renders set bits black and unset bits white, one pixel
// per bit.
func BitMatrixToImage(m Bits) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width(), m.Height()))
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if !m.Get(x, y) {
				img.SetGray(x, y, color.Gray{Y: 0xFF})
			}
		}
	}
	return img
}
