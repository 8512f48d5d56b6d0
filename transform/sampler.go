package transform

import (
	"fmt"

	"github.com/ericlevine/qrkit"
	"github.com/ericlevine/qrkit/bitutil"
)

// GridSampler reads a dimX x dimY module grid out of a binarized image.
type GridSampler interface {
	// SampleGrid samples with the transform taking the grid quad src onto
	// the image quad dst.
	SampleGrid(image *bitutil.BitMatrix, dimX, dimY int, src, dst Quad) (*bitutil.BitMatrix, error)
	// SampleGridTransform samples with a transform from grid to image space.
	SampleGridTransform(image *bitutil.BitMatrix, dimX, dimY int, t *PerspectiveTransform) (*bitutil.BitMatrix, error)
}

// DefaultGridSampler reads the pixel under the centre of each module.
type DefaultGridSampler struct{}

func (s DefaultGridSampler) SampleGrid(image *bitutil.BitMatrix, dimX, dimY int, src, dst Quad) (*bitutil.BitMatrix, error) {
	return s.SampleGridTransform(image, dimX, dimY, QuadrilateralToQuadrilateral(src, dst))
}

func (DefaultGridSampler) SampleGridTransform(image *bitutil.BitMatrix, dimX, dimY int, t *PerspectiveTransform) (*bitutil.BitMatrix, error) {
	if dimX <= 0 || dimY <= 0 {
		return nil, fmt.Errorf("%w: empty sampling grid %dx%d", qrkit.ErrNotFound, dimX, dimY)
	}
	out := bitutil.NewBitMatrixWithSize(dimX, dimY)
	row := make([]float64, 2*dimX)
	for y := 0; y < dimY; y++ {
		cy := float64(y) + 0.5
		for x := 0; x < dimX; x++ {
			row[2*x] = float64(x) + 0.5
			row[2*x+1] = cy
		}
		t.TransformPoints(row)
		if err := CheckAndNudgePoints(image, row); err != nil {
			return nil, err
		}
		for x := 0; x < dimX; x++ {
			ix, iy := int(row[2*x]), int(row[2*x+1])
			if ix < 0 || iy < 0 || ix >= image.Width() || iy >= image.Height() {
				return nil, fmt.Errorf("%w: module (%d,%d) maps outside the image", qrkit.ErrNotFound, x, y)
			}
			if image.Get(ix, iy) {
				out.Set(x, y)
			}
		}
	}
	return out, nil
}

// CheckAndNudgePoints validates interleaved x,y pairs against the image.
// Points at most one pixel outside are pulled onto the border; anything
// further out is an error. Only the runs at either end of the slice are
// examined, since a row of modules can only leave the image at its ends.
func CheckAndNudgePoints(image *bitutil.BitMatrix, xy []float64) error {
	w, h := image.Width(), image.Height()
	nudge := func(i int) (bool, error) {
		x, y := int(xy[i]), int(xy[i+1])
		if x < -1 || x > w || y < -1 || y > h {
			return false, fmt.Errorf("%w: point (%d,%d) outside %dx%d image", qrkit.ErrNotFound, x, y, w, h)
		}
		moved := false
		switch x {
		case -1:
			xy[i], moved = 0, true
		case w:
			xy[i], moved = float64(w-1), true
		}
		switch y {
		case -1:
			xy[i+1], moved = 0, true
		case h:
			xy[i+1], moved = float64(h-1), true
		}
		return moved, nil
	}
	for i := 0; i+1 < len(xy); i += 2 {
		moved, err := nudge(i)
		if err != nil {
			return err
		}
		if !moved {
			break
		}
	}
	for i := len(xy) - 2; i >= 0; i -= 2 {
		moved, err := nudge(i)
		if err != nil {
			return err
		}
		if !moved {
			break
		}
	}
	return nil
}
