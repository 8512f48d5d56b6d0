// Package detector locates a QR code in a binarized image and samples its
// module grid.
package detector

import (
	"fmt"
	"math"

	"github.com/ericlevine/qrkit"
	"github.com/ericlevine/qrkit/bitutil"
	"github.com/ericlevine/qrkit/qrcode/decoder"
	"github.com/ericlevine/qrkit/transform"
)

// DetectorResult is a sampled module grid and the image points it was
// located by: bottom-left, top-left and top-right finder centres, then the
// alignment pattern when one was found.
type DetectorResult struct {
	Bits   *bitutil.BitMatrix
	Points []qrkit.ResultPoint
}

// Detector finds and samples one QR code.
type Detector struct {
	image    *bitutil.BitMatrix
	sampler  transform.GridSampler
	callback qrkit.ResultPointCallback
}

func NewDetector(image *bitutil.BitMatrix) *Detector {
	return &Detector{image: image, sampler: transform.DefaultGridSampler{}}
}

// WithSampler replaces the grid sampler.
func (d *Detector) WithSampler(s transform.GridSampler) *Detector {
	d.sampler = s
	return d
}

func (d *Detector) Detect(opts *qrkit.DecodeOptions) (*DetectorResult, error) {
	d.callback = opts.Callback()
	info, err := NewFinderPatternFinder(d.image, d.callback).Find(opts)
	if err != nil {
		return nil, err
	}
	return d.ProcessFinderPatternInfo(info)
}

// ProcessFinderPatternInfo derives the symbol geometry from its three
// finder patterns and samples the grid.
func (d *Detector) ProcessFinderPatternInfo(info *FinderPatternInfo) (*DetectorResult, error) {
	tl, tr, bl := info.TopLeft, info.TopRight, info.BottomLeft

	moduleSize := d.calculateModuleSize(tl, tr, bl)
	if moduleSize < 1 || math.IsNaN(moduleSize) {
		return nil, fmt.Errorf("%w: module size %.2f", qrkit.ErrNotFound, moduleSize)
	}
	dimension, err := computeDimension(tl, tr, bl, moduleSize)
	if err != nil {
		return nil, err
	}
	provisional, err := decoder.ProvisionalVersionForDimension(dimension)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", qrkit.ErrNotFound, err)
	}

	var alignment *AlignmentPattern
	if len(provisional.AlignmentCenters) > 0 {
		brX := tr.X - tl.X + bl.X
		brY := tr.Y - tl.Y + bl.Y
		// the bottom-right alignment centre sits three modules in from the corner
		correction := 1 - 3/float64(provisional.Dimension()-7)
		estX := int(tl.X + correction*(brX-tl.X))
		estY := int(tl.Y + correction*(brY-tl.Y))
		for radius := 4; radius <= 16; radius <<= 1 {
			if alignment, err = d.findAlignmentInRegion(moduleSize, estX, estY, float64(radius)); err == nil {
				break
			}
		}
	}

	t := createTransform(tl, tr, bl, alignment, dimension)
	bits, err := d.sampler.SampleGridTransform(d.image, dimension, dimension, t)
	if err != nil {
		return nil, err
	}

	points := []qrkit.ResultPoint{bl.Position(), tl.Position(), tr.Position()}
	if alignment != nil {
		points = append(points, alignment.Position())
	}
	return &DetectorResult{Bits: bits, Points: points}, nil
}

func createTransform(tl, tr, bl *FinderPattern, alignment *AlignmentPattern, dimension int) *transform.PerspectiveTransform {
	far := float64(dimension) - 3.5
	var br, srcBR transform.Point
	if alignment != nil {
		br = transform.Point{X: alignment.X, Y: alignment.Y}
		srcBR = transform.Point{X: far - 3, Y: far - 3}
	} else {
		br = transform.Point{X: tr.X - tl.X + bl.X, Y: tr.Y - tl.Y + bl.Y}
		srcBR = transform.Point{X: far, Y: far}
	}
	return transform.QuadrilateralToQuadrilateral(
		transform.Quad{{X: 3.5, Y: 3.5}, {X: far, Y: 3.5}, srcBR, {X: 3.5, Y: far}},
		transform.Quad{{X: tl.X, Y: tl.Y}, {X: tr.X, Y: tr.Y}, br, {X: bl.X, Y: bl.Y}},
	)
}

// computeDimension rounds the centre distances to a symbol size, which is
// always 1 mod 4.
func computeDimension(tl, tr, bl *FinderPattern, moduleSize float64) (int, error) {
	across := int(math.Round(qrkit.Distance(tl.Position(), tr.Position()) / moduleSize))
	down := int(math.Round(qrkit.Distance(tl.Position(), bl.Position()) / moduleSize))
	dimension := (across+down)/2 + 7
	switch dimension & 3 {
	case 0:
		dimension++
	case 2:
		dimension--
	case 3:
		return 0, fmt.Errorf("%w: estimated dimension %d", qrkit.ErrNotFound, dimension)
	}
	return dimension, nil
}

func (d *Detector) calculateModuleSize(tl, tr, bl *FinderPattern) float64 {
	return (d.moduleSizeOneWay(tl, tr) + d.moduleSizeOneWay(tl, bl)) / 2
}

// moduleSizeOneWay measures the finder pattern along the line joining two
// centres, from each end.
func (d *Detector) moduleSizeOneWay(p, other *FinderPattern) float64 {
	est1 := d.runBothWays(int(p.X), int(p.Y), int(other.X), int(other.Y))
	est2 := d.runBothWays(int(other.X), int(other.Y), int(p.X), int(p.Y))
	switch {
	case math.IsNaN(est1):
		return est2 / 7
	case math.IsNaN(est2):
		return est1 / 7
	}
	return (est1 + est2) / 14
}

// runBothWays measures the black-white-black run from (fromX, fromY)
// towards (toX, toY) and in the opposite direction, clipped to the image.
// The sum spans a whole finder pattern, seven modules.
func (d *Detector) runBothWays(fromX, fromY, toX, toY int) float64 {
	result := d.blackWhiteBlackRun(fromX, fromY, toX, toY)

	w, h := d.image.Width(), d.image.Height()
	scale := 1.0
	otherX := fromX - (toX - fromX)
	if otherX < 0 {
		scale = float64(fromX) / float64(fromX-otherX)
		otherX = 0
	} else if otherX >= w {
		scale = float64(w-1-fromX) / float64(otherX-fromX)
		otherX = w - 1
	}
	otherY := int(float64(fromY) - float64(toY-fromY)*scale)

	scale = 1.0
	if otherY < 0 {
		scale = float64(fromY) / float64(fromY-otherY)
		otherY = 0
	} else if otherY >= h {
		scale = float64(h-1-fromY) / float64(otherY-fromY)
		otherY = h - 1
	}
	otherX = int(float64(fromX) + float64(otherX-fromX)*scale)

	result += d.blackWhiteBlackRun(fromX, fromY, otherX, otherY)
	// the centre pixel was counted twice
	return result - 1
}

// blackWhiteBlackRun walks a Bresenham line and returns the distance to the
// far edge of the second black run, or NaN if the line ends first.
func (d *Detector) blackWhiteBlackRun(fromX, fromY, toX, toY int) float64 {
	steep := abs(toY-fromY) > abs(toX-fromX)
	if steep {
		fromX, fromY = fromY, fromX
		toX, toY = toY, toX
	}
	dx, dy := abs(toX-fromX), abs(toY-fromY)
	e := -dx / 2
	xStep, yStep := 1, 1
	if fromX > toX {
		xStep = -1
	}
	if fromY > toY {
		yStep = -1
	}

	// 0: in the first black run, 1: white, 2: second black
	state := 0
	xLimit := toX + xStep
	for x, y := fromX, fromY; x != xLimit; x += xStep {
		realX, realY := x, y
		if steep {
			realX, realY = y, x
		}
		if (state == 1) == d.image.Get(realX, realY) {
			if state == 2 {
				return math.Hypot(float64(x-fromX), float64(y-fromY))
			}
			state++
		}
		e += dy
		if e > 0 {
			if y == toY {
				break
			}
			y += yStep
			e -= dx
		}
	}
	if state == 2 {
		return math.Hypot(float64(toX+xStep-fromX), float64(toY-fromY))
	}
	return math.NaN()
}

// findAlignmentInRegion searches a square of the given radius, in modules,
// around the estimated alignment centre.
func (d *Detector) findAlignmentInRegion(moduleSize float64, estX, estY int, radius float64) (*AlignmentPattern, error) {
	allowance := int(radius * moduleSize)
	left := max(0, estX-allowance)
	right := min(d.image.Width()-1, estX+allowance)
	if float64(right-left) < moduleSize*3 {
		return nil, fmt.Errorf("%w: alignment window too narrow", qrkit.ErrNotFound)
	}
	top := max(0, estY-allowance)
	bottom := min(d.image.Height()-1, estY+allowance)
	if float64(bottom-top) < moduleSize*3 {
		return nil, fmt.Errorf("%w: alignment window too short", qrkit.ErrNotFound)
	}
	return NewAlignmentPatternFinder(d.image, left, top, right-left, bottom-top, moduleSize, d.callback).Find()
}
