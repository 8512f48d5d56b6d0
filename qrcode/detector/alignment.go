package detector

import (
	"fmt"
	"math"

	"github.com/ericlevine/qrkit"
	"github.com/ericlevine/qrkit/bitutil"
)

// AlignmentPatternFinder looks for an alignment pattern inside a window
// of the image. Rows are scanned from the middle of the window outwards,
// matching the light-dark-light 1:1:1 runs through the pattern's centre.
type AlignmentPatternFinder struct {
	image          *bitutil.BitMatrix
	startX, startY int
	width, height  int
	moduleSize     float64
	callback       qrkit.ResultPointCallback
	candidates     []*AlignmentPattern
}

func NewAlignmentPatternFinder(image *bitutil.BitMatrix, startX, startY, width, height int, moduleSize float64, callback qrkit.ResultPointCallback) *AlignmentPatternFinder {
	return &AlignmentPatternFinder{
		image:      image,
		startX:     startX,
		startY:     startY,
		width:      width,
		height:     height,
		moduleSize: moduleSize,
		callback:   callback,
	}
}

// Find returns the first pattern seen twice. Failing that, the first
// pattern seen at all is returned.
func (f *AlignmentPatternFinder) Find() (*AlignmentPattern, error) {
	maxJ := f.startX + f.width
	middleI := f.startY + f.height/2
	for gen := 0; gen < f.height; gen++ {
		i := middleI - (gen+1)/2
		if gen&1 == 0 {
			i = middleI + (gen+1)/2
		}
		if i < 0 || i >= f.image.Height() {
			continue
		}

		var c [3]int
		j := f.startX
		// a leading light run has no meaningful length
		for j < maxJ && !f.image.Get(j, i) {
			j++
		}
		state := 0
		for ; j < maxJ; j++ {
			if !f.image.Get(j, i) {
				if state == 1 {
					state++
				}
				c[state]++
				continue
			}
			if state == 1 {
				c[1]++
				continue
			}
			if state == 2 {
				if f.foundPatternCross(c) {
					if p := f.handlePossibleCenter(c, i, j); p != nil {
						return p, nil
					}
				}
				c = [3]int{c[2], 1, 0}
				state = 1
				continue
			}
			state++
			c[state]++
		}
		if f.foundPatternCross(c) {
			if p := f.handlePossibleCenter(c, i, maxJ); p != nil {
				return p, nil
			}
		}
	}
	if len(f.candidates) > 0 {
		return f.candidates[0], nil
	}
	return nil, fmt.Errorf("%w: no alignment pattern in %dx%d window at (%d,%d)",
		qrkit.ErrNotFound, f.width, f.height, f.startX, f.startY)
}

func (f *AlignmentPatternFinder) foundPatternCross(c [3]int) bool {
	v := f.moduleSize / 2
	for _, n := range c {
		if math.Abs(f.moduleSize-float64(n)) >= v {
			return false
		}
	}
	return true
}

func alignmentCenterFromEnd(c [3]int, end int) float64 {
	return float64(end-c[2]) - float64(c[1])/2
}

func (f *AlignmentPatternFinder) crossCheckVertical(startI, centerJ, maxCount, originalTotal int) float64 {
	maxI := f.image.Height()
	get := func(i int) bool { return f.image.Get(centerJ, i) }
	var c [3]int

	i := startI
	for ; i >= 0 && get(i) && c[1] <= maxCount; i-- {
		c[1]++
	}
	if i < 0 || c[1] > maxCount {
		return math.NaN()
	}
	for ; i >= 0 && !get(i) && c[0] <= maxCount; i-- {
		c[0]++
	}
	if c[0] > maxCount {
		return math.NaN()
	}

	i = startI + 1
	for ; i < maxI && get(i) && c[1] <= maxCount; i++ {
		c[1]++
	}
	if i == maxI || c[1] > maxCount {
		return math.NaN()
	}
	for ; i < maxI && !get(i) && c[2] <= maxCount; i++ {
		c[2]++
	}
	if c[2] > maxCount {
		return math.NaN()
	}

	total := c[0] + c[1] + c[2]
	if 5*abs(total-originalTotal) >= 2*originalTotal {
		return math.NaN()
	}
	if !f.foundPatternCross(c) {
		return math.NaN()
	}
	return alignmentCenterFromEnd(c, i)
}

// handlePossibleCenter returns a pattern once the same centre has been seen
// on two rows; the first sighting is only recorded.
func (f *AlignmentPatternFinder) handlePossibleCenter(c [3]int, i, j int) *AlignmentPattern {
	total := c[0] + c[1] + c[2]
	centerJ := alignmentCenterFromEnd(c, j)
	centerI := f.crossCheckVertical(i, int(centerJ), 2*c[1], total)
	if math.IsNaN(centerI) {
		return nil
	}
	size := float64(total) / 3
	for _, p := range f.candidates {
		if p.AboutEquals(size, centerI, centerJ) {
			return p.CombineEstimate(centerI, centerJ, size)
		}
	}
	p := &AlignmentPattern{X: centerJ, Y: centerI, EstimatedModuleSize: size}
	f.candidates = append(f.candidates, p)
	if f.callback != nil {
		f.callback(p.Position())
	}
	return nil
}
