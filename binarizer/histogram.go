// Package binarizer turns greyscale luminance into the black and white
// matrices consumed by the QR detector.
package binarizer

import (
	"fmt"

	"github.com/ericlevine/qrkit"
	"github.com/ericlevine/qrkit/bitutil"
)

const (
	lumBits    = 5
	lumShift   = 8 - lumBits
	lumBuckets = 1 << lumBits
)

type histogram [lumBuckets]int

func (h *histogram) add(lum []byte) {
	for _, v := range lum {
		h[v>>lumShift]++
	}
}

// GlobalHistogram picks a single black point for the whole image from a
// coarse histogram. It is cheap but fails under uneven lighting.
type GlobalHistogram struct {
	source qrkit.LuminanceSource
	row    []byte
}

func NewGlobalHistogram(source qrkit.LuminanceSource) *GlobalHistogram {
	return &GlobalHistogram{source: source}
}

func (g *GlobalHistogram) LuminanceSource() qrkit.LuminanceSource { return g.source }

func (g *GlobalHistogram) Width() int { return g.source.Width() }

func (g *GlobalHistogram) Height() int { return g.source.Height() }

func (g *GlobalHistogram) scratch() []byte {
	if w := g.source.Width(); len(g.row) < w {
		g.row = make([]byte, w)
	}
	return g.row
}

// BlackRow thresholds one row, sharpening with a [-1 4 -1]/2 kernel.
func (g *GlobalHistogram) BlackRow(y int, row *bitutil.BitArray) (*bitutil.BitArray, error) {
	w := g.source.Width()
	if row == nil || row.Size() < w {
		row = bitutil.NewBitArray(w)
	} else {
		row.Clear()
	}
	lum := g.source.Row(y, g.scratch())[:w]
	var h histogram
	h.add(lum)
	black, err := h.blackPoint()
	if err != nil {
		return nil, err
	}
	if w < 3 {
		for x, v := range lum {
			if int(v) < black {
				row.Set(x)
			}
		}
		return row, nil
	}
	for x := 1; x < w-1; x++ {
		if (4*int(lum[x])-int(lum[x-1])-int(lum[x+1]))/2 < black {
			row.Set(x)
		}
	}
	return row, nil
}

// BlackMatrix samples four rows through the central 60% of the image to
// build the histogram, then thresholds every pixel.
func (g *GlobalHistogram) BlackMatrix() (*bitutil.BitMatrix, error) {
	w, ht := g.source.Width(), g.source.Height()
	var h histogram
	for i := 1; i < 5; i++ {
		lum := g.source.Row(ht*i/5, g.scratch())
		h.add(lum[w/5 : w*4/5])
	}
	black, err := h.blackPoint()
	if err != nil {
		return nil, err
	}
	m := bitutil.NewBitMatrixWithSize(w, ht)
	for i, v := range g.source.Matrix() {
		if int(v) < black {
			m.Set(i%w, i/w)
		}
	}
	return m, nil
}

// blackPoint finds the two tallest, well separated peaks and returns the
// deepest valley between them, biased toward the white peak.
func (h *histogram) blackPoint() (int, error) {
	first, tallest := 0, 0
	for i, n := range h {
		if n > tallest {
			first, tallest = i, n
		}
	}
	second, bestScore := 0, 0
	for i, n := range h {
		d := i - first
		if score := n * d * d; score > bestScore {
			second, bestScore = i, score
		}
	}
	if first > second {
		first, second = second, first
	}
	if second-first <= lumBuckets/16 {
		return 0, fmt.Errorf("%w: luminance histogram has a single peak", qrkit.ErrNotFound)
	}
	valley, valleyScore := second-1, -1
	for i := second - 1; i > first; i-- {
		d := i - first
		if score := d * d * (second - i) * (tallest - h[i]); score > valleyScore {
			valley, valleyScore = i, score
		}
	}
	return valley << lumShift, nil
}
