package binarizer

import (
	"github.com/ericlevine/qrkit"
	"github.com/ericlevine/qrkit/bitutil"
)

const (
	blockPower    = 3
	blockSize     = 1 << blockPower
	minDimension  = 5 * blockSize
	minContrast   = 24
	windowRadius  = 2
	windowSamples = (2*windowRadius + 1) * (2*windowRadius + 1)
)

// Hybrid thresholds each 8x8 block against the average black point of the
// surrounding 5x5 blocks. Images too small for that fall back to the
// global histogram. Rows are still binarized globally.
type Hybrid struct {
	*GlobalHistogram
	matrix *bitutil.BitMatrix
}

func NewHybrid(source qrkit.LuminanceSource) *Hybrid {
	return &Hybrid{GlobalHistogram: NewGlobalHistogram(source)}
}

func (h *Hybrid) BlackMatrix() (*bitutil.BitMatrix, error) {
	if h.matrix != nil {
		return h.matrix, nil
	}
	w, ht := h.source.Width(), h.source.Height()
	if w < minDimension || ht < minDimension {
		m, err := h.GlobalHistogram.BlackMatrix()
		if err != nil {
			return nil, err
		}
		h.matrix = m
		return m, nil
	}
	g := blockGrid{
		lum:   h.source.Matrix(),
		width: w, height: ht,
		cols: (w + blockSize - 1) >> blockPower,
		rows: (ht + blockSize - 1) >> blockPower,
	}
	points := g.blackPoints()
	m := bitutil.NewBitMatrixWithSize(w, ht)
	for by := 0; by < g.rows; by++ {
		cy := clampInt(by, windowRadius, g.rows-windowRadius-1)
		for bx := 0; bx < g.cols; bx++ {
			cx := clampInt(bx, windowRadius, g.cols-windowRadius-1)
			sum := 0
			for dy := -windowRadius; dy <= windowRadius; dy++ {
				for dx := -windowRadius; dx <= windowRadius; dx++ {
					sum += points[cy+dy][cx+dx]
				}
			}
			g.threshold(m, bx, by, sum/windowSamples)
		}
	}
	h.matrix = m
	return m, nil
}

// clampInt keeps the 5x5 window inside the grid; lo wins when hi < lo.
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type blockGrid struct {
	lum           []byte
	width, height int
	cols, rows    int
}

// origin returns the top-left pixel of a block. Trailing blocks are shifted
// back so they stay inside the image.
func (g *blockGrid) origin(bx, by int) (int, int) {
	return min(bx<<blockPower, g.width-blockSize), min(by<<blockPower, g.height-blockSize)
}

func (g *blockGrid) threshold(m *bitutil.BitMatrix, bx, by, level int) {
	x0, y0 := g.origin(bx, by)
	for y := y0; y < y0+blockSize; y++ {
		row := g.lum[y*g.width:]
		for x := x0; x < x0+blockSize; x++ {
			if int(row[x]) <= level {
				m.Set(x, y)
			}
		}
	}
}

// blackPoints computes a black point per block. Low-contrast blocks take
// half their minimum, or the neighbouring estimate when that is darker than
// the block itself, so flat regions inherit the verdict of their
// surroundings.
func (g *blockGrid) blackPoints() [][]int {
	points := make([][]int, g.rows)
	for by := range points {
		points[by] = make([]int, g.cols)
		for bx := range points[by] {
			x0, y0 := g.origin(bx, by)
			sum, lo, hi := 0, 0xFF, 0
			for y := y0; y < y0+blockSize; y++ {
				for _, v := range g.lum[y*g.width+x0 : y*g.width+x0+blockSize] {
					p := int(v)
					sum += p
					lo = min(lo, p)
					hi = max(hi, p)
				}
			}
			avg := sum >> (2 * blockPower)
			if hi-lo <= minContrast {
				avg = lo / 2
				if by > 0 && bx > 0 {
					neighbour := (points[by-1][bx] + 2*points[by][bx-1] + points[by-1][bx-1]) / 4
					if lo < neighbour {
						avg = neighbour
					}
				}
			}
			points[by][bx] = avg
		}
	}
	return points
}
