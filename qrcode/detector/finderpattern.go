package detector

import (
	"math"

	"github.com/ericlevine/qrkit"
)

// FinderPattern is a candidate finder pattern centre. Count is the number
// of scans that have agreed on it.
type FinderPattern struct {
	X, Y                float64
	EstimatedModuleSize float64
	Count               int
}

func (p *FinderPattern) Position() qrkit.ResultPoint { return qrkit.ResultPoint{X: p.X, Y: p.Y} }

// AboutEquals reports whether an observation at (i, j) with the given
// module size is close enough to be the same pattern.
func (p *FinderPattern) AboutEquals(moduleSize, i, j float64) bool {
	if math.Abs(i-p.Y) > moduleSize || math.Abs(j-p.X) > moduleSize {
		return false
	}
	diff := math.Abs(moduleSize - p.EstimatedModuleSize)
	return diff <= 1 || diff <= p.EstimatedModuleSize
}

// CombineEstimate folds a new observation into p, weighting the existing
// estimate by its count.
func (p *FinderPattern) CombineEstimate(i, j, moduleSize float64) *FinderPattern {
	n := float64(p.Count)
	return &FinderPattern{
		X:                   (n*p.X + j) / (n + 1),
		Y:                   (n*p.Y + i) / (n + 1),
		EstimatedModuleSize: (n*p.EstimatedModuleSize + moduleSize) / (n + 1),
		Count:               p.Count + 1,
	}
}

// FinderPatternInfo holds the three finder patterns of one symbol.
type FinderPatternInfo struct {
	BottomLeft, TopLeft, TopRight *FinderPattern
}

func newFinderPatternInfo(p [3]*FinderPattern) *FinderPatternInfo {
	o := qrkit.OrderBestPatterns(p)
	return &FinderPatternInfo{BottomLeft: o[0], TopLeft: o[1], TopRight: o[2]}
}

// AlignmentPattern is the small 1:1:1 pattern near the bottom-right corner.
type AlignmentPattern struct {
	X, Y                float64
	EstimatedModuleSize float64
}

func (p *AlignmentPattern) Position() qrkit.ResultPoint { return qrkit.ResultPoint{X: p.X, Y: p.Y} }

func (p *AlignmentPattern) AboutEquals(moduleSize, i, j float64) bool {
	if math.Abs(i-p.Y) > moduleSize || math.Abs(j-p.X) > moduleSize {
		return false
	}
	diff := math.Abs(moduleSize - p.EstimatedModuleSize)
	return diff <= 1 || diff <= p.EstimatedModuleSize
}

func (p *AlignmentPattern) CombineEstimate(i, j, moduleSize float64) *AlignmentPattern {
	return &AlignmentPattern{
		X:                   (p.X + j) / 2,
		Y:                   (p.Y + i) / 2,
		EstimatedModuleSize: (p.EstimatedModuleSize + moduleSize) / 2,
	}
}
