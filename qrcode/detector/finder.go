package detector

import (
	"fmt"
	"math"
	"slices"

	"github.com/ericlevine/qrkit"
	"github.com/ericlevine/qrkit/bitutil"
)

const (
	// CenterQuorum is the number of agreeing scans after which a finder
	// pattern counts as confirmed.
	CenterQuorum = 2

	minSkip    = 3
	maxModules = 97

	// maxCandidates bounds the triple search in selectBestPatterns.
	maxCandidates = 6

	// maxConfirmedSkew is the skew below which three confirmed centres end
	// the scan early.
	maxConfirmedSkew = 0.25
)

// triples[n] lists every 3-combination of n indices, for n <= maxCandidates.
var triples = func() [maxCandidates + 1][][3]int {
	var t [maxCandidates + 1][][3]int
	for n := 3; n <= maxCandidates; n++ {
		for i := 0; i < n-2; i++ {
			for j := i + 1; j < n-1; j++ {
				for k := j + 1; k < n; k++ {
					t[n] = append(t[n], [3]int{i, j, k})
				}
			}
		}
	}
	return t
}()

// FinderPatternFinder scans a binarized image for the three finder patterns
// of a QR code.
type FinderPatternFinder struct {
	image      *bitutil.BitMatrix
	callback   qrkit.ResultPointCallback
	pure       bool
	candidates []*FinderPattern
	hasSkipped bool
}

func NewFinderPatternFinder(image *bitutil.BitMatrix, callback qrkit.ResultPointCallback) *FinderPatternFinder {
	return &FinderPatternFinder{image: image, callback: callback}
}

// Candidates returns every centre seen so far, confirmed or not.
func (f *FinderPatternFinder) Candidates() []*FinderPattern { return f.candidates }

// Find scans rows for 1:1:3:1:1 runs. The row stride starts coarse and
// drops once a centre is confirmed; the scan stops early when three
// mutually consistent centres have each been confirmed.
func (f *FinderPatternFinder) Find(opts *qrkit.DecodeOptions) (*FinderPatternInfo, error) {
	tryHarder := opts != nil && opts.TryHarder
	f.pure = opts != nil && opts.PureBarcode
	maxI, maxJ := f.image.Height(), f.image.Width()

	iSkip := (3 * maxI) / (4 * maxModules)
	if iSkip < minSkip || tryHarder {
		iSkip = minSkip
	}

	var counts [5]int
	done := false
	for i := iSkip - 1; i < maxI && !done; i += iSkip {
		counts = [5]int{}
		state := 0
		for j := 0; j < maxJ; j++ {
			if f.image.Get(j, i) {
				if state&1 == 1 {
					state++
				}
				counts[state]++
				continue
			}
			if state&1 == 1 {
				counts[state]++
				continue
			}
			if state != 4 {
				state++
				counts[state]++
				continue
			}
			if !foundPatternCross(counts) {
				shiftCounts(&counts)
				state = 3
				continue
			}
			if !f.handlePossibleCenter(counts, i, j) {
				shiftCounts(&counts)
				state = 3
				continue
			}
			iSkip = 2
			if f.hasSkipped {
				done = f.haveMultiplyConfirmedCenters()
			} else if rowSkip := f.findRowSkip(); rowSkip > counts[2] {
				// jump close to the row of the missing third centre
				i += rowSkip - counts[2] - iSkip
				j = maxJ - 1
			}
			counts = [5]int{}
			state = 0
		}
		if foundPatternCross(counts) && f.handlePossibleCenter(counts, i, maxJ) {
			iSkip = counts[0]
			if f.hasSkipped {
				done = f.haveMultiplyConfirmedCenters()
			}
		}
	}

	best, err := f.selectBestPatterns()
	if err != nil {
		return nil, err
	}
	return newFinderPatternInfo(best), nil
}

func shiftCounts(c *[5]int) {
	c[0], c[1], c[2], c[3], c[4] = c[2], c[3], c[4], 1, 0
}

func centerFromEnd(c [5]int, end int) float64 {
	return float64(end-c[4]-c[3]) - float64(c[2])/2
}

// foundPatternCross checks a 1:1:3:1:1 ratio with 50% tolerance.
func foundPatternCross(c [5]int) bool {
	return ratioMatches(c, 2)
}

// foundPatternDiagonal is the looser check used along the diagonal.
func foundPatternDiagonal(c [5]int) bool {
	return ratioMatches(c, 1.333)
}

func ratioMatches(c [5]int, slack float64) bool {
	total := 0
	for _, n := range c {
		if n == 0 {
			return false
		}
		total += n
	}
	if total < 7 {
		return false
	}
	module := float64(total) / 7
	v := module / slack
	return math.Abs(module-float64(c[0])) < v &&
		math.Abs(module-float64(c[1])) < v &&
		math.Abs(3*module-float64(c[2])) < 3*v &&
		math.Abs(module-float64(c[3])) < v &&
		math.Abs(module-float64(c[4])) < v
}

// crossCheckDiagonal walks up-left and down-right from the centre.
func (f *FinderPatternFinder) crossCheckDiagonal(centerI, centerJ int) bool {
	var c [5]int
	get := func(d int) bool { return f.image.Get(centerJ+d, centerI+d) }

	back := func(d int) bool { return centerI >= d && centerJ >= d }
	i := 0
	for ; back(i) && get(-i); i++ {
		c[2]++
	}
	if c[2] == 0 {
		return false
	}
	for ; back(i) && !get(-i); i++ {
		c[1]++
	}
	if c[1] == 0 {
		return false
	}
	for ; back(i) && get(-i); i++ {
		c[0]++
	}
	if c[0] == 0 {
		return false
	}

	maxI, maxJ := f.image.Height(), f.image.Width()
	fwd := func(d int) bool { return centerI+d < maxI && centerJ+d < maxJ }
	i = 1
	for ; fwd(i) && get(i); i++ {
		c[2]++
	}
	for ; fwd(i) && !get(i); i++ {
		c[3]++
	}
	if c[3] == 0 {
		return false
	}
	for ; fwd(i) && get(i); i++ {
		c[4]++
	}
	if c[4] == 0 {
		return false
	}
	return foundPatternDiagonal(c)
}

// crossCheckVertical re-measures the pattern along column centerJ and
// returns the refined row of its centre, or NaN.
func (f *FinderPatternFinder) crossCheckVertical(startI, centerJ, maxCount, originalTotal int) float64 {
	get := func(i int) bool { return f.image.Get(centerJ, i) }
	return crossCheckLine(get, f.image.Height(), startI, maxCount, originalTotal, 2)
}

// crossCheckHorizontal re-measures along row centerI.
func (f *FinderPatternFinder) crossCheckHorizontal(startJ, centerI, maxCount, originalTotal int) float64 {
	get := func(j int) bool { return f.image.Get(j, centerI) }
	return crossCheckLine(get, f.image.Width(), startJ, maxCount, originalTotal, 1)
}

// crossCheckLine counts the five runs through start along one axis of
// length limit. The total may differ from originalTotal by at most
// factor/5 of it.
func crossCheckLine(get func(int) bool, limit, start, maxCount, originalTotal, factor int) float64 {
	var c [5]int
	i := start
	for ; i >= 0 && get(i); i-- {
		c[2]++
	}
	if i < 0 {
		return math.NaN()
	}
	for ; i >= 0 && !get(i) && c[1] <= maxCount; i-- {
		c[1]++
	}
	if i < 0 || c[1] > maxCount {
		return math.NaN()
	}
	for ; i >= 0 && get(i) && c[0] <= maxCount; i-- {
		c[0]++
	}
	if c[0] > maxCount {
		return math.NaN()
	}

	i = start + 1
	for ; i < limit && get(i); i++ {
		c[2]++
	}
	if i == limit {
		return math.NaN()
	}
	for ; i < limit && !get(i) && c[3] < maxCount; i++ {
		c[3]++
	}
	if i == limit || c[3] >= maxCount {
		return math.NaN()
	}
	for ; i < limit && get(i) && c[4] < maxCount; i++ {
		c[4]++
	}
	if c[4] >= maxCount {
		return math.NaN()
	}

	total := c[0] + c[1] + c[2] + c[3] + c[4]
	if 5*abs(total-originalTotal) >= factor*originalTotal {
		return math.NaN()
	}
	if !foundPatternCross(c) {
		return math.NaN()
	}
	return centerFromEnd(c, i)
}

// handlePossibleCenter cross checks a horizontal hit ending at column j of
// row i and records it. It reports whether the hit survived.
func (f *FinderPatternFinder) handlePossibleCenter(c [5]int, i, j int) bool {
	total := c[0] + c[1] + c[2] + c[3] + c[4]
	centerJ := centerFromEnd(c, j)
	centerI := f.crossCheckVertical(i, int(centerJ), c[2], total)
	if math.IsNaN(centerI) {
		return false
	}
	centerJ = f.crossCheckHorizontal(int(centerJ), int(centerI), c[2], total)
	if math.IsNaN(centerJ) {
		return false
	}
	if f.pure && !f.crossCheckDiagonal(int(centerI), int(centerJ)) {
		return false
	}

	size := float64(total) / 7
	for k, p := range f.candidates {
		if p.AboutEquals(size, centerI, centerJ) {
			f.candidates[k] = p.CombineEstimate(centerI, centerJ, size)
			return true
		}
	}
	p := &FinderPattern{X: centerJ, Y: centerI, EstimatedModuleSize: size, Count: 1}
	f.candidates = append(f.candidates, p)
	if f.callback != nil {
		f.callback(p.Position())
	}
	return true
}

// findRowSkip estimates how many rows can be skipped once two centres are
// confirmed: the third must lie at least that far down.
func (f *FinderPatternFinder) findRowSkip() int {
	if len(f.candidates) <= 1 {
		return 0
	}
	var first *FinderPattern
	for _, p := range f.candidates {
		if p.Count < CenterQuorum {
			continue
		}
		if first == nil {
			first = p
			continue
		}
		f.hasSkipped = true
		return int((math.Abs(first.X-p.X) - math.Abs(first.Y-p.Y)) / 2)
	}
	return 0
}

// haveMultiplyConfirmedCenters reports whether at least three centres are
// confirmed, their module sizes agree within 5%, and three of them sit in
// a near right isosceles triangle.
func (f *FinderPatternFinder) haveMultiplyConfirmedCenters() bool {
	var confirmed []*FinderPattern
	total := 0.0
	for _, p := range f.candidates {
		if p.Count >= CenterQuorum {
			confirmed = append(confirmed, p)
			total += p.EstimatedModuleSize
		}
	}
	if len(confirmed) < 3 {
		return false
	}
	average := total / float64(len(confirmed))
	deviation := 0.0
	for _, p := range confirmed {
		deviation += math.Abs(p.EstimatedModuleSize - average)
	}
	if deviation > 0.05*total {
		return false
	}
	_, skew := bestTriple(confirmed)
	return skew < maxConfirmedSkew
}

// ComputeSkew measures how far three centres are from the corners of a
// right isosceles triangle, as the summed deviation of the cosines of its
// interior angles from 0, 1/sqrt2 and 1/sqrt2. Zero is a perfect fit.
func ComputeSkew(p [3]*FinderPattern) float64 {
	o := qrkit.OrderBestPatterns(p)
	bl, tl, tr := o[0].Position(), o[1].Position(), o[2].Position()
	return math.Abs(cosAt(tl, tr, bl)) +
		math.Abs(cosAt(tr, tl, bl)-math.Sqrt2/2) +
		math.Abs(cosAt(bl, tl, tr)-math.Sqrt2/2)
}

// cosAt is the cosine of the angle at vertex between a and b.
func cosAt(vertex, a, b qrkit.ResultPoint) float64 {
	ax, ay := a.X-vertex.X, a.Y-vertex.Y
	bx, by := b.X-vertex.X, b.Y-vertex.Y
	la, lb := math.Hypot(ax, ay), math.Hypot(bx, by)
	if la == 0 || lb == 0 {
		return 1
	}
	return (ax*bx + ay*by) / (la * lb)
}

func bestTriple(ps []*FinderPattern) ([3]*FinderPattern, float64) {
	if len(ps) > maxCandidates {
		ps = ps[:maxCandidates]
	}
	var best [3]*FinderPattern
	bestSkew := math.Inf(1)
	for _, t := range triples[len(ps)] {
		cand := [3]*FinderPattern{ps[t[0]], ps[t[1]], ps[t[2]]}
		if s := ComputeSkew(cand); s < bestSkew {
			best, bestSkew = cand, s
		}
	}
	return best, bestSkew
}

// selectBestPatterns picks the three candidates most likely to be the
// finder patterns of one symbol.
func (f *FinderPatternFinder) selectBestPatterns() ([3]*FinderPattern, error) {
	ps := slices.Clone(f.candidates)
	if len(ps) < 3 {
		return [3]*FinderPattern{}, fmt.Errorf("%w: %d finder pattern candidates", qrkit.ErrNotFound, len(ps))
	}

	if len(ps) > 3 {
		total, square := 0.0, 0.0
		for _, p := range ps {
			total += p.EstimatedModuleSize
			square += p.EstimatedModuleSize * p.EstimatedModuleSize
		}
		n := float64(len(ps))
		mean := total / n
		stdDev := math.Sqrt(max(square/n-mean*mean, 0))
		// furthest from the mean first
		slices.SortStableFunc(ps, func(a, b *FinderPattern) int {
			da, db := math.Abs(a.EstimatedModuleSize-mean), math.Abs(b.EstimatedModuleSize-mean)
			switch {
			case da > db:
				return -1
			case da < db:
				return 1
			}
			return 0
		})
		limit := max(0.2*mean, stdDev)
		for len(ps) > 3 && math.Abs(ps[0].EstimatedModuleSize-mean) > limit {
			ps = ps[1:]
		}
	}

	if len(ps) == 3 {
		return [3]*FinderPattern{ps[0], ps[1], ps[2]}, nil
	}

	// most observed first, so the triple search sees the strongest
	slices.SortStableFunc(ps, func(a, b *FinderPattern) int { return b.Count - a.Count })
	best, _ := bestTriple(ps)
	return best, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
