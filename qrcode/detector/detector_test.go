package detector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericlevine/qrkit"
	"github.com/ericlevine/qrkit/bitutil"
	"github.com/ericlevine/qrkit/qrcode/decoder"
	"github.com/ericlevine/qrkit/qrcode/encoder"
)

// render draws m with a margin of quiet modules, each module scale pixels.
func render(m *bitutil.BitMatrix, scale, margin int) *bitutil.BitMatrix {
	size := (m.Width() + 2*margin) * scale
	out := bitutil.NewBitMatrix(size)
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if m.Get(x, y) {
				out.SetRegion((x+margin)*scale, (y+margin)*scale, scale, scale)
			}
		}
	}
	return out
}

func symbol(t *testing.T, content string, version int) *bitutil.BitMatrix {
	t.Helper()
	qr, err := encoder.Encode(content, decoder.ECLevelM, &encoder.Hints{Version: version})
	require.NoError(t, err)
	return qr.Matrix.ToBitMatrix()
}

func fp(x, y float64, count int) *FinderPattern {
	return &FinderPattern{X: x, Y: y, EstimatedModuleSize: 1, Count: count}
}

func TestComputeSkew(t *testing.T) {
	right := [3]*FinderPattern{fp(0, 0, 1), fp(10, 0, 1), fp(0, 10, 1)}
	assert.InDelta(t, 0, ComputeSkew(right), 1e-9)

	// order does not matter
	assert.InDelta(t, 0, ComputeSkew([3]*FinderPattern{right[2], right[0], right[1]}), 1e-9)

	flat := [3]*FinderPattern{fp(0, 0, 1), fp(10, 0, 1), fp(20, 1, 1)}
	assert.Greater(t, ComputeSkew(flat), 1.0)
}

func TestHaveMultiplyConfirmedCenters(t *testing.T) {
	f := &FinderPatternFinder{candidates: []*FinderPattern{fp(10, 10, 1), fp(40, 10, 1), fp(10, 40, 1)}}
	assert.False(t, f.haveMultiplyConfirmedCenters())

	for _, p := range f.candidates {
		p.Count = CenterQuorum
	}
	assert.True(t, f.haveMultiplyConfirmedCenters())

	f.candidates[2].EstimatedModuleSize = 1.5
	assert.False(t, f.haveMultiplyConfirmedCenters(), "module sizes disagree")

	f.candidates[2].EstimatedModuleSize = 1
	f.candidates[2].X = 60
	assert.False(t, f.haveMultiplyConfirmedCenters(), "not a right angle")
}

func TestSelectBestPatternsDropsOutliers(t *testing.T) {
	f := &FinderPatternFinder{candidates: []*FinderPattern{
		fp(10, 10, 3), fp(40, 10, 3),
		{X: 25, Y: 25, EstimatedModuleSize: 3, Count: 1},
		fp(10, 40, 3),
	}}
	best, err := f.selectBestPatterns()
	require.NoError(t, err)
	assert.ElementsMatch(t, []*FinderPattern{f.candidates[0], f.candidates[1], f.candidates[3]}, best[:])
}

func TestSelectBestPatternsPrefersRightTriangle(t *testing.T) {
	f := &FinderPatternFinder{candidates: []*FinderPattern{
		fp(10, 10, 2), fp(40, 10, 2), fp(70, 12, 2), fp(10, 40, 2),
	}}
	best, err := f.selectBestPatterns()
	require.NoError(t, err)
	assert.ElementsMatch(t, []*FinderPattern{f.candidates[0], f.candidates[1], f.candidates[3]}, best[:])
}

func TestSelectBestPatternsTooFew(t *testing.T) {
	f := &FinderPatternFinder{candidates: []*FinderPattern{fp(10, 10, 2), fp(40, 10, 2)}}
	_, err := f.selectBestPatterns()
	assert.ErrorIs(t, err, qrkit.ErrNotFound)
}

func TestTriples(t *testing.T) {
	assert.Len(t, triples[3], 1)
	assert.Len(t, triples[4], 4)
	assert.Len(t, triples[6], 20)
}

func TestFinderPatternEstimates(t *testing.T) {
	p := &FinderPattern{X: 10, Y: 20, EstimatedModuleSize: 2, Count: 1}
	assert.True(t, p.AboutEquals(2, 21, 11))
	assert.False(t, p.AboutEquals(2, 25, 10))

	q := p.CombineEstimate(22, 12, 4)
	assert.Equal(t, &FinderPattern{X: 11, Y: 21, EstimatedModuleSize: 3, Count: 2}, q)
}

func TestComputeDimension(t *testing.T) {
	tl, tr, bl := fp(0, 0, 1), fp(14, 0, 1), fp(0, 14, 1)
	dim, err := computeDimension(tl, tr, bl, 1)
	require.NoError(t, err)
	assert.Equal(t, 21, dim)

	// 20 rounds up to 21 and 22 down to 21
	tr.X, bl.Y = 13, 13
	dim, err = computeDimension(tl, tr, bl, 1)
	require.NoError(t, err)
	assert.Equal(t, 21, dim)
	tr.X, bl.Y = 15, 15
	dim, err = computeDimension(tl, tr, bl, 1)
	require.NoError(t, err)
	assert.Equal(t, 21, dim)

	tr.X, bl.Y = 16, 16
	_, err = computeDimension(tl, tr, bl, 1)
	assert.ErrorIs(t, err, qrkit.ErrNotFound)
}

func TestDetectVersion1(t *testing.T) {
	bits := symbol(t, "HELLO", 1)
	image := render(bits, 4, 4)

	var seen []qrkit.ResultPoint
	res, err := NewDetector(image).Detect(&qrkit.DecodeOptions{
		PointCallback: func(p qrkit.ResultPoint) { seen = append(seen, p) },
	})
	require.NoError(t, err)
	assert.True(t, bits.Equal(res.Bits))

	require.Len(t, res.Points, 3)
	want := []qrkit.ResultPoint{{X: 30, Y: 86}, {X: 30, Y: 30}, {X: 86, Y: 30}}
	for i, p := range res.Points {
		assert.InDelta(t, want[i].X, p.X, 1, "point %d", i)
		assert.InDelta(t, want[i].Y, p.Y, 1, "point %d", i)
	}
	assert.GreaterOrEqual(t, len(seen), 3)
}

func TestDetectWithAlignment(t *testing.T) {
	bits := symbol(t, "alignment pattern", 7)
	image := render(bits, 3, 4)

	res, err := NewDetector(image).Detect(&qrkit.DecodeOptions{TryHarder: true})
	require.NoError(t, err)
	require.Len(t, res.Points, 4)
	// bottom-right alignment centre is module 38
	centre := (4 + 38.5) * 3
	assert.InDelta(t, centre, res.Points[3].X, 1.5)
	assert.InDelta(t, centre, res.Points[3].Y, 1.5)
	assert.True(t, bits.Equal(res.Bits))
}

func TestDetectPure(t *testing.T) {
	bits := symbol(t, "PURE", 2)
	res, err := NewDetector(render(bits, 2, 1)).Detect(&qrkit.DecodeOptions{PureBarcode: true})
	require.NoError(t, err)
	assert.True(t, bits.Equal(res.Bits))
}

func TestDetectEmptyImage(t *testing.T) {
	_, err := NewDetector(bitutil.NewBitMatrix(120)).Detect(nil)
	assert.ErrorIs(t, err, qrkit.ErrNotFound)
}

func TestProcessFinderPatternInfoWithoutRuns(t *testing.T) {
	// no black-white-black run exists on a blank image, so the module size
	// is NaN and must be rejected before the dimension is computed
	d := NewDetector(bitutil.NewBitMatrix(60))
	assert.True(t, math.IsNaN(d.calculateModuleSize(fp(10, 10, 3), fp(50, 10, 3), fp(10, 50, 3))))

	_, err := d.ProcessFinderPatternInfo(&FinderPatternInfo{
		BottomLeft: fp(10, 50, 3),
		TopLeft:    fp(10, 10, 3),
		TopRight:   fp(50, 10, 3),
	})
	assert.ErrorIs(t, err, qrkit.ErrNotFound)
}

func TestAlignmentPatternFinder(t *testing.T) {
	// a 5x5 alignment pattern of 3px modules at (30,30)
	image := bitutil.NewBitMatrix(60)
	image.SetRegion(30, 30, 15, 15)
	for y := 33; y < 42; y++ {
		for x := 33; x < 42; x++ {
			image.Unset(x, y)
		}
	}
	image.SetRegion(36, 36, 3, 3)

	var seen int
	f := NewAlignmentPatternFinder(image, 20, 20, 35, 35, 3, func(qrkit.ResultPoint) { seen++ })
	p, err := f.Find()
	require.NoError(t, err)
	assert.InDelta(t, 37.5, p.X, 0.6)
	assert.InDelta(t, 37.5, p.Y, 0.6)
	assert.Equal(t, 1, seen)

	_, err = NewAlignmentPatternFinder(bitutil.NewBitMatrix(60), 0, 0, 59, 59, 3, nil).Find()
	assert.ErrorIs(t, err, qrkit.ErrNotFound)
}

func TestRunBothWays(t *testing.T) {
	bits := symbol(t, "RUN", 1)
	d := NewDetector(render(bits, 5, 4))
	// across the top-left finder pattern from its centre
	size := d.runBothWays(37, 37, 100, 37)
	assert.False(t, math.IsNaN(size))
	assert.InDelta(t, 35, size, 2)
}
