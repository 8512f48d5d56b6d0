package transform

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericlevine/qrkit"
	"github.com/ericlevine/qrkit/bitutil"
)

var approx = cmpopts.EquateApprox(0, 1e-4)

var unitSquare = Quad{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

func TestSquareToQuadrilateral(t *testing.T) {
	q := Quad{{2, 3}, {10, 4}, {16, 15}, {4, 9}}
	pt := SquareToQuadrilateral(q)
	tests := []struct{ in, want Point }{
		{Point{0, 0}, Point{2, 3}},
		{Point{1, 0}, Point{10, 4}},
		{Point{0, 1}, Point{4, 9}},
		{Point{1, 1}, Point{16, 15}},
		{Point{0.5, 0.5}, Point{6.535211, 6.8873234}},
		{Point{1.5, 1.5}, Point{48, 42.42857}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, pt.Apply(tt.in), approx); diff != "" {
			t.Errorf("Apply(%v) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestQuadrilateralToQuadrilateral(t *testing.T) {
	src := Quad{{3, 4}, {10, 4}, {16, 15}, {4, 9}}
	dst := Quad{{103, 110}, {300, 120}, {290, 270}, {150, 280}}
	pt := QuadrilateralToQuadrilateral(src, dst)
	for i := range src {
		if diff := cmp.Diff(dst[i], pt.Apply(src[i]), approx); diff != "" {
			t.Errorf("corner %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestAffineCase(t *testing.T) {
	pt := SquareToQuadrilateral(Quad{{1, 1}, {5, 1}, {5, 3}, {1, 3}})
	xs := []float64{0, 1, 0.5}
	ys := []float64{0, 1, 0.5}
	pt.TransformPointsXY(xs, ys)
	assert.InDeltaSlice(t, []float64{1, 5, 3}, xs, 1e-9)
	assert.InDeltaSlice(t, []float64{1, 3, 2}, ys, 1e-9)
}

func TestInverseRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)
	coord := gen.Float64Range(-200, 200)
	jitter := gen.Float64Range(-30, 30)

	properties.Property("quad to square then square to quad restores corners", prop.ForAll(
		func(ox, oy, w, h, j1, j2, j3, j4 float64) bool {
			q := Quad{
				{ox + j1, oy},
				{ox + w, oy + j2},
				{ox + w + j3, oy + h},
				{ox, oy + h + j4},
			}
			round := SquareToQuadrilateral(q).Times(QuadrilateralToSquare(q))
			toSquare := QuadrilateralToSquare(q)
			for i, c := range q {
				if !cmp.Equal(unitSquare[i], toSquare.Apply(c), approx) {
					return false
				}
				if !cmp.Equal(c, round.Apply(c), cmpopts.EquateApprox(0, 1e-6)) {
					return false
				}
			}
			return true
		},
		coord, coord,
		gen.Float64Range(100, 400), gen.Float64Range(100, 400),
		jitter, jitter, jitter, jitter,
	))

	properties.TestingRun(t)
}

func TestSampleGridTransform(t *testing.T) {
	// 10x10 checkerboard of 3px modules offset by 5px
	img := bitutil.NewBitMatrix(40)
	want := bitutil.NewBitMatrix(10)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if (x+y)%2 == 0 {
				img.SetRegion(5+3*x, 5+3*y, 3, 3)
				want.Set(x, y)
			}
		}
	}
	dst := Quad{{5, 5}, {35, 5}, {35, 35}, {5, 35}}
	src := Quad{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	got, err := DefaultGridSampler{}.SampleGrid(img, 10, 10, src, dst)
	require.NoError(t, err)
	assert.True(t, want.Equal(got), "sampled:\n%s", got)
}

func TestSampleGridOutsideImage(t *testing.T) {
	img := bitutil.NewBitMatrix(20)
	dst := Quad{{-10, -10}, {40, -10}, {40, 40}, {-10, 40}}
	src := Quad{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	_, err := DefaultGridSampler{}.SampleGrid(img, 10, 10, src, dst)
	assert.ErrorIs(t, err, qrkit.ErrNotFound)

	_, err = DefaultGridSampler{}.SampleGridTransform(img, 0, 10, SquareToQuadrilateral(unitSquare))
	assert.ErrorIs(t, err, qrkit.ErrNotFound)
}

func TestCheckAndNudgePoints(t *testing.T) {
	img := bitutil.NewBitMatrix(10)
	pts := []float64{-0.5, 3, 4, 4, 10.2, 9}
	require.NoError(t, CheckAndNudgePoints(img, pts))
	assert.Equal(t, []float64{-0.5, 3, 4, 4, 9, 9}, pts)

	pts = []float64{-1.5, 3, 4, 4}
	require.NoError(t, CheckAndNudgePoints(img, pts))
	assert.Equal(t, 0.0, pts[0])

	pts = []float64{-2.5, 3}
	assert.ErrorIs(t, CheckAndNudgePoints(img, pts), qrkit.ErrNotFound)
}
