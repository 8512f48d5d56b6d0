package decoder

import (
	"fmt"
	"math/bits"

	"github.com/ericlevine/qrkit"
	"github.com/ericlevine/qrkit/bitutil"
)

// ECB is a run of Count blocks that each carry DataCodewords data bytes.
type ECB struct {
	Count         int
	DataCodewords int
}

// ECBlocks describes how one EC level splits a symbol into RS blocks.
// Every block carries the same number of EC codewords.
type ECBlocks struct {
	ECCodewordsPerBlock int
	Blocks              []ECB
}

func (e *ECBlocks) NumBlocks() int {
	n := 0
	for _, b := range e.Blocks {
		n += b.Count
	}
	return n
}

func (e *ECBlocks) TotalECCodewords() int {
	return e.ECCodewordsPerBlock * e.NumBlocks()
}

// Version is one of the 40 QR symbol sizes.
type Version struct {
	Number           int
	AlignmentCenters []int
	ecBlocks         [4]ECBlocks
	totalCodewords   int
}

// Dimension is the side length in modules.
func (v *Version) Dimension() int { return DimensionForVersion(v.Number) }

// DimensionForVersion returns 17 + 4*number.
func DimensionForVersion(number int) int { return 17 + 4*number }

// TotalCodewords counts data and EC codewords together.
func (v *Version) TotalCodewords() int { return v.totalCodewords }

func (v *Version) ECBlocksForLevel(l ErrorCorrectionLevel) *ECBlocks {
	return &v.ecBlocks[l]
}

// DataCapacity is the number of data codewords at level l.
func (v *Version) DataCapacity(l ErrorCorrectionLevel) int {
	return v.totalCodewords - v.ecBlocks[l].TotalECCodewords()
}

func (v *Version) String() string { return fmt.Sprint(v.Number) }

// BuildFunctionPattern marks every module that does not carry data:
// finder patterns with their separators and format areas, alignment
// patterns, timing patterns and, from version 7, the version blocks.
func (v *Version) BuildFunctionPattern() *bitutil.BitMatrix {
	dim := v.Dimension()
	m := bitutil.NewBitMatrix(dim)

	m.SetRegion(0, 0, 9, 9)
	m.SetRegion(dim-8, 0, 8, 9)
	m.SetRegion(0, dim-8, 9, 8)

	last := len(v.AlignmentCenters) - 1
	for i, cy := range v.AlignmentCenters {
		for j, cx := range v.AlignmentCenters {
			// the three corners already hold finder patterns
			if (i == 0 && (j == 0 || j == last)) || (i == last && j == 0) {
				continue
			}
			m.SetRegion(cx-2, cy-2, 5, 5)
		}
	}

	m.SetRegion(6, 9, 1, dim-17)
	m.SetRegion(9, 6, dim-17, 1)

	if v.Number > 6 {
		m.SetRegion(dim-11, 0, 3, 6)
		m.SetRegion(0, dim-11, 6, 3)
	}
	return m
}

// VersionForNumber returns version 1 through 40.
func VersionForNumber(n int) (*Version, error) {
	if n < 1 || n > len(versions) {
		return nil, fmt.Errorf("%w: no version %d", qrkit.ErrFormat, n)
	}
	return versions[n-1], nil
}

// ProvisionalVersionForDimension derives the version from the side length.
func ProvisionalVersionForDimension(dim int) (*Version, error) {
	if dim%4 != 1 {
		return nil, fmt.Errorf("%w: dimension %d is not 1 mod 4", qrkit.ErrFormat, dim)
	}
	return VersionForNumber((dim - 17) / 4)
}

// versionBits holds the 18-bit version words for versions 7 to 40: six
// data bits followed by a BCH(18,6) remainder.
var versionBits = [...]int{
	0x07C94, 0x085BC, 0x09A99, 0x0A4D3, 0x0BBF6, 0x0C762, 0x0D847,
	0x0E60D, 0x0F928, 0x10B78, 0x1145D, 0x12A17, 0x13532, 0x149A6,
	0x15683, 0x168C9, 0x177EC, 0x18EC4, 0x191E1, 0x1AFAB, 0x1B08E,
	0x1CC1A, 0x1D33F, 0x1ED75, 0x1F250, 0x209D5, 0x216F0, 0x228BA,
	0x2379F, 0x24B0B, 0x2542E, 0x26A64, 0x27541, 0x28C69,
}

// DecodeVersionInformation returns the version whose version word is
// within three bits of word, or nil.
func DecodeVersionInformation(word int) *Version {
	best, bestDist := -1, 4
	for i, target := range versionBits {
		d := bits.OnesCount32(uint32(word ^ target))
		if d < bestDist {
			best, bestDist = i, d
		}
		if d == 0 {
			break
		}
	}
	if best < 0 {
		return nil
	}
	return versions[best+6]
}

// ecSpec lists EC codewords per block followed by up to two
// (block count, data codewords) pairs.
type ecSpec []int

var versions = func() []*Version {
	out := make([]*Version, len(versionTable))
	for i, row := range versionTable {
		v := &Version{Number: i + 1, AlignmentCenters: row.align}
		for l, spec := range row.levels {
			eb := ECBlocks{ECCodewordsPerBlock: spec[0]}
			for k := 1; k+1 < len(spec); k += 2 {
				eb.Blocks = append(eb.Blocks, ECB{Count: spec[k], DataCodewords: spec[k+1]})
			}
			v.ecBlocks[l] = eb
		}
		l := &v.ecBlocks[0]
		for _, b := range l.Blocks {
			v.totalCodewords += b.Count * (b.DataCodewords + l.ECCodewordsPerBlock)
		}
		out[i] = v
	}
	return out
}()

// versionTable is indexed by version-1; levels are ordered L, M, Q, H.
var versionTable = [40]struct {
	align  []int
	levels [4]ecSpec
}{
	{nil, [4]ecSpec{{7, 1, 19}, {10, 1, 16}, {13, 1, 13}, {17, 1, 9}}},
	{[]int{6, 18}, [4]ecSpec{{10, 1, 34}, {16, 1, 28}, {22, 1, 22}, {28, 1, 16}}},
	{[]int{6, 22}, [4]ecSpec{{15, 1, 55}, {26, 1, 44}, {18, 2, 17}, {22, 2, 13}}},
	{[]int{6, 26}, [4]ecSpec{{20, 1, 80}, {18, 2, 32}, {26, 2, 24}, {16, 4, 9}}},
	{[]int{6, 30}, [4]ecSpec{{26, 1, 108}, {24, 2, 43}, {18, 2, 15, 2, 16}, {22, 2, 11, 2, 12}}},
	{[]int{6, 34}, [4]ecSpec{{18, 2, 68}, {16, 4, 27}, {24, 4, 19}, {28, 4, 15}}},
	{[]int{6, 22, 38}, [4]ecSpec{{20, 2, 78}, {18, 4, 31}, {18, 2, 14, 4, 15}, {26, 4, 13, 1, 14}}},
	{[]int{6, 24, 42}, [4]ecSpec{{24, 2, 97}, {22, 2, 38, 2, 39}, {22, 4, 18, 2, 19}, {26, 4, 14, 2, 15}}},
	{[]int{6, 26, 46}, [4]ecSpec{{30, 2, 116}, {22, 3, 36, 2, 37}, {20, 4, 16, 4, 17}, {24, 4, 12, 4, 13}}},
	{[]int{6, 28, 50}, [4]ecSpec{{18, 2, 68, 2, 69}, {26, 4, 43, 1, 44}, {24, 6, 19, 2, 20}, {28, 6, 15, 2, 16}}},
	{[]int{6, 30, 54}, [4]ecSpec{{20, 4, 81}, {30, 1, 50, 4, 51}, {28, 4, 22, 4, 23}, {24, 3, 12, 8, 13}}},
	{[]int{6, 32, 58}, [4]ecSpec{{24, 2, 92, 2, 93}, {22, 6, 36, 2, 37}, {26, 4, 20, 6, 21}, {28, 7, 14, 4, 15}}},
	{[]int{6, 34, 62}, [4]ecSpec{{26, 4, 107}, {22, 8, 37, 1, 38}, {24, 8, 20, 4, 21}, {22, 12, 11, 4, 12}}},
	{[]int{6, 26, 46, 66}, [4]ecSpec{{30, 3, 115, 1, 116}, {24, 4, 40, 5, 41}, {20, 11, 16, 5, 17}, {24, 11, 12, 5, 13}}},
	{[]int{6, 26, 48, 70}, [4]ecSpec{{22, 5, 87, 1, 88}, {24, 5, 41, 5, 42}, {30, 5, 24, 7, 25}, {24, 11, 12, 7, 13}}},
	{[]int{6, 26, 50, 74}, [4]ecSpec{{24, 5, 98, 1, 99}, {28, 7, 45, 3, 46}, {24, 15, 19, 2, 20}, {30, 3, 15, 13, 16}}},
	{[]int{6, 30, 54, 78}, [4]ecSpec{{28, 1, 107, 5, 108}, {28, 10, 46, 1, 47}, {28, 1, 22, 15, 23}, {28, 2, 14, 17, 15}}},
	{[]int{6, 30, 56, 82}, [4]ecSpec{{30, 5, 120, 1, 121}, {26, 9, 43, 4, 44}, {28, 17, 22, 1, 23}, {28, 2, 14, 19, 15}}},
	{[]int{6, 30, 58, 86}, [4]ecSpec{{28, 3, 113, 4, 114}, {26, 3, 44, 11, 45}, {26, 17, 21, 4, 22}, {26, 9, 13, 16, 14}}},
	{[]int{6, 34, 62, 90}, [4]ecSpec{{28, 3, 107, 5, 108}, {26, 3, 41, 13, 42}, {30, 15, 24, 5, 25}, {28, 15, 15, 10, 16}}},
	{[]int{6, 28, 50, 72, 94}, [4]ecSpec{{28, 4, 116, 4, 117}, {26, 17, 42}, {28, 17, 22, 6, 23}, {30, 19, 16, 6, 17}}},
	{[]int{6, 26, 50, 74, 98}, [4]ecSpec{{28, 2, 111, 7, 112}, {28, 17, 46}, {30, 7, 24, 16, 25}, {24, 34, 13}}},
	{[]int{6, 30, 54, 78, 102}, [4]ecSpec{{30, 4, 121, 5, 122}, {28, 4, 47, 14, 48}, {30, 11, 24, 14, 25}, {30, 16, 15, 14, 16}}},
	{[]int{6, 28, 54, 80, 106}, [4]ecSpec{{30, 6, 117, 4, 118}, {28, 6, 45, 14, 46}, {30, 11, 24, 16, 25}, {30, 30, 16, 2, 17}}},
	{[]int{6, 32, 58, 84, 110}, [4]ecSpec{{26, 8, 106, 4, 107}, {28, 8, 47, 13, 48}, {30, 7, 24, 22, 25}, {30, 22, 15, 13, 16}}},
	{[]int{6, 30, 58, 86, 114}, [4]ecSpec{{28, 10, 114, 2, 115}, {28, 19, 46, 4, 47}, {28, 28, 22, 6, 23}, {30, 33, 16, 4, 17}}},
	{[]int{6, 34, 62, 90, 118}, [4]ecSpec{{30, 8, 122, 4, 123}, {28, 22, 45, 3, 46}, {30, 8, 23, 26, 24}, {30, 12, 15, 28, 16}}},
	{[]int{6, 26, 50, 74, 98, 122}, [4]ecSpec{{30, 3, 117, 10, 118}, {28, 3, 45, 23, 46}, {30, 4, 24, 31, 25}, {30, 11, 15, 31, 16}}},
	{[]int{6, 30, 54, 78, 102, 126}, [4]ecSpec{{30, 7, 116, 7, 117}, {28, 21, 45, 7, 46}, {30, 1, 23, 37, 24}, {30, 19, 15, 26, 16}}},
	{[]int{6, 26, 52, 78, 104, 130}, [4]ecSpec{{30, 5, 115, 10, 116}, {28, 19, 47, 10, 48}, {30, 15, 24, 25, 25}, {30, 23, 15, 25, 16}}},
	{[]int{6, 30, 56, 82, 108, 134}, [4]ecSpec{{30, 13, 115, 3, 116}, {28, 2, 46, 29, 47}, {30, 42, 24, 1, 25}, {30, 23, 15, 28, 16}}},
	{[]int{6, 34, 60, 86, 112, 138}, [4]ecSpec{{30, 17, 115}, {28, 10, 46, 23, 47}, {30, 10, 24, 35, 25}, {30, 19, 15, 35, 16}}},
	{[]int{6, 30, 58, 86, 114, 142}, [4]ecSpec{{30, 17, 115, 1, 116}, {28, 14, 46, 21, 47}, {30, 29, 24, 19, 25}, {30, 11, 15, 46, 16}}},
	{[]int{6, 34, 62, 90, 118, 146}, [4]ecSpec{{30, 13, 115, 6, 116}, {28, 14, 46, 23, 47}, {30, 44, 24, 7, 25}, {30, 59, 16, 1, 17}}},
	{[]int{6, 30, 54, 78, 102, 126, 150}, [4]ecSpec{{30, 12, 121, 7, 122}, {28, 12, 47, 26, 48}, {30, 39, 24, 14, 25}, {30, 22, 15, 41, 16}}},
	{[]int{6, 24, 50, 76, 102, 128, 154}, [4]ecSpec{{30, 6, 121, 14, 122}, {28, 6, 47, 34, 48}, {30, 46, 24, 10, 25}, {30, 2, 15, 64, 16}}},
	{[]int{6, 28, 54, 80, 106, 132, 158}, [4]ecSpec{{30, 17, 122, 4, 123}, {28, 29, 46, 14, 47}, {30, 49, 24, 10, 25}, {30, 24, 15, 46, 16}}},
	{[]int{6, 32, 58, 84, 110, 136, 162}, [4]ecSpec{{30, 4, 122, 18, 123}, {28, 13, 46, 32, 47}, {30, 48, 24, 14, 25}, {30, 42, 15, 32, 16}}},
	{[]int{6, 26, 54, 82, 110, 138, 166}, [4]ecSpec{{30, 20, 117, 4, 118}, {28, 40, 47, 7, 48}, {30, 43, 24, 22, 25}, {30, 10, 15, 67, 16}}},
	{[]int{6, 30, 58, 86, 114, 142, 170}, [4]ecSpec{{30, 19, 118, 6, 119}, {28, 18, 47, 31, 48}, {30, 34, 24, 34, 25}, {30, 20, 15, 61, 16}}},
}
