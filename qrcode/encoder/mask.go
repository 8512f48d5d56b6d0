package encoder

// Penalty weights from ISO/IEC 18004:2015 section 7.8.3.1.
const (
	penaltyN1 = 3
	penaltyN2 = 3
	penaltyN3 = 40
	penaltyN4 = 10
)

// maskPenalty scores a finished matrix; lower is better.
func maskPenalty(m *ByteMatrix) int {
	return penaltyRule1(m) + penaltyRule2(m) + penaltyRule3(m) + penaltyRule4(m)
}

// penaltyRule1 charges runs of five or more same-coloured modules in a row
// or column: N1 plus one per module beyond five.
func penaltyRule1(m *ByteMatrix) int {
	return runPenalty(m, false) + runPenalty(m, true)
}

func runPenalty(m *ByteMatrix, vertical bool) int {
	outer, inner := m.Height(), m.Width()
	if vertical {
		outer, inner = inner, outer
	}
	at := func(i, j int) int8 {
		if vertical {
			return m.Get(i, j)
		}
		return m.Get(j, i)
	}
	penalty := 0
	charge := func(run int) {
		if run >= 5 {
			penalty += penaltyN1 + run - 5
		}
	}
	for i := 0; i < outer; i++ {
		run := 0
		var prev int8 = empty
		for j := 0; j < inner; j++ {
			if v := at(i, j); v == prev {
				run++
			} else {
				charge(run)
				run, prev = 1, v
			}
		}
		charge(run)
	}
	return penalty
}

// penaltyRule2 charges N2 for every 2x2 block of one colour. Overlapping
// blocks are counted separately.
func penaltyRule2(m *ByteMatrix) int {
	penalty := 0
	for y := 0; y+1 < m.Height(); y++ {
		row, below := m.Row(y), m.Row(y+1)
		for x := 0; x+1 < m.Width(); x++ {
			v := row[x]
			if v == row[x+1] && v == below[x] && v == below[x+1] {
				penalty += penaltyN2
			}
		}
	}
	return penalty
}

// finderLike is the 1:1:3:1:1 dark-light ratio of a finder pattern.
var finderLike = [7]int8{1, 0, 1, 1, 1, 0, 1}

// penaltyRule3 charges N3 for each finder-like run that has four light
// modules on either side. The area outside the matrix counts as light.
func penaltyRule3(m *ByteMatrix) int {
	w, h := m.Width(), m.Height()
	light := func(at func(int) int8, from, to, limit int) bool {
		from, to = max(from, 0), min(to, limit)
		for i := from; i < to; i++ {
			if at(i) == 1 {
				return false
			}
		}
		return true
	}
	matches := func(at func(int) int8, start int) bool {
		for k, want := range finderLike {
			if at(start+k) != want {
				return false
			}
		}
		return true
	}

	n := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			row := func(i int) int8 { return m.Get(i, y) }
			if x+6 < w && matches(row, x) && (light(row, x-4, x, w) || light(row, x+7, x+11, w)) {
				n++
			}
			col := func(i int) int8 { return m.Get(x, i) }
			if y+6 < h && matches(col, y) && (light(col, y-4, y, h) || light(col, y+7, y+11, h)) {
				n++
			}
		}
	}
	return n * penaltyN3
}

// penaltyRule4 charges N4 for every full 5% the dark share strays from 50%.
func penaltyRule4(m *ByteMatrix) int {
	dark := 0
	for _, v := range m.cells {
		if v == 1 {
			dark++
		}
	}
	total := len(m.cells)
	return abs(2*dark-total) * 10 / total * penaltyN4
}
