// Package onehot implements spec.md §4.1: mapping a recoded integer feature
// matrix to a stable one-hot column space using shared feature offsets.
//
// Grounded on the teacher's calculate/calculate_pli.go (which builds a
// per-column inverted index, conceptually the transpose of a one-hot
// encoding) and utils/storage_utils/storage_util.go, which represents row
// membership with github.com/bits-and-blooms/bitset. Here each one-hot row
// IS a bitset.BitSet: at most one bit set per feature out of n2 columns, matching
// the sparsity the design notes (spec.md §9) call for.
package onehot

import (
	"github.com/bits-and-blooms/bitset"

	"gitlab.grandhoo.com/rock/slicelattice/internal/matrixint"
)

// Offsets holds the shared feature-offset vectors foffb/foffe (spec.md §3):
// feature j's one-hot columns are the 0-based half-open range [Foffb[j], Foffe[j]).
type Offsets struct {
	Foffb []int
	Foffe []int
}

// N2 returns the total one-hot width, foffe[last], or 0 for zero features.
func (o Offsets) N2() int {
	if len(o.Foffe) == 0 {
		return 0
	}
	return o.Foffe[len(o.Foffe)-1]
}

// DeriveOffsets computes foffb/foffe from the column-wise maxima of the
// combined matrix (first-run case, §4.1: "derived from per-column maxima of
// the combined matrix rbind(oldX, addedX)").
func DeriveOffsets(colMax []int32) Offsets {
	n := len(colMax)
	foffb := make([]int, n)
	foffe := make([]int, n)
	cum := 0
	for j := 0; j < n; j++ {
		foffb[j] = cum
		cum += int(colMax[j])
		foffe[j] = cum
	}
	return Offsets{Foffb: foffb, Foffe: foffe}
}

// Matrix is a one-hot encoded matrix: one *bitset.BitSet row per dataset row,
// each of width N2.
type Matrix struct {
	Rows []*bitset.BitSet
	N2   uint
}

// Encode produces A_encoded per §4.1: A_encoded[i, foffb[j]+A[i,j]-1] = 1 when
// A[i,j] > 0, else 0. Encoding an empty matrix yields an empty Matrix of the
// correct width.
func Encode(a matrixint.Matrix, off Offsets) Matrix {
	n2 := uint(off.N2())
	rows := make([]*bitset.BitSet, len(a))
	for i, row := range a {
		bs := bitset.New(n2)
		for j, v := range row {
			if v > 0 {
				bs.Set(uint(off.Foffb[j]) + uint(v) - 1)
			}
		}
		rows[i] = bs
	}
	return Matrix{Rows: rows, N2: n2}
}

// ColSums returns, for each one-hot column, the count of rows with a 1 there
// (cCnts in §4.3).
func (m Matrix) ColSums() []int {
	sums := make([]int, m.N2)
	for _, row := range m.Rows {
		for i, e := row.NextSet(0); e; i, e = row.NextSet(i + 1) {
			sums[i]++
		}
	}
	return sums
}

// Project clears every column for which selCols is false, leaving the
// matrix's width (and so every prior offset/lattice alignment) unchanged —
// spec.md §4.8 step 7's selFeat column drop. A nil or short selCols leaves
// the corresponding columns untouched.
func (m Matrix) Project(selCols []bool) Matrix {
	out := Matrix{N2: m.N2, Rows: make([]*bitset.BitSet, len(m.Rows))}
	for i, row := range m.Rows {
		bs := bitset.New(m.N2)
		for c, hasNext := row.NextSet(0); hasNext; c, hasNext = row.NextSet(c + 1) {
			if int(c) >= len(selCols) || selCols[c] {
				bs.Set(c)
			}
		}
		out.Rows[i] = bs
	}
	return out
}
