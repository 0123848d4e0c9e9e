// Package unchanged implements spec.md §4.4: for an incremental call, find
// the slices in a prior lattice that no newly added row satisfies, level by
// level — the ingredient that lets §4.5 step 4 prune without re-evaluating.
//
package unchanged

import (
	"github.com/yourbasic/bit"

	"gitlab.grandhoo.com/rock/slicelattice/internal/lattice"
	"gitlab.grandhoo.com/rock/slicelattice/internal/onehot"
)

// Lists is unchangedS/unchangedR from §4.4: per level (1-indexed, entry 0 is
// level 2, since level-1 unchanged slices are never queried by the pair
// generator), the unchanged slice rows and their prior four-column stats.
type Lists struct {
	Slices [][]lattice.Slice
	Rows   [][]lattice.StatRow
}

// Detect builds Lists for every level ℓ ≥ 2 of prevLattice. A slice is
// unchanged when colSums(addedX2 · prevLatAtLevelᵀ == ℓ) == 0, i.e. no added
// row matches it.
func Detect(prevLattice *lattice.Lattice, prevStats *lattice.StatsList, addedX2 onehot.Matrix) Lists {
	var out Lists
	if prevLattice == nil || prevLattice.MaxLevel() < 2 {
		return out
	}

	for level := 2; level <= prevLattice.MaxLevel(); level++ {
		begin, end := prevLattice.LevelBounds(level)
		var levelSlices []lattice.Slice
		var levelRows []lattice.StatRow
		for idx := begin; idx < end; idx++ {
			slice := prevLattice.Rows[idx]
			touched := false
			for _, row := range addedX2.Rows {
				if slice.Matches(row) {
					touched = true
					break
				}
			}
			if !touched {
				levelSlices = append(levelSlices, slice)
				levelRows = append(levelRows, prevStats.Rows[idx])
			}
		}
		out.Slices = append(out.Slices, levelSlices)
		out.Rows = append(out.Rows, levelRows)
	}
	return out
}

// DifferingFeatures reports which feature groups two slices of the same
// level disagree on, using the teacher's own bit-diff helper
// (utils.FindDifferBits) idiom over github.com/yourbasic/bit. It is a
// standalone diagnostic helper: neither engine.Run nor internal/debugtrace
// calls it, and nothing in the pruning path depends on it.
func DifferingFeatures(a, b lattice.Slice, off onehot.Offsets) *bit.Set {
	diff := bit.New()
	for j := range off.Foffb {
		lo, hi := uint(off.Foffb[j]), uint(off.Foffe[j])
		var av, bv = -1, -1
		for i := lo; i < hi; i++ {
			if a.Bits.Test(i) {
				av = int(i)
			}
			if b.Bits.Test(i) {
				bv = int(i)
			}
		}
		if av != bv {
			diff.Add(j)
		}
	}
	return diff
}
