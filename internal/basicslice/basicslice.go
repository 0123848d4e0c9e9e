// Package basicslice implements spec.md §4.3: building and scoring all
// 1-predicate slices and selecting the columns that survive into later
// levels.
package basicslice

import (
	"github.com/bits-and-blooms/bitset"

	"gitlab.grandhoo.com/rock/slicelattice/internal/lattice"
	"gitlab.grandhoo.com/rock/slicelattice/internal/matrixint"
	"gitlab.grandhoo.com/rock/slicelattice/internal/onehot"
	"gitlab.grandhoo.com/rock/slicelattice/internal/scorer"
)

// ColumnStats is the per-column (count, totalError, maxError) triple computed
// over a one-hot matrix and its aligned error vector.
type ColumnStats struct {
	Counts     []int
	TotalError []float64
	MaxError   []float64
}

// ComputeColumnStats computes cCnts = colSums(X2), err = eᵀX2, merr =
// colMaxs(X2 ⊙ e) in a single pass over the rows.
func ComputeColumnStats(x2 onehot.Matrix, e matrixint.ErrVec) ColumnStats {
	n2 := int(x2.N2)
	cs := ColumnStats{
		Counts:     make([]int, n2),
		TotalError: make([]float64, n2),
		MaxError:   make([]float64, n2),
	}
	for i, row := range x2.Rows {
		ei := e[i]
		for c, hasNext := row.NextSet(0); hasNext; c, hasNext = row.NextSet(c + 1) {
			cs.Counts[c]++
			cs.TotalError[c] += ei
			if ei > cs.MaxError[c] {
				cs.MaxError[c] = ei
			}
		}
	}
	return cs
}

// Inputs bundles everything §4.3 needs to build and select level-1 slices.
type Inputs struct {
	X2      onehot.Matrix
	E       matrixint.ErrVec
	AddedX2 *onehot.Matrix // nil if this is not an incremental call
	PrevTK2 *onehot.Matrix // nil if there is no prior top-k
	EAvg    float64
	EAvgOld float64
	EAvgNew float64
	MinSup  int
	Alpha   float64
	N       int // nrow(X) for scoring
}

// Result is the (S, R, selCols) triple §4.3 returns.
type Result struct {
	Slices  []lattice.Slice
	Rows    []lattice.StatRow
	SelCols []bool
}

// Build implements the base rule (selCols = cCnts ≥ minSup ∧ err > 0) and the
// incremental tightening (§4.3: additionally require touched-by-added-rows
// or present-in-prevTK2, when eAvgOld > eAvgNew ≠ 0 and a previous top-k
// exists).
func Build(in Inputs) Result {
	cs := ComputeColumnStats(in.X2, in.E)
	n2 := int(in.X2.N2)
	selCols := make([]bool, n2)
	for c := 0; c < n2; c++ {
		selCols[c] = cs.Counts[c] >= in.MinSup && cs.TotalError[c] > 0
	}

	tighten := in.EAvgOld > in.EAvgNew && in.EAvgNew != 0 && in.PrevTK2 != nil && len(in.PrevTK2.Rows) > 0
	if tighten {
		addedTouched := make([]bool, n2)
		if in.AddedX2 != nil {
			for _, row := range in.AddedX2.Rows {
				for c, hasNext := row.NextSet(0); hasNext; c, hasNext = row.NextSet(c + 1) {
					addedTouched[c] = true
				}
			}
		}
		inPrevTK := make([]bool, n2)
		for _, row := range in.PrevTK2.Rows {
			for c, hasNext := row.NextSet(0); hasNext; c, hasNext = row.NextSet(c + 1) {
				inPrevTK[c] = true
			}
		}
		for c := 0; c < n2; c++ {
			if selCols[c] && !addedTouched[c] && !inPrevTK[c] {
				selCols[c] = false
			}
		}
	}

	var res Result
	res.SelCols = selCols
	for c := 0; c < n2; c++ {
		if !selCols[c] {
			continue
		}
		bs := bitset.New(uint(n2))
		bs.Set(uint(c))
		stats := scorer.Stats{
			Size:       float64(cs.Counts[c]),
			TotalError: cs.TotalError[c],
			MaxError:   cs.MaxError[c],
		}
		sc := scorer.Score(stats, in.EAvg, in.N, in.Alpha)
		res.Slices = append(res.Slices, lattice.Slice{Bits: bs, Level: 1})
		res.Rows = append(res.Rows, lattice.StatRow{
			Score:      sc,
			TotalError: stats.TotalError,
			MaxError:   stats.MaxError,
			Size:       stats.Size,
		})
	}
	return res
}
