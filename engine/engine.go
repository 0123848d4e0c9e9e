package engine

import (
	"math"

	"gitlab.grandhoo.com/rock/slicelattice/internal/basicslice"
	"gitlab.grandhoo.com/rock/slicelattice/internal/debugtrace"
	"gitlab.grandhoo.com/rock/slicelattice/internal/evaluator"
	"gitlab.grandhoo.com/rock/slicelattice/internal/lattice"
	"gitlab.grandhoo.com/rock/slicelattice/internal/matrixint"
	"gitlab.grandhoo.com/rock/slicelattice/internal/onehot"
	"gitlab.grandhoo.com/rock/slicelattice/internal/pairgen"
	"gitlab.grandhoo.com/rock/slicelattice/internal/rockshare/logger"
	"gitlab.grandhoo.com/rock/slicelattice/internal/sliceerr"
	"gitlab.grandhoo.com/rock/slicelattice/internal/topkmerge"
	"gitlab.grandhoo.com/rock/slicelattice/internal/unchanged"
)

// Input bundles the external interface of spec.md §6: the two input matrices,
// their error vectors, the scalar/bag params, and everything an incremental
// call must carry over from a prior Run.
type Input struct {
	AddedX matrixint.Matrix
	OldX   matrixint.Matrix
	OldE   matrixint.ErrVec
	NewE   matrixint.ErrVec

	Params Params

	// PrevOffsets must be supplied on every incremental call so the one-hot
	// column space stays stable across invocations (§4.1). Nil on a first run.
	PrevOffsets *onehot.Offsets
	PrevLattice *lattice.Lattice
	PrevStats   *lattice.StatsList
	PrevTK      *lattice.TopK
	PrevParams  *Params
}

// Output bundles §6's outputs: the top-k and its stats, the debug matrix, the
// full lattice and its stats, the combined dataset, and the effective params
// (so the caller can persist them for the next incremental call).
type Output struct {
	TK      lattice.TopK
	TKValue [][]int32 // TK decoded back to feature-value form
	D       []debugtrace.DRow
	Lattice lattice.Lattice
	Stats   lattice.StatsList
	Xout    matrixint.Matrix
	EOut    matrixint.ErrVec
	Params  Params
	Offsets onehot.Offsets
}

// Run implements spec.md §4.8: combine inputs, derive or reuse the one-hot
// column space, build and score level-1 slices, then grow the lattice level
// by level via pairgen/evaluator/topkmerge until no candidates survive or
// maxL is reached.
func Run(in Input) (Output, error) {
	if in.PrevLattice != nil && in.PrevLattice.MaxLevel() > 0 && in.PrevParams == nil {
		return Output{}, sliceerr.ErrInconsistentIncremental
	}
	if len(in.OldX) > 0 && len(in.AddedX) > 0 && in.OldX.NCol() != in.AddedX.NCol() {
		return Output{}, sliceerr.ErrDimensionMismatch
	}
	if len(in.NewE) != len(in.AddedX) {
		return Output{}, sliceerr.ErrDimensionMismatch
	}
	if len(in.OldE) != len(in.OldX) {
		return Output{}, sliceerr.ErrDimensionMismatch
	}

	params := in.Params.Merge(in.PrevParams)
	if params.Verbose {
		logger.SetLevel("debug")
	}
	logger.Infof("run start: addedRows=%d oldRows=%d k=%d maxL=%d minSup=%d alpha=%.3f",
		len(in.AddedX), len(in.OldX), params.K, params.MaxL, params.MinSup, params.Alpha)

	newX, err := matrixint.Concat(in.OldX, in.AddedX)
	if err != nil {
		return Output{}, err
	}
	totalE := matrixint.ConcatErr(in.OldE, in.NewE)
	n := newX.NRow()
	eAvg := totalE.Avg()
	eAvgOld := in.OldE.Avg()
	eAvgNew := in.NewE.Avg()

	var off onehot.Offsets
	if in.PrevOffsets != nil {
		off = *in.PrevOffsets
	} else {
		off = onehot.DeriveOffsets(newX.ColMax())
	}

	x2 := onehot.Encode(newX, off)
	addedX2 := onehot.Encode(in.AddedX, off)

	var prevTK2 *onehot.Matrix
	if in.PrevTK != nil && len(in.PrevTK.Slices) > 0 {
		m := onehot.Matrix{N2: uint(off.N2())}
		for _, s := range in.PrevTK.Slices {
			m.Rows = append(m.Rows, s.Bits)
		}
		prevTK2 = &m
	}

	var unchangedLists unchanged.Lists
	if in.PrevLattice != nil {
		unchangedLists = unchanged.Detect(in.PrevLattice, in.PrevStats, addedX2)
	}

	basicResult := basicslice.Build(basicslice.Inputs{
		X2:      x2,
		E:       totalE,
		AddedX2: nonEmptyMatrix(addedX2),
		PrevTK2: prevTK2,
		EAvg:    eAvg,
		EAvgOld: eAvgOld,
		EAvgNew: eAvgNew,
		MinSup:  params.MinSup,
		Alpha:   params.Alpha,
		N:       n,
	})

	if params.SelFeat {
		x2 = x2.Project(basicResult.SelCols)
		addedX2 = addedX2.Project(basicResult.SelCols)
	}

	tk := topkmerge.Merge(lattice.TopK{K: params.K}, basicResult.Slices, basicResult.Rows, params.MinSup)

	minsc := math.Inf(-1)
	if in.PrevTK != nil && len(in.PrevTK.Slices) > 0 {
		prevEvaluated := evaluator.Evaluate(in.PrevTK.Slices, x2, totalE, evalParams(params, n, eAvg))
		for _, r := range prevEvaluated {
			if minsc == math.Inf(-1) || r.Score < minsc {
				minsc = r.Score
			}
		}
	}

	lat := &lattice.Lattice{}
	stats := &lattice.StatsList{}
	lat.AppendLevel(basicResult.Slices)
	stats.Rows = append(stats.Rows, basicResult.Rows...)

	var d []debugtrace.DRow
	d = append(d, debugtrace.DRow{
		Level:      1,
		Enumerated: len(basicResult.Slices),
		Valid:      len(basicResult.Slices),
		TkMax:      tkMax(tk),
		TkMin:      tkMin(tk),
	})

	maxLevel := params.MaxL
	if maxLevel <= 0 || maxLevel > n {
		maxLevel = n
	}

	parents := basicResult.Slices
	parentStats := basicResult.Rows

	var edges []debugtrace.Edge
	for level := 2; level <= maxLevel; level++ {
		if len(parents) == 0 {
			break
		}
		var uSlices []lattice.Slice
		var uRows []lattice.StatRow
		if idx := level - 2; idx < len(unchangedLists.Slices) {
			uSlices, uRows = unchangedLists.Slices[idx], unchangedLists.Rows[idx]
		}

		gen := pairgen.Generate(level, parents, parentStats, minsc, tk.MinScore(), uSlices, uRows, off, pairgen.Params{
			K: params.K, EAvg: eAvg, MinSup: params.MinSup, Alpha: params.Alpha, N: n,
		})
		minsc = gen.Minsc

		if len(gen.Candidates) == 0 {
			d = append(d, debugtrace.DRow{Level: level, Enumerated: gen.Enumerated, Valid: 0, TkMax: tkMax(tk), TkMin: tkMin(tk)})
			logger.Debugf("level %d: no surviving candidates, stopping", level)
			break
		}

		evalRows := evaluator.Evaluate(gen.Candidates, x2, totalE, evalParams(params, n, eAvg))
		tk = topkmerge.Merge(tk, gen.Candidates, evalRows, params.MinSup)
		lat.AppendLevel(gen.Candidates)
		stats.Rows = append(stats.Rows, evalRows...)
		edges = append(edges, gen.Edges...)

		d = append(d, debugtrace.DRow{
			Level:      level,
			Enumerated: gen.Enumerated,
			Valid:      gen.Valid,
			TkMax:      tkMax(tk),
			TkMin:      tkMin(tk),
		})

		parents = gen.Candidates
		parentStats = evalRows
	}

	if params.Verbose {
		logger.Debugf("debug matrix:\n%s", debugtrace.RenderD(d))
		if dot, err := debugtrace.ExportGraphviz(edges); err != nil {
			logger.Errorf("graphviz export failed: %v", err)
		} else {
			logger.Debugf("lattice graph:\n%s", dot)
		}
	}

	tkValue := make([][]int32, len(tk.Slices))
	for i, s := range tk.Slices {
		tkValue[i] = decodeSlice(s, off)
	}

	return Output{
		TK:      tk,
		TKValue: tkValue,
		D:       d,
		Lattice: *lat,
		Stats:   *stats,
		Xout:    newX,
		EOut:    totalE,
		Params:  params,
		Offsets: off,
	}, nil
}

func evalParams(p Params, n int, eAvg float64) evaluator.Params {
	mode := evaluator.DataParallel
	if p.TpEval {
		mode = evaluator.TaskParallel
	}
	return evaluator.Params{EAvg: eAvg, Alpha: p.Alpha, N: n, MinSup: p.MinSup, Mode: mode, TpBlksz: p.TpBlksz}
}

func nonEmptyMatrix(m onehot.Matrix) *onehot.Matrix {
	if len(m.Rows) == 0 {
		return nil
	}
	return &m
}

func tkMax(tk lattice.TopK) float64 {
	if len(tk.Rows) == 0 {
		return math.Inf(-1)
	}
	return tk.Rows[0].Score
}

func tkMin(tk lattice.TopK) float64 {
	if len(tk.Rows) == 0 {
		return math.Inf(-1)
	}
	return tk.Rows[len(tk.Rows)-1].Score
}

// decodeSlice maps a one-hot bitset back to feature-value form: out[j] is the
// 1-based category chosen for feature j, or 0 if the slice does not
// constrain it (the inverse of onehot.Encode).
func decodeSlice(s lattice.Slice, off onehot.Offsets) []int32 {
	out := make([]int32, len(off.Foffb))
	for j := range off.Foffb {
		lo, hi := off.Foffb[j], off.Foffe[j]
		for c := lo; c < hi; c++ {
			if s.Bits.Test(uint(c)) {
				out[j] = int32(c - lo + 1)
				break
			}
		}
	}
	return out
}
