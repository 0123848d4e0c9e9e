// Package evaluator implements spec.md §4.6: computing exact (size,
// totalError, maxError, score) for every candidate slice over the full
// current one-hot matrix, in either data-parallel or task-parallel mode.
//
// Task-parallel block evaluation is built on github.com/zeromicro/go-zero's
// core/mr (the teacher's go.mod already carries go-zero, exercised there via
// core/hash in trees/inc_rds_build_trees.go — this wires the sibling mr
// subpackage, go-zero's own fan-out/fan-in primitive, for the disjoint
// per-block workers spec.md §5 describes: no locks, no shared writes).
// Per-candidate row membership is a github.com/RoaringBitmap/roaring bitmap,
// per spec.md §9's sparsity guidance.
package evaluator

import (
	"strconv"

	"github.com/RoaringBitmap/roaring"
	cmap "github.com/orcaman/concurrent-map"
	"github.com/zeromicro/go-zero/core/mr"

	"gitlab.grandhoo.com/rock/slicelattice/internal/lattice"
	"gitlab.grandhoo.com/rock/slicelattice/internal/matrixint"
	"gitlab.grandhoo.com/rock/slicelattice/internal/onehot"
	"gitlab.grandhoo.com/rock/slicelattice/internal/scorer"
)

// Mode selects data-parallel vs task-parallel evaluation (tpEval in §6).
type Mode int

const (
	DataParallel Mode = iota
	TaskParallel
)

// Params bundles the scoring parameters the evaluator needs to finish each
// candidate's StatRow.
type Params struct {
	EAvg    float64
	Alpha   float64
	N       int
	MinSup  int
	Mode    Mode
	TpBlksz int // default 16, per §6
}

// Evaluate computes size/totalError/maxError/score for every candidate slice
// over x2/e. Both modes must produce identical stats (modulo floating-point
// associativity within a single block, per §4.6/§5).
func Evaluate(candidates []lattice.Slice, x2 onehot.Matrix, e matrixint.ErrVec, p Params) []lattice.StatRow {
	if len(candidates) == 0 {
		return nil
	}
	if p.Mode == DataParallel || len(candidates) <= blockSize(p) {
		return evaluateBlock(candidates, x2, e, p)
	}
	return evaluateTaskParallel(candidates, x2, e, p)
}

func blockSize(p Params) int {
	if p.TpBlksz <= 0 {
		return 16
	}
	return p.TpBlksz
}

// evaluateBlock is the single-threaded core: for candidate c, I = (X2·cᵀ ==
// level), size = |I|, totalError = eᵀ·I, maxError = max(e[I]).
func evaluateBlock(candidates []lattice.Slice, x2 onehot.Matrix, e matrixint.ErrVec, p Params) []lattice.StatRow {
	rows := make([]lattice.StatRow, len(candidates))
	for ci, cand := range candidates {
		bm := roaring.New()
		var totalErr, maxErr float64
		for i, xrow := range x2.Rows {
			if cand.Matches(xrow) {
				bm.Add(uint32(i))
				totalErr += e[i]
				if e[i] > maxErr {
					maxErr = e[i]
				}
			}
		}
		size := float64(bm.GetCardinality())
		stats := scorer.Stats{Size: size, TotalError: totalErr, MaxError: maxErr}
		rows[ci] = lattice.StatRow{
			Score:      scorer.Score(stats, p.EAvg, p.N, p.Alpha),
			TotalError: totalErr,
			MaxError:   maxErr,
			Size:       size,
		}
	}
	return rows
}

type blockResult struct {
	offset int
	rows   []lattice.StatRow
}

// evaluateTaskParallel splits candidates into tpBlksz-sized blocks and
// evaluates blocks independently via mr.MapReduce; block order must not
// affect results, so partial results are merged back by offset through a
// concurrent-map keyed by block offset before being flattened in order.
func evaluateTaskParallel(candidates []lattice.Slice, x2 onehot.Matrix, e matrixint.ErrVec, p Params) []lattice.StatRow {
	bs := blockSize(p)
	nBlocks := (len(candidates) + bs - 1) / bs
	results := cmap.New()

	generate := func(source chan<- int) {
		for b := 0; b < nBlocks; b++ {
			source <- b
		}
	}
	mapper := func(b int, writer mr.Writer[blockResult], cancel func(error)) {
		begin := b * bs
		end := begin + bs
		if end > len(candidates) {
			end = len(candidates)
		}
		rows := evaluateBlock(candidates[begin:end], x2, e, p)
		writer.Write(blockResult{offset: begin, rows: rows})
	}
	reducer := func(pipe <-chan blockResult, writer mr.Writer[struct{}], cancel func(error)) {
		for br := range pipe {
			results.Set(keyFor(br.offset), br.rows)
		}
		writer.Write(struct{}{})
	}

	_, _ = mr.MapReduce(generate, mapper, reducer)

	out := make([]lattice.StatRow, len(candidates))
	for b := 0; b < nBlocks; b++ {
		begin := b * bs
		rowsAny, ok := results.Get(keyFor(begin))
		if !ok {
			continue
		}
		rows := rowsAny.([]lattice.StatRow)
		copy(out[begin:begin+len(rows)], rows)
	}
	return out
}

func keyFor(offset int) string {
	return "blk:" + strconv.Itoa(offset)
}
