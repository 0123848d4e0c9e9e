package evaluator

import (
	"math"
	"testing"

	"gitlab.grandhoo.com/rock/slicelattice/internal/lattice"
	"gitlab.grandhoo.com/rock/slicelattice/internal/matrixint"
	"gitlab.grandhoo.com/rock/slicelattice/internal/onehot"
)

func buildFixture() ([]lattice.Slice, onehot.Matrix, matrixint.ErrVec, onehot.Offsets) {
	off := onehot.DeriveOffsets([]int32{2, 2})
	x := matrixint.Matrix{
		{1, 1},
		{1, 2},
		{2, 1},
		{2, 2},
	}
	x2 := onehot.Encode(x, off)
	e := matrixint.ErrVec{10, 1, 1, 1}

	candidates := []lattice.Slice{
		{Bits: x2.Rows[0], Level: 2}, // f1=1,f2=1 (row 0's exact predicates)
	}
	return candidates, x2, e, off
}

func TestEvaluateBlockComputesExactStats(t *testing.T) {
	candidates, x2, e, _ := buildFixture()
	rows := Evaluate(candidates, x2, e, Params{EAvg: e.Avg(), Alpha: 1, N: 4, MinSup: 1, Mode: DataParallel})

	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	r := rows[0]
	if r.Size != 1 {
		t.Fatalf("size = %v, want 1", r.Size)
	}
	if r.TotalError != 10 {
		t.Fatalf("totalError = %v, want 10", r.TotalError)
	}
	if r.MaxError != 10 {
		t.Fatalf("maxError = %v, want 10", r.MaxError)
	}
}

func TestEvaluateDataParallelAndTaskParallelAgree(t *testing.T) {
	off := onehot.DeriveOffsets([]int32{2, 2})
	x := matrixint.Matrix{}
	e := matrixint.ErrVec{}
	for i := 0; i < 40; i++ {
		v1, v2 := int32(1+i%2), int32(1+(i/2)%2)
		x = append(x, []int32{v1, v2})
		e = append(e, float64(1+i%5))
	}
	x2 := onehot.Encode(x, off)

	var candidates []lattice.Slice
	for _, row := range x2.Rows[:4] {
		candidates = append(candidates, lattice.Slice{Bits: row, Level: 2})
	}

	dataRows := Evaluate(candidates, x2, e, Params{EAvg: e.Avg(), Alpha: 0.5, N: 40, MinSup: 1, Mode: DataParallel})
	taskRows := Evaluate(candidates, x2, e, Params{EAvg: e.Avg(), Alpha: 0.5, N: 40, MinSup: 1, Mode: TaskParallel, TpBlksz: 1})

	if len(dataRows) != len(taskRows) {
		t.Fatalf("row count mismatch: data=%d task=%d", len(dataRows), len(taskRows))
	}
	for i := range dataRows {
		if math.Abs(dataRows[i].Score-taskRows[i].Score) > 1e-9 {
			t.Fatalf("row %d score mismatch: data=%v task=%v", i, dataRows[i].Score, taskRows[i].Score)
		}
		if dataRows[i].Size != taskRows[i].Size {
			t.Fatalf("row %d size mismatch: data=%v task=%v", i, dataRows[i].Size, taskRows[i].Size)
		}
	}
}

func TestEvaluateEmptyCandidates(t *testing.T) {
	_, x2, e, _ := buildFixture()
	rows := Evaluate(nil, x2, e, Params{EAvg: e.Avg(), Alpha: 0.5, N: 4, MinSup: 1})
	if rows != nil {
		t.Fatalf("got %v, want nil for no candidates", rows)
	}
}
