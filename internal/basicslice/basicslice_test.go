package basicslice

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"gitlab.grandhoo.com/rock/slicelattice/internal/matrixint"
	"gitlab.grandhoo.com/rock/slicelattice/internal/onehot"
)

func TestBuildBaseRule(t *testing.T) {
	Convey("Given a one-hot matrix with a column below minSup", t, func() {
		off := onehot.DeriveOffsets([]int32{2, 2})
		x := matrixint.Matrix{
			{1, 1},
			{1, 2},
			{2, 1},
		}
		x2 := onehot.Encode(x, off)
		e := matrixint.ErrVec{4, 2, 2}

		Convey("Build selects only columns meeting minSup and with positive error", func() {
			res := Build(Inputs{
				X2: x2, E: e, EAvg: e.Avg(), MinSup: 2, Alpha: 0.5, N: 3,
			})

			So(len(res.Slices), ShouldBeGreaterThan, 0)
			for i, s := range res.Slices {
				So(s.Level, ShouldEqual, 1)
				So(res.Rows[i].Size, ShouldBeGreaterThanOrEqualTo, 2)
				So(res.Rows[i].TotalError, ShouldBeGreaterThan, 0)
			}
		})
	})
}

func TestBuildIncrementalTightening(t *testing.T) {
	Convey("Given a prior top-k, added rows touching one column, and a third column neither touches", t, func() {
		off := onehot.DeriveOffsets([]int32{3})
		addedX := matrixint.Matrix{{2}, {2}}
		x2 := onehot.Encode(matrixint.Matrix{{1}, {1}, {1}, {1}, {3}, {3}, {2}, {2}}, off)
		addedX2 := onehot.Encode(addedX, off)
		e := matrixint.ErrVec{2, 2, 2, 2, 2, 2, 1, 1}

		prevTKSlice := onehot.Encode(matrixint.Matrix{{1}}, off)
		prevTK2 := &onehot.Matrix{Rows: prevTKSlice.Rows, N2: prevTKSlice.N2}

		Convey("the untouched, not-in-prevTK column (value 3) is dropped once eAvg has fallen", func() {
			res := Build(Inputs{
				X2: x2, E: e, AddedX2: &addedX2, PrevTK2: prevTK2,
				EAvg: e.Avg(), EAvgOld: 2, EAvgNew: 1,
				MinSup: 2, Alpha: 0.5, N: 8,
			})

			// value 1 survives: present in prevTK2.
			// value 2 survives: touched by addedX2.
			// value 3 is dropped: neither touched nor in prevTK2.
			So(len(res.Slices), ShouldEqual, 2)
			for _, s := range res.Slices {
				So(s.Bits.Test(2), ShouldBeFalse) // column index 2 == value 3
			}
		})
	})
}
