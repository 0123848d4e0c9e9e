// Package matrixint holds the recoded integer feature matrix and error
// vector described in spec.md §3 — the raw inputs before one-hot encoding.
package matrixint

import "gitlab.grandhoo.com/rock/slicelattice/internal/sliceerr"

// Matrix is a dense recoded/binned integer feature matrix: Matrix[i][j] is
// the category or bin of feature j on row i. Zero means "no value" for that
// row/feature.
type Matrix [][]int32

// NRow returns the number of rows.
func (m Matrix) NRow() int { return len(m) }

// NCol returns the number of feature columns, or 0 for an empty matrix.
func (m Matrix) NCol() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// ColMax returns, for each column j, the maximum value observed across all
// rows (the per-feature domain size used to derive one-hot offsets, §4.1).
func (m Matrix) ColMax() []int32 {
	n := m.NCol()
	max := make([]int32, n)
	for _, row := range m {
		for j, v := range row {
			if v > max[j] {
				max[j] = v
			}
		}
	}
	return max
}

// Concat vertically stacks oldX on top of addedX as described in §4.8 step 1
// ("combine oldX and addedX into newX"). Both must share the same column
// count unless one is empty.
func Concat(oldX, addedX Matrix) (Matrix, error) {
	if len(oldX) > 0 && len(addedX) > 0 && oldX.NCol() != addedX.NCol() {
		return nil, sliceerr.ErrDimensionMismatch
	}
	out := make(Matrix, 0, len(oldX)+len(addedX))
	out = append(out, oldX...)
	out = append(out, addedX...)
	return out, nil
}

// ErrVec is the per-row error vector e, aligned with a Matrix.
type ErrVec []float64

// Avg returns eAvg = sum(e)/nrow, or 0 for an empty vector.
func (e ErrVec) Avg() float64 {
	if len(e) == 0 {
		return 0
	}
	var sum float64
	for _, v := range e {
		sum += v
	}
	return sum / float64(len(e))
}

// ConcatErr appends addedE after oldE, mirroring Concat.
func ConcatErr(oldE, addedE ErrVec) ErrVec {
	out := make(ErrVec, 0, len(oldE)+len(addedE))
	out = append(out, oldE...)
	out = append(out, addedE...)
	return out
}
