package unchanged

import (
	"testing"

	"github.com/bits-and-blooms/bitset"

	"gitlab.grandhoo.com/rock/slicelattice/internal/lattice"
	"gitlab.grandhoo.com/rock/slicelattice/internal/matrixint"
	"gitlab.grandhoo.com/rock/slicelattice/internal/onehot"
)

func sliceAt(n2 uint, level int, bits ...uint) lattice.Slice {
	bs := bitset.New(n2)
	for _, b := range bits {
		bs.Set(b)
	}
	return lattice.Slice{Bits: bs, Level: level}
}

// TestDetectReturnsSmallUntouchedSlice builds a prior lattice with one
// level-2 slice of size exactly minSup-1, then checks that added rows which
// don't match it surface it as unchanged (§8 seeded scenario 4).
func TestDetectReturnsSmallUntouchedSlice(t *testing.T) {
	off := onehot.Offsets{Foffb: []int{0, 2}, Foffe: []int{2, 4}}
	minSup := 3

	prevLattice := &lattice.Lattice{}
	prevLattice.AppendLevel([]lattice.Slice{
		sliceAt(4, 1, 0), // f0=1
		sliceAt(4, 1, 2), // f1=1
	})
	target := sliceAt(4, 2, 0, 2) // f0=1,f1=1
	prevLattice.AppendLevel([]lattice.Slice{target})

	prevStats := &lattice.StatsList{Rows: []lattice.StatRow{
		{Score: 1, TotalError: 10, MaxError: 5, Size: 5},
		{Score: 1, TotalError: 10, MaxError: 5, Size: 5},
		{Score: 1, TotalError: 4, MaxError: 2, Size: float64(minSup - 1)},
	}}

	// Added row is f0=2,f1=2 — disjoint from target's f0=1,f1=1.
	addedX2 := onehot.Encode(matrixint.Matrix{{2, 2}}, off)

	lists := Detect(prevLattice, prevStats, addedX2)

	if len(lists.Slices) != 1 {
		t.Fatalf("got %d levels, want 1 (level 2 only)", len(lists.Slices))
	}
	if len(lists.Slices[0]) != 1 {
		t.Fatalf("got %d unchanged slices at level 2, want 1", len(lists.Slices[0]))
	}
	got := lists.Slices[0][0]
	if got.Bits.Count() != 2 || !got.Bits.Test(0) || !got.Bits.Test(2) {
		t.Fatalf("unchanged slice = %+v, want {bits {0,2}}", got)
	}
	if lists.Rows[0][0].Size != float64(minSup-1) {
		t.Fatalf("unchanged row size = %v, want %d", lists.Rows[0][0].Size, minSup-1)
	}
}

// TestDetectDropsTouchedSlice checks the complementary case: a row that does
// match the prior slice excludes it from the unchanged lists.
func TestDetectDropsTouchedSlice(t *testing.T) {
	off := onehot.Offsets{Foffb: []int{0, 2}, Foffe: []int{2, 4}}

	prevLattice := &lattice.Lattice{}
	prevLattice.AppendLevel([]lattice.Slice{sliceAt(4, 1, 0), sliceAt(4, 1, 2)})
	prevLattice.AppendLevel([]lattice.Slice{sliceAt(4, 2, 0, 2)})
	prevStats := &lattice.StatsList{Rows: []lattice.StatRow{
		{Size: 5}, {Size: 5}, {Size: 2},
	}}

	// Added row is f0=1,f1=1 — matches the prior level-2 slice exactly.
	addedX2 := onehot.Encode(matrixint.Matrix{{1, 1}}, off)

	lists := Detect(prevLattice, prevStats, addedX2)
	if len(lists.Slices[0]) != 0 {
		t.Fatalf("got %d unchanged slices, want 0: the added row touches it", len(lists.Slices[0]))
	}
}
