package pairgen

import (
	"math"
	"testing"

	"github.com/bits-and-blooms/bitset"

	"gitlab.grandhoo.com/rock/slicelattice/internal/lattice"
	"gitlab.grandhoo.com/rock/slicelattice/internal/onehot"
)

func sliceAt(n2 uint, level int, bits ...uint) lattice.Slice {
	bs := bitset.New(n2)
	for _, b := range bits {
		bs.Set(b)
	}
	return lattice.Slice{Bits: bs, Level: level}
}

func TestGenerateJoinsCompatibleParents(t *testing.T) {
	// Two features, two values each: columns 0,1 = feature 0; 2,3 = feature 1.
	off := onehot.Offsets{Foffb: []int{0, 2}, Foffe: []int{2, 4}}
	parents := []lattice.Slice{
		sliceAt(4, 1, 0), // f0=1
		sliceAt(4, 1, 2), // f1=1
	}
	parentStats := []lattice.StatRow{
		{Size: 10, TotalError: 10, MaxError: 2},
		{Size: 10, TotalError: 10, MaxError: 2},
	}

	res := Generate(2, parents, parentStats, math.Inf(-1), math.Inf(-1), nil, nil, off, Params{
		K: 4, EAvg: 0.1, MinSup: 2, Alpha: 0.5, N: 20,
	})

	if len(res.Candidates) != 1 {
		t.Fatalf("got %d candidates, want 1 (the join of f0=1,f1=1)", len(res.Candidates))
	}
	c := res.Candidates[0]
	if c.Level != 2 || c.Bits.Count() != 2 || !c.Bits.Test(0) || !c.Bits.Test(2) {
		t.Fatalf("candidate = %+v, want {level 2, bits {0,2}}", c)
	}
}

func TestGenerateRejectsSameFeatureParents(t *testing.T) {
	// Both parents constrain feature 0 to different values: not a valid join.
	off := onehot.Offsets{Foffb: []int{0, 2}, Foffe: []int{2, 4}}
	parents := []lattice.Slice{
		sliceAt(4, 1, 0), // f0=1
		sliceAt(4, 1, 1), // f0=2
	}
	parentStats := []lattice.StatRow{
		{Size: 10, TotalError: 10, MaxError: 2},
		{Size: 10, TotalError: 10, MaxError: 2},
	}

	res := Generate(2, parents, parentStats, math.Inf(-1), math.Inf(-1), nil, nil, off, Params{
		K: 4, EAvg: 1, MinSup: 2, Alpha: 0.5, N: 20,
	})
	if len(res.Candidates) != 0 {
		t.Fatalf("got %d candidates, want 0: parents disagree on feature 0", len(res.Candidates))
	}
}

func TestGeneratePrunesInvalidParents(t *testing.T) {
	off := onehot.Offsets{Foffb: []int{0, 2}, Foffe: []int{2, 4}}
	parents := []lattice.Slice{
		sliceAt(4, 1, 0),
		sliceAt(4, 1, 2),
	}
	parentStats := []lattice.StatRow{
		{Size: 1, TotalError: 10, MaxError: 2}, // below minSup: invalid parent
		{Size: 10, TotalError: 10, MaxError: 2},
	}

	res := Generate(2, parents, parentStats, math.Inf(-1), math.Inf(-1), nil, nil, off, Params{
		K: 4, EAvg: 1, MinSup: 2, Alpha: 0.5, N: 20,
	})
	if len(res.Candidates) != 0 {
		t.Fatalf("got %d candidates, want 0: only one valid parent, no pair possible", len(res.Candidates))
	}
}

func TestGenerateDedupsAcrossDifferentParentPairs(t *testing.T) {
	// Three level-2 parents that pairwise join to the same level-3 candidate
	// {0,1,2} — the mixed-radix dedup step must collapse all three pairs'
	// output into one candidate, with a parent set spanning all three.
	off := onehot.Offsets{Foffb: []int{0, 1, 2}, Foffe: []int{1, 2, 3}}
	parents := []lattice.Slice{
		sliceAt(3, 2, 0, 1),
		sliceAt(3, 2, 1, 2),
		sliceAt(3, 2, 0, 2),
	}
	parentStats := []lattice.StatRow{
		{Size: 10, TotalError: 10, MaxError: 2},
		{Size: 10, TotalError: 10, MaxError: 2},
		{Size: 10, TotalError: 10, MaxError: 2},
	}

	res := Generate(3, parents, parentStats, math.Inf(-1), math.Inf(-1), nil, nil, off, Params{
		K: 4, EAvg: 0.1, MinSup: 2, Alpha: 0.5, N: 20,
	})
	if len(res.Candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(res.Candidates))
	}
	if res.Candidates[0].Bits.Count() != 3 {
		t.Fatalf("candidate has %d bits set, want 3", res.Candidates[0].Bits.Count())
	}
}
