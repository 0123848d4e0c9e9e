// Package lattice holds the core data model of spec.md §3: slices, the
// append-only lattice they accumulate into, per-slice statistics, and the
// running top-k.
//
// Grounded on the teacher's global_variables/task_tree/task_tree.go, whose
// TaskTree.Lhs (a variable-length predicate list whose length IS the level)
// plays the same role as a Slice here — except a Slice is the one-hot
// bitset.BitSet indicator form spec.md §3 requires rather than a predicate
// list, so parent/child joins reduce to bitset ops instead of list merges.
package lattice

import (
	"math"

	"github.com/bits-and-blooms/bitset"
)

// Slice is a 0/1 indicator row of width n2 with at most one 1 per feature
// group; Level is its number of 1s / conjoined predicates.
type Slice struct {
	Bits  *bitset.BitSet
	Level int
}

// Matches reports whether this slice's predicates all hold on a one-hot row:
// (row · slice) == level.
func (s Slice) Matches(row *bitset.BitSet) bool {
	return row.IntersectionCardinality(s.Bits) == uint(s.Level)
}

// StatRow is the four-column per-slice statistics row of spec.md §3: score,
// totalError, maxError, size.
type StatRow struct {
	Score      float64
	TotalError float64
	MaxError   float64
	Size       float64
}

// Lattice is the append-only ordered sequence of slice rows grouped by level
// (spec.md §3). Rows holds every slice in discovery order; LevelCounts[i] is
// how many of those rows belong to level i+1, so level boundaries can be
// recovered by a cumulative sum — mirroring how the teacher threads
// prevRL/prevLattice row counts across incremental calls.
type Lattice struct {
	Rows        []Slice
	LevelCounts []int
}

// AppendLevel appends one full level's worth of slices, in discovery order.
func (l *Lattice) AppendLevel(slices []Slice) {
	l.Rows = append(l.Rows, slices...)
	l.LevelCounts = append(l.LevelCounts, len(slices))
}

// LevelBounds returns, for level ℓ (1-indexed), the half-open [begin,end) row
// range into Rows/RL for that level ("Level boundaries in the prior lattice
// are inferred from the cumulative row counts of prevRL", §4.4).
func (l *Lattice) LevelBounds(level int) (begin, end int) {
	if level < 1 || level > len(l.LevelCounts) {
		return 0, 0
	}
	for i := 0; i < level-1; i++ {
		begin += l.LevelCounts[i]
	}
	end = begin + l.LevelCounts[level-1]
	return begin, end
}

// MaxLevel returns the number of levels currently recorded.
func (l *Lattice) MaxLevel() int { return len(l.LevelCounts) }

// StatsList is RL: the per-slice statistics rows, aligned row-for-row with a
// Lattice's Rows and sharing its LevelCounts.
type StatsList struct {
	Rows []StatRow
}

// TopK is (TK, TKC): up to k slices with highest score, sorted descending,
// and their four-column statistics.
type TopK struct {
	K      int
	Slices []Slice
	Rows   []StatRow
}

// MinScore returns TKC[k,1] from §4.5 step 10: the score of the lowest slice
// currently in top-k, or -Inf if fewer than k slices have been retained yet.
func (tk TopK) MinScore() float64 {
	if len(tk.Rows) < tk.K {
		return math.Inf(-1)
	}
	return tk.Rows[len(tk.Rows)-1].Score
}
