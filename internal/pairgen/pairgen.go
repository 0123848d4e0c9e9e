// Package pairgen implements spec.md §4.5, the pruning kernel: joining
// level-(ℓ-1) survivors into level-ℓ candidates, deduplicating them, and
// applying every pruning rule the spec lists (parent validity, compatible
// join, unchanged-and-small, single-value-per-feature, size/error/score
// upper bounds, and missing-parents).
//
// Grounded on the teacher's rule_dig/inc_rule_dig.go expand/prune pipeline
// (candidate REEs are built from a parent's Lhs plus one more predicate,
// then pruned by support/confidence bounds before being scored for real) —
// generalized here from predicate lists to one-hot bitset joins. Candidate
// deduplication uses github.com/deckarep/golang-set (teacher's
// utils/predicate_util.go) for the distinct-parents test and
// github.com/kelindar/intmap (benchmarked by the teacher's utils/mapi32) for
// the mixed-radix-ID → dense-index recoding spec.md §9 calls for.
package pairgen

import (
	"math"

	mapset "github.com/deckarep/golang-set"
	"github.com/kelindar/intmap"

	"gitlab.grandhoo.com/rock/slicelattice/internal/debugtrace"
	"gitlab.grandhoo.com/rock/slicelattice/internal/lattice"
	"gitlab.grandhoo.com/rock/slicelattice/internal/onehot"
	"gitlab.grandhoo.com/rock/slicelattice/internal/scorer"
)

// Params bundles the scalar parameters §4.5 needs.
type Params struct {
	K      int
	EAvg   float64
	MinSup int
	Alpha  float64
	N      int // nrow(X), for Score/ScoreUB
}

// Result is the pair generator's output: the deduplicated candidates for
// level ℓ, the possibly-raised minsc, and the enumerated/valid counts the
// debug matrix D records.
type Result struct {
	Candidates []lattice.Slice
	Minsc      float64
	Enumerated int // candidates produced by step 3, before any pruning
	Valid      int // survivors after step 9
	Edges      []debugtrace.Edge
}

// Generate runs §4.5 steps 1-10 for level ℓ.
func Generate(
	level int,
	parents []lattice.Slice,
	parentStats []lattice.StatRow,
	minsc float64,
	tkMinScore float64,
	unchangedSlices []lattice.Slice,
	unchangedRows []lattice.StatRow,
	off onehot.Offsets,
	p Params,
) Result {
	// Step 1: parent validity.
	var validParents []lattice.Slice
	var validStats []lattice.StatRow
	for i, parent := range parents {
		st := parentStats[i]
		if st.Size < float64(p.MinSup) || st.TotalError <= 0 {
			continue
		}
		validParents = append(validParents, parent)
		validStats = append(validStats, st)
	}

	domains := featureDomains(off)

	type rawCandidate struct {
		bits       *lattice.Slice
		ub         scorer.Stats
		parentIdxs [2]int
	}
	var raw []rawCandidate

	// Step 2+3: compatible join, construct candidate.
	for i := 0; i < len(validParents); i++ {
		for j := i + 1; j < len(validParents); j++ {
			shared := validParents[i].Bits.IntersectionCardinality(validParents[j].Bits)
			if int(shared) != level-2 {
				continue
			}
			merged := validParents[i].Bits.Clone()
			merged.InPlaceUnion(validParents[j].Bits)
			if int(merged.Count()) != level {
				// Only reachable when a parent's bit count differs from its
				// Level; such a union is not a level-ℓ slice.
				continue
			}
			slice := lattice.Slice{Bits: merged, Level: level}
			raw = append(raw, rawCandidate{
				bits: &slice,
				ub: scorer.Stats{
					Size:       math.Min(validStats[i].Size, validStats[j].Size),
					TotalError: math.Min(validStats[i].TotalError, validStats[j].TotalError),
					MaxError:   math.Min(validStats[i].MaxError, validStats[j].MaxError),
				},
				parentIdxs: [2]int{i, j},
			})
		}
	}
	enumerated := len(raw)

	// Step 5: single-value-per-feature. Parents that pick different values of
	// the same feature still union to `level` bits, so the count check in
	// step 3 keeps them and this step is where they are dropped.
	kept := raw[:0:0]
	for _, c := range raw {
		if singleValuePerFeature(c.bits.Bits, off) {
			kept = append(kept, c)
		}
	}
	raw = kept

	// Step 4: unchanged-and-small pruning.
	filtered := raw[:0:0]
	for _, c := range raw {
		drop := false
		for u, uslice := range unchangedSlices {
			if int(c.bits.Bits.IntersectionCardinality(uslice.Bits)) == level {
				if unchangedRows[u].Size < float64(p.MinSup) {
					drop = true
				}
				break
			}
		}
		if !drop {
			filtered = append(filtered, c)
		}
	}
	raw = filtered

	// Step 7: deduplicate via mixed-radix ID -> dense index (kelindar/intmap),
	// combining upper bounds across duplicates by taking the largest.
	idToDenseIdx := intmap.NewMap64(uint32(len(raw)))
	type group struct {
		repr       lattice.Slice
		ub         scorer.Stats
		parentSet  mapset.Set
	}
	var groups []group
	var nextDense int64
	for _, c := range raw {
		id := mixedRadixID(c.bits.Bits, off, domains)
		denseIdx, ok := idToDenseIdx.Get(uint64(id))
		if !ok {
			denseIdx = uint64(nextDense)
			idToDenseIdx.Put(uint64(id), denseIdx)
			nextDense++
			groups = append(groups, group{
				repr:      *c.bits,
				ub:        c.ub,
				parentSet: mapset.NewSet(c.parentIdxs[0], c.parentIdxs[1]),
			})
			continue
		}
		g := &groups[denseIdx]
		g.ub.Size = combineUB(g.ub.Size, c.ub.Size)
		g.ub.TotalError = combineUB(g.ub.TotalError, c.ub.TotalError)
		g.ub.MaxError = combineUB(g.ub.MaxError, c.ub.MaxError)
		g.parentSet.Add(c.parentIdxs[0])
		g.parentSet.Add(c.parentIdxs[1])
	}

	// Step 10: minsc update — non-decreasing, seeded from the current top-k
	// minimum score.
	effectiveMinsc := math.Max(minsc, tkMinScore)

	// Step 8 + 9: size/error/score pruning, and missing-parents pruning.
	var out []lattice.Slice
	var edges []debugtrace.Edge
	for _, g := range groups {
		if g.ub.Size < float64(p.MinSup) {
			continue
		}
		ubScore := scorer.ScoreUB(g.ub, p.EAvg, p.MinSup, p.Alpha, p.N)
		if !(ubScore > 0 && ubScore >= effectiveMinsc) {
			continue
		}
		if g.parentSet.Cardinality() != level {
			continue
		}
		out = append(out, g.repr)
		edges = append(edges, joinEdges(g.parentSet, validParents, g.repr, off)...)
	}

	return Result{
		Candidates: out,
		Minsc:      effectiveMinsc,
		Enumerated: enumerated,
		Valid:      len(out),
		Edges:      edges,
	}
}

// joinEdges renders every parent pair that contributed to a surviving
// candidate as a debugtrace.Edge, for ExportGraphviz.
func joinEdges(parentSet mapset.Set, validParents []lattice.Slice, child lattice.Slice, off onehot.Offsets) []debugtrace.Edge {
	idxs := parentSet.ToSlice()
	childLabel := debugtrace.Label(child, off)
	var edges []debugtrace.Edge
	for a := 0; a < len(idxs); a++ {
		for b := a + 1; b < len(idxs); b++ {
			edges = append(edges, debugtrace.Edge{
				ParentA: debugtrace.Label(validParents[idxs[a].(int)], off),
				ParentB: debugtrace.Label(validParents[idxs[b].(int)], off),
				Child:   childLabel,
			})
		}
	}
	return edges
}

// combineUB implements step 7's "take the largest parent-derived upper bound
// across duplicates" as 1 / rowMax(map · (1/tstat)), with ∞ replaced by 0 —
// equivalent to plain max() here since both values are finite upper bounds,
// but phrased this way to mirror the reciprocal-trick the original matrix
// formulation used to compute a row-wise max via a sparse product.
func combineUB(a, b float64) float64 {
	inv := func(x float64) float64 {
		if x <= 0 {
			return math.Inf(1)
		}
		return 1 / x
	}
	invMax := math.Min(inv(a), inv(b))
	if math.IsInf(invMax, 1) {
		return 0
	}
	return 1 / invMax
}

func featureDomains(off onehot.Offsets) []int {
	d := make([]int, len(off.Foffb))
	for j := range d {
		d[j] = off.Foffe[j] - off.Foffb[j]
	}
	return d
}

// mixedRadixID encodes a slice's per-feature chosen values (0 = absent, else
// 1..domain[j]) in mixed radix, per spec.md §4.5 step 7 / §9.
func mixedRadixID(bits interface{ Test(uint) bool }, off onehot.Offsets, domains []int) int64 {
	var id int64
	basis := int64(1)
	for j := range off.Foffb {
		v := int64(0)
		lo, hi := off.Foffb[j], off.Foffe[j]
		for c := lo; c < hi; c++ {
			if bits.Test(uint(c)) {
				v = int64(c - lo + 1)
				break
			}
		}
		id += v * basis
		basis *= int64(domains[j] + 1)
	}
	return id
}

func singleValuePerFeature(bits interface{ Test(uint) bool }, off onehot.Offsets) bool {
	for j := range off.Foffb {
		count := 0
		for c := off.Foffb[j]; c < off.Foffe[j]; c++ {
			if bits.Test(uint(c)) {
				count++
			}
		}
		if count > 1 {
			return false
		}
	}
	return true
}
