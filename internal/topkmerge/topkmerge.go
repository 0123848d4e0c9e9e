// Package topkmerge implements spec.md §4.7: merging newly scored candidates
// with the incumbent top-k, re-ranking, and truncating.
package topkmerge

import (
	"golang.org/x/exp/slices"

	"gitlab.grandhoo.com/rock/slicelattice/internal/lattice"
)

// Merge filters incoming (cands, rows) to size ≥ minSup ∧ score > 0,
// concatenates with the incumbent top-k, sorts by score descending (stable
// tie-break on insertion order), and truncates to k.
func Merge(incumbent lattice.TopK, cands []lattice.Slice, rows []lattice.StatRow, minSup int) lattice.TopK {
	type entry struct {
		slice lattice.Slice
		row   lattice.StatRow
		order int
	}
	var entries []entry
	order := 0
	for i := range incumbent.Slices {
		entries = append(entries, entry{incumbent.Slices[i], incumbent.Rows[i], order})
		order++
	}
	for i := range cands {
		row := rows[i]
		if row.Size >= float64(minSup) && row.Score > 0 {
			entries = append(entries, entry{cands[i], row, order})
			order++
		}
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		if a.row.Score != b.row.Score {
			if a.row.Score > b.row.Score {
				return -1
			}
			return 1
		}
		return a.order - b.order
	})

	k := incumbent.K
	if len(entries) > k {
		entries = entries[:k]
	}

	out := lattice.TopK{K: k}
	for _, e := range entries {
		out.Slices = append(out.Slices, e.slice)
		out.Rows = append(out.Rows, e.row)
	}
	return out
}
