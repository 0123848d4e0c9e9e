// Package scorer implements spec.md §4.2: the slice score and its monotone
// upper bound, used respectively to rank slices and to prune candidates
// before they are ever materialized.
//
// Grounded on the teacher's topk/gini_index.go, which computes a per-
// predicate interestingness score from aggregated (xY, noXY, xNoY, noXNoY)
// counts in the same element-wise, vector-of-triples style used here.
package scorer

import "math"

// Stats is one slice's (size, totalError, maxError) triple, the minimal
// sufficient statistics for both Score and ScoreUB.
type Stats struct {
	Size       float64
	TotalError float64
	MaxError   float64
}

// Score computes sc = α·((totalError/size)/eAvg − 1) − (1−α)·(n/size − 1).
// Division by zero or NaN results map to -Inf so such slices are never
// chosen (spec.md §4.2, §7 "degenerate scoring").
func Score(s Stats, eAvg float64, n int, alpha float64) float64 {
	if s.Size <= 0 || eAvg == 0 {
		return math.Inf(-1)
	}
	errTerm := (s.TotalError/s.Size)/eAvg - 1
	sizeTerm := float64(n)/s.Size - 1
	sc := alpha*errTerm - (1-alpha)*sizeTerm
	if math.IsNaN(sc) {
		return math.Inf(-1)
	}
	return sc
}

// ScoreUB computes a provable upper bound on the score of any slice
// consistent with the given parent-aggregated upper-bound stats (§4.2).
// Score is monotone in size with a fixed sign on each branch, so probing
// three size candidates and capping totalError accordingly brackets the true
// maximum.
func ScoreUB(ub Stats, eAvg float64, minSup int, alpha float64, n int) float64 {
	if eAvg == 0 {
		return math.Inf(-1)
	}
	candidates := []float64{float64(minSup)}
	if ub.MaxError > 0 {
		candidates = append(candidates, math.Max(ub.TotalError/ub.MaxError, float64(minSup)))
	} else {
		candidates = append(candidates, float64(minSup))
	}
	candidates = append(candidates, ub.Size)

	best := math.Inf(-1)
	for _, s := range candidates {
		if s <= 0 {
			continue
		}
		cappedErr := ub.TotalError
		if maxForS := s * ub.MaxError; cappedErr > maxForS {
			cappedErr = maxForS
		}
		sc := Score(Stats{Size: s, TotalError: cappedErr, MaxError: ub.MaxError}, eAvg, n, alpha)
		if math.IsNaN(sc) {
			continue
		}
		if sc > best {
			best = sc
		}
	}
	return best
}
