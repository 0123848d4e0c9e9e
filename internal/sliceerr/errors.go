// Package sliceerr enumerates the error kinds from spec.md §7.
package sliceerr

import "errors"

var (
	// ErrDimensionMismatch covers addedX/oldX column-count mismatches and
	// newE/addedX row-count mismatches — a structural precondition failure.
	ErrDimensionMismatch = errors.New("slicelattice: dimension mismatch between inputs")

	// ErrInconsistentIncremental is raised when prevLattice is non-empty but
	// params is empty (§4.8 "Error condition", §7, §8 scenario 5).
	ErrInconsistentIncremental = errors.New("slicelattice: prevLattice supplied without prior params")
)
