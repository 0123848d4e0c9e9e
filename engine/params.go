// Package engine implements spec.md §4.8, the driver, and exposes the
// engine's single public entry point, Run.
package engine

// Params is the opaque "params bag" of spec.md §6/§9: the tagged tuple of
// [k, maxL, minSup, alpha, tpEval, tpBlksz, selFeat] threaded across
// incremental invocations.
type Params struct {
	K       int
	MaxL    int
	MinSup  int
	Alpha   float64
	TpEval  bool
	TpBlksz int
	SelFeat bool
	Verbose bool
}

// DefaultParams returns the §6 defaults.
func DefaultParams() Params {
	return Params{
		K:       4,
		MaxL:    0,
		MinSup:  32,
		Alpha:   0.5,
		TpEval:  true,
		TpBlksz: 16,
		SelFeat: false,
		Verbose: false,
	}
}

// Merge implements "if the caller supplies a previous params, its values
// override any passed scalar parameters" (§6): prior always wins when
// present, since re-entry must reuse the original run's parameters to keep
// scores and lattice shape comparable.
func (p Params) Merge(prior *Params) Params {
	if prior == nil {
		return p
	}
	return *prior
}
