package engine

import "testing"

func TestParamsMergeNilPriorReturnsCaller(t *testing.T) {
	p := Params{K: 3, MinSup: 5}
	if got := p.Merge(nil); got != p {
		t.Fatalf("Merge(nil) = %+v, want %+v unchanged", got, p)
	}
}

func TestParamsMergePriorOverridesCaller(t *testing.T) {
	caller := Params{K: 3, MinSup: 5, Alpha: 0.1}
	prior := Params{K: 8, MinSup: 9, Alpha: 0.9}
	got := caller.Merge(&prior)
	if got != prior {
		t.Fatalf("Merge(prior) = %+v, want %+v (prior always wins)", got, prior)
	}
}
