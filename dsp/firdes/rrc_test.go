/*
NAME
  rrc_test.go

DESCRIPTION
  rrc_test.go verifies the matched-RRC-pair Nyquist property: convolving two
  identical RRC filters yields a raised-cosine response with zero-ISI at
  symbol instants (zero crossings at every non-zero multiple of the symbol
  period).

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

package firdes

import (
	"math"
	"testing"
)

func convolve(a, b []float32) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, av := range a {
		for j, bv := range b {
			out[i+j] += float64(av) * float64(bv)
		}
	}
	return out
}

func TestRootRaisedCosineMatchedPairIsNyquist(t *testing.T) {
	const sps = 4.0
	const alpha = 0.35
	const ntaps = 101 // odd, centered

	taps := RootRaisedCosine(1, sps, 1.0, alpha, ntaps)
	rc := convolve(taps, taps)

	center := len(rc) / 2
	peak := rc[center]
	if peak <= 0 {
		t.Fatalf("raised-cosine response has non-positive peak %v", peak)
	}

	const eps = 0.05 // fraction of peak
	for k := 1; center+k*int(sps) < len(rc); k++ {
		idx := center + k*int(sps)
		if math.Abs(rc[idx]/peak) > eps {
			t.Fatalf("zero-ISI violated at symbol offset %d: value %v (%.3f%% of peak)", k, rc[idx], 100*rc[idx]/peak)
		}
	}
}
