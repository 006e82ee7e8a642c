/*
NAME
  rrc.go

DESCRIPTION
  rrc.go generates root-raised-cosine FIR prototype taps, mirroring the
  firdes.root_raised_cosine(gain, fs, symrate, alpha, ntaps) call used by
  the reference receiver's RRC matched filter.

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

// Package firdes generates FIR filter prototypes (currently
// root-raised-cosine) used by dsp.FIR.
package firdes

import "math"

// RootRaisedCosine returns ntaps RRC filter coefficients scaled to gain,
// for a filter running at sampleRate samples/sec shaping symbols at
// symbolRate symbols/sec with roll-off alpha.
func RootRaisedCosine(gain, sampleRate, symbolRate, alpha float64, ntaps int) []float32 {
	taps := make([]float32, ntaps)
	spsym := sampleRate / symbolRate
	scale := 0.0

	for i := 0; i < ntaps; i++ {
		// t is time in symbol periods, centered on the filter.
		t := (float64(i) - float64(ntaps-1)/2.0) / spsym
		taps[i] = float32(rrcSample(t, alpha))
		scale += float64(taps[i])
	}

	// Normalize for unity DC gain, then apply the requested gain.
	if scale != 0 {
		for i := range taps {
			taps[i] = float32(float64(taps[i]) / scale * gain)
		}
	}
	return taps
}

// rrcSample evaluates the root-raised-cosine impulse response at t symbol
// periods from the center, with roll-off alpha.
func rrcSample(t, alpha float64) float64 {
	const eps = 1e-8

	if math.Abs(t) < eps {
		return 1.0 - alpha + 4*alpha/math.Pi
	}

	if alpha > eps && math.Abs(math.Abs(4*alpha*t)-1.0) < eps {
		return (alpha / math.Sqrt2) * (
			(1+2/math.Pi)*math.Sin(math.Pi/(4*alpha)) +
				(1-2/math.Pi)*math.Cos(math.Pi/(4*alpha)))
	}

	num := math.Sin(math.Pi*t*(1-alpha)) + 4*alpha*t*math.Cos(math.Pi*t*(1+alpha))
	den := math.Pi * t * (1 - math.Pow(4*alpha*t, 2))
	return num / den
}
