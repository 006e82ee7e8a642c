/*
NAME
  pll.go

DESCRIPTION
  pll.go implements the pilot-aware carrier tracking loop: within each
  physical-layer frame it estimates residual frequency/phase using
  data-aided updates on SOF/pilot symbols (known constellation points) and
  decision-directed updates on data symbols against the configured
  constellation. It exposes its running frequency error so the outer
  pipeline can slowly feed a fraction of it back to the upstream frequency
  shifter.

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

package dvbs2

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/stat"
)

// Constellation point sets, built once per Constellation/ring-ratio pair.

// constellationPoints returns the ideal constellation points for c (and,
// for APSK, ring ratios g1/g2).
func constellationPoints(c Constellation, g1, g2 float32) []complex128 {
	switch c {
	case ModQPSK:
		return psk(4, 0)
	case Mod8PSK:
		return psk(8, 0)
	case Mod16APSK:
		inner := ringPSK(4, 1.0, 0)
		outer := ringPSK(12, float64(g1), 0)
		return append(inner, outer...)
	case Mod32APSK:
		inner := ringPSK(4, 1.0, 0)
		mid := ringPSK(12, float64(g1), 0)
		outer := ringPSK(16, float64(g2), 0)
		return append(append(inner, mid...), outer...)
	default:
		return nil
	}
}

func psk(n int, phase0 float64) []complex128 {
	pts := make([]complex128, n)
	for i := range pts {
		pts[i] = cmplx.Rect(1, phase0+2*math.Pi*float64(i)/float64(n))
	}
	return pts
}

func ringPSK(n int, radius, phase0 float64) []complex128 {
	pts := make([]complex128, n)
	for i := range pts {
		pts[i] = cmplx.Rect(radius, phase0+2*math.Pi*float64(i)/float64(n))
	}
	return pts
}

// nearest returns the constellation point of pts closest to z.
func nearest(z complex128, pts []complex128) complex128 {
	best := pts[0]
	bestDist := cmplx.Abs(z - pts[0])
	for _, p := range pts[1:] {
		if d := cmplx.Abs(z - p); d < bestDist {
			bestDist = d
			best = p
		}
	}
	return best
}

// PLL tracks residual carrier frequency/phase within a physical-layer
// frame, combining SOF/pilot data-aided updates with decision-directed
// updates on data symbols.
type PLL struct {
	loopBW        float32
	constellation []complex128
	pilots        bool

	phase float64
	freq  float64

	recentFreq []float64
}

// NewPLL returns a PLL with the given loop bandwidth, tracking the given
// constellation (with APSK ring ratios g1/g2, ignored for PSK
// constellations).
func NewPLL(loopBW float32, c Constellation, g1, g2 float32, pilots bool) *PLL {
	return &PLL{
		loopBW:        loopBW,
		constellation: constellationPoints(c, g1, g2),
		pilots:        pilots,
		recentFreq:    make([]float64, 0, 64),
	}
}

// Freq returns the PLL's current running frequency error estimate
// (radians/symbol), for outer-loop propagation to the upstream frequency
// shifter.
func (p *PLL) Freq() float64 { return p.freq }

// MeanFreq returns the mean of recently observed frequency error samples,
// a smoother metric for telemetry.
func (p *PLL) MeanFreq() float64 {
	if len(p.recentFreq) == 0 {
		return 0
	}
	return stat.Mean(p.recentFreq, nil)
}

// update rotates z by the current phase estimate, computes a phase error
// against ref (the known symbol for data-aided tracking, or the nearest
// constellation point for decision-directed tracking), and advances the
// phase/frequency loop.
func (p *PLL) update(z, ref complex128) complex128 {
	rot := cmplx.Rect(1, -p.phase)
	corrected := z * rot

	err := cmplx.Phase(corrected * cmplx.Conj(ref))

	p.freq += float64(p.loopBW) * err * 0.1
	p.phase += p.freq + float64(p.loopBW)*err

	if len(p.recentFreq) == cap(p.recentFreq) {
		copy(p.recentFreq, p.recentFreq[1:])
		p.recentFreq = p.recentFreq[:len(p.recentFreq)-1]
	}
	p.recentFreq = append(p.recentFreq, p.freq)

	return corrected
}

// TrackSOF applies data-aided tracking to the frame's SOF/PLS symbols
// (known constellation points, approximated here as unit pi/2-BPSK
// symbols) in place.
func (p *PLL) TrackSOF(frame []complex64, sofLen int) {
	for i := 0; i < sofLen && i < len(frame); i++ {
		z := complex128(frame[i])
		ref := cmplx.Rect(1, math.Pi/4) // pi/2-BPSK reference axis.
		frame[i] = complex64(p.update(z, ref))
	}
}

// TrackData applies decision-directed tracking in place to every symbol
// from start to the end of the frame. Pilot blocks are not skipped or
// tracked against their known values: they are tracked decision-directed
// like data.
func (p *PLL) TrackData(frame []complex64, start int) {
	for i := start; i < len(frame); i++ {
		z := complex128(frame[i])
		ref := nearest(z, p.constellation)
		frame[i] = complex64(p.update(z, ref))
	}
}
