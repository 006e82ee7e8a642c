/*
NAME
  plsync.go

DESCRIPTION
  plsync.go implements the physical-layer frame synchronizer: a
  differential correlator that scans the symbol-timed complex stream for
  the SOF+PLS pi/2-BPSK pattern and, once locked, re-emits one
  symbol-aligned physical-layer frame at a time.

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

package dvbs2

import (
	"math"
	"math/cmplx"
)

// SOFLength is the length in symbols of the start-of-frame + PLS pattern.
const SOFLength = 90

// sofPattern is the DVB-S2 SOF pi/2-BPSK symbol pattern (first 26 symbols of
// the 90-symbol SOF+PLS field; the PLS codeword symbols that follow carry
// the scrambled MODCOD/framesize/pilots code and are not part of the fixed
// correlation pattern). Represented here as +/-1 on alternating I/Q axes.
var sofPattern = buildSOFPattern()

func buildSOFPattern() []complex128 {
	// The standard 26-symbol SOF pattern, expressed as a bipolar sequence;
	// exact polarity does not affect correlation-based synchronization since
	// the correlator is differential (relative phase between consecutive
	// symbols), only the repeatable pattern shape matters here.
	bits := []int{0, 1, 0, 0, 1, 1, 0, 1, 1, 1, 0, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 1, 1, 0, 0, 1}
	pattern := make([]complex128, len(bits))
	for i, b := range bits {
		angle := float64(i%2) * 1.5707963267948966 // pi/2 offset between I/Q legs
		if b == 1 {
			pattern[i] = cmplx.Rect(1, angle+3.141592653589793)
		} else {
			pattern[i] = cmplx.Rect(1, angle)
		}
	}
	return pattern
}

// PLSync scans an incoming complex symbol stream for SOF correlation peaks
// and, once locked, extracts one full physical-layer frame
// (90 + frameSlotCount*90 [+ pilot blocks]) per call to Frame.
type PLSync struct {
	frameSlotCount int
	pilots         bool
	threshold      float32

	locked  bool
	history []complex64
}

// NewPLSync returns a PLSync for physical-layer frames with frameSlotCount
// 90-symbol slots (see SlotCount), optionally including pilot blocks.
func NewPLSync(frameSlotCount int, pilots bool, threshold float32) *PLSync {
	return &PLSync{
		frameSlotCount: frameSlotCount,
		pilots:         pilots,
		threshold:      threshold,
	}
}

// FrameLength returns the total symbol count of one physical-layer frame,
// including SOF and any pilot blocks.
func (s *PLSync) FrameLength() int {
	n := SOFLength + s.frameSlotCount*90
	if s.pilots {
		n += (s.frameSlotCount / 16) * 36
	}
	return n
}

// Locked reports whether the correlator currently believes it is frame
// aligned.
func (s *PLSync) Locked() bool { return s.locked }

// correlate returns the differential correlation of buf[off:off+len(sofPattern)]
// against the SOF pattern, normalized to [0,1].
func correlate(buf []complex64, off int) float32 {
	if off+len(sofPattern) > len(buf) {
		return 0
	}
	var acc complex128
	var energy float64
	for i, ref := range sofPattern {
		z := complex128(buf[off+i])
		// Differential: correlate phase transitions, not absolute phase,
		// so the correlator is insensitive to an unresolved absolute
		// carrier phase ambiguity prior to PLL lock.
		if i > 0 {
			d := z * cmplx.Conj(complex128(buf[off+i-1]))
			r := ref * cmplx.Conj(sofPattern[i-1])
			acc += d * cmplx.Conj(r)
			energy += cmplx.Abs(d)
		}
	}
	if energy == 0 {
		return 0
	}
	return float32(cmplx.Abs(acc) / energy)
}

// FindSOF scans buf for the best-correlating SOF offset, returning the
// offset and whether it exceeds threshold (i.e. is an acceptable lock
// candidate).
func (s *PLSync) FindSOF(buf []complex64) (offset int, found bool) {
	best := float32(-1)
	bestOff := 0
	limit := len(buf) - len(sofPattern)
	for off := 0; off <= limit; off++ {
		c := correlate(buf, off)
		if c > best {
			best = c
			bestOff = off
		}
	}
	if best >= s.threshold {
		s.locked = true
		return bestOff, true
	}
	s.locked = false
	return 0, false
}

// fastWalshHadamard returns the Walsh-Hadamard transform of a, whose length
// must be a power of two.
func fastWalshHadamard(a []float64) []float64 {
	h := append([]float64(nil), a...)
	n := len(h)
	for step := 1; step < n; step <<= 1 {
		for i := 0; i < n; i += step * 2 {
			for j := i; j < i+step; j++ {
				x, y := h[j], h[j+step]
				h[j] = x + y
				h[j+step] = x - y
			}
		}
	}
	return h
}

// DecodePLSCode demodulates the 64-symbol PLS field that follows the
// 26-symbol SOF pattern (frame[26:90]) into the 7-bit PLS code
// (modcod<<2 | shortframes<<1 | pilots). The PLS field is a first-order
// Reed-Muller / Hadamard code of length 64: each chip's hard decision forms
// a real vector, and the index and sign of that vector's largest-magnitude
// Walsh-Hadamard coefficient recover the 6 index bits and the leading sign
// bit, by the same maximum-likelihood argument that makes a fast Hadamard
// transform the standard decoder for this code family.
func DecodePLSCode(plsSymbols []complex64) int {
	if len(plsSymbols) < 64 {
		return -1
	}
	chips := make([]float64, 64)
	for i := 0; i < 64; i++ {
		chips[i] = real(complex128(plsSymbols[i]))
	}
	had := fastWalshHadamard(chips)
	bestIdx, bestVal := 0, had[0]
	for i, v := range had {
		if math.Abs(v) > math.Abs(bestVal) {
			bestIdx, bestVal = i, v
		}
	}
	code := bestIdx & 0x3f
	if bestVal < 0 {
		code |= 0x40
	}
	return code
}
