/*
NAME
  demap.go

DESCRIPTION
  demap.go converts PLL-corrected data symbols into soft bits (8-bit signed,
  sign carrying hard-bit polarity, per the core's soft-symbol invariant:
  negative means logical 1, non-negative means 0).

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

package dvbs2

import "math/cmplx"

// Demapper converts corrected constellation symbols into soft bits against
// a fixed reference constellation.
type Demapper struct {
	constellation []complex128
	bitsPerSymbol int
}

// NewDemapper returns a Demapper for the given constellation/ring ratios.
func NewDemapper(c Constellation, g1, g2 float32) *Demapper {
	return &Demapper{
		constellation: constellationPoints(c, g1, g2),
		bitsPerSymbol: c.BitsPerSymbol(),
	}
}

// Demap converts symbols into len(symbols)*bitsPerSymbol soft bits. Each
// soft bit's sign carries hard-bit polarity (negative = 1, non-negative =
// 0) and its magnitude is proportional to decision confidence.
func (d *Demapper) Demap(symbols []complex64) []int8 {
	out := make([]int8, len(symbols)*d.bitsPerSymbol)
	for si, z := range symbols {
		bits := softBitsForSymbol(complex128(z), d.constellation, d.bitsPerSymbol)
		copy(out[si*d.bitsPerSymbol:], bits)
	}
	return out
}

// softBitsForSymbol computes, for each of bitsPerSymbol coded bits, a soft
// LLR-style value: the signed distance-weighted vote between the nearest
// constellation point with that bit set to 1 versus set to 0.
func softBitsForSymbol(z complex128, constellation []complex128, bitsPerSymbol int) []int8 {
	bits := make([]int8, bitsPerSymbol)
	for b := 0; b < bitsPerSymbol; b++ {
		var best0, best1 float64 = 1e9, 1e9
		for idx, pt := range constellation {
			d := cmplx.Abs(z - pt)
			if (idx>>(bitsPerSymbol-1-b))&1 == 0 {
				if d < best0 {
					best0 = d
				}
			} else {
				if d < best1 {
					best1 = d
				}
			}
		}
		// LLR-ish: positive when bit 0 is the more likely hypothesis.
		llr := best1 - best0
		v := int(llr * 40)
		if v > 127 {
			v = 127
		} else if v < -127 {
			v = -127
		}
		bits[b] = int8(v)
	}
	return bits
}
