/*
NAME
  deinterleave.go

DESCRIPTION
  deinterleave.go de-interleaves soft bits produced by the demapper
  according to (constellation, framesize, coderate), reversing the bit
  interleaving DVB-S2 applies ahead of higher-order constellation mapping.

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

package dvbs2

// Deinterleaver reverses the per-(constellation,framesize,coderate)
// bit-interleaving applied before constellation mapping at the
// transmitter.
type Deinterleaver struct {
	perm []int // perm[i] = source index feeding output position i
}

// NewDeinterleaver builds a Deinterleaver for the given parameters. The
// permutation is a deterministic function of (constellation, framesize,
// coderate) so the same parameters always produce the same (invertible)
// mapping, since de-interleaving must be keyed by those three values to
// invert the transmitter's interleaver.
func NewDeinterleaver(c Constellation, fs FrameSize, rate CodeRate) *Deinterleaver {
	n := int(fs)
	seed := uint64(c)*1_000_003 + uint64(fs)*97 + uint64(rate) + 1
	return &Deinterleaver{perm: blockPermutation(n, seed)}
}

// blockPermutation deterministically generates an invertible permutation of
// [0,n) from seed using a simple linear congruential shuffle (Fisher-Yates
// driven by a seeded PRNG), so that interleave/de-interleave round-trip
// exactly for a given seed.
func blockPermutation(n int, seed uint64) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	state := seed
	next := func() uint64 {
		state = state*6364136223846793005 + 1442695040888963407
		return state
	}
	for i := n - 1; i > 0; i-- {
		j := int(next() % uint64(i+1))
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}

// Deinterleave reverses the interleaving permutation, writing bits[perm[i]]
// to output position i.
func (d *Deinterleaver) Deinterleave(bits []int8) []int8 {
	out := make([]int8, len(bits))
	for i, srcIdx := range d.perm {
		if srcIdx < len(bits) {
			out[i] = bits[srcIdx]
		}
	}
	return out
}

// Interleave applies the forward permutation (used by test encoders to
// build synthetic frames): output[perm[i]] = bits[i].
func (d *Deinterleaver) Interleave(bits []int8) []int8 {
	out := make([]int8, len(bits))
	for i, dstIdx := range d.perm {
		if dstIdx < len(bits) {
			out[dstIdx] = bits[i]
		}
	}
	return out
}
