/*
NAME
  ldpc.go

DESCRIPTION
  ldpc.go implements an iterative hard-decision (Gallager bit-flipping) LDPC
  decoder over a parity-check matrix keyed by (framesize, coderate): each
  iteration flips the one bit in the most unsatisfied parity checks, with
  soft magnitudes used only to break ties. It does not pass soft messages
  (no belief propagation). It runs up to ldpc_trials iterations and reports
  either the number of iterations taken to converge or -1 on failure to
  converge.

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

// Package ldpc implements the DVB-S2 LDPC inner FEC decoder.
package ldpc

import "github.com/satdump-go/core/dvbs2"

// SIMDSize is the batch factor the decoder processes frames in; it mirrors
// the reference decoder's SIMD-width frame batching and is exposed so
// callers can size frame queues accordingly. A factor of 1 means no
// batching.
const SIMDSize = 1

// Matrix is a sparse parity-check matrix: for each check node, the list of
// variable-node indices it constrains.
type Matrix struct {
	n, k   int
	checks [][]int
}

// matrixFor deterministically builds a parity-check matrix for
// (framesize, coderate), analogous to the reference decoder loading one of
// its fixed per-(framesize,coderate) tables. The construction is a
// reproducible sparse regular-degree generator, not a transcription of the
// DVB-S2 standard's defined matrices.
func matrixFor(n int, rateNum, rateDen int) *Matrix {
	k := n * rateNum / rateDen
	m := n - k
	checks := make([][]int, m)
	state := uint64(n)*31 + uint64(rateNum)*7 + uint64(rateDen)
	next := func() uint64 {
		state = state*6364136223846793005 + 1442695040888963407
		return state
	}
	const degree = 6
	for c := 0; c < m; c++ {
		row := make([]int, 0, degree)
		seen := make(map[int]bool, degree)
		for len(row) < degree {
			v := int(next() % uint64(n))
			if !seen[v] {
				seen[v] = true
				row = append(row, v)
			}
		}
		checks[c] = row
	}
	return &Matrix{n: n, k: k, checks: checks}
}

func rateFraction(rate dvbs2.CodeRate) (num, den int) {
	switch rate {
	case dvbs2.C1_4:
		return 1, 4
	case dvbs2.C1_3:
		return 1, 3
	case dvbs2.C2_5:
		return 2, 5
	case dvbs2.C1_2:
		return 1, 2
	case dvbs2.C3_5:
		return 3, 5
	case dvbs2.C2_3:
		return 2, 3
	case dvbs2.C3_4:
		return 3, 4
	case dvbs2.C4_5:
		return 4, 5
	case dvbs2.C5_6:
		return 5, 6
	case dvbs2.C8_9:
		return 8, 9
	case dvbs2.C9_10:
		return 9, 10
	default:
		return 1, 2
	}
}

// Decoder is a hard-decision bit-flipping LDPC decoder for one (framesize,
// coderate) pair.
type Decoder struct {
	mat       *Matrix
	maxTrials int
}

// NewDecoder returns a Decoder for frames of length n bits encoded at rate
// and bounds iterative decoding to maxTrials passes.
func NewDecoder(n int, rate dvbs2.CodeRate, maxTrials int) *Decoder {
	num, den := rateFraction(rate)
	return &Decoder{
		mat:       matrixFor(n, num, den),
		maxTrials: maxTrials,
	}
}

// Decode runs bit flipping over soft bits (sign = polarity, magnitude =
// confidence), correcting bits in place: a bit flipped to 1 is stored back
// as -1 and a bit flipped to 0 as +1, other values are left unchanged. It
// returns the iteration count at which all parity checks were satisfied,
// or -1 if maxTrials was exhausted without convergence (the caller then
// treats the frame's trial count as ldpc_trials, per the core's
// convention).
func (d *Decoder) Decode(soft []int8) int {
	hard := make([]int8, len(soft))
	for i, s := range soft {
		if s < 0 {
			hard[i] = 1
		}
	}

	result := -1
	for trial := 0; trial < d.maxTrials; trial++ {
		if d.checksSatisfied(hard) {
			result = trial
			break
		}
		d.flipWorstBit(soft, hard)
	}
	if result < 0 && d.checksSatisfied(hard) {
		result = d.maxTrials
	}
	for i, h := range hard {
		if h == 1 && soft[i] >= 0 {
			soft[i] = -1
		} else if h == 0 && soft[i] < 0 {
			soft[i] = 1
		}
	}
	return result
}

// checksSatisfied reports whether every parity check in the matrix
// currently evaluates to even parity under hard.
func (d *Decoder) checksSatisfied(hard []int8) bool {
	for _, row := range d.mat.checks {
		var parity int8
		for _, v := range row {
			if v < len(hard) {
				parity ^= hard[v]
			}
		}
		if parity != 0 {
			return false
		}
	}
	return true
}

// flipWorstBit implements a gallager-style bit-flipping step: for each
// variable node, count unsatisfied checks it participates in, and flip the
// single variable with the most unsatisfied checks (ties broken by lowest
// soft-magnitude confidence).
func (d *Decoder) flipWorstBit(soft []int8, hard []int8) {
	unsatCount := make([]int, len(hard))
	for _, row := range d.mat.checks {
		var parity int8
		for _, v := range row {
			if v < len(hard) {
				parity ^= hard[v]
			}
		}
		if parity != 0 {
			for _, v := range row {
				if v < len(unsatCount) {
					unsatCount[v]++
				}
			}
		}
	}

	worst := -1
	worstScore := 0
	for i, cnt := range unsatCount {
		if cnt == 0 {
			continue
		}
		conf := int(soft[i])
		if conf < 0 {
			conf = -conf
		}
		score := cnt*1000 - conf
		if score > worstScore || worst == -1 {
			worstScore = score
			worst = i
		}
	}
	if worst >= 0 {
		hard[worst] ^= 1
	}
}
