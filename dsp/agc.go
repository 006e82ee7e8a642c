/*
NAME
  agc.go

DESCRIPTION
  agc.go implements a multiplicative automatic gain control block that
  drives signal magnitude toward a reference of 1.0.

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

package dsp

import (
	"math/cmplx"

	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultAGCReference is the target output magnitude.
	DefaultAGCReference = 1.0
	// DefaultAGCClamp bounds the internal gain to avoid runaway on silence.
	DefaultAGCClamp = 65536.0
)

// AGC is a multiplicative automatic gain control block: each sample is
// scaled by a running gain that is nudged toward the reference magnitude at
// rate r.
type AGC struct {
	in, out   *Stream[complex64]
	rate      float32
	reference float32
	clamp     float32
	gain      float32

	// recent holds a short window of output magnitudes for the Converged
	// diagnostic, backed by gonum/stat for its mean/variance helpers.
	recent []float64
}

// NewAGC returns an AGC block reading from in, adapting gain at rate,
// targeting reference magnitude, and clamping gain to ±clamp. Zero values
// select DefaultAGCReference / DefaultAGCClamp.
func NewAGC(in *Stream[complex64], rate, reference, clamp float32) *AGC {
	if reference <= 0 {
		reference = DefaultAGCReference
	}
	if clamp <= 0 {
		clamp = DefaultAGCClamp
	}
	return &AGC{
		in:        in,
		out:       NewStream[complex64](in.Capacity()),
		rate:      rate,
		reference: reference,
		clamp:     clamp,
		gain:      1,
		recent:    make([]float64, 0, 64),
	}
}

// Output returns the block's output stream.
func (b *AGC) Output() *Stream[complex64] { return b.out }

func (b *AGC) Init() error  { return nil }
func (b *AGC) Start() error { return nil }

func (b *AGC) Stop() error {
	b.in.StopReader()
	b.out.StopWriter()
	return nil
}

// Work applies the gain to one batch of samples, adapting it toward the
// reference magnitude after every sample.
func (b *AGC) Work() bool {
	n := b.in.Read()
	if n == 0 {
		b.out.StopWriter()
		return false
	}
	for i := 0; i < n; i++ {
		s := b.in.ReadBuf[i]
		out := complex64(complex128(s) * complex(float64(b.gain), 0))
		b.out.WriteBuf[i] = out

		mag := cmplx.Abs(complex128(out))
		b.gain += b.rate * float32(float64(b.reference)-mag)
		if b.gain > b.clamp {
			b.gain = b.clamp
		} else if b.gain < -b.clamp {
			b.gain = -b.clamp
		}

		if len(b.recent) == cap(b.recent) {
			copy(b.recent, b.recent[1:])
			b.recent = b.recent[:len(b.recent)-1]
		}
		b.recent = append(b.recent, mag)
	}
	b.in.Flush()
	b.out.Swap(n)
	return true
}

// Gain returns the AGC's current multiplicative gain.
func (b *AGC) Gain() float32 { return b.gain }

// Converged reports whether the recent window of output magnitudes sits
// within eps of the reference, per the AGC-convergence testable property.
func (b *AGC) Converged(eps float64) bool {
	if len(b.recent) == 0 {
		return false
	}
	mean := stat.Mean(b.recent, nil)
	return mean > float64(b.reference)-eps && mean < float64(b.reference)+eps
}
