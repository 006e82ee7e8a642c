/*
NAME
  quadrature.go

DESCRIPTION
  quadrature.go implements quadrature (FM) demodulation: for successive
  complex samples z_n, it emits gain * arg(z_n * conj(z_n-1)).

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

package dsp

import "math/cmplx"

// QuadratureDemod demodulates a complex stream into instantaneous phase
// differences scaled by gain, producing a real-valued output.
type QuadratureDemod struct {
	in   *Stream[complex64]
	out  *Stream[float32]
	gain float32
	prev complex64
}

// NewQuadratureDemod returns a QuadratureDemod block reading from in with
// the given gain.
func NewQuadratureDemod(in *Stream[complex64], gain float32) *QuadratureDemod {
	return &QuadratureDemod{
		in:   in,
		out:  NewStream[float32](in.Capacity()),
		gain: gain,
		prev: 1, // unit magnitude, zero phase: first sample demodulates to ~0.
	}
}

// Output returns the block's output stream.
func (b *QuadratureDemod) Output() *Stream[float32] { return b.out }

func (b *QuadratureDemod) Init() error  { return nil }
func (b *QuadratureDemod) Start() error { return nil }

func (b *QuadratureDemod) Stop() error {
	b.in.StopReader()
	b.out.StopWriter()
	return nil
}

func (b *QuadratureDemod) Work() bool {
	n := b.in.Read()
	if n == 0 {
		b.out.StopWriter()
		return false
	}
	for i := 0; i < n; i++ {
		z := b.in.ReadBuf[i]
		d := complex128(z) * cmplx.Conj(complex128(b.prev))
		b.out.WriteBuf[i] = b.gain * float32(cmplx.Phase(d))
		b.prev = z
	}
	b.in.Flush()
	b.out.Swap(n)
	return true
}
