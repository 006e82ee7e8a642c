/*
NAME
  fir.go

DESCRIPTION
  fir.go implements the FIR matched-filter block used for root-raised-cosine
  filtering (and any other fixed-tap filtering) on a stream of complex
  samples, and FIRReal, the equivalent for real-valued streams.

  Both keep a history buffer of length 2*capacity+ntaps so that the last ntaps-1
  samples from the previous call remain available to the dot product at the
  start of the next call; this sizing (not the tap-replication-by-alignment
  trick the reference C++ uses to keep VOLK's SIMD dot product aligned,
  which has no behavioural effect on the result) is what Go needs to
  preserve for correctness.

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

package dsp

// FIR is an aligned-history FIR filter operating on a stream of complex
// samples against a set of real-valued taps (used for the RRC matched
// filter and similar complex/real convolutions).
type FIR struct {
	in, out *Stream[complex64]
	taps    []float32 // stored oldest-first; reversed internally for convolution
	history []complex64
}

// NewFIR returns a FIR block reading from in and convolving against taps.
func NewFIR(in *Stream[complex64], taps []float32) *FIR {
	ntaps := len(taps)
	reversed := make([]float32, ntaps)
	for i, t := range taps {
		reversed[ntaps-1-i] = t
	}
	return &FIR{
		in:      in,
		out:     NewStream[complex64](in.Capacity()),
		taps:    reversed,
		history: make([]complex64, 2*in.Capacity()+ntaps),
	}
}

// Output returns the block's output stream.
func (b *FIR) Output() *Stream[complex64] { return b.out }

func (b *FIR) Init() error  { return nil }
func (b *FIR) Start() error { return nil }

func (b *FIR) Stop() error {
	b.in.StopReader()
	b.out.StopWriter()
	return nil
}

// Work convolves one batch of input against the filter taps, using the tail
// of the previous batch as history for the first ntaps-1 output samples.
func (b *FIR) Work() bool {
	n := b.in.Read()
	if n == 0 {
		b.out.StopWriter()
		return false
	}
	ntaps := len(b.taps)
	copy(b.history[ntaps:], b.in.ReadBuf[:n])
	b.in.Flush()

	for i := 0; i < n; i++ {
		var acc complex64
		window := b.history[i : i+ntaps]
		for j, t := range b.taps {
			acc += window[j] * complex(t, 0)
		}
		b.out.WriteBuf[i] = acc
	}
	b.out.Swap(n)

	copy(b.history[:ntaps], b.history[n:n+ntaps])
	return true
}

// FIRReal is the real-valued analogue of FIR.
type FIRReal struct {
	in, out *Stream[float32]
	taps    []float32
	history []float32
}

// NewFIRReal returns a FIRReal block reading from in and convolving against
// taps.
func NewFIRReal(in *Stream[float32], taps []float32) *FIRReal {
	ntaps := len(taps)
	reversed := make([]float32, ntaps)
	for i, t := range taps {
		reversed[ntaps-1-i] = t
	}
	return &FIRReal{
		in:      in,
		out:     NewStream[float32](in.Capacity()),
		taps:    reversed,
		history: make([]float32, 2*in.Capacity()+ntaps),
	}
}

// Output returns the block's output stream.
func (b *FIRReal) Output() *Stream[float32] { return b.out }

func (b *FIRReal) Init() error  { return nil }
func (b *FIRReal) Start() error { return nil }

func (b *FIRReal) Stop() error {
	b.in.StopReader()
	b.out.StopWriter()
	return nil
}

func (b *FIRReal) Work() bool {
	n := b.in.Read()
	if n == 0 {
		b.out.StopWriter()
		return false
	}
	ntaps := len(b.taps)
	copy(b.history[ntaps:], b.in.ReadBuf[:n])
	b.in.Flush()

	for i := 0; i < n; i++ {
		var acc float32
		window := b.history[i : i+ntaps]
		for j, t := range b.taps {
			acc += window[j] * t
		}
		b.out.WriteBuf[i] = acc
	}
	b.out.Swap(n)

	copy(b.history[:ntaps], b.history[n:n+ntaps])
	return true
}
