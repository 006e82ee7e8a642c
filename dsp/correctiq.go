/*
NAME
  correctiq.go

DESCRIPTION
  correctiq.go implements the DC blocker: a leaky running mean of I and Q
  subtracted from each incoming sample.

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

package dsp

// DefaultDCAlpha is the default leak rate for the running DC estimate.
const DefaultDCAlpha = 0.0002

// CorrectIQ tracks a leaky running mean of I and Q and subtracts it from
// each sample, removing DC offset introduced by the front-end.
type CorrectIQ struct {
	in, out *Stream[complex64]
	alpha   float32
	avgI    float32
	avgQ    float32
}

// NewCorrectIQ returns a CorrectIQ block reading from in with leak rate
// alpha (0 selects DefaultDCAlpha).
func NewCorrectIQ(in *Stream[complex64], alpha float32) *CorrectIQ {
	if alpha <= 0 {
		alpha = DefaultDCAlpha
	}
	return &CorrectIQ{
		in:    in,
		out:   NewStream[complex64](in.Capacity()),
		alpha: alpha,
	}
}

// Output returns the block's output stream.
func (b *CorrectIQ) Output() *Stream[complex64] { return b.out }

func (b *CorrectIQ) Init() error  { return nil }
func (b *CorrectIQ) Start() error { return nil }

func (b *CorrectIQ) Stop() error {
	b.in.StopReader()
	b.out.StopWriter()
	return nil
}

// Work reads one batch from the input, removes the tracked DC offset from
// each sample, and publishes the result.
func (b *CorrectIQ) Work() bool {
	n := b.in.Read()
	if n == 0 {
		b.out.StopWriter()
		return false
	}
	for i := 0; i < n; i++ {
		s := b.in.ReadBuf[i]
		re, im := real(s), imag(s)
		b.avgI += b.alpha * (re - b.avgI)
		b.avgQ += b.alpha * (im - b.avgQ)
		b.out.WriteBuf[i] = complex(re-b.avgI, im-b.avgQ)
	}
	b.in.Flush()
	b.out.Swap(n)
	return true
}
