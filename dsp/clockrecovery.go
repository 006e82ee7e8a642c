/*
NAME
  clockrecovery.go

DESCRIPTION
  clockrecovery.go implements Mueller-Muller symbol timing recovery: it
  interpolates the incoming (oversampled) complex stream down to one sample
  per symbol, adjusting its estimate of the symbol period omega and
  fractional phase mu from the timing error
    eps = Re(conj(y)*(p-pp)) - Re(conj(p)*(y-yp))
  where y is the newly interpolated sample, p its hard decision, and yp/pp
  the previous sample/decision. omega is clamped to omega0*(1 +/- limit).

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

package dsp

// ClockRecovery performs Mueller-Muller timing recovery on an oversampled
// complex stream, producing one output sample per recovered symbol.
type ClockRecovery struct {
	in  *Stream[complex64]
	out *Stream[complex64]

	omega0     float32
	omega      float32
	omegaLimit float32
	gainOmega  float32
	mu         float32
	gainMu     float32

	prevSample complex64
	p, pp      complex64
	y, yp      complex64
}

// NewClockRecovery returns a ClockRecovery block reading from in.
//
// omega0 is the nominal samples-per-symbol, mu0 the initial fractional
// timing offset, gainMu/gainOmega the loop gains, and omegaLimit the
// fractional range (e.g. 0.01) that omega is allowed to drift from omega0.
func NewClockRecovery(in *Stream[complex64], omega0, gainOmega, mu0, gainMu, omegaLimit float32) *ClockRecovery {
	return &ClockRecovery{
		in:         in,
		out:        NewStream[complex64](in.Capacity()),
		omega0:     omega0,
		omega:      omega0,
		omegaLimit: omegaLimit,
		gainOmega:  gainOmega,
		mu:         mu0,
		gainMu:     gainMu,
	}
}

// Output returns the block's output stream, one complex sample per symbol.
func (b *ClockRecovery) Output() *Stream[complex64] { return b.out }

// Omega returns the block's current samples-per-symbol estimate.
func (b *ClockRecovery) Omega() float32 { return b.omega }

func (b *ClockRecovery) Init() error  { return nil }
func (b *ClockRecovery) Start() error { return nil }

func (b *ClockRecovery) Stop() error {
	b.in.StopReader()
	b.out.StopWriter()
	return nil
}

// sliceQPSK hard-decides a complex sample to the nearest QPSK constellation
// point; used only to derive the Mueller-Muller timing error, independent
// of the actual modulation in use further down the chain.
func sliceQPSK(y complex64) complex64 {
	re, im := real(y), imag(y)
	var sre, sim float32 = -1, -1
	if re >= 0 {
		sre = 1
	}
	if im >= 0 {
		sim = 1
	}
	return complex(sre, sim)
}

func (b *ClockRecovery) clampOmega() {
	lo := b.omega0 * (1 - b.omegaLimit)
	hi := b.omega0 * (1 + b.omegaLimit)
	if b.omega < lo {
		b.omega = lo
	} else if b.omega > hi {
		b.omega = hi
	}
}

// Work consumes one batch of oversampled input and produces however many
// recovered symbols fall within it.
func (b *ClockRecovery) Work() bool {
	n := b.in.Read()
	if n == 0 {
		b.out.StopWriter()
		return false
	}

	nout := 0
	for i := 0; i < n; i++ {
		cur := b.in.ReadBuf[i]
		b.mu--

		if b.mu <= 0 {
			frac := 1 + b.mu
			y := b.interpolate(b.prevSample, cur, frac)
			p := sliceQPSK(y)

			eps := real(complex128(conj(y))*(complex128(p)-complex128(b.pp))) -
				real(complex128(conj(p))*(complex128(y)-complex128(b.yp)))

			b.omega += b.gainOmega * float32(eps)
			b.clampOmega()
			b.mu += b.omega + b.gainMu*float32(eps)

			b.pp, b.yp = p, y

			if nout < len(b.out.WriteBuf) {
				b.out.WriteBuf[nout] = y
				nout++
			}
		}
		b.prevSample = cur
	}
	b.in.Flush()
	b.out.Swap(nout)
	return true
}

func (b *ClockRecovery) interpolate(prev, cur complex64, frac float32) complex64 {
	return complex64(complex128(prev)*complex(float64(1-frac), 0) + complex128(cur)*complex(float64(frac), 0))
}

func conj(z complex64) complex64 { return complex(real(z), -imag(z)) }
