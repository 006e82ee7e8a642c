/*
NAME
  resampler.go

DESCRIPTION
  resampler.go implements a rational (polyphase-FIR) resampler: given an
  input rate and a desired output rate expressed as interpolation/decimation
  factors L/M, it upsamples by L (zero-stuffing implicit in the polyphase
  structure), low-pass filters, and decimates by M.

  ChooseRate picks the output rate as the smallest multiple of the symbol
  rate that puts samples-per-symbol in [MinSPS, MaxSPS], mirroring the
  reference receiver's BaseDemodModule::init rate selection.

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

package dsp

import "math"

// Bounds on samples-per-symbol after resampling/clock recovery.
const (
	MinSPS = 2.0
	MaxSPS = 5.0
)

// ChooseRate returns the output sample rate to resample to, and whether
// resampling is actually necessary, given an input rate and symbol rate.
// If the input's samples-per-symbol already falls in [MinSPS, MaxSPS], no
// resampling is needed and inputRate is returned unchanged.
func ChooseRate(inputRate, symbolRate float64) (outputRate float64, resample bool) {
	sps := inputRate / symbolRate
	if sps >= MinSPS && sps <= MaxSPS {
		return inputRate, false
	}
	// The smallest whole multiple of the symbol rate at or above MinSPS.
	return symbolRate * math.Ceil(MinSPS), true
}

// rational reduces l/m to lowest terms.
func rational(l, m int) (int, int) {
	a, b := l, m
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return l, m
	}
	return l / a, m / a
}

// Resampler is a polyphase-FIR rational resampler converting an input
// stream at inputRate to an output stream at outputRate.
type Resampler struct {
	in, out *Stream[complex64]

	interp, decim int
	phases        [][]float32 // per-phase tap subsets, indexed by input-sample phase
	history       []complex64
	histLen       int
	phase         int
}

// NewResampler returns a Resampler converting in (sampled at inputRate) to
// outputRate, built from a low-pass prototype filter with ntaps taps.
func NewResampler(in *Stream[complex64], inputRate, outputRate float64, ntaps int) *Resampler {
	// Express outputRate/inputRate as interp/decim in lowest terms, bounding
	// the search so pathological ratios don't blow up the phase count.
	const maxDenom = 10000
	l, m := rational(int(math.Round(outputRate*maxDenom)), int(math.Round(inputRate*maxDenom)))

	taps := lowpassPrototype(ntaps, float64(l))

	phases := make([][]float32, l)
	for p := 0; p < l; p++ {
		var ph []float32
		for i := p; i < len(taps); i += l {
			ph = append(ph, taps[i])
		}
		phases[p] = ph
	}

	maxPhaseLen := 0
	for _, ph := range phases {
		if len(ph) > maxPhaseLen {
			maxPhaseLen = len(ph)
		}
	}

	return &Resampler{
		in:      in,
		out:     NewStream[complex64](in.Capacity() * (l/m + 1)),
		interp:  l,
		decim:   m,
		phases:  phases,
		history: make([]complex64, maxPhaseLen+in.Capacity()),
		histLen: maxPhaseLen,
	}
}

// lowpassPrototype builds a windowed-sinc low-pass FIR prototype scaled for
// an interpolation factor of interp (so DC gain of the polyphase filter
// bank is unity after decimation).
func lowpassPrototype(ntaps int, interp float64) []float32 {
	taps := make([]float32, ntaps)
	cutoff := 1.0 / interp
	center := float64(ntaps-1) / 2.0
	sum := 0.0
	for i := 0; i < ntaps; i++ {
		x := float64(i) - center
		var h float64
		if x == 0 {
			h = 2 * cutoff
		} else {
			h = math.Sin(2*math.Pi*cutoff*x) / (math.Pi * x)
		}
		// Hamming window.
		w := 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(ntaps-1))
		taps[i] = float32(h * w)
		sum += h * w
	}
	if sum != 0 {
		for i := range taps {
			taps[i] = float32(float64(taps[i]) / sum * interp)
		}
	}
	return taps
}

// Output returns the block's output stream.
func (b *Resampler) Output() *Stream[complex64] { return b.out }

func (b *Resampler) Init() error  { return nil }
func (b *Resampler) Start() error { return nil }

func (b *Resampler) Stop() error {
	b.in.StopReader()
	b.out.StopWriter()
	return nil
}

// Work resamples one batch of input by interp/decim using the polyphase
// filter bank, writing as many output samples as fit in the capacity
// reserved for this batch.
func (b *Resampler) Work() bool {
	n := b.in.Read()
	if n == 0 {
		b.out.StopWriter()
		return false
	}

	copy(b.history[b.histLen:], b.in.ReadBuf[:n])
	b.in.Flush()

	nout := 0
	// Walk the combined history+new-samples buffer one input-sample step at
	// a time, emitting an output sample whenever the fractional polyphase
	// counter produces one (standard up/down polyphase resampling).
	total := b.histLen + n
	pos := 0 // upsampled-position counter for this call, reset on every call
	for pos < total*b.interp && nout < len(b.out.WriteBuf) {
		inIdx := pos / b.interp
		phaseIdx := pos % b.interp
		if inIdx >= b.histLen && inIdx-b.histLen+len(b.phases[phaseIdx]) > n {
			break
		}
		if inIdx+len(b.phases[phaseIdx]) > total {
			break
		}
		var acc complex64
		taps := b.phases[phaseIdx]
		for j, t := range taps {
			acc += b.history[inIdx+j] * complex(t, 0)
		}
		b.out.WriteBuf[nout] = acc
		nout++
		pos += b.decim
	}

	copy(b.history[:b.histLen], b.history[n:n+b.histLen])
	b.out.Swap(nout)
	return true
}
