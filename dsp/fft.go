/*
NAME
  fft.go

DESCRIPTION
  fft.go implements the diagnostic FFT block: it windows and transforms the
  last M samples of the (typically Splitter-tapped) input stream and
  publishes magnitude-in-dB, for a UI/telemetry display. It sits off the
  decode path.

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

package dsp

import (
	"math"
	"sync"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// FFTBlock computes a windowed magnitude spectrum of its input for display
// purposes; it is diagnostic only and never sits on the decode path.
type FFTBlock struct {
	in   *Stream[complex64]
	size int

	mu       sync.Mutex
	mags     []float64 // most recent spectrum, magnitude in dB
	win      []float64
	buf      []complex128
}

// NewFFTBlock returns an FFTBlock windowing and transforming the last size
// samples of in. size should be a power of two (typically 8192).
func NewFFTBlock(in *Stream[complex64], size int) *FFTBlock {
	return &FFTBlock{
		in:   in,
		size: size,
		win:  window.Hamming(size),
		buf:  make([]complex128, size),
		mags: make([]float64, size),
	}
}

func (b *FFTBlock) Init() error  { return nil }
func (b *FFTBlock) Start() error { return nil }

func (b *FFTBlock) Stop() error {
	b.in.StopReader()
	return nil
}

// Spectrum returns the most recently computed magnitude-in-dB spectrum.
func (b *FFTBlock) Spectrum() []float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]float64, len(b.mags))
	copy(out, b.mags)
	return out
}

// Work reads one batch, windows up to size of its most recent samples, FFTs
// them, and republishes the magnitude-in-dB spectrum for readers of
// Spectrum.
func (b *FFTBlock) Work() bool {
	n := b.in.Read()
	if n == 0 {
		return false
	}

	take := n
	if take > b.size {
		take = b.size
	}
	start := n - take
	for i := 0; i < take; i++ {
		s := b.in.ReadBuf[start+i]
		b.buf[i] = complex(float64(real(s))*b.win[i], float64(imag(s))*b.win[i])
	}
	for i := take; i < b.size; i++ {
		b.buf[i] = 0
	}
	b.in.Flush()

	spectrum := fft.FFT(b.buf)

	b.mu.Lock()
	for i, c := range spectrum {
		mag := math.Hypot(real(c), imag(c)) / float64(b.size)
		if mag <= 0 {
			b.mags[i] = -200
		} else {
			b.mags[i] = 20 * math.Log10(mag)
		}
	}
	b.mu.Unlock()
	return true
}
