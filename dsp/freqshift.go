/*
NAME
  freqshift.go

DESCRIPTION
  freqshift.go rotates each incoming sample by a running phase, incremented
  by a settable per-sample phase delta. The outer DVB-S2 PLL uses SetFreq to
  slowly feed back long-term frequency drift so it can be absorbed before
  clock recovery.

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

package dsp

import (
	"math"
	"sync/atomic"
)

// FreqShift rotates a complex stream by a running phase, incremented by a
// runtime-adjustable per-sample delta.
type FreqShift struct {
	in, out *Stream[complex64]
	phase   float64
	delta   atomic.Value // float64
}

// NewFreqShift returns a FreqShift block reading from in with an initial
// per-sample phase delta (radians).
func NewFreqShift(in *Stream[complex64], delta float64) *FreqShift {
	b := &FreqShift{
		in:  in,
		out: NewStream[complex64](in.Capacity()),
	}
	b.delta.Store(delta)
	return b
}

// Output returns the block's output stream.
func (b *FreqShift) Output() *Stream[complex64] { return b.out }

// SetFreq sets the per-sample phase delta (radians) used going forward.
// Safe to call concurrently with Work.
func (b *FreqShift) SetFreq(delta float64) { b.delta.Store(delta) }

func (b *FreqShift) Init() error  { return nil }
func (b *FreqShift) Start() error { return nil }

func (b *FreqShift) Stop() error {
	b.in.StopReader()
	b.out.StopWriter()
	return nil
}

func (b *FreqShift) Work() bool {
	n := b.in.Read()
	if n == 0 {
		b.out.StopWriter()
		return false
	}
	delta := b.delta.Load().(float64)
	for i := 0; i < n; i++ {
		rot := complex(math.Cos(b.phase), math.Sin(b.phase))
		b.out.WriteBuf[i] = b.in.ReadBuf[i] * complex64(rot)
		b.phase += delta
		if b.phase > math.Pi {
			b.phase -= 2 * math.Pi
		} else if b.phase < -math.Pi {
			b.phase += 2 * math.Pi
		}
	}
	b.in.Flush()
	b.out.Swap(n)
	return true
}
