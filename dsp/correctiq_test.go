package dsp

import (
	"math/cmplx"
	"testing"
)

func TestCorrectIQRemovesDCOffset(t *testing.T) {
	in := NewStream[complex64](64)
	b := NewCorrectIQ(in, 0.05)
	out := b.Output()

	go func() {
		for batch := 0; batch < 50; batch++ {
			n := 32
			for i := 0; i < n; i++ {
				in.WriteBuf[i] = complex(3, -2) // constant DC offset
			}
			in.Swap(n)
		}
		in.StopWriter()
	}()

	go func() {
		for b.Work() {
		}
	}()

	var last complex64
	for {
		n := out.Read()
		if n == 0 {
			break
		}
		last = out.ReadBuf[n-1]
		out.Flush()
	}

	if cmplx.Abs(complex128(last)) > 0.5 {
		t.Errorf("DC offset not removed: final sample %v", last)
	}
}
