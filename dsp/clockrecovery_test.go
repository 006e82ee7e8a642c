package dsp

import "testing"

func TestClockRecoveryProducesOneSamplePerSymbol(t *testing.T) {
	const sps = 4.0
	in := NewStream[complex64](256)
	cr := NewClockRecovery(in, sps, 0.01, float32(sps)/2, 0.01, 0.05)

	go func() {
		// A constant QPSK symbol held for 4 samples at a time, repeated.
		n := 128
		for i := 0; i < n; i++ {
			in.WriteBuf[i] = complex(1, 1)
		}
		in.Swap(n)
		in.StopWriter()
	}()
	go func() {
		for cr.Work() {
		}
	}()

	total := 0
	out := cr.Output()
	for {
		n := out.Read()
		if n == 0 {
			break
		}
		total += n
		out.Flush()
	}

	// Roughly one output sample per `sps` input samples; allow generous
	// tolerance since the loop's omega/mu drift slightly even on a constant
	// input.
	want := 128 / int(sps)
	if total < want/2 || total > want*2 {
		t.Errorf("got %d recovered symbols, want roughly %d", total, want)
	}
}
