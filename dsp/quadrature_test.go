package dsp

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestQuadratureDemodConstantToneFrequency(t *testing.T) {
	in := NewStream[complex64](256)
	const freq = 0.1 // radians/sample
	b := NewQuadratureDemod(in, 1.0)
	out := b.Output()

	go func() {
		phase := 0.0
		for batch := 0; batch < 4; batch++ {
			n := 64
			for i := 0; i < n; i++ {
				in.WriteBuf[i] = complex64(cmplx.Rect(1, phase))
				phase += freq
			}
			in.Swap(n)
		}
		in.StopWriter()
	}()

	go func() {
		for b.Work() {
		}
	}()

	var samples []float32
	for {
		n := out.Read()
		if n == 0 {
			break
		}
		samples = append(samples, out.ReadBuf[:n]...)
		out.Flush()
	}

	if len(samples) < 10 {
		t.Fatalf("expected many demodulated samples, got %d", len(samples))
	}
	for i, s := range samples[1:] {
		if math.Abs(float64(s)-freq) > 0.01 {
			t.Errorf("sample %d = %v, want close to %v", i, s, freq)
		}
	}
}
