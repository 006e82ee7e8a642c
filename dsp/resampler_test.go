package dsp

import "testing"

func TestChooseRateNoResampleWhenInRange(t *testing.T) {
	rate, resample := ChooseRate(4_000_000, 1_000_000) // sps = 4, within [2,5]
	if resample {
		t.Fatal("resample should be false when sps is already in range")
	}
	if rate != 4_000_000 {
		t.Errorf("rate = %v, want unchanged 4e6", rate)
	}
}

func TestChooseRateResamplesWhenOutOfRange(t *testing.T) {
	_, resample := ChooseRate(1_200_000, 1_000_000) // sps = 1.2, below MinSPS
	if !resample {
		t.Fatal("resample should be true when sps is out of range")
	}
}

func TestRationalReducesToLowestTerms(t *testing.T) {
	l, m := rational(100, 25)
	if l != 4 || m != 1 {
		t.Errorf("rational(100,25) = %d/%d, want 4/1", l, m)
	}
	l, m = rational(6, 9)
	if l != 2 || m != 3 {
		t.Errorf("rational(6,9) = %d/%d, want 2/3", l, m)
	}
}

func TestResamplerProducesOutput(t *testing.T) {
	in := NewStream[complex64](256)
	r := NewResampler(in, 4_000_000, 2_000_000, 31)

	go func() {
		for batch := 0; batch < 4; batch++ {
			n := 64
			for i := 0; i < n; i++ {
				in.WriteBuf[i] = complex(1, 0)
			}
			in.Swap(n)
		}
		in.StopWriter()
	}()
	go func() {
		for r.Work() {
		}
	}()

	total := 0
	out := r.Output()
	for {
		n := out.Read()
		if n == 0 {
			break
		}
		total += n
		out.Flush()
	}
	if total == 0 {
		t.Fatal("expected some resampled output samples")
	}
}
