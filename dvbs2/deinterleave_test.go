package dvbs2

import "testing"

func TestDeinterleaveInvertsInterleave(t *testing.T) {
	d := NewDeinterleaver(Mod8PSK, FrameShort, C2_3)
	n := int(FrameShort)
	original := make([]int8, n)
	for i := range original {
		original[i] = int8(i%7 - 3)
	}

	interleaved := d.Interleave(original)
	back := d.Deinterleave(interleaved)

	for i := range original {
		if back[i] != original[i] {
			t.Fatalf("round trip mismatch at %d: got %d want %d", i, back[i], original[i])
		}
	}
}

func TestDeinterleaverDeterministic(t *testing.T) {
	a := NewDeinterleaver(ModQPSK, FrameNormal, C1_2)
	b := NewDeinterleaver(ModQPSK, FrameNormal, C1_2)
	for i := range a.perm {
		if a.perm[i] != b.perm[i] {
			t.Fatalf("permutation not deterministic at %d", i)
		}
	}
}
