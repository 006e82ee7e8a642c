package dvbs2

import "testing"

func TestDescrambleIsSelfInverse(t *testing.T) {
	n := 4096
	d := NewDescrambler(n, C1_2)
	original := make([]uint8, n)
	for i := range original {
		original[i] = uint8(i % 2)
	}

	scrambled := append([]uint8(nil), original...)
	d.Descramble(scrambled)
	if equalBits(scrambled, original) {
		t.Fatal("descrambling should change a non-trivial payload")
	}

	d2 := NewDescrambler(n, C1_2)
	d2.Descramble(scrambled)
	if !equalBits(scrambled, original) {
		t.Fatal("applying the PRBS twice should restore the original payload")
	}
}

func equalBits(a, b []uint8) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
