package dvbs2

import "testing"

func TestFindSOFLocksOnExactPattern(t *testing.T) {
	s := NewPLSync(90, false, 0.7)
	buf := make([]complex64, 200)
	for i := range buf {
		buf[i] = complex(1, 0)
	}
	copy(buf[50:], sofPattern)

	off, found := s.FindSOF(buf)
	if !found {
		t.Fatal("expected SOF lock on exact pattern")
	}
	if off != 50 {
		t.Errorf("FindSOF offset = %d, want 50", off)
	}
	if !s.Locked() {
		t.Error("Locked() should be true after a successful find")
	}
}

func TestFindSOFFailsOnNoise(t *testing.T) {
	s := NewPLSync(90, false, 0.95)
	buf := make([]complex64, 200)
	state := uint64(1)
	for i := range buf {
		state = state*6364136223846793005 + 1
		re := float32(state%2000)/1000 - 1
		state = state*6364136223846793005 + 1
		im := float32(state%2000)/1000 - 1
		buf[i] = complex(re, im)
	}
	if _, found := s.FindSOF(buf); found {
		t.Error("random noise should not exceed a high correlation threshold")
	}
}
