package dvbs2

import "testing"

func TestDemapSignConventionQPSK(t *testing.T) {
	d := NewDemapper(ModQPSK, 0, 0)
	points := constellationPoints(ModQPSK, 0, 0)

	for idx, pt := range points {
		bits := d.Demap([]complex64{complex64(pt)})
		if len(bits) != 2 {
			t.Fatalf("expected 2 soft bits per QPSK symbol, got %d", len(bits))
		}
		for b, soft := range bits {
			want := (idx >> (1 - b)) & 1
			got := 0
			if soft < 0 {
				got = 1
			}
			if got != want {
				t.Errorf("point %d bit %d: got polarity %d, want %d", idx, b, got, want)
			}
		}
	}
}

func TestDemapperConstellationSize(t *testing.T) {
	d := NewDemapper(Mod8PSK, 0, 0)
	points := constellationPoints(Mod8PSK, 0, 0)
	if len(d.constellation) != len(points) {
		t.Fatalf("constellation size mismatch: got %d want %d", len(d.constellation), len(points))
	}
}
