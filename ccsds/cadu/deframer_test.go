package cadu

import "testing"

// bytesToBits expands each byte of buf into 8 individual 0/1 bytes,
// MSB first, matching the bit-per-byte convention Work expects.
func bytesToBits(buf []byte) []byte {
	bits := make([]byte, 0, len(buf)*8)
	for _, b := range buf {
		for i := 7; i >= 0; i-- {
			bits = append(bits, (b>>uint(i))&1)
		}
	}
	return bits
}

func buildCADUStream(k int, invert bool) []byte {
	frame := make([]byte, CADUSize)
	frame[0], frame[1], frame[2], frame[3] = 0x1A, 0xCF, 0xFC, 0x1D
	stream := make([]byte, 0, k*CADUSize)
	for i := 0; i < k; i++ {
		stream = append(stream, frame...)
	}
	if invert {
		for i := range stream {
			stream[i] = ^stream[i]
		}
	}
	return stream
}

func TestCADUSmoke(t *testing.T) {
	stream := buildCADUStream(10, false)
	bits := bytesToBits(stream)

	d := NewDeframer(0)
	frames := d.Work(bits, len(bits))

	if d.State() != StateLocked {
		t.Fatalf("state = %v, want LOCKED", d.State())
	}
	if d.FrameCount() != 10 {
		t.Fatalf("FrameCount() = %d, want 10", d.FrameCount())
	}
	if len(frames) != 10 {
		t.Fatalf("got %d frames, want 10", len(frames))
	}
	want := make([]byte, CADUSize)
	want[0], want[1], want[2], want[3] = 0x1A, 0xCF, 0xFC, 0x1D
	for fi, f := range frames {
		for i, b := range f {
			if b != want[i] {
				t.Fatalf("frame %d byte %d = 0x%02x, want 0x%02x", fi, i, b, want[i])
			}
		}
	}
}

func TestCADUInversion(t *testing.T) {
	stream := buildCADUStream(10, true)
	bits := bytesToBits(stream)

	d := NewDeframer(0)
	frames := d.Work(bits, len(bits))

	if !d.BitInversion() {
		t.Fatal("BitInversion() should be true for a complemented stream")
	}
	if d.FrameCount() != 10 {
		t.Fatalf("FrameCount() = %d, want 10", d.FrameCount())
	}
	// The deframer restores true polarity on output, so frames should match
	// the original (non-inverted) CADU content.
	want := make([]byte, CADUSize)
	want[0], want[1], want[2], want[3] = 0x1A, 0xCF, 0xFC, 0x1D
	for fi, f := range frames {
		for i, b := range f {
			if b != want[i] {
				t.Fatalf("frame %d byte %d = 0x%02x, want 0x%02x", fi, i, b, want[i])
			}
		}
	}
}
