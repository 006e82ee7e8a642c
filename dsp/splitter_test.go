package dsp

import "testing"

func TestSplitterCopiesToEnabledOutputs(t *testing.T) {
	in := NewStream[complex64](64)
	s := NewSplitter(in, 2)
	s.SetEnabled(1, true)

	go func() {
		in.WriteBuf[0] = complex(1, 0)
		in.WriteBuf[1] = complex(2, 0)
		in.Swap(2)
		in.StopWriter()
	}()
	go func() {
		for s.Work() {
		}
	}()

	out0, out1 := s.Output(0), s.Output(1)

	n0 := out0.Read()
	if n0 != 2 || out0.ReadBuf[0] != complex(1, 0) {
		t.Fatalf("output 0: n=%d buf=%v", n0, out0.ReadBuf[:n0])
	}
	out0.Flush()

	n1 := out1.Read()
	if n1 != 2 || out1.ReadBuf[1] != complex(2, 0) {
		t.Fatalf("output 1: n=%d buf=%v", n1, out1.ReadBuf[:n1])
	}
	out1.Flush()
}

func TestSplitterDisabledByDefault(t *testing.T) {
	in := NewStream[complex64](64)
	s := NewSplitter(in, 3)
	if !s.enabled[0] {
		t.Error("output 0 should be enabled by default")
	}
	if s.enabled[1] || s.enabled[2] {
		t.Error("outputs other than 0 should be disabled by default")
	}
}
