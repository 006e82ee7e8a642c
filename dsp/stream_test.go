/*
NAME
  stream_test.go

DESCRIPTION
  stream_test.go verifies the Stream FIFO property: for any sequence of
  writes, reads observe the same sequence prefix-wise until closure.

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

package dsp

import (
	"testing"
)

func TestStreamFIFO(t *testing.T) {
	s := NewStream[float32](4)
	batches := [][]float32{
		{1, 2, 3, 4},
		{5, 6},
		{7, 8, 9, 10},
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, b := range batches {
			copy(s.WriteBuf[:len(b)], b)
			s.Swap(len(b))
		}
		s.StopWriter()
	}()

	var got []float32
	for {
		n := s.Read()
		if n == 0 {
			break
		}
		got = append(got, s.ReadBuf[:n]...)
		s.Flush()
	}
	<-done

	var want []float32
	for _, b := range batches {
		want = append(want, b...)
	}

	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestStreamStopReaderUnblocksWriter(t *testing.T) {
	s := NewStream[float32](2)
	copy(s.WriteBuf, []float32{1, 2})
	s.Swap(2) // fills ReadBuf; next Swap would block until Flush.

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Swap(2) // should unblock once StopReader is called, not hang.
	}()

	s.StopReader()
	<-done
}

func TestStreamStopWriterEndsRead(t *testing.T) {
	s := NewStream[float32](2)
	s.StopWriter()
	if n := s.Read(); n != 0 {
		t.Fatalf("Read after StopWriter with no data = %d, want 0", n)
	}
}
