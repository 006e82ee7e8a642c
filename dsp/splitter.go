/*
NAME
  splitter.go

DESCRIPTION
  splitter.go duplicates a stream to N independently-gated outputs, used to
  tap a diagnostic path (e.g. the FFT block) off the main decode chain
  without affecting it when the tap is disabled.

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

package dsp

// Splitter duplicates its input stream to N outputs. Each output can be
// enabled or disabled at runtime; a disabled output is not written to and
// never blocks the splitter.
type Splitter struct {
	in      *Stream[complex64]
	outs    []*Stream[complex64]
	enabled []bool
}

// NewSplitter returns a Splitter reading from in with n outputs, all
// disabled by default except the first (the main decode path).
func NewSplitter(in *Stream[complex64], n int) *Splitter {
	s := &Splitter{
		in:      in,
		outs:    make([]*Stream[complex64], n),
		enabled: make([]bool, n),
	}
	for i := range s.outs {
		s.outs[i] = NewStream[complex64](in.Capacity())
	}
	if n > 0 {
		s.enabled[0] = true
	}
	return s
}

// Output returns the i'th output stream.
func (s *Splitter) Output(i int) *Stream[complex64] { return s.outs[i] }

// SetEnabled gates output i on or off at runtime.
func (s *Splitter) SetEnabled(i int, enabled bool) { s.enabled[i] = enabled }

func (s *Splitter) Init() error  { return nil }
func (s *Splitter) Start() error { return nil }

func (s *Splitter) Stop() error {
	s.in.StopReader()
	for _, o := range s.outs {
		o.StopWriter()
	}
	return nil
}

// Work reads one batch and republishes it to every enabled output.
func (s *Splitter) Work() bool {
	n := s.in.Read()
	if n == 0 {
		for _, o := range s.outs {
			o.StopWriter()
		}
		return false
	}
	for i, o := range s.outs {
		if !s.enabled[i] {
			continue
		}
		copy(o.WriteBuf[:n], s.in.ReadBuf[:n])
		o.Swap(n)
	}
	s.in.Flush()
	return true
}
