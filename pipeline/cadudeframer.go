/*
NAME
  cadudeframer.go

DESCRIPTION
  cadudeframer.go wraps ccsds/cadu.Deframer as a ProcessingModule for the
  frame-oriented pipeline path (e.g. LRPT, HRPT): demodulated hard bits in,
  224-byte CADUs concatenated out.

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

package pipeline

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/satdump-go/core/ccsds/cadu"
	"github.com/satdump-go/core/dsp"
)

type caduDeframerModule struct {
	inputFile       string
	outputDirectory string
	params          map[string]any

	inputType  DataType
	outputType DataType

	inStream *dsp.RingBuffer
	outputs  []string
	stopped  chan struct{}
}

func newCADUDeframerModule(inputFile, outputDirectory string, params map[string]any) (ProcessingModule, error) {
	return &caduDeframerModule{
		inputFile:       inputFile,
		outputDirectory: outputDirectory,
		params:          params,
		stopped:         make(chan struct{}),
	}, nil
}

func (m *caduDeframerModule) Init() error { return os.MkdirAll(m.outputDirectory, 0o755) }

func (m *caduDeframerModule) InputTypes() []DataType  { return []DataType{DataFile, DataStream} }
func (m *caduDeframerModule) OutputTypes() []DataType { return []DataType{DataFile} }
func (m *caduDeframerModule) SetInputType(t DataType)  { m.inputType = t }
func (m *caduDeframerModule) SetOutputType(t DataType) { m.outputType = t }
func (m *caduDeframerModule) Outputs() []string        { return m.outputs }

func (m *caduDeframerModule) SetInputStream(rb *dsp.RingBuffer) { m.inStream = rb }
func (m *caduDeframerModule) SetOutputStream(*dsp.RingBuffer)   {}

func (m *caduDeframerModule) Stop() error {
	close(m.stopped)
	return nil
}

// Process reads bytes (bit-packed, 8 bits per byte, MSB first) from either
// the input file or the fused input stream, expands them to one byte per
// bit, and writes every recovered CADU to frames.bin.
func (m *caduDeframerModule) Process() error {
	sepErrors := paramInt(m.params, "sep_errors", 0)

	var readByte func(buf []byte) (int, bool)
	if m.inputType == DataStream {
		if m.inStream == nil {
			return errors.New("cadu_deframer: no input stream bound for streaming input")
		}
		readByte = func(buf []byte) (int, bool) {
			n := m.inStream.Read(buf)
			return n, n > 0
		}
	} else {
		f, err := os.Open(m.inputFile)
		if err != nil {
			return errors.Wrap(err, "cadu_deframer: opening input")
		}
		defer f.Close()
		readByte = func(buf []byte) (int, bool) {
			n, _ := f.Read(buf)
			return n, n > 0
		}
	}

	outputPath := filepath.Join(m.outputDirectory, "frames.bin")
	out, err := os.Create(outputPath)
	if err != nil {
		return errors.Wrap(err, "cadu_deframer: creating output")
	}
	defer out.Close()

	d := cadu.NewDeframer(sepErrors)
	raw := make([]byte, 65536)
	bits := make([]byte, len(raw)*8)
	for {
		select {
		case <-m.stopped:
			m.outputs = []string{outputPath}
			return nil
		default:
		}
		n, ok := readByte(raw)
		if !ok {
			break
		}
		for i := 0; i < n; i++ {
			b := raw[i]
			for k := 0; k < 8; k++ {
				bits[i*8+k] = (b >> uint(7-k)) & 1
			}
		}
		for _, frame := range d.Work(bits, n*8) {
			out.Write(frame)
		}
	}

	m.outputs = []string{outputPath}
	return nil
}
