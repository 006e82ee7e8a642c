/*
NAME
  dvbs2demod.go

DESCRIPTION
  dvbs2demod.go wires the staged DSP graph (frequency shift, correct-I/Q,
  AGC, matched filter, clock recovery) into the DVB-S2 receiver, as one
  ProcessingModule runnable either from a baseband file or a fused input
  stream. The graph has no resampler: samples are processed at the input
  sample rate.

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

package pipeline

import (
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"

	"github.com/satdump-go/core/dsp"
	"github.com/satdump-go/core/dsp/firdes"
	"github.com/satdump-go/core/dvbs2"
)

type dvbs2DemodModule struct {
	inputFile       string
	outputDirectory string
	params          map[string]any

	inputType  DataType
	outputType DataType

	inStream *dsp.RingBuffer

	outputs []string
	log     logging.Logger

	stopped chan struct{}
}

func newDVBS2DemodModule(inputFile, outputDirectory string, params map[string]any) (ProcessingModule, error) {
	return &dvbs2DemodModule{
		inputFile:       inputFile,
		outputDirectory: outputDirectory,
		params:          params,
		stopped:         make(chan struct{}),
	}, nil
}

func (m *dvbs2DemodModule) Init() error {
	return os.MkdirAll(m.outputDirectory, 0o755)
}

func (m *dvbs2DemodModule) InputTypes() []DataType  { return []DataType{DataFile, DataStream} }
func (m *dvbs2DemodModule) OutputTypes() []DataType { return []DataType{DataFile} }
func (m *dvbs2DemodModule) SetInputType(t DataType)  { m.inputType = t }
func (m *dvbs2DemodModule) SetOutputType(t DataType) { m.outputType = t }
func (m *dvbs2DemodModule) Outputs() []string        { return m.outputs }

func (m *dvbs2DemodModule) SetInputStream(rb *dsp.RingBuffer) { m.inStream = rb }
func (m *dvbs2DemodModule) SetOutputStream(*dsp.RingBuffer)   {}

func (m *dvbs2DemodModule) Stop() error {
	close(m.stopped)
	return nil
}

func paramFloat(params map[string]any, key string, def float64) float64 {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return def
}

func paramInt(params map[string]any, key string, def int) int {
	return int(paramFloat(params, key, float64(def)))
}

func paramBool(params map[string]any, key string, def bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Process reads complex64 baseband samples (either from inputFile or the
// fused input stream), runs them through the staged DSP graph, and writes
// the DVB-S2 receiver's recovered, descrambled baseband frame bits,
// packed 8-per-byte, to a file in outputDirectory.
func (m *dvbs2DemodModule) Process() error {
	sampleRate := paramFloat(m.params, "samplerate", 2_000_000)
	symbolRate := paramFloat(m.params, "symbolrate", 1_000_000)
	modcod := paramInt(m.params, "modcod", 4)
	shortFrames := paramBool(m.params, "shortframes", false)
	pilots := paramBool(m.params, "pilots", false)
	rrcAlpha := paramFloat(m.params, "rolloff", 0.35)

	var reader io.Reader
	if m.inputType == DataStream {
		if m.inStream == nil {
			return errors.New("dvbs2_demod: no input stream bound for streaming input")
		}
		reader = ringBufferReader{rb: m.inStream}
	} else {
		f, err := os.Open(m.inputFile)
		if err != nil {
			return errors.Wrap(err, "dvbs2_demod: opening input")
		}
		defer f.Close()
		reader = f
	}

	outputPath := filepath.Join(m.outputDirectory, "frames.bin")
	out, err := os.Create(outputPath)
	if err != nil {
		return errors.Wrap(err, "dvbs2_demod: creating output")
	}
	defer out.Close()

	in := dsp.NewStream[complex64](dsp.DefaultCapacity)

	freqShift := dsp.NewFreqShift(in, 0)
	dc := dsp.NewCorrectIQ(freqShift.Output(), dsp.DefaultDCAlpha)
	agc := dsp.NewAGC(dc.Output(), 1e-3, dsp.DefaultAGCReference, dsp.DefaultAGCClamp)

	taps := firdes.RootRaisedCosine(1.0, sampleRate, symbolRate, rrcAlpha, 63)
	matched := dsp.NewFIR(agc.Output(), taps)

	clock := dsp.NewClockRecovery(matched.Output(), float32(sampleRate/symbolRate), 0.01, 0.5, 0.01, 0.01)

	recv, err := dvbs2.NewReceiver(dvbs2.Config{
		Modcod:      modcod,
		ShortFrames: shortFrames,
		Pilots:      pilots,
		PLLLoopBW:   0.01,
	}, clock.Output(), freqShift)
	if err != nil {
		return errors.Wrap(err, "dvbs2_demod")
	}

	sched := []*dsp.Scheduler{
		dsp.NewScheduler(freqShift),
		dsp.NewScheduler(dc),
		dsp.NewScheduler(agc),
		dsp.NewScheduler(matched),
		dsp.NewScheduler(clock),
		dsp.NewScheduler(recv),
	}
	for _, s := range sched {
		s.Run()
	}

	go m.feed(reader, in)

	bitW := newBitPacker(out)
	for {
		select {
		case <-m.stopped:
			goto done
		default:
		}
		n := recv.Output().Read()
		if n == 0 {
			break
		}
		for i := 0; i < n; i++ {
			bitW.push(recv.Output().ReadBuf[i] != 0)
		}
		recv.Output().Flush()
	}
done:
	bitW.flush()

	for _, s := range sched {
		s.Stop()
	}

	m.outputs = []string{outputPath}
	return nil
}

// feed reads complex64 samples from r and publishes them onto in until EOF,
// then closes the writer side.
func (m *dvbs2DemodModule) feed(r io.Reader, in *dsp.Stream[complex64]) {
	buf := make([]byte, in.Capacity()*8)
	for {
		nRead, err := io.ReadFull(r, buf)
		nSamples := nRead / 8
		for i := 0; i < nSamples; i++ {
			re := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*8:]))
			im := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*8+4:]))
			in.WriteBuf[i] = complex(re, im)
		}
		if nSamples > 0 {
			in.Swap(nSamples)
		}
		if err != nil {
			in.StopWriter()
			return
		}
	}
}

// ringBufferReader adapts a dsp.RingBuffer to io.Reader for fused
// streaming input.
type ringBufferReader struct{ rb *dsp.RingBuffer }

func (r ringBufferReader) Read(p []byte) (int, error) {
	n := r.rb.Read(p)
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// bitPacker accumulates individual bits into bytes (MSB first) and writes
// them to w as each byte fills.
type bitPacker struct {
	w    io.Writer
	cur  byte
	nbit int
}

func newBitPacker(w io.Writer) *bitPacker { return &bitPacker{w: w} }

func (p *bitPacker) push(bit bool) {
	p.cur <<= 1
	if bit {
		p.cur |= 1
	}
	p.nbit++
	if p.nbit == 8 {
		p.w.Write([]byte{p.cur})
		p.cur = 0
		p.nbit = 0
	}
}

func (p *bitPacker) flush() {
	if p.nbit > 0 {
		p.cur <<= uint(8 - p.nbit)
		p.w.Write([]byte{p.cur})
		p.cur = 0
		p.nbit = 0
	}
}
