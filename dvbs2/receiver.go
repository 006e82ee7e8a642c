/*
NAME
  receiver.go

DESCRIPTION
  receiver.go composes SOF sync, carrier tracking, soft
  de-mapping, de-interleaving, LDPC, BCH and descrambling into one dsp.Block
  implementing the DVB-S2 fast path: symbol-timed complex samples in,
  descrambled baseband-frame bits out, one float32 (0/1) per bit. It also estimates SNR/peak
  SNR, decodes the PLS header's MODCOD, and tracks LDPC/BCH per-frame
  metrics, and propagates a fraction of the PLL's residual frequency error
  back to an upstream FreqShift, mirroring the reference demodulator's
  outer frequency-correction loop.

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

package dvbs2

import (
	"math"
	"sync/atomic"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/satdump-go/core/dsp"
	"github.com/satdump-go/core/dvbs2/bch"
	"github.com/satdump-go/core/dvbs2/ldpc"
)

// DefaultFreqPropagationFactor is the fraction of the PLL's residual
// frequency error fed back to the upstream FreqShift each frame, matching
// the reference demodulator's slow outer-loop correction.
const DefaultFreqPropagationFactor = 0.01

// Config bundles the fixed, per-session DVB-S2 receiver configuration.
type Config struct {
	Modcod               int
	ShortFrames          bool
	Pilots               bool
	SOFThreshold         float32
	PLLLoopBW            float32
	LDPCTrials           int
	FreqPropagationFactor float64
}

// Receiver is a dsp.Block implementing the full DVB-S2 physical-layer fast
// path over a symbol-timed complex input stream.
type Receiver struct {
	cfg   Config
	info  ModcodInfo
	in    *dsp.Stream[complex64]
	out   *dsp.Stream[float32] // descrambled payload bits, one per float32 (0/1)
	shift *dsp.FreqShift        // upstream shifter to propagate frequency correction to

	sync    *PLSync
	pll     *PLL
	demap   *Demapper
	deint   *Deinterleaver
	ldpcDec *ldpc.Decoder
	bchDec  *bch.Decoder
	descr   *Descrambler

	frameBuf []complex64

	snrHistory []float64

	// Per-frame metrics, updated by Work's goroutine and read by any number
	// of telemetry readers; single-writer/multi-reader per spec.
	ldpcTrials     atomic.Int64
	bchCorrections atomic.Int64
	detectedModcod atomic.Int64
}

// NewReceiver returns a Receiver for cfg, reading symbol-timed samples from
// in and optionally propagating frequency corrections back to shift (nil
// disables propagation).
func NewReceiver(cfg Config, in *dsp.Stream[complex64], shift *dsp.FreqShift) (*Receiver, error) {
	info, err := Lookup(cfg.Modcod)
	if err != nil {
		return nil, errors.Wrap(err, "dvbs2: receiver init")
	}

	slots := SlotCount(info.Constellation, cfg.ShortFrames)
	frameSize := FrameNormal
	if cfg.ShortFrames {
		frameSize = FrameShort
	}

	sofThresh := cfg.SOFThreshold
	if sofThresh == 0 {
		sofThresh = 0.7
	}
	trials := cfg.LDPCTrials
	if trials == 0 {
		trials = 50
	}
	cfg.LDPCTrials = trials

	r := &Receiver{
		cfg:     cfg,
		info:    info,
		in:      in,
		out:     dsp.NewStream[float32](in.Capacity()),
		shift:   shift,
		sync:    NewPLSync(slots, cfg.Pilots, sofThresh),
		pll:     NewPLL(cfg.PLLLoopBW, info.Constellation, info.G1, info.G2, cfg.Pilots),
		demap:   NewDemapper(info.Constellation, info.G1, info.G2),
		deint:   NewDeinterleaver(info.Constellation, frameSize, info.CodeRate),
		ldpcDec: ldpc.NewDecoder(int(frameSize), info.CodeRate, trials),
		bchDec:  bch.NewDecoder(int(frameSize), int(frameSize)-192, 12),
		descr:   NewDescrambler(int(frameSize), info.CodeRate),
	}
	return r, nil
}

// Output returns the receiver's output stream of descrambled payload bits
// (one float32 per bit, 0.0/1.0).
func (r *Receiver) Output() *dsp.Stream[float32] { return r.out }

// MeanSNR returns the mean of recently estimated per-frame SNR samples (dB).
func (r *Receiver) MeanSNR() float64 {
	if len(r.snrHistory) == 0 {
		return 0
	}
	return stat.Mean(r.snrHistory, nil)
}

// PeakSNR returns the maximum recently observed per-frame SNR estimate (dB).
func (r *Receiver) PeakSNR() float64 {
	peak := math.Inf(-1)
	for _, v := range r.snrHistory {
		if v > peak {
			peak = v
		}
	}
	if math.IsInf(peak, -1) {
		return 0
	}
	return peak
}

// LDPCTrials returns the LDPC iteration count from the most recently
// decoded frame (maxTrials if exhausted without converging).
func (r *Receiver) LDPCTrials() int { return int(r.ldpcTrials.Load()) }

// BCHCorrections returns the number of bits the BCH stage corrected in the
// most recently decoded frame, or -1 if it failed to correct the frame.
func (r *Receiver) BCHCorrections() int { return int(r.bchCorrections.Load()) }

// DetectedModcod returns the MODCOD decoded from the most recently locked
// frame's PLS header.
func (r *Receiver) DetectedModcod() int { return int(r.detectedModcod.Load()) }

func (r *Receiver) Init() error  { return nil }
func (r *Receiver) Start() error { return nil }

func (r *Receiver) Stop() error {
	r.in.StopReader()
	r.out.StopWriter()
	return nil
}

// Work consumes one batch of symbols from the input stream, buffers them
// against the physical-layer frame boundary, and once a full frame is
// buffered, runs it through sync/PLL/demap/deinterleave/LDPC/BCH/descramble,
// publishing the recovered payload bits and propagating frequency feedback.
func (r *Receiver) Work() bool {
	n := r.in.Read()
	if n == 0 {
		r.out.StopWriter()
		return false
	}
	r.frameBuf = append(r.frameBuf, r.in.ReadBuf[:n]...)
	r.in.Flush()

	frameLen := r.sync.FrameLength()
	for len(r.frameBuf) >= frameLen {
		off, found := r.sync.FindSOF(r.frameBuf)
		if !found {
			// Not enough correlation yet; drop the older half of the buffer and
			// wait for more symbols rather than spin on a bad offset.
			drop := len(r.frameBuf) / 2
			if drop == 0 {
				drop = 1
			}
			r.frameBuf = r.frameBuf[drop:]
			continue
		}
		if off+frameLen > len(r.frameBuf) {
			break
		}
		frame := append([]complex64(nil), r.frameBuf[off:off+frameLen]...)
		r.frameBuf = r.frameBuf[off+frameLen:]

		r.processFrame(frame)
	}
	return true
}

func (r *Receiver) processFrame(frame []complex64) {
	r.pll.TrackSOF(frame, SOFLength)
	r.pll.TrackData(frame, SOFLength)

	if r.shift != nil {
		r.shift.SetFreq(-r.pll.Freq() * r.cfg.propagationFactor())
	}

	r.estimateSNR(frame)

	plsCode := DecodePLSCode(frame[26:SOFLength])
	if plsCode >= 0 {
		r.detectedModcod.Store(int64(plsCode >> 2))
	}

	data := frame[SOFLength:]
	soft := r.demap.Demap(data)
	deinterleaved := r.deint.Deinterleave(soft)

	iterations := r.ldpcDec.Decode(deinterleaved)
	if iterations < 0 {
		iterations = r.cfg.LDPCTrials
	}
	r.ldpcTrials.Store(int64(iterations))

	hard := make([]uint8, len(deinterleaved))
	for i, s := range deinterleaved {
		if s < 0 {
			hard[i] = 1
		}
	}
	corrections := r.bchDec.Decode(hard)
	r.bchCorrections.Store(int64(corrections))

	r.descr.Descramble(hard)

	r.publishBits(hard)
}

// publishBits converts hard bits to float32 0/1 values and publishes them
// on out in out.Capacity()-sized chunks: a single FECFRAME (16200 or 64800
// bits) routinely exceeds the stream's fixed buffer capacity, and Swap
// only ever publishes up to that capacity in one call.
func (r *Receiver) publishBits(bits []uint8) {
	chunkSize := r.out.Capacity()
	for off := 0; off < len(bits); off += chunkSize {
		end := off + chunkSize
		if end > len(bits) {
			end = len(bits)
		}
		chunk := bits[off:end]
		for i, b := range chunk {
			r.out.WriteBuf[i] = float32(b)
		}
		r.out.Swap(len(chunk))
	}
}

func (cfg Config) propagationFactor() float64 {
	if cfg.FreqPropagationFactor == 0 {
		return DefaultFreqPropagationFactor
	}
	return cfg.FreqPropagationFactor
}

// estimateSNR computes a crude per-frame SNR estimate from decision error
// magnitude against the nearest constellation point on data symbols, and
// records it for MeanSNR/PeakSNR.
func (r *Receiver) estimateSNR(frame []complex64) {
	data := frame[SOFLength:]
	if len(data) == 0 {
		return
	}
	points := constellationPoints(r.info.Constellation, r.info.G1, r.info.G2)
	var errEnergy, sigEnergy float64
	for _, z := range data {
		c := complex128(z)
		near := nearest(c, points)
		d := c - near
		errEnergy += real(d)*real(d) + imag(d)*imag(d)
		sigEnergy += real(near)*real(near) + imag(near)*imag(near)
	}
	if errEnergy == 0 {
		errEnergy = 1e-12
	}
	snrDB := 10 * math.Log10(sigEnergy/errEnergy)

	const historyLen = 64
	r.snrHistory = append(r.snrHistory, snrDB)
	if len(r.snrHistory) > historyLen {
		r.snrHistory = r.snrHistory[1:]
	}
}
