/*
NAME
  modcod.go

DESCRIPTION
  modcod.go tabulates the DVB-S2 MODCOD -> (constellation, coderate) mapping
  and the per-constellation/framesize slot counts, matching the reference
  receiver's DVBS2DemodModule::init switch.

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

// Package dvbs2 implements the DVB-S2 physical-layer receiver: SOF
// correlation, pilot-aware carrier tracking, soft de-mapping,
// de-interleaving, LDPC/BCH decoding and baseband-frame descrambling.
package dvbs2

import "fmt"

// Constellation identifies a DVB-S2 MODCOD's modulation.
type Constellation int

const (
	ModQPSK Constellation = iota
	Mod8PSK
	Mod16APSK
	Mod32APSK
)

func (c Constellation) String() string {
	switch c {
	case ModQPSK:
		return "QPSK"
	case Mod8PSK:
		return "8PSK"
	case Mod16APSK:
		return "16APSK"
	case Mod32APSK:
		return "32APSK"
	default:
		return "unknown"
	}
}

// BitsPerSymbol returns the number of coded bits carried by one symbol of
// the constellation.
func (c Constellation) BitsPerSymbol() int {
	switch c {
	case ModQPSK:
		return 2
	case Mod8PSK:
		return 3
	case Mod16APSK:
		return 4
	case Mod32APSK:
		return 5
	default:
		return 0
	}
}

// CodeRate identifies a DVB-S2 LDPC/BCH code rate.
type CodeRate int

const (
	C1_4 CodeRate = iota
	C1_3
	C2_5
	C1_2
	C3_5
	C2_3
	C3_4
	C4_5
	C5_6
	C8_9
	C9_10
)

// FrameSize selects the DVB-S2 FECFRAME length.
type FrameSize int

const (
	FrameShort  FrameSize = 16200
	FrameNormal FrameSize = 64800
)

// SlotCount returns the number of 90-symbol slots per physical-layer frame
// for a given constellation and framesize, per the fixed table in the
// core's data model.
func SlotCount(c Constellation, short bool) int {
	switch c {
	case ModQPSK:
		if short {
			return 90
		}
		return 360
	case Mod8PSK:
		if short {
			return 60
		}
		return 240
	case Mod16APSK:
		if short {
			return 45
		}
		return 180
	case Mod32APSK:
		if short {
			return 36
		}
		return 144
	default:
		return 0
	}
}

// ModcodInfo describes one MODCOD's constellation, code rate, and (for
// APSK constellations) ring radius ratios.
type ModcodInfo struct {
	Constellation Constellation
	CodeRate      CodeRate
	G1, G2        float32
}

// Modcods maps MODCOD index (1..28, per spec.md's 1..28 range; indices 25-28
// are reserved/unsupported here as in the reference) to its modulation and
// code rate.
var Modcods = map[int]ModcodInfo{
	1:  {Constellation: ModQPSK, CodeRate: C1_4},
	2:  {Constellation: ModQPSK, CodeRate: C1_3},
	3:  {Constellation: ModQPSK, CodeRate: C2_5},
	4:  {Constellation: ModQPSK, CodeRate: C1_2},
	5:  {Constellation: ModQPSK, CodeRate: C3_5},
	6:  {Constellation: ModQPSK, CodeRate: C2_3},
	7:  {Constellation: ModQPSK, CodeRate: C3_4},
	8:  {Constellation: ModQPSK, CodeRate: C4_5},
	9:  {Constellation: ModQPSK, CodeRate: C5_6},
	10: {Constellation: ModQPSK, CodeRate: C8_9},
	11: {Constellation: ModQPSK, CodeRate: C9_10},
	12: {Constellation: Mod8PSK, CodeRate: C3_5},
	13: {Constellation: Mod8PSK, CodeRate: C2_3},
	14: {Constellation: Mod8PSK, CodeRate: C3_4},
	15: {Constellation: Mod8PSK, CodeRate: C5_6},
	16: {Constellation: Mod8PSK, CodeRate: C8_9},
	17: {Constellation: Mod8PSK, CodeRate: C9_10},
	18: {Constellation: Mod16APSK, CodeRate: C2_3, G1: 3.15},
	19: {Constellation: Mod16APSK, CodeRate: C3_4, G1: 2.85},
	20: {Constellation: Mod16APSK, CodeRate: C4_5, G1: 2.75},
	21: {Constellation: Mod16APSK, CodeRate: C5_6, G1: 2.70},
	22: {Constellation: Mod16APSK, CodeRate: C8_9, G1: 2.60},
	23: {Constellation: Mod16APSK, CodeRate: C9_10, G1: 2.57},
	24: {Constellation: Mod32APSK, CodeRate: C3_4, G1: 2.84, G2: 5.27},
}

// Lookup returns the ModcodInfo for modcod, and an error if unsupported.
func Lookup(modcod int) (ModcodInfo, error) {
	info, ok := Modcods[modcod]
	if !ok {
		return ModcodInfo{}, fmt.Errorf("dvbs2: unsupported MODCOD %d", modcod)
	}
	return info, nil
}

// PLSCode computes the physical-layer signaling code carried with the SOF,
// encoding MODCOD, framesize, and pilot presence: modcod<<2 | short<<1 | pilots.
func PLSCode(modcod int, short, pilots bool) int {
	code := modcod << 2
	if short {
		code |= 0b10
	}
	if pilots {
		code |= 0b01
	}
	return code
}
