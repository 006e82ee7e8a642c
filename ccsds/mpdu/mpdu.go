/*
NAME
  mpdu.go

DESCRIPTION
  mpdu.go extracts the Multiplexing Protocol Data Unit header embedded in a
  CADU's transfer-frame payload: a first-header-pointer locating the start
  of the next encapsulated packet within the MPDU's data field.

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

// Package mpdu extracts CCSDS Multiplexing Protocol Data Units from CADU
// transfer-frame payloads.
package mpdu

import "fmt"

// NoFirstHeader is the reserved first-header-pointer value (0x7FF) meaning
// the MPDU carries no packet start (pure continuation data).
const NoFirstHeader = 0x7FF

// MPDU is one CADU's encapsulated data field, with its parsed
// first-header-pointer.
type MPDU struct {
	// FirstHeaderPointer is the byte offset, within Data, of the start of
	// the next encapsulated packet (NoFirstHeader if none starts here).
	FirstHeaderPointer uint16
	// Data is the MPDU payload following its 2-byte header, as a slice
	// into the caller-owned CADU buffer (not copied).
	Data []byte
}

// baseHeaderOffset and baseDataOffset locate the MPDU header within a CADU
// depending on whether a VCDU insert zone is present, matching the
// reference parser's fixed transfer-frame layout.
const baseHeaderOffset = 10
const baseDataOffset = 12

// Parse extracts the MPDU header from cadu (a full 224-byte CADU buffer,
// ASM included). When hasInsertZone is true, insertZoneSize additional
// bytes of VCDU insert zone precede the MPDU header and are skipped.
//
// The first-header-pointer is packed as the low 3 bits of the header's
// first byte, shifted up, OR'd with the second byte in full — parenthesized
// explicitly here (unlike a naive transcription of the reference formula)
// so operator precedence can never silently take the mask of the wrong
// sub-expression.
func Parse(cadu []byte, hasInsertZone bool, insertZoneSize int) (MPDU, error) {
	headerOffset := baseHeaderOffset
	dataOffset := baseDataOffset
	if hasInsertZone {
		headerOffset += insertZoneSize
		dataOffset += insertZoneSize
	}
	if dataOffset > len(cadu) {
		return MPDU{}, fmt.Errorf("mpdu: cadu too short for header at offset %d (len %d)", headerOffset, len(cadu))
	}

	hi := uint16(cadu[headerOffset] % 8) // low 3 bits of the first header byte
	lo := uint16(cadu[headerOffset+1])
	fhp := (hi << 8) | lo

	return MPDU{
		FirstHeaderPointer: fhp,
		Data:               cadu[dataOffset:],
	}, nil
}
