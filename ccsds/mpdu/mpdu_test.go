package mpdu

import "testing"

func buildCADU(headerByte0, headerByte1 byte) []byte {
	cadu := make([]byte, 224)
	cadu[10] = headerByte0
	cadu[11] = headerByte1
	for i := 12; i < len(cadu); i++ {
		cadu[i] = byte(i)
	}
	return cadu
}

func TestParseNoInsertZone(t *testing.T) {
	// header byte0 low 3 bits = 0b101 = 5, header byte1 = 0x3C.
	cadu := buildCADU(0b11111101, 0x3C)
	m, err := Parse(cadu, false, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := uint16(5)<<8 | 0x3C
	if m.FirstHeaderPointer != want {
		t.Errorf("FirstHeaderPointer = 0x%x, want 0x%x", m.FirstHeaderPointer, want)
	}
	if len(m.Data) != len(cadu)-12 {
		t.Errorf("Data length = %d, want %d", len(m.Data), len(cadu)-12)
	}
	if m.Data[0] != cadu[12] {
		t.Error("Data should start at offset 12")
	}
}

func TestParseWithInsertZone(t *testing.T) {
	cadu := make([]byte, 224)
	insertZoneSize := 6
	cadu[10+insertZoneSize] = 0b00000010
	cadu[11+insertZoneSize] = 0x7F
	for i := 12 + insertZoneSize; i < len(cadu); i++ {
		cadu[i] = byte(i)
	}
	m, err := Parse(cadu, true, insertZoneSize)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := uint16(2)<<8 | 0x7F
	if m.FirstHeaderPointer != want {
		t.Errorf("FirstHeaderPointer = 0x%x, want 0x%x", m.FirstHeaderPointer, want)
	}
	if m.Data[0] != cadu[12+insertZoneSize] {
		t.Error("Data should start after the insert zone")
	}
}

func TestParseTooShort(t *testing.T) {
	cadu := make([]byte, 8)
	if _, err := Parse(cadu, false, 0); err == nil {
		t.Fatal("expected error for undersized CADU")
	}
}
