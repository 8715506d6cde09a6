package archive

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func header(magic uint32, rest ...byte) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, magic)
	return append(b, rest...)
}

func TestDetectTES4(t *testing.T) {
	r := bytes.NewReader(header(magicTES4, 0, 0, 0, 0))
	format, err := Detect(r)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if format != FormatTES4 {
		t.Errorf("Detect() = %v, want FormatTES4", format)
	}
}

func TestDetectFO4(t *testing.T) {
	r := bytes.NewReader(header(magicFO4, 0, 0, 0, 0))
	format, err := Detect(r)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if format != FormatFO4 {
		t.Errorf("Detect() = %v, want FormatFO4", format)
	}
}

func TestDetectTES3(t *testing.T) {
	r := bytes.NewReader(header(tes3Version, 0, 0, 0, 0))
	format, err := Detect(r)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if format != FormatTES3 {
		t.Errorf("Detect() = %v, want FormatTES3", format)
	}
}

func TestDetectUnknown(t *testing.T) {
	r := bytes.NewReader(header(0xDEADBEEF, 0, 0, 0, 0))
	format, err := Detect(r)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if format != FormatUnknown {
		t.Errorf("Detect() = %v, want FormatUnknown", format)
	}
}

func TestDetectRewindsReader(t *testing.T) {
	r := bytes.NewReader(header(magicTES4, 1, 2, 3, 4))
	if _, err := Detect(r); err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	pos, err := r.Seek(0, 1)
	if err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if pos != 0 {
		t.Errorf("reader position after Detect() = %d, want 0", pos)
	}
}
