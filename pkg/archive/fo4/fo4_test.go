package fo4

import (
	"bytes"
	"encoding/binary"
	"io/ioutil"
	"testing"
)

// buildFixture lays out a minimal FO4 archive with one file whose body is
// split across the given chunks (each chunk's bytes are placed
// contiguously in the fixture, but at the offsets recorded for it, so the
// reader genuinely has to follow the chunk table rather than just reading
// one contiguous span).
func buildFixture(t *testing.T, name string, chunks [][]byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("BTDX")                            // magic
	binary.Write(&buf, binary.LittleEndian, uint32(1)) // FileCount

	binary.Write(&buf, binary.LittleEndian, uint16(len(name)))
	buf.WriteString(name)
	binary.Write(&buf, binary.LittleEndian, uint16(len(chunks)))

	headerLen := 4 + 4 + 2 + len(name) + 2 + len(chunks)*8
	offset := headerLen
	offsets := make([]int, len(chunks))
	for i, c := range chunks {
		offsets[i] = offset
		offset += len(c)
	}
	for i, c := range chunks {
		binary.Write(&buf, binary.LittleEndian, uint32(offsets[i]))
		binary.Write(&buf, binary.LittleEndian, uint32(len(c)))
	}

	for _, c := range chunks {
		buf.Write(c)
	}

	return buf.Bytes()
}

func TestOpenReadsAcrossChunkBoundaries(t *testing.T) {
	data := buildFixture(t, "sound/fx/explosion.wav", [][]byte{
		[]byte("chunk-one-"),
		[]byte("chunk-two-"),
		[]byte("chunk-three"),
	})

	a, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	rc, err := a.Open("sound/fx/explosion.wav")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	got, err := ioutil.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	want := "chunk-one-chunk-two-chunk-three"
	if string(got) != want {
		t.Errorf("contents = %q, want %q", got, want)
	}
}

func TestEntriesReportsTotalSizeAcrossChunks(t *testing.T) {
	data := buildFixture(t, "x.wav", [][]byte{[]byte("abc"), []byte("de")})
	a, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	entries := a.Entries()
	if len(entries) != 1 {
		t.Fatalf("Entries() len = %d, want 1", len(entries))
	}
	if entries[0].Size != 5 {
		t.Errorf("Size = %d, want 5", entries[0].Size)
	}
}
