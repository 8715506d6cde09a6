// Package tes3 reads the legacy flat-key archive format: a single hash
// table mapping a normalized file name straight to a byte span in the
// archive, with no directory level and no per-file compression.
package tes3

import (
	"bytes"
	"encoding/binary"
	"io"
	"io/ioutil"

	"github.com/pkg/errors"

	"github.com/dreamweave-mp/vfstool/pkg/archive"
)

type header struct {
	Version     uint32
	HashOffset  uint32
	FileCount   uint32
}

type fileRecord struct {
	Size   uint32
	Offset uint32
}

// Archive is an opened TES3-format archive: one contiguous file handle, a
// flat name-to-span table built once at Read time, and nothing else — no
// directory level exists in this format.
type Archive struct {
	r       io.ReaderAt
	entries []archive.Entry
	spans   map[string]fileRecord
}

// Read parses a TES3 archive from r, which must support random access
// because file spans follow the name table at arbitrary offsets. The
// returned Archive keeps r open for Open calls; callers close the Archive
// (which does not close r — the caller owns that lifetime, matching the
// "shared archive handle must outlive its readers" contract the VFS layer
// relies on) when done issuing Open calls.
func Read(r io.ReaderAt) (*Archive, error) {
	var h header
	hdrBuf := make([]byte, 12)
	if _, err := r.ReadAt(hdrBuf, 0); err != nil {
		return nil, errors.Wrap(err, "read tes3 header")
	}
	h.Version = binary.LittleEndian.Uint32(hdrBuf[0:4])
	h.HashOffset = binary.LittleEndian.Uint32(hdrBuf[4:8])
	h.FileCount = binary.LittleEndian.Uint32(hdrBuf[8:12])

	// Layout after the 12-byte header: FileCount fileRecords (8 bytes
	// each), then FileCount 4-byte name offsets, then a packed name
	// block, then the hash table (HashOffset bytes into that region,
	// unused for lookup here since names double as the key).
	recordsOff := int64(12)
	records := make([]fileRecord, h.FileCount)
	recBuf := make([]byte, 8*h.FileCount)
	if _, err := r.ReadAt(recBuf, recordsOff); err != nil {
		return nil, errors.Wrap(err, "read tes3 file records")
	}
	for i := range records {
		records[i].Size = binary.LittleEndian.Uint32(recBuf[i*8 : i*8+4])
		records[i].Offset = binary.LittleEndian.Uint32(recBuf[i*8+4 : i*8+8])
	}

	nameOffsetsOff := recordsOff + int64(8*h.FileCount)
	nameOffBuf := make([]byte, 4*h.FileCount)
	if _, err := r.ReadAt(nameOffBuf, nameOffsetsOff); err != nil {
		return nil, errors.Wrap(err, "read tes3 name offsets")
	}
	nameOffsets := make([]uint32, h.FileCount)
	for i := range nameOffsets {
		nameOffsets[i] = binary.LittleEndian.Uint32(nameOffBuf[i*4 : i*4+4])
	}

	nameBlockOff := nameOffsetsOff + int64(4*h.FileCount)
	// The name block runs up to HashOffset bytes past nameBlockOff; read
	// it whole and slice null-terminated strings out of it.
	nameBlock := make([]byte, h.HashOffset)
	if _, err := r.ReadAt(nameBlock, nameBlockOff); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "read tes3 name block")
	}

	a := &Archive{
		r:       r,
		entries: make([]archive.Entry, 0, h.FileCount),
		spans:   make(map[string]fileRecord, h.FileCount),
	}
	for i, rec := range records {
		name := readCString(nameBlock, nameOffsets[i])
		a.entries = append(a.entries, archive.Entry{Name: name, Size: int64(rec.Size)})
		a.spans[name] = rec
	}

	return a, nil
}

func readCString(block []byte, offset uint32) string {
	if int(offset) >= len(block) {
		return ""
	}
	end := int(offset)
	for end < len(block) && block[end] != 0 {
		end++
	}
	return string(block[offset:end])
}

// Entries implements archive.Archive.
func (a *Archive) Entries() []archive.Entry {
	return a.entries
}

// Open implements archive.Archive. TES3 stores no compression flag: the
// span is the file verbatim.
func (a *Archive) Open(name string) (io.ReadCloser, error) {
	rec, ok := a.spans[name]
	if !ok {
		return nil, errors.Errorf("tes3: no such entry %q", name)
	}
	buf := make([]byte, rec.Size)
	if _, err := a.r.ReadAt(buf, int64(rec.Offset)); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "tes3: read span for %q", name)
	}
	return ioutil.NopCloser(bytes.NewReader(buf)), nil
}

// Close is a no-op: Archive does not own the underlying io.ReaderAt.
func (a *Archive) Close() error {
	return nil
}
