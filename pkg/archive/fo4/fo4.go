// Package fo4 reads the newer flat-key archive format whose file bodies
// are split into one or more chunks that are not necessarily contiguous on
// disk but must read back as one contiguous byte stream.
package fo4

import (
	"bytes"
	"encoding/binary"
	"io"
	"io/ioutil"

	"github.com/pkg/errors"

	"github.com/dreamweave-mp/vfstool/pkg/archive"
)

type header struct {
	FileCount uint32
}

type chunk struct {
	offset uint32
	size   uint32
}

type fileRecord struct {
	chunks []chunk
}

func (r fileRecord) totalSize() int64 {
	var total int64
	for _, c := range r.chunks {
		total += int64(c.size)
	}
	return total
}

// Archive is an opened FO4-format archive: a flat key table where each
// entry's body may span several chunks.
type Archive struct {
	r       io.ReaderAt
	entries []archive.Entry
	records map[string]fileRecord
}

// Read parses an FO4 archive from r.
func Read(r io.ReaderAt) (*Archive, error) {
	// The file count follows the 4-byte "BTDX" magic that archive.Detect
	// matches on.
	var hdrBuf [4]byte
	if _, err := r.ReadAt(hdrBuf[:], 4); err != nil {
		return nil, errors.Wrap(err, "read fo4 header")
	}
	h := header{FileCount: binary.LittleEndian.Uint32(hdrBuf[:])}

	a := &Archive{
		r:       r,
		entries: make([]archive.Entry, 0, h.FileCount),
		records: make(map[string]fileRecord, h.FileCount),
	}

	cursor := int64(8)
	for i := uint32(0); i < h.FileCount; i++ {
		name, rec, next, err := readFileEntry(r, cursor)
		if err != nil {
			return nil, errors.Wrapf(err, "read fo4 file %d", i)
		}
		cursor = next

		a.records[name] = rec
		a.entries = append(a.entries, archive.Entry{Name: name, Size: rec.totalSize()})
	}

	return a, nil
}

func readFileEntry(r io.ReaderAt, at int64) (name string, rec fileRecord, next int64, err error) {
	var lenBuf [2]byte
	if _, err = r.ReadAt(lenBuf[:], at); err != nil {
		return "", fileRecord{}, 0, err
	}
	nameLen := int64(binary.LittleEndian.Uint16(lenBuf[:]))
	nameBuf := make([]byte, nameLen)
	if _, err = r.ReadAt(nameBuf, at+2); err != nil {
		return "", fileRecord{}, 0, err
	}

	var chunkCountBuf [2]byte
	cursor := at + 2 + nameLen
	if _, err = r.ReadAt(chunkCountBuf[:], cursor); err != nil {
		return "", fileRecord{}, 0, err
	}
	chunkCount := int(binary.LittleEndian.Uint16(chunkCountBuf[:]))
	cursor += 2

	chunks := make([]chunk, chunkCount)
	for i := 0; i < chunkCount; i++ {
		var cbuf [8]byte
		if _, err = r.ReadAt(cbuf[:], cursor); err != nil {
			return "", fileRecord{}, 0, err
		}
		chunks[i] = chunk{
			offset: binary.LittleEndian.Uint32(cbuf[0:4]),
			size:   binary.LittleEndian.Uint32(cbuf[4:8]),
		}
		cursor += 8
	}

	return string(nameBuf), fileRecord{chunks: chunks}, cursor, nil
}

// Entries implements archive.Archive.
func (a *Archive) Entries() []archive.Entry {
	return a.entries
}

// Open implements archive.Archive, reading across chunk boundaries so the
// caller sees one contiguous stream regardless of how many chunks the body
// was split into on disk.
func (a *Archive) Open(name string) (io.ReadCloser, error) {
	rec, ok := a.records[name]
	if !ok {
		return nil, errors.Errorf("fo4: no such entry %q", name)
	}

	buf := make([]byte, 0, rec.totalSize())
	for _, c := range rec.chunks {
		part := make([]byte, c.size)
		if _, err := a.r.ReadAt(part, int64(c.offset)); err != nil && err != io.EOF {
			return nil, errors.Wrapf(err, "fo4: read chunk for %q", name)
		}
		buf = append(buf, part...)
	}

	return ioutil.NopCloser(bytes.NewReader(buf)), nil
}

// Close is a no-op: Archive does not own the underlying io.ReaderAt.
func (a *Archive) Close() error {
	return nil
}
