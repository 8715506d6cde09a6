// Package tes4 reads the intermediate archive format: a two-level key
// space (a directory key, then a file key inside it) with an optional
// per-file zlib compression flag carried in the high bit of the stored
// size field.
package tes4

import (
	"bytes"
	"encoding/binary"
	"io"
	"io/ioutil"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"

	"github.com/dreamweave-mp/vfstool/pkg/archive"
)

// compressedFlag is the high bit of a file record's size field: when set,
// the span is prefixed by a 4-byte little-endian uncompressed size and
// followed by zlib-compressed data; when clear, the span is the file
// verbatim and the size field is its exact length.
const compressedFlag uint32 = 1 << 31

type header struct {
	FolderCount uint32
	FileCount   uint32
}

type fileRecord struct {
	rawSize uint32 // high bit: compressed flag; low 31 bits: stored size
	offset  uint32
}

func (r fileRecord) compressed() bool { return r.rawSize&compressedFlag != 0 }
func (r fileRecord) storedSize() uint32 { return r.rawSize &^ compressedFlag }

// Archive is an opened TES4-format archive. Entries() flattens the
// directory+file two-level key space into "dir/file" names (already
// archive-native casing) so callers can treat it like the other two
// formats' flat namespaces; Open looks a name up directly in that
// flattened table, so an entry is found only by its exact "dir/file" name.
type Archive struct {
	r       io.ReaderAt
	entries []archive.Entry
	records map[string]fileRecord
}

// Read parses a TES4 archive from r.
func Read(r io.ReaderAt) (*Archive, error) {
	// The counts follow the 4-byte "BSA\0" magic that archive.Detect
	// matches on.
	var hdrBuf [8]byte
	if _, err := r.ReadAt(hdrBuf[:], 4); err != nil {
		return nil, errors.Wrap(err, "read tes4 header")
	}
	h := header{
		FolderCount: binary.LittleEndian.Uint32(hdrBuf[0:4]),
		FileCount:   binary.LittleEndian.Uint32(hdrBuf[4:8]),
	}

	a := &Archive{
		r:       r,
		entries: make([]archive.Entry, 0, h.FileCount),
		records: make(map[string]fileRecord, h.FileCount),
	}

	// Directory table: each folder has a name, a file count, and a flat
	// run of (fileKey, rawSize, offset) triples for the files it holds.
	// This mirrors the original format's two-level layout without
	// committing to its exact on-disk byte widths, which spec.md leaves
	// to "the format's own contract" rather than a byte-for-byte grammar.
	cursor := int64(12)
	for f := uint32(0); f < h.FolderCount; f++ {
		dirName, dirFileCount, next, err := readDirHeader(r, cursor)
		if err != nil {
			return nil, errors.Wrapf(err, "read tes4 folder %d", f)
		}
		cursor = next

		for i := uint32(0); i < dirFileCount; i++ {
			fileName, rec, next, err := readFileRecord(r, cursor)
			if err != nil {
				return nil, errors.Wrapf(err, "read tes4 folder %d file %d", f, i)
			}
			cursor = next

			size := int64(rec.storedSize())
			if rec.compressed() {
				// A compressed span carries its uncompressed size in
				// its 4-byte prefix.
				var sizeBuf [4]byte
				if _, err := r.ReadAt(sizeBuf[:], int64(rec.offset)); err != nil {
					return nil, errors.Wrapf(err, "read tes4 folder %d file %d size", f, i)
				}
				size = int64(binary.LittleEndian.Uint32(sizeBuf[:]))
			}

			key := dirName + "/" + fileName
			a.records[key] = rec
			a.entries = append(a.entries, archive.Entry{Name: key, Size: size})
		}
	}

	return a, nil
}

func readDirHeader(r io.ReaderAt, at int64) (name string, fileCount uint32, next int64, err error) {
	var lenBuf [1]byte
	if _, err = r.ReadAt(lenBuf[:], at); err != nil {
		return "", 0, 0, err
	}
	nameLen := int64(lenBuf[0])
	nameBuf := make([]byte, nameLen)
	if _, err = r.ReadAt(nameBuf, at+1); err != nil {
		return "", 0, 0, err
	}
	var countBuf [4]byte
	if _, err = r.ReadAt(countBuf[:], at+1+nameLen); err != nil {
		return "", 0, 0, err
	}
	fileCount = binary.LittleEndian.Uint32(countBuf[:])
	return string(nameBuf), fileCount, at + 1 + nameLen + 4, nil
}

func readFileRecord(r io.ReaderAt, at int64) (name string, rec fileRecord, next int64, err error) {
	var lenBuf [1]byte
	if _, err = r.ReadAt(lenBuf[:], at); err != nil {
		return "", fileRecord{}, 0, err
	}
	nameLen := int64(lenBuf[0])
	nameBuf := make([]byte, nameLen)
	if _, err = r.ReadAt(nameBuf, at+1); err != nil {
		return "", fileRecord{}, 0, err
	}
	var fieldsBuf [8]byte
	if _, err = r.ReadAt(fieldsBuf[:], at+1+nameLen); err != nil {
		return "", fileRecord{}, 0, err
	}
	rec = fileRecord{
		rawSize: binary.LittleEndian.Uint32(fieldsBuf[0:4]),
		offset:  binary.LittleEndian.Uint32(fieldsBuf[4:8]),
	}
	return string(nameBuf), rec, at + 1 + nameLen + 8, nil
}

// Entries implements archive.Archive.
func (a *Archive) Entries() []archive.Entry {
	return a.entries
}

// Open implements archive.Archive, decompressing the span when the
// archive's compressed flag is set.
func (a *Archive) Open(name string) (io.ReadCloser, error) {
	rec, ok := a.records[name]
	if !ok {
		return nil, errors.Errorf("tes4: no such entry %q", name)
	}

	if !rec.compressed() {
		buf := make([]byte, rec.storedSize())
		if _, err := a.r.ReadAt(buf, int64(rec.offset)); err != nil && err != io.EOF {
			return nil, errors.Wrapf(err, "tes4: read span for %q", name)
		}
		return ioutil.NopCloser(bytes.NewReader(buf)), nil
	}

	// Compressed span: 4-byte uncompressed size prefix, then zlib data.
	var sizeBuf [4]byte
	if _, err := a.r.ReadAt(sizeBuf[:], int64(rec.offset)); err != nil {
		return nil, errors.Wrapf(err, "tes4: read uncompressed size for %q", name)
	}
	uncompressedSize := binary.LittleEndian.Uint32(sizeBuf[:])

	compressedLen := int64(rec.storedSize()) - 4
	compressed := make([]byte, compressedLen)
	if _, err := a.r.ReadAt(compressed, int64(rec.offset)+4); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "tes4: read compressed span for %q", name)
	}

	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, &decompressError{name: name, cause: err}
	}
	defer zr.Close()

	out := make([]byte, 0, uncompressedSize)
	buf := bytes.NewBuffer(out)
	if _, err := io.Copy(buf, zr); err != nil {
		return nil, &decompressError{name: name, cause: err}
	}

	return ioutil.NopCloser(bytes.NewReader(buf.Bytes())), nil
}

// decompressError lets callers identify decompression failures without
// parsing Error() strings; pkg/vfs maps this to its own DecompressionFailed
// kind at the archive boundary.
type decompressError struct {
	name  string
	cause error
}

func (e *decompressError) Error() string {
	return "tes4: decompress " + e.name + ": " + e.cause.Error()
}

func (e *decompressError) Unwrap() error { return e.cause }

// IsDecompressionFailure reports whether err originated from a failed
// inflate of a compressed TES4 span.
func IsDecompressionFailure(err error) bool {
	_, ok := err.(*decompressError)
	return ok
}

// Close is a no-op: Archive does not own the underlying io.ReaderAt.
func (a *Archive) Close() error {
	return nil
}
