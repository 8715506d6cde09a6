package archive

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// magic numbers as laid out in each family's file header. TES3's BSA
// variant has no magic at all (it opens straight into a version+hash-table
// count pair), so it is the fallback once TES4 and FO4 are ruled out,
// mirroring the probe order the original archive reader used.
const (
	magicTES4 uint32 = 0x00415342 // "BSA\0"
	magicFO4  uint32 = 0x58445442 // "BTDX"
	tes3Version uint32 = 0x00000100
)

// Detect reads an archive's leading bytes to decide which format reader
// should open it, without consuming r for the caller (it seeks back to 0
// after reading the header, so callers may pass the same *os.File they intend to
// hand to a format reader next).
func Detect(r io.ReadSeeker) (Format, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return FormatUnknown, errors.Wrap(err, "seek to header")
	}
	var header [8]byte
	n, err := io.ReadFull(r, header[:])
	if _, seekErr := r.Seek(0, io.SeekStart); seekErr != nil {
		return FormatUnknown, errors.Wrap(seekErr, "rewind after header read")
	}
	if err != nil {
		if n < 4 {
			return FormatUnknown, errors.Wrap(err, "read header")
		}
		// short read past the magic but inside the version field is
		// still enough to decide TES3 vs unknown below.
	}

	magic := binary.LittleEndian.Uint32(header[0:4])
	switch magic {
	case magicTES4:
		return FormatTES4, nil
	case magicFO4:
		return FormatFO4, nil
	case tes3Version:
		// TES3 archives have no magic string: they open directly with
		// a version field in the same position.
		return FormatTES3, nil
	default:
		return FormatUnknown, nil
	}
}
