package vfs

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/dreamweave-mp/vfstool/pkg/archive"
	"github.com/dreamweave-mp/vfstool/pkg/archive/fo4"
	"github.com/dreamweave-mp/vfstool/pkg/archive/tes3"
	"github.com/dreamweave-mp/vfstool/pkg/archive/tes4"
)

// storedArchive keeps the OS file handle backing an opened archive alive
// for as long as any File still points at it. Go's garbage collector
// plays the role the original implementation gave Arc<StoredArchive>: as
// long as a File (held by callers or by the VFS's own map) references a
// storedArchive, it won't be collected, and its embedded *os.File stays
// open. The file is never closed explicitly by the VFS — it closes when
// the process exits or a caller drops every reference and the finalizer
// (if any) runs. This matches the "shared archive ownership" contract:
// nothing here ever calls f.Close() on behalf of a live File.
type storedArchive struct {
	loadID uuid.UUID
	path   string
	format archive.Format
	file   *os.File
	handle archive.Archive
}

func (s *storedArchive) Name() string {
	return filepath.Base(s.path)
}

// openStoredArchive probes path's format and dispatches to the matching
// decoder. It returns (nil, nil) when the header doesn't match any known
// format — callers are expected to skip such archives rather than treat
// the absence of a format as fatal, per the construction-time
// skip-and-log policy.
func openStoredArchive(path string) (*storedArchive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open archive file")
	}

	format, err := archive.Detect(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "detect archive format")
	}

	var handle archive.Archive
	switch format {
	case archive.FormatTES3:
		handle, err = tes3.Read(f)
	case archive.FormatTES4:
		handle, err = tes4.Read(f)
	case archive.FormatFO4:
		handle, err = fo4.Read(f)
	default:
		f.Close()
		return nil, nil
	}
	if err != nil {
		f.Close()
		return nil, unsupportedFormat("read archive", path, err)
	}

	return &storedArchive{
		loadID: uuid.New(),
		path:   path,
		format: format,
		file:   f,
		handle: handle,
	}, nil
}
