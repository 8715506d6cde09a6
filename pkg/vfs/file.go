package vfs

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/dreamweave-mp/vfstool/pkg/archive/tes4"
)

// File is the uniform handle the VFS hands back for every path in its
// merged map, whether the bytes live loose on disk or inside an archive.
// Go has no sum type, so the two variants live in one struct: archive nil
// means Loose (loosePath holds the real filesystem path), archive non-nil
// means Archived (archiveKey holds the name the archive itself uses to
// look the entry up, which is not necessarily normalized).
type File struct {
	loosePath  string
	archive    *storedArchive
	archiveKey string
}

// newLooseFile builds a File backed by a real filesystem path.
func newLooseFile(p string) File {
	return File{loosePath: p}
}

// newArchivedFile builds a File backed by an entry inside an already
// opened archive.
func newArchivedFile(key string, a *storedArchive) File {
	return File{archiveKey: key, archive: a}
}

var (
	sentinelOnce sync.Once
	sentinel     File
)

// defaultFile returns the stable zero-value File that Index returns for a
// missing path, so indexed lookups never need an ok-check. It is Loose
// with an empty path, matching the Rust Default impl this mirrors.
func defaultFile() File {
	sentinelOnce.Do(func() {
		sentinel = File{}
	})
	return sentinel
}

// IsLoose reports whether this File's bytes come from a real filesystem
// path rather than an archive.
func (f File) IsLoose() bool {
	return f.archive == nil
}

// IsArchive reports whether this File's bytes live inside an archive.
func (f File) IsArchive() bool {
	return f.archive != nil
}

// Path returns the path this File was registered under: the real
// filesystem path for a loose file, or the archive's own (unnormalized)
// key for an archived one.
func (f File) Path() string {
	if f.IsLoose() {
		return f.loosePath
	}
	return f.archiveKey
}

// FileName returns the base name component of Path, exactly as it
// appears in Path — Path is never normalized, so neither is FileName.
func (f File) FileName() string {
	p := f.Path()
	i := strings.LastIndexAny(p, "/\\")
	return p[i+1:]
}

// FileStem returns FileName with its final extension removed, if any.
func (f File) FileStem() string {
	name := f.FileName()
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}

// ParentArchivePath returns the on-disk path of the archive this File
// came from, or "" for a loose file.
func (f File) ParentArchivePath() string {
	if f.IsLoose() {
		return ""
	}
	return f.archive.path
}

// ParentArchiveName returns the base file name of the archive this File
// came from, or "" for a loose file.
func (f File) ParentArchiveName() string {
	if f.IsLoose() {
		return ""
	}
	return f.archive.Name()
}

// ParentArchiveHandle exposes the underlying archive reader so a caller
// that already knows the concrete archive type can use format-specific
// behavior beyond Open. It returns nil for a loose file.
func (f File) ParentArchiveHandle() interface{} {
	if f.IsLoose() {
		return nil
	}
	return f.archive.handle
}

// Open returns a reader over this File's bytes, dispatching to the real
// filesystem for a loose file or to the parent archive's decoder for an
// archived one.
func (f File) Open() (io.ReadCloser, error) {
	if f.IsLoose() {
		rc, err := os.Open(f.loosePath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, notFound("open", f.loosePath)
			}
			return nil, ioError("open", f.loosePath, err)
		}
		return rc, nil
	}

	if f.archive == nil || f.archive.handle == nil {
		return nil, invalidState("open", f.archiveKey, errors.New("archived file has no parent archive handle"))
	}
	rc, err := f.archive.handle.Open(f.archiveKey)
	if err != nil {
		return nil, decompressionFailedOrIO(f.archiveKey, err)
	}
	return rc, nil
}

func decompressionFailedOrIO(key string, err error) error {
	if tes4.IsDecompressionFailure(err) {
		return decompressionFailed("open", key, err)
	}
	return ioError("open", key, err)
}
