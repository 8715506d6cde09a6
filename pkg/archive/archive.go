// Package archive reads the three Bethesda-style archive formats a VFS can
// layer loose files over: TES3 (flat key, no compression), TES4
// (directory+file key, optional per-file zlib compression), and FO4 (flat
// key, chunked file bodies). Each format lives in its own subpackage and
// satisfies the Archive interface so the VFS build pipeline can treat them
// uniformly once the format has been probed.
package archive

import "io"

// Format identifies which of the three archive families a header matched.
type Format int

const (
	// FormatUnknown means Detect couldn't match any known magic header.
	FormatUnknown Format = iota
	FormatTES3
	FormatTES4
	FormatFO4
)

func (f Format) String() string {
	switch f {
	case FormatTES3:
		return "TES3"
	case FormatTES4:
		return "TES4"
	case FormatFO4:
		return "FO4"
	default:
		return "unknown"
	}
}

// Entry is one key in an archive's namespace: the archive-relative path as
// the archive itself stores it (not yet normalized) and its uncompressed
// size, so callers can build a VFS entry without opening the span.
type Entry struct {
	Name string
	Size int64
}

// Archive is the shared contract every format reader exposes once opened.
// Open returns the file's bytes fully materialized into memory: archive
// spans are small enough in practice (individual game assets, not whole
// archives) that a ReadCloser over a bytes.Reader is simpler than exposing
// partial-read semantics three different ways.
type Archive interface {
	// Entries lists every key this archive exposes, in the archive's own
	// enumeration order.
	Entries() []Entry
	// Open reads and, if necessary, decompresses the named entry. name
	// must match an Entries() Name exactly (archives look up by their
	// own stored casing/key scheme, not by normalized path).
	Open(name string) (io.ReadCloser, error)
	// Close releases what the reader itself holds. The tes3, tes4 and fo4
	// readers hold nothing beyond the io.ReaderAt they were given, which
	// stays owned by the caller, so their Close does nothing. ReadClosers
	// returned by Open remain valid after Close because Open fully
	// materializes its result before returning.
	Close() error
}
