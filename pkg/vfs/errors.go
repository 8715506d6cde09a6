package vfs

import (
	"github.com/pkg/errors"
)

// Kind classifies a VFS error so callers can branch on failure mode without
// string matching.
type Kind int

const (
	// KindNotFound means the requested path has no entry in the merged map.
	KindNotFound Kind = iota
	// KindIO means the underlying os.File or archive handle returned an
	// I/O error unrelated to format or missing-data problems.
	KindIO
	// KindUnsupportedFormat means an archive's header didn't match any
	// known format, or matched a format this build can't decode.
	KindUnsupportedFormat
	// KindDecompressionFailed means a compressed span failed to inflate.
	KindDecompressionFailed
	// KindInvalidState means a caller used the API in a way its
	// invariants forbid (e.g. a glob pattern that does not compile, or an
	// archived File with no archive handle).
	KindInvalidState
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindIO:
		return "io"
	case KindUnsupportedFormat:
		return "unsupported_format"
	case KindDecompressionFailed:
		return "decompression_failed"
	case KindInvalidState:
		return "invalid_state"
	default:
		return "unknown"
	}
}

// Error is a VFS-level error carrying a Kind alongside the wrapped cause.
type Error struct {
	Kind Kind
	Path string
	Op   string
	err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return e.Op + " " + e.Path + ": " + e.err.Error()
	}
	return e.Op + ": " + e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}

func newError(kind Kind, op, path string, cause error) *Error {
	return &Error{Kind: kind, Path: path, Op: op, err: cause}
}

// Sentinel values so callers can use errors.Is against a specific kind
// without reaching into a concrete *Error.
var (
	ErrNotFound             = newError(KindNotFound, "lookup", "", errors.New("file not found"))
	ErrIO                   = newError(KindIO, "io", "", errors.New("i/o error"))
	ErrUnsupportedFormat    = newError(KindUnsupportedFormat, "detect", "", errors.New("unsupported archive format"))
	ErrDecompressionFailed  = newError(KindDecompressionFailed, "decompress", "", errors.New("decompression failed"))
	ErrInvalidState         = newError(KindInvalidState, "state", "", errors.New("invalid state"))
)

// Is lets errors.Is(err, ErrNotFound) etc. match any *Error of the same Kind,
// independent of Path/Op/cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func notFound(op, path string) error {
	return newError(KindNotFound, op, path, errors.New("file not found"))
}

func ioError(op, path string, cause error) error {
	return newError(KindIO, op, path, errors.Wrap(cause, "i/o error"))
}

func unsupportedFormat(op, path string, cause error) error {
	return newError(KindUnsupportedFormat, op, path, errors.Wrap(cause, "unsupported archive format"))
}

func decompressionFailed(op, path string, cause error) error {
	return newError(KindDecompressionFailed, op, path, errors.Wrap(cause, "decompression failed"))
}

func invalidState(op, path string, cause error) error {
	return newError(KindInvalidState, op, path, errors.Wrap(cause, "invalid state"))
}
