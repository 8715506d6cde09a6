package vfs

import (
	"runtime"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"
)

// directory-tree rendering prefixes, used verbatim by WriteTree in
// tree.go; kept here alongside the type they decorate.
const (
	dirPrefix  = "├── "
	filePrefix = "│   ├── "
)

// VFS is the flattened, merged view over one or more data roots and zero
// or more archives: a single map from normalized path to File. Build is
// the only way to construct one; a VFS is read-only for its entire
// lifetime once returned.
type VFS struct {
	files map[string]File
}

// Get returns the File registered at path (normalized before lookup) and
// whether one was found.
func (v *VFS) Get(path string) (File, bool) {
	f, ok := v.files[Normalize(path)]
	return f, ok
}

// Index returns the File registered at path, or the zero-value sentinel
// File if none is registered. Use Get when you need to distinguish a real
// empty-loose-path entry from a miss; Index exists for callers that would
// rather not thread an ok bool through every call site.
func (v *VFS) Index(path string) File {
	f, ok := v.Get(path)
	if !ok {
		return defaultFile()
	}
	return f
}

// HasFile reports whether some entry's Path() equals the normalized form
// of the given (typically absolute) path. Unlike Get/HasNormalizedFile,
// this compares against each entry's real path rather than its map key,
// so it only matches a file whose own path is already normalized.
func (v *VFS) HasFile(absolutePath string) bool {
	normalized := Normalize(absolutePath)
	for _, f := range v.files {
		if f.Path() == normalized {
			return true
		}
	}
	return false
}

// HasNormalizedFile reports whether some entry's key is a suffix of the
// normalized input, i.e. whether a file with this relative tail exists
// somewhere in the merged map.
func (v *VFS) HasNormalizedFile(absolutePath string) bool {
	normalized := Normalize(absolutePath)
	for k := range v.files {
		if strings.HasSuffix(normalized, k) {
			return true
		}
	}
	return false
}

// HasNormalizedNotExact reports whether some entry's key is a suffix of
// the normalized input and that entry's Path() differs from the input —
// i.e. a file with this relative tail exists, but registered under a
// different real path than the one given (the file is being shadowed or
// served from another layer).
func (v *VFS) HasNormalizedNotExact(absolutePath string) bool {
	normalized := Normalize(absolutePath)
	for k, f := range v.files {
		if strings.HasSuffix(normalized, k) && f.Path() != absolutePath {
			return true
		}
	}
	return false
}

// Len returns the number of entries in the merged map.
func (v *VFS) Len() int {
	return len(v.files)
}

// Iter calls fn for every (path, File) pair in the merged map. Iteration
// order is unspecified, matching Go's native map iteration.
func (v *VFS) Iter(fn func(path string, f File)) {
	for k, f := range v.files {
		fn(k, f)
	}
}

// ParIter calls fn for every (path, File) pair in the merged map, sharding
// the work across GOMAXPROCS goroutines. fn must be safe to call
// concurrently from multiple goroutines.
func (v *VFS) ParIter(fn func(path string, f File)) error {
	return v.parEach(func(k string, f File) error {
		fn(k, f)
		return nil
	})
}

// PathsWith returns every normalized path with the given normalized
// prefix.
func (v *VFS) PathsWith(prefix string) []string {
	prefix = Normalize(prefix)
	var out []string
	for k := range v.files {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}

// ParPathsWith is the parallel counterpart to PathsWith.
func (v *VFS) ParPathsWith(prefix string) ([]string, error) {
	prefix = Normalize(prefix)
	return v.parCollect(func(k string) bool {
		return strings.HasPrefix(k, prefix)
	})
}

// PathsMatching returns every normalized path containing the given
// normalized substring anywhere in it.
func (v *VFS) PathsMatching(substr string) []string {
	substr = Normalize(substr)
	var out []string
	for k := range v.files {
		if strings.Contains(k, substr) {
			out = append(out, k)
		}
	}
	return out
}

// ParPathsMatching is the parallel counterpart to PathsMatching.
func (v *VFS) ParPathsMatching(substr string) ([]string, error) {
	substr = Normalize(substr)
	return v.parCollect(func(k string) bool {
		return strings.Contains(k, substr)
	})
}

// PathsGlob returns every normalized path matching the given glob
// pattern. This is an addition beyond the prefix/substring queries: it
// lets a caller ask for e.g. "textures/**/*.dds" without the false
// positives a plain substring match would produce.
func (v *VFS) PathsGlob(pattern string) ([]string, error) {
	g, err := glob.Compile(Normalize(pattern), '/')
	if err != nil {
		return nil, invalidState("glob", pattern, err)
	}
	var out []string
	for k := range v.files {
		if g.Match(k) {
			out = append(out, k)
		}
	}
	return out, nil
}

// parCollect shards the map across GOMAXPROCS goroutines, calling keep on
// each key and gathering the keys it accepts. Result order is
// unspecified.
func (v *VFS) parCollect(keep func(key string) bool) ([]string, error) {
	var mu sync.Mutex
	var out []string
	err := v.parEach(func(k string, _ File) error {
		if keep(k) {
			mu.Lock()
			out = append(out, k)
			mu.Unlock()
		}
		return nil
	})
	return out, err
}

// parEach shards the underlying map into GOMAXPROCS batches and runs fn
// over each batch's entries from a separate goroutine, joined by an
// errgroup.Group whose Wait returns the first error fn returns, if any; an
// error stops only the batch it came from, and the other batches run to
// completion. fn itself never returns an error in this package's
// own callers; the error return exists so parEach is the one place that
// has to think about fan-out/join, rather than repeating it per query.
func (v *VFS) parEach(fn func(path string, f File) error) error {
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}

	type kv struct {
		path string
		file File
	}
	all := make([]kv, 0, len(v.files))
	for k, f := range v.files {
		all = append(all, kv{k, f})
	}

	if len(all) == 0 {
		return nil
	}
	if workers > len(all) {
		workers = len(all)
	}

	chunk := (len(all) + workers - 1) / workers
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= len(all) {
			break
		}
		end := start + chunk
		if end > len(all) {
			end = len(all)
		}
		batch := all[start:end]
		g.Go(func() error {
			for _, e := range batch {
				if err := fn(e.path, e.file); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
