package vfs

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/dreamweave-mp/vfstool/pkg/elog"
)

// Build walks roots in order (later roots override earlier ones) and
// resolves archiveNames against the resulting loose file map, producing a
// VFS whose final lookup table is: archive entries, overlaid by loose
// entries. Construction swallows per-entry errors (an unreadable directory
// entry, an archive that fails to open or doesn't match a known format)
// and logs them to log instead of aborting the whole build; log may be
// elog.Discard to silence diagnostics entirely.
//
// Roots are walked sequentially relative to each other so that "later root
// wins" is well defined, but the walk within each root runs in parallel —
// matching the directory_contents_to_file_map/from_directories split the
// algorithm is grounded on.
func Build(ctx context.Context, roots []string, archiveNames []string, log elog.Logger) (*VFS, error) {
	if log == nil {
		log = elog.Discard
	}

	looseMap := make(map[string]File)
	for _, root := range roots {
		entries, err := walkRootParallel(ctx, root, log)
		if err != nil {
			return nil, err
		}
		// Sequential merge across roots: later root's entries replace
		// earlier ones for the same normalized key. Order within a
		// root is not guaranteed (parallel walk), but root-to-root
		// order is, which is all the override policy requires.
		for k, v := range entries {
			looseMap[k] = v
		}
	}

	archives := openArchives(archiveNames, looseMap, log)

	archiveMap, err := ingestArchivesParallel(ctx, archives)
	if err != nil {
		return nil, err
	}

	// Final overlay: start from the archive map, then let loose entries
	// replace any colliding key. This is the "loose overrides archived"
	// rule applied at merge time rather than per-lookup.
	final := make(map[string]File, len(archiveMap)+len(looseMap))
	for k, v := range archiveMap {
		final[k] = v
	}
	for k, v := range looseMap {
		final[k] = v
	}

	return &VFS{files: final}, nil
}

func walkRootParallel(ctx context.Context, root string, log elog.Logger) (map[string]File, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		log.Warnf("vfs: skipping unreadable data root %q: %v", root, err)
		return map[string]File{}, nil
	}

	results := make([]map[string]File, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			sub := make(map[string]File)
			full := filepath.Join(root, entry.Name())
			walkInto(gctx, full, root, sub, log)
			results[i] = sub
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]File)
	for _, sub := range results {
		for k, v := range sub {
			merged[k] = v
		}
	}
	return merged, nil
}

// walkInto recursively visits start (a file or directory), recording
// every regular file under it keyed by its path relative to root,
// normalized. Errors walking a subtree are logged and that subtree is
// skipped rather than aborting the whole build.
func walkInto(ctx context.Context, start, root string, into map[string]File, log elog.Logger) {
	info, err := os.Stat(start)
	if err != nil {
		log.Warnf("vfs: skipping unreadable entry %q: %v", start, err)
		return
	}

	if !info.IsDir() {
		if !info.Mode().IsRegular() {
			return
		}
		rel, err := filepath.Rel(root, start)
		if err != nil {
			log.Warnf("vfs: skipping entry outside root %q: %v", start, err)
			return
		}
		into[Normalize(filepath.ToSlash(rel))] = newLooseFile(start)
		return
	}

	children, err := os.ReadDir(start)
	if err != nil {
		log.Warnf("vfs: skipping unreadable directory %q: %v", start, err)
		return
	}
	for _, child := range children {
		select {
		case <-ctx.Done():
			return
		default:
		}
		walkInto(ctx, filepath.Join(start, child.Name()), root, into, log)
	}
}

// openArchives resolves each requested archive name against the loose map
// (archives are themselves loose files somewhere under a data root) and
// opens/probes the ones that resolve, in the order given — later entries
// in archiveNames take precedence over earlier ones once ingested, which
// ingestArchivesParallel's merge direction preserves.
func openArchives(archiveNames []string, looseMap map[string]File, log elog.Logger) []*storedArchive {
	var out []*storedArchive
	for _, name := range archiveNames {
		key := Normalize(name)
		entry, ok := looseMap[key]
		if !ok {
			log.Warnf("vfs: archive %q not found among data roots", name)
			continue
		}
		a, err := openStoredArchive(entry.Path())
		if err != nil {
			log.Warnf("vfs: failed to open archive %q: %v", name, err)
			continue
		}
		if a == nil {
			log.Warnf("vfs: archive %q has an unrecognized format, skipping", name)
			continue
		}
		out = append(out, a)
	}
	return out
}

func ingestArchivesParallel(ctx context.Context, archives []*storedArchive) (map[string]File, error) {
	results := make([]map[string]File, len(archives))
	g, _ := errgroup.WithContext(ctx)
	for i, a := range archives {
		i, a := i, a
		g.Go(func() error {
			results[i] = ingestArchive(a)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]File)
	// Later archives in the input order win over earlier ones for a
	// colliding key, matching archives::file_map's flat_map-then-collect
	// (later entries overwrite earlier ones in a HashMap collect).
	for _, sub := range results {
		for k, v := range sub {
			merged[k] = v
		}
	}
	return merged, nil
}

func ingestArchive(a *storedArchive) map[string]File {
	out := make(map[string]File)
	for _, entry := range a.handle.Entries() {
		out[Normalize(entry.Name)] = newArchivedFile(entry.Name, a)
	}
	return out
}
