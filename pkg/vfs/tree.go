package vfs

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// DirectoryNode is one directory's worth of a tree projection: the files
// directly inside it, plus its child directories keyed by base name.
type DirectoryNode struct {
	Files   []File
	Subdirs map[string]*DirectoryNode
}

func newDirectoryNode() *DirectoryNode {
	return &DirectoryNode{Subdirs: make(map[string]*DirectoryNode)}
}

// sortedFileNames returns this node's file names in sorted order, the
// order Marshal and WriteTree both render in.
func (d *DirectoryNode) sortedFileNames() []string {
	names := make([]string, len(d.Files))
	for i, f := range d.Files {
		names[i] = f.FileName()
	}
	sort.Strings(names)
	return names
}

// sortedSubdirNames returns this node's subdirectory names in sorted
// order.
func (d *DirectoryNode) sortedSubdirNames() []string {
	names := make([]string, 0, len(d.Subdirs))
	for name := range d.Subdirs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Filter keeps only files matching keep and recursively filters
// subdirectories, pruning any that end up with no files and no
// surviving children.
func (d *DirectoryNode) Filter(keep func(File) bool) {
	filtered := d.Files[:0:0]
	for _, f := range d.Files {
		if keep(f) {
			filtered = append(filtered, f)
		}
	}
	d.Files = filtered

	for name, sub := range d.Subdirs {
		sub.Filter(keep)
		if len(sub.Files) == 0 && len(sub.Subdirs) == 0 {
			delete(d.Subdirs, name)
		}
	}
}

// Marshal produces this node's serializable shape: a map with a reserved
// "." key holding file names (present only when the node has files), plus
// one entry per subdirectory keyed by its base name.
func (d *DirectoryNode) Marshal() map[string]interface{} {
	out := make(map[string]interface{}, len(d.Subdirs)+1)
	if len(d.Files) > 0 {
		out["."] = d.sortedFileNames()
	}
	for name, sub := range d.Subdirs {
		out[name] = sub.Marshal()
	}
	return out
}

// DisplayTree is a tree projection of a VFS, rooted at a single name (see
// Tree/TreeFiltered). Its directory levels are plain maps rather than an
// ordered container —
// Go has no BTreeMap — with ordering applied at traversal/render time
// instead of maintained continuously.
type DisplayTree struct {
	Root     string
	Contents *DirectoryNode
}

// Tree projects the VFS into a DisplayTree rooted at "Data Files" when
// relative is true and at "/" otherwise. Each entry's place in the tree is
// computed by projectionPath: relative projections use the normalized key
// (archived files under their parent archive's name), absolute projections
// use the real, unnormalized path (archived files under their parent
// archive's path).
func (v *VFS) Tree(relative bool) *DisplayTree {
	return v.TreeFiltered(relative, func(File) bool { return true })
}

// TreeFiltered is Tree with a predicate applied during projection: a file
// is included only if keep(f) is true, and any directory left empty by
// filtering is pruned from the result.
func (v *VFS) TreeFiltered(relative bool, keep func(File) bool) *DisplayTree {
	root := "/"
	if relative {
		root = "Data Files"
	}

	dt := &DisplayTree{Root: root, Contents: newDirectoryNode()}

	v.Iter(func(key string, f File) {
		if !keep(f) {
			return
		}
		projected := projectionPath(relative, key, f)
		dt.insert(projected, f)
	})

	return dt
}

// projectionPath computes where an entry lives in the projected tree.
// When relative, a loose file projects under its own normalized map key
// and an archived file under its parent archive's base name joined with
// its normalized in-archive key, so entries from different archives
// don't collide just because their in-archive keys happen to match. When
// absolute, a loose file projects under its real, unnormalized path and
// an archived file under its parent archive's real path joined with its
// raw in-archive key.
func projectionPath(relative bool, normalizedKey string, f File) string {
	if relative {
		if f.IsLoose() {
			return normalizedKey
		}
		return Normalize(f.ParentArchiveName()) + "/" + Normalize(f.archiveKey)
	}
	if f.IsLoose() {
		return f.Path()
	}
	return f.ParentArchivePath() + "/" + f.archiveKey
}

func (dt *DisplayTree) insert(path string, f File) {
	parts := strings.Split(path, "/")
	node := dt.Contents
	for _, part := range parts[:len(parts)-1] {
		if part == "" {
			continue
		}
		child, ok := node.Subdirs[part]
		if !ok {
			child = newDirectoryNode()
			node.Subdirs[part] = child
		}
		node = child
	}
	node.Files = append(node.Files, f)
}

// Marshal produces the tree's serializable shape. Serialization to a
// concrete format (JSON, YAML, TOML, ...) is left to the caller: this
// returns the plain nested-map shape that any such serializer can consume
// without depending on this package's types.
func (dt *DisplayTree) Marshal() map[string]interface{} {
	return dt.Contents.Marshal()
}

// WriteTree renders a textual tree, one directory per line prefixed with
// "├── " and one file per line prefixed with "│   ├── ", matching the
// layered indentation of a conventional directory listing.
func (dt *DisplayTree) WriteTree(w io.Writer) error {
	if _, err := fmt.Fprintln(w, dt.Root); err != nil {
		return err
	}
	return writeNode(w, dt.Contents, "")
}

func writeNode(w io.Writer, node *DirectoryNode, indent string) error {
	for _, name := range node.sortedSubdirNames() {
		if _, err := fmt.Fprintf(w, "%s%s%s\n", indent, dirPrefix, name); err != nil {
			return err
		}
		if err := writeNode(w, node.Subdirs[name], indent+"    "); err != nil {
			return err
		}
	}
	for _, name := range node.sortedFileNames() {
		if _, err := fmt.Fprintf(w, "%s%s%s\n", indent, filePrefix, name); err != nil {
			return err
		}
	}
	return nil
}
