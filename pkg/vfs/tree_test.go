package vfs

import (
	"strings"
	"testing"
)

func TestTreeGroupsFilesByDirectory(t *testing.T) {
	v := newTestVFS()
	dt := v.Tree(false)

	if dt.Root != "/" {
		t.Errorf("Root = %q, want %q", dt.Root, "/")
	}

	// An absolute projection follows each loose file's real path, so the
	// fixture's "/data/..." paths all hang under a "data" directory.
	data, ok := dt.Contents.Subdirs["data"]
	if !ok {
		t.Fatal("expected a \"data\" subdirectory")
	}
	meshes, ok := data.Subdirs["meshes"]
	if !ok {
		t.Fatal("expected a \"data/meshes\" subdirectory")
	}
	armor, ok := meshes.Subdirs["armor"]
	if !ok {
		t.Fatal("expected a \"data/meshes/armor\" subdirectory")
	}
	if len(armor.Files) != 2 {
		t.Errorf("meshes/armor file count = %d, want 2", len(armor.Files))
	}
}

func TestTreeRelativeRootsAtDataFiles(t *testing.T) {
	v := newTestVFS()
	dt := v.Tree(true)
	if dt.Root != "Data Files" {
		t.Errorf("Root = %q, want %q", dt.Root, "Data Files")
	}
}

func TestTreeFilteredPrunesEmptyDirectories(t *testing.T) {
	v := newTestVFS()
	dt := v.TreeFiltered(true, func(f File) bool {
		return strings.HasSuffix(f.Path(), ".lua")
	})

	if _, ok := dt.Contents.Subdirs["meshes"]; ok {
		t.Error("meshes subdirectory should have been pruned: no .lua files in it")
	}
	scripts, ok := dt.Contents.Subdirs["scripts"]
	if !ok {
		t.Fatal("expected a surviving \"scripts\" subdirectory")
	}
	if len(scripts.Files) != 1 {
		t.Errorf("scripts file count = %d, want 1", len(scripts.Files))
	}
}

func TestDirectoryNodeMarshalReservesDotKey(t *testing.T) {
	v := newTestVFS()
	dt := v.Tree(true)

	scripts := dt.Contents.Subdirs["scripts"]
	marshaled := scripts.Marshal()
	names, ok := marshaled["."].([]string)
	if !ok {
		t.Fatalf(`Marshal()["."] = %T, want []string`, marshaled["."])
	}
	if len(names) != 1 || names[0] != "main.lua" {
		t.Errorf(`Marshal()["."] = %v, want ["main.lua"]`, names)
	}
}

func TestDirectoryNodeMarshalOmitsDotKeyWhenNoFiles(t *testing.T) {
	v := newTestVFS()
	dt := v.Tree(false)

	marshaled := dt.Contents.Marshal()
	if _, ok := marshaled["."]; ok {
		t.Error(`Marshal()["."] present at root, want absent: root has no direct files`)
	}
}

func TestWriteTreeRendersPrefixes(t *testing.T) {
	v := &VFS{files: map[string]File{
		"scripts/main.lua": newLooseFile("/data/scripts/main.lua"),
	}}
	dt := v.Tree(false)

	var sb strings.Builder
	if err := dt.WriteTree(&sb); err != nil {
		t.Fatalf("WriteTree() error = %v", err)
	}

	out := sb.String()
	if !strings.Contains(out, dirPrefix+"scripts") {
		t.Errorf("output missing directory line, got:\n%s", out)
	}
	if !strings.Contains(out, filePrefix+"main.lua") {
		t.Errorf("output missing file line, got:\n%s", out)
	}
}
