package vfs

import (
	"bytes"
	"context"
	"encoding/binary"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildTES3Fixture mirrors pkg/archive/tes3's own on-disk layout so Build
// can exercise real archive detection and ingestion end to end.
func buildTES3Fixture(files map[string]string) []byte {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}

	var nameBlock bytes.Buffer
	nameOffsets := make([]uint32, len(names))
	for i, name := range names {
		nameOffsets[i] = uint32(nameBlock.Len())
		nameBlock.WriteString(name)
		nameBlock.WriteByte(0)
	}

	headerSize := 12
	recordsSize := 8 * len(names)
	nameOffsetsSize := 4 * len(names)
	bodiesStart := headerSize + recordsSize + nameOffsetsSize + nameBlock.Len()

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(0x100))
	binary.Write(&buf, binary.LittleEndian, uint32(nameBlock.Len()))
	binary.Write(&buf, binary.LittleEndian, uint32(len(names)))

	bodies := make([][]byte, len(names))
	offset := bodiesStart
	for i, name := range names {
		content := []byte(files[name])
		bodies[i] = content
		binary.Write(&buf, binary.LittleEndian, uint32(len(content)))
		binary.Write(&buf, binary.LittleEndian, uint32(offset))
		offset += len(content)
	}
	for _, o := range nameOffsets {
		binary.Write(&buf, binary.LittleEndian, o)
	}
	buf.Write(nameBlock.Bytes())
	for _, body := range bodies {
		buf.Write(body)
	}

	return buf.Bytes()
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0o644))
}

func TestBuildLooseOverridesArchive(t *testing.T) {
	root := t.TempDir()

	archiveBytes := buildTES3Fixture(map[string]string{
		"meshes/armor/iron.nif": "from archive",
	})
	require.NoError(t, ioutil.WriteFile(filepath.Join(root, "data.bsa"), archiveBytes, 0o644))

	writeFile(t, filepath.Join(root, "meshes/armor/iron.nif"), "from loose disk")

	v, err := Build(context.Background(), []string{root}, []string{"data.bsa"}, nil)
	require.NoError(t, err)

	f, ok := v.Get("meshes/armor/iron.nif")
	require.True(t, ok)
	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()
	got, err := ioutil.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "from loose disk", string(got), "loose file must override the archive entry of the same path")
	require.True(t, f.IsLoose())
}

func TestBuildArchiveOnlyEntrySurfaces(t *testing.T) {
	root := t.TempDir()
	archiveBytes := buildTES3Fixture(map[string]string{
		"textures/armor/iron.dds": "archived texture",
	})
	require.NoError(t, ioutil.WriteFile(filepath.Join(root, "data.bsa"), archiveBytes, 0o644))

	v, err := Build(context.Background(), []string{root}, []string{"data.bsa"}, nil)
	require.NoError(t, err)

	f, ok := v.Get("textures/armor/iron.dds")
	require.True(t, ok)
	require.True(t, f.IsArchive())
	require.Equal(t, "data.bsa", f.ParentArchiveName())

	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()
	got, err := ioutil.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "archived texture", string(got))
}

func TestBuildLaterRootWinsOverEarlierRoot(t *testing.T) {
	root1 := t.TempDir()
	root2 := t.TempDir()

	writeFile(t, filepath.Join(root1, "scripts/main.lua"), "version one")
	writeFile(t, filepath.Join(root2, "scripts/main.lua"), "version two")

	v, err := Build(context.Background(), []string{root1, root2}, nil, nil)
	require.NoError(t, err)

	f, ok := v.Get("scripts/main.lua")
	require.True(t, ok)
	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()
	got, err := ioutil.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "version two", string(got), "later-declared root must win over an earlier one")
}

func TestBuildSkipsUnresolvableArchiveName(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "readme.txt"), "not an archive")

	v, err := Build(context.Background(), []string{root}, []string{"nonexistent.bsa"}, nil)
	require.NoError(t, err, "a missing archive name must be skipped, not fail the whole build")
	require.Equal(t, 1, v.Len())
}

func TestBuildSkipsArchiveWithUnrecognizedFormat(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "data.bsa"), "this is not a valid archive header at all")

	v, err := Build(context.Background(), []string{root}, []string{"data.bsa"}, nil)
	require.NoError(t, err)
	// Only the archive file itself registers as a loose entry; its
	// contents never get ingested because detection failed.
	require.Equal(t, 1, v.Len())
	_, ok := v.Get("fake/entry.nif")
	require.False(t, ok)
}
