package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dreamweave-mp/vfstool/pkg/vfs"
)

var (
	flagLsPrefix string
	flagLsGlob   string
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List paths registered in the merged file system",
	RunE: func(cmd *cobra.Command, args []string) error {
		var paths []string
		switch {
		case flagLsGlob != "":
			var err error
			paths, err = vfsInstance.PathsGlob(flagLsGlob)
			if err != nil {
				return err
			}
		case flagLsPrefix != "":
			paths = vfsInstance.PathsWith(flagLsPrefix)
		default:
			paths = allPaths(vfsInstance)
		}

		sort.Strings(paths)
		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	},
}

func init() {
	lsCmd.Flags().StringVar(&flagLsPrefix, "prefix", "", "list only paths with this prefix")
	lsCmd.Flags().StringVar(&flagLsGlob, "glob", "", "list only paths matching this glob pattern")
}

func allPaths(v *vfs.VFS) []string {
	paths := make([]string, 0, v.Len())
	v.Iter(func(path string, _ vfs.File) {
		paths = append(paths, path)
	})
	return paths
}
