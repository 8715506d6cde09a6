package main

import (
	"os"

	"github.com/spf13/cobra"
)

var flagTreeRelative bool

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the merged file system as a directory tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		dt := vfsInstance.Tree(flagTreeRelative)
		return dt.WriteTree(os.Stdout)
	},
}

func init() {
	treeCmd.Flags().BoolVar(&flagTreeRelative, "relative", false, `root the tree at "Data Files" instead of "/"`)
}
