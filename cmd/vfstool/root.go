/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */
package main

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dreamweave-mp/vfstool/pkg/elog"
	"github.com/dreamweave-mp/vfstool/pkg/vfs"
)

var (
	flagConfig  string
	flagRoots   []string
	flagVerbose bool

	log         elog.Logger
	vfsInstance *vfs.VFS
)

var rootCmd = &cobra.Command{
	Use:   "vfstool",
	Short: "Inspect a merged virtual file system of data directories and archives",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger := logrus.New()
		if flagVerbose {
			logger.SetLevel(logrus.DebugLevel)
		}
		log = elog.NewLogrus(logger)

		cfg, err := loadConfig(flagConfig)
		if err != nil && flagConfig != "" {
			return err
		}

		roots := flagRoots
		if len(roots) == 0 {
			roots = cfg.Roots
		}

		v, err := vfs.Build(context.Background(), roots, cfg.Archives, log)
		if err != nil {
			return err
		}
		vfsInstance = v
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to a YAML config listing data roots and archives")
	rootCmd.PersistentFlags().StringSliceVarP(&flagRoots, "root", "r", nil, "data root directory (repeatable); overrides config roots")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(lsCmd)
}
