// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/unifile/unifile/file"
	"github.com/unifile/unifile/traverse"
)

var (
	rmVerbose   bool
	rmRecursive bool
)

var rmCmd = &cobra.Command{
	Use:   "rm path...",
	Short: "Remove files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		return Rm(cobraCmd.Context(), args, rmVerbose, rmRecursive)
	},
}

func init() {
	rmCmd.Flags().BoolVarP(&rmVerbose, "verbose", "v", false, "Enable verbose logging")
	rmCmd.Flags().BoolVarP(&rmRecursive, "recursive", "R", false, "Recursive remove")
	rootCmd.AddCommand(rmCmd)
}

// Rm removes the files matching args, in parallel.
func Rm(ctx context.Context, args []string, verbose, recursive bool) error {
	args = file.GlobAll(ctx, args)
	return traverse.Each(len(args), func(i int) error {
		path := args[i]
		if verbose {
			fmt.Fprintf(os.Stderr, "%s\n", path) // nolint: errcheck
		}
		if recursive {
			return forEachFile(ctx, path, func(path string) error {
				if verbose {
					fmt.Fprintf(os.Stderr, "%s\n", path) // nolint: errcheck
				}
				return file.Remove(ctx, path)
			})
		}
		return file.Remove(ctx, path)
	})
}
