// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/unifile/unifile/errors"
	"github.com/unifile/unifile/file"
	"github.com/unifile/unifile/traverse"
)

var (
	cpVerbose   bool
	cpRecursive bool
)

var cpCmd = &cobra.Command{
	Use:   "cp src... dst",
	Short: "Copy files",
	Long: `Cp copies files. It can be invoked in three forms:

1. cp src dst
2. cp src dst/
3. cp src... dstdir

The first form first tries to copy file src to dst. If dst exists as a
directory, it copies src to dst/<base>, where <base> is the basename of the
source file.

The second form copies file src to dst/<base>.

The third form copies each of "src" to destdir/<base>.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		return Cp(cobraCmd.Context(), args, cpVerbose, cpRecursive)
	},
}

func init() {
	cpCmd.Flags().BoolVarP(&cpVerbose, "verbose", "v", false, "Enable verbose logging")
	cpCmd.Flags().BoolVarP(&cpRecursive, "recursive", "R", false, "Recursive copy")
	rootCmd.AddCommand(cpCmd)
}

// Cp copies the files matching args[:len(args)-1] to the destination named
// by the final argument.
func Cp(ctx context.Context, args []string, verbose, recursive bool) error {
	// Copy a regular file. The first return value is true if the source exists
	// as a regular file.
	copyRegularFile := func(src, dst string) (bool, error) {
		if verbose {
			fmt.Fprintf(os.Stderr, "%s -> %s\n", src, dst) // nolint: errcheck
		}
		in, err := file.Open(ctx, src)
		if err != nil {
			return false, err
		}
		defer in.Close(ctx) // nolint: errcheck
		// If the file "src" doesn't exist, either Open or Stat should fail.
		if _, err := in.Stat(ctx); err != nil {
			return false, err
		}
		out, err := file.Create(ctx, dst)
		if err != nil {
			return true, errors.E(err, fmt.Sprintf("cp %v->%v", src, dst))
		}
		if _, err := io.Copy(out.Writer(ctx), in.Reader(ctx)); err != nil {
			_ = out.Close(ctx)
			return true, errors.E(err, fmt.Sprintf("cp %v->%v", src, dst))
		}
		err = out.Close(ctx)
		if err != nil {
			err = errors.E(err, fmt.Sprintf("cp %v->%v", src, dst))
		}
		return true, err
	}

	// Copy a regular file or a directory.
	copyFile := func(src, dst string) error {
		if srcExists, err := copyRegularFile(src, dst); srcExists || !recursive {
			return err
		}
		return forEachFile(ctx, src, func(path string) error {
			suffix := path[len(src):]
			for len(suffix) > 0 && suffix[0] == '/' {
				suffix = suffix[1:]
			}
			_, e := copyRegularFile(file.Join(src, suffix), file.Join(dst, suffix))
			return e
		})
	}

	copyFileInDir := func(src, dstDir string) error {
		return copyFile(src, file.Join(dstDir, file.Base(src)))
	}

	nArg := len(args)
	dst := args[nArg-1]
	if _, hasGlob := file.ParseGlob(dst); hasGlob {
		return fmt.Errorf("cp: destination %s cannot be a glob", dst)
	}
	srcs := file.GlobAll(ctx, args[:nArg-1])
	if len(srcs) == 1 {
		// Try copying to dst. Failing that, copy to dst/<srcbasename>.
		if !strings.HasSuffix(dst, "/") && copyFile(srcs[0], dst) == nil {
			return nil
		}
		return copyFileInDir(srcs[0], dst)
	}
	return traverse.Limit(parallelism).Each(len(srcs), func(i int) error {
		return copyFileInDir(srcs[i], dst)
	})
}
