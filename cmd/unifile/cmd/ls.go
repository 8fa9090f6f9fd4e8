// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/unifile/unifile/file"
)

var (
	lsLong      bool
	lsRecursive bool
)

var lsCmd = &cobra.Command{
	Use:   "ls path...",
	Short: "List files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		return Ls(cobraCmd.Context(), cobraCmd.OutOrStdout(), args, lsLong, lsRecursive)
	},
}

func init() {
	lsCmd.Flags().BoolVarP(&lsLong, "long", "l", false, "Print file size and last modification time")
	lsCmd.Flags().BoolVarP(&lsRecursive, "recursive", "R", false, "Descend into directories recursively")
	rootCmd.AddCommand(lsCmd)
}

// Ls lists the files matching args. Entries for each argument are printed in
// listing order; arguments are listed concurrently but printed in argument
// order.
func Ls(ctx context.Context, out io.Writer, args []string, long, recursive bool) error {
	type result struct {
		err   error
		lines chan string // stream of entries found for an arg, closed when done
	}
	longOutput := func(path string, info file.Info) string {
		const iso8601 = "2006-01-02T15:04:05-0700"
		return fmt.Sprintf("%s\t%d\t%s", path, info.Size(), info.ModTime().Format(iso8601))
	}
	args = file.GlobAll(ctx, args)
	results := make([]result, len(args))
	for i := range args {
		results[i].lines = make(chan string, 10000)
		go func(path string, r *result) {
			defer close(r.lines)
			// Check if the file is a regular file.
			if info, err := file.Stat(ctx, path); err == nil {
				if long {
					r.lines <- longOutput(path, info)
				} else {
					r.lines <- path
				}
				return
			}
			lister := file.List(ctx, path, recursive)
			for lister.Scan() {
				switch {
				case lister.IsDir():
					r.lines <- lister.Path() + "/"
				case long:
					r.lines <- longOutput(lister.Path(), lister.Info())
				default:
					r.lines <- lister.Path()
				}
			}
			r.err = lister.Err()
		}(args[i], &results[i])
	}
	// Print the results in order.
	var err error
	for i := range results {
		for line := range results[i].lines {
			_, _ = fmt.Fprintln(out, line)
		}
		if err2 := results[i].err; err2 != nil && err == nil {
			err = err2
		}
	}
	return err
}
