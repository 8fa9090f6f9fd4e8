// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/unifile/unifile/errors"
	"github.com/unifile/unifile/file"
)

var infoCmd = &cobra.Command{
	Use:   "info path...",
	Short: "Print metadata for files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		return Info(cobraCmd.Context(), cobraCmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

// Info prints size, modification time and, when the backend reports one, the
// entity tag of every file matching args.
func Info(ctx context.Context, out io.Writer, args []string) error {
	const iso8601 = "2006-01-02T15:04:05-0700"
	w := tabwriter.NewWriter(out, 0, 8, 1, '\t', 0)
	for _, arg := range file.GlobAll(ctx, args) {
		info, err := file.Stat(ctx, arg)
		if err != nil {
			return errors.E(err, "info", arg)
		}
		etag := "-"
		if e, ok := info.(file.ETagged); ok && e.ETag() != "" {
			etag = e.ETag()
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", arg, info.Size(), info.ModTime().Format(iso8601), etag)
	}
	return w.Flush()
}
