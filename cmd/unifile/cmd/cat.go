// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/unifile/unifile/errors"
	"github.com/unifile/unifile/file"
)

var catCmd = &cobra.Command{
	Use:   "cat path...",
	Short: "Print the contents of files to stdout",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		return Cat(cobraCmd.Context(), cobraCmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
}

// Cat copies the contents of every file matching args to out, in argument
// order.
func Cat(ctx context.Context, out io.Writer, args []string) (err error) {
	for _, arg := range file.GlobAll(ctx, args) {
		f, err := file.Open(ctx, arg)
		if err != nil {
			return errors.E(err, "cat", arg)
		}
		defer file.CloseAndReport(ctx, f, &err)
		if _, err = io.Copy(out, f.Reader(ctx)); err != nil {
			return errors.E(err, "cat", arg)
		}
	}
	return nil
}
