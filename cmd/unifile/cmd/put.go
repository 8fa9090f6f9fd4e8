// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/unifile/unifile/errors"
	"github.com/unifile/unifile/file"
)

var putCmd = &cobra.Command{
	Use:   "put path",
	Short: "Store stdin at the given path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		return Put(cobraCmd.Context(), os.Stdin, args[0])
	},
}

func init() {
	rootCmd.AddCommand(putCmd)
}

// Put writes everything read from in to the file at path.
func Put(ctx context.Context, in io.Reader, path string) (err error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "put", path)
	}
	defer file.CloseAndReport(ctx, f, &err)
	if _, err = io.Copy(f.Writer(ctx), in); err != nil {
		return errors.E(err, "put", path)
	}
	return nil
}
