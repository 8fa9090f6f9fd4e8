// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/unifile/unifile/errors"
	"github.com/unifile/unifile/file"
)

var (
	presignMethod string
	presignExpiry time.Duration
)

var presignCmd = &cobra.Command{
	Use:   "presign path...",
	Short: "Print presigned URLs for files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		return Presign(cobraCmd.Context(), cobraCmd.OutOrStdout(), args,
			strings.ToUpper(presignMethod), presignExpiry)
	},
}

func init() {
	presignCmd.Flags().StringVarP(&presignMethod, "method", "X", "GET", "HTTP method to sign (GET, PUT or DELETE)")
	presignCmd.Flags().DurationVarP(&presignExpiry, "expiry", "e", 15*time.Minute, "Signed URL lifetime")
	rootCmd.AddCommand(presignCmd)
}

// Presign prints a signed URL for every path in args. Globs are not
// expanded: a presigned URL is often wanted for a path that does not exist
// yet.
func Presign(ctx context.Context, out io.Writer, args []string, method string, expiry time.Duration) error {
	for _, arg := range args {
		url, err := file.Presign(ctx, arg, method, expiry)
		if err != nil {
			return errors.E(err, "presign", arg)
		}
		fmt.Fprintln(out, url)
	}
	return nil
}
