// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package cmd implements the unifile command line tool.
package cmd

import (
	"context"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"github.com/unifile/unifile/config"
	"github.com/unifile/unifile/errors"
	"github.com/unifile/unifile/file"
	"github.com/unifile/unifile/log"
)

var rootCmd = &cobra.Command{
	Use:   "unifile",
	Short: "One tool for local, s3://, gs://, az:// and S3-compatible paths",
	Long: `unifile reads, writes, lists, copies and removes files addressed by URL,
with the local filesystem and every configured object store behind the same
commands. Arguments may contain globs as defined in
https://github.com/gobwas/glob.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		cfg, err := config.Load()
		if err != nil {
			return errors.E(err, "loading configuration")
		}
		config.RegisterImplementations(cfg)
		return nil
	},
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error.Printf("unifile: %v", err)
		os.Exit(1)
	}
}

const parallelism = 128

// forEachFile runs the callback for every file under the directory in
// parallel. It returns any of the errors returned by the callback.
func forEachFile(ctx context.Context, dir string, callback func(path string) error) error {
	err := errors.Once{}
	wg := sync.WaitGroup{}
	ch := make(chan string, parallelism*100)
	for i := 0; i < parallelism; i++ {
		wg.Add(1)
		go func() {
			for path := range ch {
				err.Set(callback(path))
			}
			wg.Done()
		}()
	}

	lister := file.List(ctx, dir, true /*recursive*/)
	for lister.Scan() {
		if !lister.IsDir() {
			ch <- lister.Path()
		}
	}
	close(ch)
	err.Set(lister.Err())
	wg.Wait()
	return err.Err()
}
