// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Command unifile reads, writes, lists, copies and removes files addressed
// by URL, with the local filesystem and every configured object store behind
// the same subcommands.
package main

import (
	"github.com/unifile/unifile/cmd/unifile/cmd"
	"github.com/unifile/unifile/log"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	cmd.Execute()
}
