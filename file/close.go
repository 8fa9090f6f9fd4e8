// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package file

import (
	"context"
	"fmt"

	"github.com/unifile/unifile/errors"
)

// CloseAndReport is a defer-able helper that calls f.Close and reports
// errors, if any, to *err. Pass your function's named return error.
// Example usage:
//
//	func processFile(ctx context.Context, filename string) (_ int, err error) {
//	  f, err := file.Open(ctx, filename)
//	  if err != nil { ... }
//	  defer file.CloseAndReport(ctx, f, &err)
//	  ...
//	}
//
// If your function returns with an error, any f.Close error will be
// chained appropriately.
func CloseAndReport(ctx context.Context, f Closer, err *error) {
	err2 := f.Close(ctx)
	if err2 == nil {
		return
	}
	if *err != nil {
		*err = errors.E(*err, fmt.Sprintf("second error in Close: %v", err2))
		return
	}
	*err = err2
}

// MustClose is a defer-able function that calls f.Close and panics on error.
//
// Example:
//
//	f, err := file.Open(ctx, filename)
//	if err != nil { panic(err) }
//	defer file.MustClose(ctx, f)
//	...
func MustClose(ctx context.Context, f Closer) {
	if err := f.Close(ctx); err != nil {
		if n, ok := f.(named); ok {
			panic(fmt.Sprintf("close %s: %v", n.Name(), err))
		}
		panic(err)
	}
}

type named interface {
	// Name returns the path name.
	Name() string
}
