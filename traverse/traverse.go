// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package traverse provides primitives for concurrent and parallel
// traversal of slices or user-defined collections.
package traverse

import (
	"fmt"
	"log"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/unifile/unifile/errors"
)

const cachelineSize = 64

// A T is a traverser: it provides facilities for concurrently invoking
// functions that traverse collections of data.
type T struct {
	// Limit is the traverser's concurrency limit: there will be no more
	// than Limit concurrent invocations per traversal. A limit value of
	// zero (the default value) denotes no limit.
	Limit int
}

// Limit returns a traverser with limit n.
func Limit(n int) T {
	if n <= 0 {
		log.Panicf("traverse.Limit: invalid limit: %d", n)
	}
	return T{Limit: n}
}

// Parallel is the default traverser for parallel traversal, intended for
// CPU-intensive parallel computing. Parallel limits the number of
// concurrent invocations to a small multiple of the runtime's available
// processors.
var Parallel = T{Limit: 2 * runtime.GOMAXPROCS(0)}

// Each invokes fn(i) for 0 <= i < n, managing concurrency and error
// propagation. Each returns when all invocations have completed, or
// after the first invocation fails, in which case the first invocation
// error is returned. Each also propagates panics from underlying
// invocations to the caller.
func (t T) Each(n int, fn func(i int) error) error {
	var err error
	if t.Limit == 0 || t.Limit >= n {
		err = t.each(n, fn)
	} else {
		err = t.eachLimit(n, fn)
	}
	if err == nil {
		return nil
	}
	// Propagate panics.
	if err, ok := err.(panicErr); ok {
		panic(fmt.Sprintf("traverse child: %v\n%s", err.v, string(err.stack)))
	}
	return err
}

func (t T) each(n int, fn func(i int) error) error {
	var (
		errs errors.Once
		wg   sync.WaitGroup
	)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			if err := apply(fn, i); err != nil {
				errs.Set(err)
			}
			wg.Done()
		}(i)
	}
	wg.Wait()
	return errs.Err()
}

func (t T) eachLimit(n int, fn func(i int) error) error {
	var (
		errs errors.Once
		wg   sync.WaitGroup
		next = make([]struct {
			N int64
			_ [cachelineSize - 8]byte // cache padding
		}, t.Limit)
		size = (n + t.Limit - 1) / t.Limit
	)
	wg.Add(t.Limit)
	for i := 0; i < t.Limit; i++ {
		go func(w int) {
			orig := w
			for errs.Err() == nil {
				// Each worker traverses contiguous segments since there
				// is often usable data locality associated with index
				// locality.
				idx := int(atomic.AddInt64(&next[w].N, 1) - 1)
				which := w*size + idx
				if idx >= size || which >= n {
					w = (w + 1) % t.Limit
					if w == orig {
						break
					}
					continue
				}
				if err := apply(fn, which); err != nil {
					errs.Set(err)
				}
			}
			wg.Done()
		}(i)
	}
	wg.Wait()
	return errs.Err()
}

// Each invokes Parallel.Each.
func Each(n int, fn func(i int) error) error {
	return Parallel.Each(n, fn)
}

// apply invokes fn(i), converting panics into errors so that they can be
// propagated to the traversal's caller.
func apply(fn func(i int) error, i int) (err error) {
	defer func() {
		if perr := recover(); perr != nil {
			err = panicErr{perr, debug.Stack()}
		}
	}()
	return fn(i)
}

type panicErr struct {
	v     interface{}
	stack []byte
}

func (p panicErr) Error() string { return fmt.Sprint(p.v) }
