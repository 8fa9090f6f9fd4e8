// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package file

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/unifile/unifile/errors"
	"github.com/unifile/unifile/traverse"
)

const (
	defaultBufferSize = 32 * 1024
)

// Copy is a context-aware version of io.Copy.
// Note that canceling the context doesn't undo the effects of a partial copy.
func Copy(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	type result struct {
		written int64
		err     error
	}
	var stop int32
	resultCh := make(chan result, 1)
	go func() {
		buf := make([]byte, defaultBufferSize)
		var written int64
		for {
			nr, er := src.Read(buf)
			if nr > 0 {
				nw, ew := dst.Write(buf[0:nr])
				if nw > 0 {
					written += int64(nw)
				}
				if ew != nil {
					resultCh <- result{written, errors.E("file.Copy", ew)}
					return
				}
				if nr != nw {
					resultCh <- result{written, errors.E("file.Copy", io.ErrShortWrite)}
					return
				}
			}
			if er != nil {
				if er == io.EOF {
					er = nil
				} else {
					er = errors.E("file.Copy", er)
				}
				resultCh <- result{written, er}
				return
			}
			if atomic.LoadInt32(&stop) != 0 {
				resultCh <- result{written, nil}
				return
			}
		}
	}()
	select {
	case <-ctx.Done():
		// Stop the copy goroutine and wait for its result so the returned
		// count is final.
		atomic.StoreInt32(&stop, 1)
		r := <-resultCh
		if r.err == nil {
			r.err = ctx.Err()
		}
		return r.written, r.err
	case r := <-resultCh:
		return r.written, r.err
	}
}

// CopyFile copies the contents of the file at srcPath to dstPath, creating or
// truncating the destination. The paths may be on different backends. The
// partially written destination is discarded on error.
func CopyFile(ctx context.Context, dstPath, srcPath string, opts ...Opts) (err error) {
	in, err := Open(ctx, srcPath, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	out, err := Create(ctx, dstPath, opts...)
	if err != nil {
		return err
	}
	if _, err = Copy(ctx, out.Writer(ctx), in.Reader(ctx)); err != nil {
		out.Discard(ctx)
		return errors.E(err, "copy", srcPath, dstPath)
	}
	return out.Close(ctx)
}

// copyTreeParallelism bounds the number of concurrent per-file copies made by
// CopyTree.
const copyTreeParallelism = 128

// CopyTree copies all files under srcPrefix to the corresponding paths under
// dstPrefix, in parallel. Directories are created implicitly. It returns the
// first error encountered, but attempts to copy all files regardless.
func CopyTree(ctx context.Context, dstPrefix, srcPrefix string, opts ...Opts) error {
	var srcPaths []string
	lister := List(ctx, srcPrefix, true)
	for lister.Scan() {
		if !lister.IsDir() {
			srcPaths = append(srcPaths, lister.Path())
		}
	}
	if err := lister.Err(); err != nil {
		return err
	}
	return traverse.Limit(copyTreeParallelism).Each(len(srcPaths), func(i int) error {
		src := srcPaths[i]
		suffix := src[len(srcPrefix):]
		return CopyFile(ctx, Join(dstPrefix, suffix), src, opts...)
	})
}
