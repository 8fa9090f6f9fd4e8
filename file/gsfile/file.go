// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gsfile

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/unifile/unifile/errors"
	"github.com/unifile/unifile/file"
)

type accessMode int

const (
	readonly accessMode = iota
	writeonly
)

// gsFile implements the file.File interface.
type gsFile struct {
	impl   *gsImpl
	name   string // "gs://bucket/key"
	bucket string
	key    string
	mode   accessMode

	// Read mode. gen pins readers to the generation seen at Open.
	info   *gsInfo
	gen    int64
	reader *gsReader

	// Write mode.
	w            *storage.Writer
	cancelUpload context.CancelFunc
	closed       bool
}

// Name returns the path of the file given to Open or Create.
func (f *gsFile) Name() string { return f.name }

func (f *gsFile) String() string { return f.name }

func (f *gsFile) Stat(ctx context.Context) (file.Info, error) {
	if f.mode != readonly {
		return nil, errors.E(errors.NotSupported, f.name, "stat for writeonly file not supported")
	}
	return f.info, nil
}

func (f *gsFile) Reader(ctx context.Context) io.ReadSeeker {
	if f.mode != readonly {
		return file.NewError(fmt.Errorf("reader %v: file is not opened in read mode", f.name))
	}
	if f.reader == nil {
		f.reader = &gsReader{ctx: ctx, f: f}
	}
	return f.reader
}

func (f *gsFile) Writer(ctx context.Context) io.Writer {
	if f.mode != writeonly {
		return file.NewError(fmt.Errorf("writer %v: file is not opened in write mode", f.name))
	}
	return f.w
}

func (f *gsFile) Close(ctx context.Context) error {
	if f.closed {
		return nil
	}
	f.closed = true
	switch f.mode {
	case writeonly:
		defer f.cancelUpload()
		if err := f.w.Close(); err != nil {
			return translateError(err, "gsfile.close", f.name)
		}
		return nil
	default:
		if f.reader != nil && f.reader.body != nil {
			err := f.reader.body.Close()
			f.reader.body = nil
			if err != nil {
				return translateError(err, "gsfile.close", f.name)
			}
		}
		return nil
	}
}

// Discard abandons a write without creating the object.
func (f *gsFile) Discard(ctx context.Context) {
	if f.mode != writeonly || f.closed {
		return
	}
	f.closed = true
	// Cancelling the writer's context aborts the resumable upload.
	f.cancelUpload()
	f.w.Close() // nolint: errcheck
}

// gsReader implements io.ReadSeeker on top of ranged reads pinned to the
// generation observed at Open.
type gsReader struct {
	ctx      context.Context
	f        *gsFile
	body     *storage.Reader
	position int64
}

func (r *gsReader) Read(p []byte) (int, error) {
	f := r.f
	if r.position >= f.info.size {
		return 0, io.EOF
	}
	if r.body == nil {
		obj := f.impl.client.Bucket(f.bucket).Object(f.key).Generation(f.gen)
		body, err := obj.NewRangeReader(r.ctx, r.position, -1)
		if err != nil {
			err = translateError(err, "gsfile.read", f.name)
			if errors.Is(errors.NotExist, err) {
				// The pinned generation is gone: the object was overwritten
				// or deleted after Open.
				err = errors.E(errors.Precondition,
					fmt.Sprintf("read %v: generation %d no longer current", f.name, f.gen))
			}
			return 0, err
		}
		r.body = body
	}
	n, err := r.body.Read(p)
	r.position += int64(n)
	if err != nil && err != io.EOF {
		r.body.Close() // nolint: errcheck
		r.body = nil
		err = translateError(err, "gsfile.read", f.name)
	}
	return n, err
}

func (r *gsReader) Seek(offset int64, whence int) (int64, error) {
	var newPosition int64
	switch whence {
	case io.SeekStart:
		newPosition = offset
	case io.SeekCurrent:
		newPosition = r.position + offset
	case io.SeekEnd:
		newPosition = r.f.info.size + offset
	default:
		return r.position, fmt.Errorf("gsfile.seek(%s,%d,%d): illegal whence", r.f.name, offset, whence)
	}
	if newPosition < 0 {
		return r.position, fmt.Errorf("gsfile.seek(%s,%d,%d): out-of-bounds seek", r.f.name, offset, whence)
	}
	if newPosition == r.position {
		return r.position, nil
	}
	r.position = newPosition
	if r.body != nil {
		r.body.Close() // nolint: errcheck
		r.body = nil
	}
	return r.position, nil
}
