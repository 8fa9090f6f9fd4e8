// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package miniofile

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/unifile/unifile/errors"
	"github.com/unifile/unifile/file"
)

type accessMode int

const (
	readonly accessMode = iota
	writeonly
)

// minioFile implements the file.File interface.
//
// Reads go through a lazily opened minio.Object, which is an io.ReadSeeker
// issuing ranged GETs under the hood. Writes stream through a pipe into a
// single PutObject call running in a background goroutine; the object
// becomes visible atomically when Close commits the upload.
type minioFile struct {
	impl   *minioImpl
	name   string // "scheme://bucket/key"
	bucket string
	key    string
	mode   accessMode

	// Read mode.
	info *minioInfo
	obj  *minio.Object

	// Write mode.
	pw       *io.PipeWriter
	uploadCh chan error
	closed   bool
}

// minioInfo implements the file.Info interface.
type minioInfo struct {
	name    string
	size    int64
	modTime time.Time
	etag    string
}

func (i *minioInfo) Name() string       { return i.name }
func (i *minioInfo) Size() int64        { return i.size }
func (i *minioInfo) ModTime() time.Time { return i.modTime }
func (i *minioInfo) ETag() string       { return i.etag }

// Name returns the path of the file given to Open or Create.
func (f *minioFile) Name() string { return f.name }

func (f *minioFile) String() string { return f.name }

func (f *minioFile) Stat(ctx context.Context) (file.Info, error) {
	if f.mode != readonly {
		return nil, errors.E(errors.NotSupported, f.name, "stat for writeonly file not supported")
	}
	return f.info, nil
}

func (f *minioFile) Reader(ctx context.Context) io.ReadSeeker {
	if f.mode != readonly {
		return file.NewError(fmt.Errorf("reader %v: file is not opened in read mode", f.name))
	}
	if f.obj == nil {
		obj, err := f.impl.client.GetObject(ctx, f.bucket, f.key, minio.GetObjectOptions{})
		if err != nil {
			return file.NewError(translateError(err, "miniofile.read", f.name))
		}
		f.obj = obj
	}
	return f.obj
}

func (f *minioFile) startUpload(ctx context.Context) {
	pr, pw := io.Pipe()
	f.pw = pw
	f.uploadCh = make(chan error, 1)
	go func() {
		// Size -1 streams the pipe using multipart upload.
		_, err := f.impl.client.PutObject(ctx, f.bucket, f.key, pr, -1,
			minio.PutObjectOptions{ContentType: "application/octet-stream"})
		if err != nil {
			err = translateError(err, "miniofile.write", f.name)
		}
		// Unblock the writer if the upload died mid-stream.
		pr.CloseWithError(err) // nolint: errcheck
		f.uploadCh <- err
	}()
}

func (f *minioFile) Writer(ctx context.Context) io.Writer {
	if f.mode != writeonly {
		return file.NewError(fmt.Errorf("writer %v: file is not opened in write mode", f.name))
	}
	return f.pw
}

func (f *minioFile) Close(ctx context.Context) error {
	if f.closed {
		return nil
	}
	f.closed = true
	switch f.mode {
	case writeonly:
		f.pw.Close() // nolint: errcheck
		if err := <-f.uploadCh; err != nil {
			return err
		}
		return nil
	default:
		if f.obj != nil {
			if err := f.obj.Close(); err != nil {
				return translateError(err, "miniofile.close", f.name)
			}
		}
		return nil
	}
}

// Discard abandons a write without creating the object.
func (f *minioFile) Discard(ctx context.Context) {
	if f.mode != writeonly || f.closed {
		return
	}
	f.closed = true
	f.pw.CloseWithError(errors.E(errors.Canceled, "upload discarded")) // nolint: errcheck
	<-f.uploadCh
}
