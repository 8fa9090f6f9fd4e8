// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package azurefile

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/unifile/unifile/errors"
	"github.com/unifile/unifile/file"
)

type accessMode int

const (
	readonly accessMode = iota
	writeonly
)

// azFile implements the file.File interface.
type azFile struct {
	impl      *azImpl
	name      string // "az://container/blob"
	container string
	key       string
	mode      accessMode

	// Read mode. etag conditions every download on the version seen at
	// Open.
	info   *azInfo
	etag   string
	reader *azReader

	// Write mode.
	pw       *io.PipeWriter
	uploadCh chan error
	closed   bool
}

// Name returns the path of the file given to Open or Create.
func (f *azFile) Name() string { return f.name }

func (f *azFile) String() string { return f.name }

func (f *azFile) Stat(ctx context.Context) (file.Info, error) {
	if f.mode != readonly {
		return nil, errors.E(errors.NotSupported, f.name, "stat for writeonly file not supported")
	}
	return f.info, nil
}

func (f *azFile) Reader(ctx context.Context) io.ReadSeeker {
	if f.mode != readonly {
		return file.NewError(fmt.Errorf("reader %v: file is not opened in read mode", f.name))
	}
	if f.reader == nil {
		f.reader = &azReader{ctx: ctx, f: f}
	}
	return f.reader
}

func (f *azFile) startUpload(ctx context.Context) {
	pr, pw := io.Pipe()
	f.pw = pw
	f.uploadCh = make(chan error, 1)
	go func() {
		_, err := f.impl.client.UploadStream(ctx, f.container, f.key, pr, nil)
		if err != nil {
			err = translateError(err, "azurefile.write", f.name)
		}
		pr.CloseWithError(err) // nolint: errcheck
		f.uploadCh <- err
	}()
}

func (f *azFile) Writer(ctx context.Context) io.Writer {
	if f.mode != writeonly {
		return file.NewError(fmt.Errorf("writer %v: file is not opened in write mode", f.name))
	}
	return f.pw
}

func (f *azFile) Close(ctx context.Context) error {
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
		if f.reader != nil && f.reader.body != nil {
			err := f.reader.body.Close()
			f.reader.body = nil
			if err != nil {
				return translateError(err, "azurefile.close", f.name)
			}
		}
		return nil
	}
}

// Discard abandons a write without creating the blob.
func (f *azFile) Discard(ctx context.Context) {
	if f.mode != writeonly || f.closed {
		return
	}
	f.closed = true
	f.pw.CloseWithError(errors.E(errors.Canceled, "upload discarded")) // nolint: errcheck
	<-f.uploadCh
}

// azReader implements io.ReadSeeker on top of ranged downloads conditioned
// on the ETag observed at Open.
type azReader struct {
	ctx      context.Context
	f        *azFile
	body     io.ReadCloser
	position int64
}

func (r *azReader) Read(p []byte) (int, error) {
	f := r.f
	if r.position >= f.info.size {
		return 0, io.EOF
	}
	if r.body == nil {
		etag := azcore.ETag(f.etag)
		blobClient := f.impl.client.ServiceClient().NewContainerClient(f.container).NewBlobClient(f.key)
		resp, err := blobClient.DownloadStream(r.ctx, &blob.DownloadStreamOptions{
			Range: blob.HTTPRange{Offset: r.position},
			AccessConditions: &blob.AccessConditions{
				ModifiedAccessConditions: &blob.ModifiedAccessConditions{IfMatch: &etag},
			},
		})
		if err != nil {
			return 0, translateError(err, "azurefile.read", f.name)
		}
		r.body = resp.Body
	}
	n, err := r.body.Read(p)
	r.position += int64(n)
	if err != nil && err != io.EOF {
		r.body.Close() // nolint: errcheck
		r.body = nil
		err = translateError(err, "azurefile.read", f.name)
	}
	return n, err
}

func (r *azReader) Seek(offset int64, whence int) (int64, error) {
	var newPosition int64
	switch whence {
	case io.SeekStart:
		newPosition = offset
	case io.SeekCurrent:
		newPosition = r.position + offset
	case io.SeekEnd:
		newPosition = r.f.info.size + offset
	default:
		return r.position, fmt.Errorf("azurefile.seek(%s,%d,%d): illegal whence", r.f.name, offset, whence)
	}
	if newPosition < 0 {
		return r.position, fmt.Errorf("azurefile.seek(%s,%d,%d): out-of-bounds seek", r.f.name, offset, whence)
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
